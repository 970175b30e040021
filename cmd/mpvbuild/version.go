package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/mpvbuild"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mpvbuild",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mpvbuild version %s\n", strings.TrimSpace(mpvbuild.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
