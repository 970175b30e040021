package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mpvbuild/internal/cli"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Regenerate and print dist/MANIFEST.md",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.ExecuteManifest(os.Stdout, optionsFromFlags(cmd)); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
