package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mpvbuild/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the native dependency graph",
	Long:  `Outputs a Mermaid diagram (graph TD) of the native libraries and their prerequisites.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		arch, _ := cmd.Flags().GetString("arch")

		if err := cli.ExecuteGraph(cmd.Context(), os.Stdout, opts, arch); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("arch", "", "Highlight the nodes already built for this architecture")
}
