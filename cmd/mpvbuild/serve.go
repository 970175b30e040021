package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mpvbuild/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dist tree over HTTP",
	Long: `Starts an HTTP server exposing the artifacts (/artifacts/*), the manifest
(/manifest, /manifest.md), a health check (/healthz) and Prometheus metrics (/metrics).`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		port, _ := cmd.Flags().GetInt("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.ExecuteServe(ctx, opts, port); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
