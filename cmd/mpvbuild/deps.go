package main

import (
	"strings"

	"github.com/aretw0/mpvbuild/internal/cli"
	"github.com/aretw0/mpvbuild/internal/toolchain"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps [node]",
	Short: "Build a native dependency and its prerequisites",
	Long: `Configures the toolchain of one architecture and builds the named node of the
native dependency graph (mpv by default) into its prefix.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		arch, _ := cmd.Flags().GetString("arch")
		opts.SkipDeps, _ = cmd.Flags().GetBool("skip-deps")
		opts.Rebuild, _ = cmd.Flags().GetBool("rebuild")
		opts.VerifySources, _ = cmd.Flags().GetBool("verify-sources")

		node := "mpv"
		if len(args) > 0 {
			node = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.ExecuteDeps(ctx, opts, node, arch); err != nil {
			exitOnError(err, ctx.Signal())
		}
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)

	depsCmd.Flags().String("arch", "arm64", "Architecture: "+strings.Join(toolchain.IDs(), ", "))
	depsCmd.Flags().Bool("skip-deps", false, "Build only the named node")
	depsCmd.Flags().Bool("rebuild", false, "Clean-rebuild even when the stamp matches")
	depsCmd.Flags().Bool("verify-sources", false, "Fail when a reused source tree differs from sources.lock.yaml")
}
