package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/mpvbuild/internal/cli"
	"github.com/aretw0/mpvbuild/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mpvbuild",
	Short: "Build the speech-to-text plugin and server for every platform",
	Long: `mpvbuild expands a selection of platforms, crates, features and Android ABIs
into a build matrix and runs it job by job. Mobile jobs first cross-compile the
native libraries mpv needs (ffmpeg, libass and friends, libplacebo, mpv) into a
per-architecture prefix. Artifacts land in dist/ together with a MANIFEST.md.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.Execute(ctx, opts); err != nil {
			exitOnError(err, ctx.Signal())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func exitOnError(err error, sig os.Signal) {
	switch {
	case cli.Interrupted(err, sig):
	case errors.Is(err, cli.ErrRunFailed):
		// The summary already lists the failures.
	default:
		fmt.Printf("Error: %v\n", err)
	}
	os.Exit(1)
}

func optionsFromFlags(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{Env: config.FromEnvironment()}

	opts.Platforms, _ = flags.GetStringSlice("platforms")
	opts.Crates, _ = flags.GetStringSlice("crates")
	opts.Features, _ = flags.GetStringSlice("features")
	opts.ABIs, _ = flags.GetStringSlice("abis")
	opts.Check, _ = flags.GetBool("check")
	opts.Clean, _ = flags.GetBool("clean")
	opts.List, _ = flags.GetBool("list")
	opts.Plan, _ = flags.GetBool("plan")
	opts.SkipDeps, _ = flags.GetBool("skip-deps")
	opts.Rebuild, _ = flags.GetBool("rebuild")
	opts.VerifySources, _ = flags.GetBool("verify-sources")
	opts.CatalogPath, _ = flags.GetString("catalog")
	opts.ToolsPath, _ = flags.GetString("tools")
	opts.LogFile, _ = flags.GetString("log-file")
	opts.DistDir, _ = flags.GetString("dist")
	opts.MetricsFile, _ = flags.GetString("metrics-file")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.Workspace, _ = flags.GetString("workspace")
	opts.Debug, _ = flags.GetBool("debug")
	return opts
}

func init() {
	flags := rootCmd.Flags()
	flags.StringSlice("platforms", nil, "Platforms to build (default: all)")
	flags.StringSlice("crates", nil, "Crates to build: plugin, server (default: both)")
	flags.StringSlice("features", nil, "Features by name or suffix, e.g. cpu,remote (default: all allowed per crate)")
	flags.StringSlice("abis", nil, "Android ABIs (default: arm64-v8a,armeabi-v7a)")
	flags.Bool("check", false, "Validate only: run cargo check, produce no artifacts")
	flags.Bool("clean", false, "Remove the dist tree before building")
	flags.Bool("list", false, "Print the supported platforms, crates, features and ABIs and exit")
	flags.Bool("plan", false, "Print the jobs the selection expands to and exit")
	flags.Bool("skip-deps", false, "Do not build native prerequisites for mobile jobs")
	flags.Bool("rebuild", false, "Clean-rebuild every native prerequisite")
	flags.Bool("verify-sources", false, "Fail when a reused source tree differs from sources.lock.yaml")
	flags.String("catalog", "", "Matrix catalog file (default: built-in)")

	// Shared by the subcommands.
	persistent := rootCmd.PersistentFlags()
	persistent.String("tools", "tools.yaml", "Tool registry overrides (YAML or JSON)")
	persistent.String("log-file", "build.log", "Append-only build log")
	persistent.String("dist", "", "Dist directory (default: $MPVBUILD_DIST_DIR or dist)")
	persistent.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	persistent.String("redis", "", "Redis address for shared stamps and prefix locks (default: $MPVBUILD_REDIS_ADDR)")
	persistent.String("workspace", ".", "Cargo workspace root")
	persistent.Bool("debug", false, "Enable debug logging")
}
