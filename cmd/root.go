package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codepathfinder/prreview/internal/analytics"
	"github.com/codepathfinder/prreview/internal/output"
)

// Version and GitCommit are overridden at build time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "HEAD"
)

var emitter analytics.Emitter = analytics.NoopEmitter{}

var rootCmd = &cobra.Command{
	Use:   "prreview",
	Short: "Structural + LLM PR review router",
	Long: `prreview routes a pull request's diff through a bounded structural
analysis core and a configurable set of LLM review agents, then posts
deduplicated findings back to GitHub or Azure DevOps.

Learn more: https://github.com/codepathfinder/prreview`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		if disableMetrics {
			emitter = analytics.NoopEmitter{}
		} else {
			emitter = analytics.NewPosthogEmitter(posthogPublicKey, Version)
		}

		logger := output.NewLogger(verbosityFor(verbose))
		if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
			output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
		} else if logger.IsTTY() && !noBanner {
			fmt.Fprintln(os.Stderr, output.CompactBanner(Version))
		}
	},
}

// posthogPublicKey is left blank in this tree; a real distribution bakes
// one in at build time via -ldflags. An empty key makes PosthogEmitter a
// safe no-op.
var posthogPublicKey = ""

func verbosityFor(verbose bool) output.VerbosityLevel {
	if verbose {
		return output.VerbosityVerbose
	}
	return output.VerbosityNormal
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "disable anonymous usage analytics")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "disable startup banner")
}
