package commands

// Root command for Cobra CLI
// Running the binary without a subcommand is the same as "render"
// Flags shared by every subcommand are persistent on the root

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds a fresh command tree, so tests can run it repeatedly.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strategy-charts",
		Short: "Render strategy report charts from optimizer output",
		Long: `strategy-charts reads a JSON document with selected strategies ("picks") and
scored sites ("sites") on stdin and writes base64 PNG charts as one JSON document on stdout.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runRender,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./charts.yaml)")
	flags.String("input", "", "read input JSON from this file instead of stdin")
	flags.String("out-dir", "", "also save PNG files into this directory")
	flags.Float64("dpi", 160, "image resolution")
	flags.String("font", "", "TTF font file used for all text")
	flags.Bool("no-graph-model", false, "skip probing the Graphviz graph model")
	flags.Uint64("graph-seed", 42, "seed of the strategy graph layout")
	flags.String("log-level", "error", "log level: debug, info, warn, error")
	flags.String("log-output", "", `log destination: "" discards, "stderr", or a file path`)

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newPublishCmd())
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
