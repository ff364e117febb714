package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ccattrib",
		Short: "Creative Commons attribution inspector",
		Long: `ccattrib inspects the RDFa statements embedded in web pages, finds the
works that carry a license, and renders attribution for them.

Statements are read as N-Triples (the output of any RDFa extractor) and
kept in a local snapshot, so a page analyzed once can be queried later:

  ccattrib analyze page.nt --url https://example.org/gallery
  ccattrib subjects https://example.org/gallery
  ccattrib attribution https://example.org/gallery --format text`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: layered user and project config)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "snapshot database path (overrides snapshot.path)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print cache metrics to stderr on exit")

	rootCmd.AddCommand(analyzeCmd(a))
	rootCmd.AddCommand(subjectsCmd(a))
	rootCmd.AddCommand(attributionCmd(a))
	rootCmd.AddCommand(licenseCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(forgetCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}
