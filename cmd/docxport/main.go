// Command docxport converts documents to .docx from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "docxport",
		Short: "Export rich-text documents to Word (.docx)",
		Long: `docxport reads markdown, HTML, text, CSV, PDF or a JSON document tree
and writes an Office Open XML word-processing package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	logger := func(cmd *cobra.Command) *slog.Logger {
		if !verbose {
			return slog.New(slog.DiscardHandler)
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	rootCmd.AddCommand(newConvertCmd(logger), newProbeCmd())
	return rootCmd
}
