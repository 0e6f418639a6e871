package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docxport/internal/config"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/fetch"
	"github.com/dgallion1/docxport/internal/parser"
	"github.com/dgallion1/docxport/internal/pipeline"
)

type convertOptions struct {
	output      string
	configPath  string
	root        string
	format      string
	theme       string
	title       string
	pdftotext   bool
	concurrency int
	timeout     time.Duration
}

func newConvertCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert <input> [-o output]",
		Short: "Convert a file to .docx",
		Long: `Convert imports the input by its extension and exports it as a .docx
package. Without -o the package is written next to the input; "-o -" writes
it to standard output.`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts, logger(cmd))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file, or - for stdout")
	f.StringVarP(&opts.configPath, "config", "c", "", "HCL export config")
	f.StringVar(&opts.root, "root", "", "JSONPath of the document tree inside a .json input")
	f.StringVarP(&opts.format, "format", "f", "docx", "output format: docx or base64")
	f.StringVar(&opts.theme, "theme", "", "code highlighting theme")
	f.StringVar(&opts.title, "title", "", "document title (defaults to the input's)")
	f.BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs the built-in reader cannot handle")
	f.IntVar(&opts.concurrency, "concurrency", exporter.DefaultConcurrency, "nodes transformed in parallel")
	f.DurationVarP(&opts.timeout, "timeout", "t", 0, "abort the conversion after this long")
	return cmd
}

func runConvert(cmd *cobra.Command, input string, opts convertOptions, log *slog.Logger) error {
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	var defaults exporter.Config
	if opts.configPath != "" {
		defaults, err = config.LoadExportFile(opts.configPath)
		if err != nil {
			return err
		}
	}
	if opts.theme != "" {
		defaults.CodeTheme = opts.theme
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	fetcher := fetch.NewClient(fetch.WithLogger(log))
	defer fetcher.Close()
	ex := exporter.New(
		exporter.WithLogger(log),
		exporter.WithConcurrency(opts.concurrency),
		exporter.WithFetcher(fetcher),
	)
	in := pipeline.Input{
		Filename: filepath.Base(input),
		Data:     data,
		Root:     opts.root,
		Config:   exporter.Config{Title: opts.title},
	}

	start := time.Now()
	doc, err := pipeline.Convert(ctx, ex, defaults, in, parser.Options{PdftotextFallback: opts.pdftotext})
	if err != nil {
		return err
	}
	log.Info("converted", "input", input, "bytes", doc.Len(), "duration_ms", time.Since(start).Milliseconds())

	return writeOutput(cmd.OutOrStdout(), outputPath(input, opts.output, format), doc, format)
}

// outputPath places the result next to the input unless told otherwise.
func outputPath(input, output string, format exporter.Format) string {
	if output != "" {
		return output
	}
	name := pipeline.OutputName(filepath.Base(input))
	if format == exporter.FormatBase64 {
		name += ".b64"
	}
	return filepath.Join(filepath.Dir(input), name)
}

func writeOutput(stdout io.Writer, path string, doc *exporter.Document, format exporter.Format) error {
	if path == "-" {
		return doc.Encode(stdout, format)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Encode(out, format); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
