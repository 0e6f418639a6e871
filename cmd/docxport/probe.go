package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docxport/internal/imaging"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <image>...",
		Short: "Print the format and natural size of images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tFORMAT\tWIDTH\tHEIGHT")
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				info, err := imaging.Probe(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", path, info.Format, info.Width, info.Height)
			}
			return tw.Flush()
		},
	}
}
