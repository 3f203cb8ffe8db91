package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/mcxclk/targets"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported chips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range targets.All() {
			heading(fmt.Sprintf("%s (%s)", t.Series, strings.Join(t.Chips, ", ")))
			var ranges []string
			for _, r := range t.FIRC {
				ranges = append(ranges, r.Name)
			}
			fmt.Fprintf(stdout, "  FIRC ranges:  %s (default %s)\n", strings.Join(ranges, " "), t.DefaultFIRC)
			fmt.Fprintf(stdout, "  main sources: %s\n", strings.Join(t.Sources, " "))
			limits, err := t.Limits()
			if err != nil {
				return err
			}
			for _, l := range limits {
				fmt.Fprintf(stdout, "  %-14s up to %s, %d wait state bands\n", l.Mode.String()+":", hz(l.Max), len(l.Bands))
			}
			fmt.Fprintf(stdout, "  gates:        %d\n", len(t.Gates.Entries))
		}
		return nil
	},
}
