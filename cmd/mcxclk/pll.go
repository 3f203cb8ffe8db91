package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/mcxclk/clock"
	"omibyte.io/mcxclk/clock/scg"
)

var (
	pllOpts = struct {
		input   clock.Frequency
		n, m, p uint32
		bypass2 bool
	}{input: 24_000_000}

	pllCmd = &cobra.Command{
		Use:   "pll",
		Short: "Compute PLL frequencies and bandwidth settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := scg.PLLConfig{
				Input:          scg.SOSC,
				N:              pllOpts.n,
				M:              pllOpts.m,
				P:              pllOpts.p,
				BypassPostDiv2: pllOpts.bypass2,
			}
			params, err := cfg.Compute(uint32(pllOpts.input))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "  %-12s %15s\n", "input", hz(uint32(pllOpts.input)))
			fmt.Fprintf(stdout, "  %-12s %15s\n", "pre-divided", hz(params.PreDivided))
			fmt.Fprintf(stdout, "  %-12s %15s\n", "CCO", hz(params.CCO))
			fmt.Fprintf(stdout, "  %-12s %15s\n", "output", hz(params.Output))
			fmt.Fprintf(stdout, "  %-12s %15d\n", "SELP", params.SELP)
			fmt.Fprintf(stdout, "  %-12s %15d\n", "SELI", params.SELI)
			fmt.Fprintf(stdout, "  %-12s %15d\n", "SELR", params.SELR)
			fmt.Fprintf(stdout, "  %-12s %15s\n", "lock time", printer.Sprintf("%d cycles", params.LockTime))
			return nil
		},
	}
)

func init() {
	pllCmd.Flags().VarP(&pllOpts.input, "input", "i", "reference frequency (e.g. 24MHz)")
	pllCmd.Flags().Uint32VarP(&pllOpts.n, "pre-div", "n", 0, "pre-divider N (0: bypassed)")
	pllCmd.Flags().Uint32VarP(&pllOpts.m, "mult", "m", 0, "multiplier M")
	pllCmd.Flags().Uint32VarP(&pllOpts.p, "post-div", "p", 0, "post-divider P (0: bypassed)")
	pllCmd.Flags().BoolVar(&pllOpts.bypass2, "bypass-post-div2", false, "skip the fixed divide-by-two after P")
	pllCmd.MarkFlagRequired("mult")
}
