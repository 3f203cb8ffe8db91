package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/mcxclk/clock"
	"omibyte.io/mcxclk/targets"
)

var (
	profilePath string

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Validate a clock profile and show the resulting clock tree",
		Long:  "Validate a clock profile without touching hardware: print every derived frequency, the run mode and flash wait states, and the order in which apply would perform each step.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, target, cfg, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			f, err := cfg.Frequencies(target)
			if err != nil {
				return err
			}
			steps, err := clock.BringUpOrder(cfg)
			if err != nil {
				return err
			}

			heading(fmt.Sprintf("%s: %s", target.Series, profilePath))
			printFrequencies(f)
			heading("Steps")
			for i, s := range steps {
				fmt.Fprintf(stdout, "  %2d. %s\n", i+1, s)
			}
			for _, g := range profile.Gates {
				fmt.Fprintf(stdout, "      gate %s\n", g.Name)
			}
			status(true, "profile is valid")
			return nil
		},
	}
)

func init() {
	planCmd.Flags().StringVarP(&profilePath, "config", "c", "", "clock profile YAML file")
	planCmd.MarkFlagRequired("config")
}

func loadProfile(path string) (clock.Profile, targets.TargetInfo, clock.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return clock.Profile{}, targets.TargetInfo{}, clock.Config{}, err
	}
	defer f.Close()
	profile, err := clock.LoadProfile(f)
	if err != nil {
		return clock.Profile{}, targets.TargetInfo{}, clock.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	target, err := profile.Target()
	if err != nil {
		return clock.Profile{}, targets.TargetInfo{}, clock.Config{}, err
	}
	cfg, err := profile.Config(target)
	if err != nil {
		return clock.Profile{}, targets.TargetInfo{}, clock.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return profile, target, cfg, nil
}

func printFrequencies(f clock.Frequencies) {
	rows := []struct {
		name string
		v    uint32
	}{
		{"SOSC", f.SOSC},
		{"SIRC", f.SIRC},
		{"SIRC periph", f.SIRCPeriph},
		{"CLK_1M", f.Clk1M},
		{"FIRC", f.FIRC},
		{"FIRC FCLK", f.FIRCFClk},
		{"FIRC SCLK", f.FIRCSClk},
		{"APLL", f.APLL},
		{"SPLL", f.SPLL},
		{"main", f.Main},
		{"system", f.System},
	}
	for _, r := range rows {
		fmt.Fprintf(stdout, "  %-12s %15s\n", r.name, hz(r.v))
	}
	fmt.Fprintf(stdout, "  %-12s %15s\n", "run mode", f.Mode)
	fmt.Fprintf(stdout, "  %-12s %15d\n", "wait states", f.WaitStates)
}
