package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/mcxclk/clock"
)

var (
	applyOpts = struct {
		config    string
		bus       string
		trace     bool
		verbose   bool
		pollLimit int
	}{}

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Bring the clock tree into the state of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, target, cfg, err := loadProfile(applyOpts.config)
			if err != nil {
				return err
			}
			b, err := openBus(applyOpts.bus, target)
			if err != nil {
				return err
			}

			opts := []clock.Option{clock.WithPollLimit(applyOpts.pollLimit)}
			if applyOpts.verbose {
				opts = append(opts, clock.WithLogger(log.New(os.Stderr, "mcxclk: ", 0)))
			}
			e, err := clock.New(target, b.bus, opts...)
			if err != nil {
				return errors.Join(err, b.done())
			}
			if b.sim != nil {
				b.sim.ClearOps()
			}

			err = e.Apply(cfg)
			if err == nil {
				err = e.ApplyGates(profile.Gates)
			}
			if applyOpts.trace && b.sim != nil {
				heading("Register trace")
				fmt.Fprint(stdout, b.sim.Trace(clock.RegisterNames(target)))
			}
			if err = errors.Join(err, b.done()); err != nil {
				return err
			}

			printFrequencies(e.Frequencies())
			status(true, "%s running from %s", target.Series, e.Main())
			return nil
		},
	}
)

func init() {
	applyCmd.Flags().StringVarP(&applyOpts.config, "config", "c", "", "clock profile YAML file")
	applyCmd.Flags().StringVarP(&applyOpts.bus, "bus", "b", "sim", `register bus: "sim", "devmem [sync]" or "serial PORT [BAUD]"`)
	applyCmd.Flags().BoolVarP(&applyOpts.trace, "trace", "t", false, "print the register accesses of a simulated run")
	applyCmd.Flags().BoolVarP(&applyOpts.verbose, "verbose", "v", false, "log every sequencing step")
	applyCmd.Flags().IntVar(&applyOpts.pollLimit, "poll-limit", 0, "status reads before a hardware wait times out (0: default)")
	applyCmd.MarkFlagRequired("config")
}
