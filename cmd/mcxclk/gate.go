package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"omibyte.io/mcxclk/clock"
	"omibyte.io/mcxclk/clock/mrcc"
	"omibyte.io/mcxclk/targets"
)

var (
	gateOpts = struct {
		chip string
		bus  string
	}{}

	gateCmd = &cobra.Command{
		Use:   "gate",
		Short: "Drive peripheral clock gates",
	}

	gateListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the peripheral gates of a chip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGates(func(r *mrcc.Registry) error {
				for _, name := range r.Names() {
					g, _ := r.Lookup(name)
					on, _ := r.Enabled(name)
					fmt.Fprintf(stdout, "  %-16s group %d bit %2d  enabled=%t reset=%t divider=%t mux=%t\n",
						g.Name, g.Group, g.Bit, on, g.Reset, g.Divider != 0, g.Mux != 0)
				}
				return nil
			})
		},
	}

	gateEnableCmd = &cobra.Command{
		Use:   "enable NAME...",
		Short: "Ungate peripheral clocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGates(func(r *mrcc.Registry) error {
				for _, name := range args {
					if err := r.Enable(name); err != nil {
						return err
					}
					status(true, "%s enabled", name)
				}
				return nil
			})
		},
	}

	gateDisableCmd = &cobra.Command{
		Use:   "disable NAME...",
		Short: "Gate peripheral clocks off",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGates(func(r *mrcc.Registry) error {
				for _, name := range args {
					if err := r.Disable(name); err != nil {
						return err
					}
					status(true, "%s disabled", name)
				}
				return nil
			})
		},
	}

	gateResetCmd = &cobra.Command{
		Use:   "reset NAME...",
		Short: "Pulse peripheral resets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGates(func(r *mrcc.Registry) error {
				for _, name := range args {
					if err := r.Reset(name); err != nil {
						return err
					}
					status(true, "%s reset", name)
				}
				return nil
			})
		},
	}

	gateDividerCmd = &cobra.Command{
		Use:   "divider NAME DIV|halt",
		Short: "Run a peripheral clock divider at DIV+1, or halt it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGates(func(r *mrcc.Registry) error {
				if args[1] == "halt" {
					return r.HaltDivider(args[0])
				}
				div, err := strconv.ParseUint(args[1], 0, 32)
				if err != nil {
					return err
				}
				if err := r.SetDivider(args[0], uint32(div)); err != nil {
					return err
				}
				status(true, "%s divides by %d", args[0], div+1)
				return nil
			})
		},
	}
)

func init() {
	gateCmd.PersistentFlags().StringVar(&gateOpts.chip, "chip", "mcxn947", "chip or series")
	gateCmd.PersistentFlags().StringVarP(&gateOpts.bus, "bus", "b", "sim", `register bus: "sim", "devmem [sync]" or "serial PORT [BAUD]"`)
	gateCmd.AddCommand(gateListCmd, gateEnableCmd, gateDisableCmd, gateResetCmd, gateDividerCmd)
}

func withGates(fn func(r *mrcc.Registry) error) error {
	target, err := targets.All().Find(gateOpts.chip)
	if err != nil {
		return err
	}
	b, err := openBus(gateOpts.bus, target)
	if err != nil {
		return err
	}
	e, err := clock.New(target, b.bus)
	if err != nil {
		return errors.Join(err, b.done())
	}
	return errors.Join(fn(e.Gates()), b.done())
}
