package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/shlex"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/chip/devmem"
	"omibyte.io/mcxclk/chip/serialbus"
	"omibyte.io/mcxclk/chip/simbus"
	"omibyte.io/mcxclk/clock"
	"omibyte.io/mcxclk/targets"
)

// backend is an opened register bus. done releases it and reports any
// deferred access error.
type backend struct {
	bus  chip.Bus
	sim  *simbus.Bus
	done func() error
}

// openBus opens the bus described by desc:
//
//	sim
//	devmem [sync]
//	serial PORT [BAUD]
func openBus(desc string, target targets.TargetInfo) (backend, error) {
	args, err := shlex.Split(desc)
	if err != nil {
		return backend{}, fmt.Errorf("bus %q: %w", desc, err)
	}
	if len(args) == 0 {
		args = []string{"sim"}
	}

	switch args[0] {
	case "sim":
		bus, _ := clock.Simulate(target)
		return backend{bus: bus, sim: bus, done: func() error { return nil }}, nil

	case "devmem":
		regions := devmem.Pages(target.Blocks.SCG, target.Blocks.SPC, target.Blocks.FMU, target.Blocks.SYSCON, target.Blocks.Gates)
		open := devmem.Open
		if len(args) > 1 && args[1] == "sync" {
			open = devmem.OpenSync
		}
		bus, err := open(regions...)
		if err != nil {
			return backend{}, err
		}
		return backend{bus: bus, done: bus.Close}, nil

	case "serial":
		if len(args) < 2 {
			ports, _ := serialbus.Ports()
			return backend{}, fmt.Errorf("serial bus needs a port, found %v", ports)
		}
		baud := 115200
		if len(args) > 2 {
			if baud, err = strconv.Atoi(args[2]); err != nil {
				return backend{}, fmt.Errorf("baud rate %q: %w", args[2], err)
			}
		}
		bus, err := serialbus.Open(args[1], baud)
		if err != nil {
			return backend{}, err
		}
		return backend{bus: bus, done: func() error {
			return errors.Join(bus.Err(), bus.Close())
		}}, nil
	}
	return backend{}, fmt.Errorf("unknown bus %q (want sim, devmem or serial)", args[0])
}
