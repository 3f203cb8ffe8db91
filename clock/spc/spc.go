// Package spc sequences core voltage, flash wait states and SRAM voltage when
// the system clock moves between run modes.
package spc

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

type Options struct {
	Limits Limits
	Poller chip.Poller
}

// SPC is an owned handle to the System Power Control block and the flash
// controller register holding the wait states. It caches the current run mode
// so later requests know their direction without reading the hardware.
type SPC struct {
	bus    chip.Bus
	base   uintptr
	fmu    uintptr
	limits Limits
	poller chip.Poller
	mode   RunMode
}

// New returns a handle for the SPC at base and the flash controller at fmu.
// The cached run mode is taken from the current core LDO level.
func New(bus chip.Bus, base, fmu uintptr, opts Options) *SPC {
	if len(opts.Limits) == 0 {
		opts.Limits = DefaultLimits
	}
	s := &SPC{
		bus:    bus,
		base:   base,
		fmu:    fmu,
		limits: opts.Limits,
		poller: opts.Poller,
	}
	s.Sync()
	return s
}

func (s *SPC) reg(offset uintptr) chip.Register {
	return chip.NewRegister(s.bus, s.base+offset)
}

func (s *SPC) fctrl() chip.Register {
	return chip.NewRegister(s.bus, s.fmu+chip.FMU_FCTRL)
}

// Sync reloads the cached run mode from the hardware.
func (s *SPC) Sync() RunMode {
	lvl := chip.SPC_ACTIVE_CFG_CORELDO_VDD_LVL.Get(s.reg(chip.SPC_ACTIVE_CFG).Get())
	s.mode = RunMode(lvl)
	return s.mode
}

func (s *SPC) Mode() RunMode {
	return s.mode
}

func (s *SPC) Limits() Limits {
	return s.limits
}

func (s *SPC) Busy() bool {
	return s.reg(chip.SPC_SC).HasBits(chip.SPC_SC_BUSY)
}

// WaitStates returns the flash wait states currently programmed.
func (s *SPC) WaitStates() uint32 {
	return chip.FMU_FCTRL_RWSC.Get(s.fctrl().Get())
}

// SetSystemFrequency moves to the lowest run mode that supports hz.
func (s *SPC) SetSystemFrequency(hz uint32) error {
	mode, err := s.limits.ModeFor(hz)
	if err != nil {
		return err
	}
	return s.SetRunMode(mode, hz)
}

// SetRunMode switches to mode with the flash timed for a system clock of hz.
//
// Raising the mode raises the voltage first, then the wait states, then the
// SRAM voltage. Lowering it runs the same steps in reverse, so the supply is
// never below what the clock and memories need at any point.
func (s *SPC) SetRunMode(mode RunMode, hz uint32) error {
	if mode == UnderDrive || mode > OverDrive {
		return fmt.Errorf("%w: %s is not a valid target", peripheral.ErrInvalidConfig, mode)
	}
	ws, err := s.limits.WaitStates(mode, hz)
	if err != nil {
		return err
	}
	if s.Busy() {
		return fmt.Errorf("%w: SPC busy", peripheral.ErrBusy)
	}

	switch {
	case mode == s.mode:
		if s.WaitStates() != ws {
			s.setWaitStates(ws)
		}
		return nil
	case mode > s.mode:
		if err := s.setVoltage(mode); err != nil {
			return err
		}
		s.setWaitStates(ws)
		if err := s.setSRAMVoltage(mode); err != nil {
			return err
		}
	default:
		if err := s.setSRAMVoltage(mode); err != nil {
			return err
		}
		s.setWaitStates(ws)
		if err := s.setVoltage(mode); err != nil {
			return err
		}
	}
	s.mode = mode
	return nil
}

// setVoltage programs the core LDO and DCDC levels in one write, with the
// LDO at normal drive strength, and waits for the regulators to settle.
func (s *SPC) setVoltage(mode RunMode) error {
	s.reg(chip.SPC_ACTIVE_CFG).Modify(func(v uint32) uint32 {
		v |= chip.SPC_ACTIVE_CFG_CORELDO_VDD_DS
		v = chip.SPC_ACTIVE_CFG_CORELDO_VDD_LVL.Put(v, uint32(mode))
		return chip.SPC_ACTIVE_CFG_DCDC_VDD_LVL.Put(v, uint32(mode))
	})
	if err := s.poller.Clear(s.reg(chip.SPC_SC), chip.SPC_SC_BUSY); err != nil {
		return fmt.Errorf("core voltage %s: %w", mode, err)
	}
	return nil
}

func (s *SPC) setWaitStates(ws uint32) {
	s.fctrl().Modify(func(v uint32) uint32 {
		return chip.FMU_FCTRL_RWSC.Put(v, ws)
	})
}

// setSRAMVoltage requests the SRAM voltage level and completes the REQ/ACK
// handshake.
func (s *SPC) setSRAMVoltage(mode RunMode) error {
	sram := s.reg(chip.SPC_SRAMCTL)
	sram.Set(chip.SPC_SRAMCTL_VSM.Put(0, uint32(mode)) | chip.SPC_SRAMCTL_REQ)
	if err := s.poller.Set(sram, chip.SPC_SRAMCTL_ACK); err != nil {
		return fmt.Errorf("SRAM voltage %s: %w", mode, err)
	}
	sram.ClearBits(chip.SPC_SRAMCTL_REQ)
	return nil
}
