package scg

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// SIRCFrequency is the nominal output of the slow internal oscillator.
const SIRCFrequency = 12_000_000

// SIRCConfig describes the slow internal oscillator. The oscillator itself
// cannot be powered down; only its outputs are configurable.
type SIRCConfig struct {
	// PeriphEnabled delivers the 12 MHz clock to peripherals.
	PeriphEnabled bool
	StopEnabled   bool
}

func (s *SCG) EnableSIRC(cfg SIRCConfig) error {
	csr := s.reg(chip.SCG_SIRCCSR)
	unlock(csr)
	csr.Modify(func(v uint32) uint32 {
		v = chip.Flag(v, chip.SCG_SIRCCSR_SIRC_CLK_PERIPH_EN, cfg.PeriphEnabled)
		return chip.Flag(v, chip.SCG_SIRCCSR_SIRCSTEN, cfg.StopEnabled)
	})
	lock(csr)
	return s.waitValid(SIRC, csr)
}

// DisableSIRC withdraws the SIRC peripheral and stop-mode outputs.
func (s *SCG) DisableSIRC() error {
	if s.busy(SIRC) {
		return fmt.Errorf("%w: SIRC is in use", peripheral.ErrBusy)
	}
	csr := s.reg(chip.SCG_SIRCCSR)
	unlock(csr)
	csr.ClearBits(chip.SCG_SIRCCSR_SIRC_CLK_PERIPH_EN | chip.SCG_SIRCCSR_SIRCSTEN)
	lock(csr)
	return nil
}

// ReadSIRC returns the SIRC output settings currently programmed.
func (s *SCG) ReadSIRC() SIRCConfig {
	v := s.reg(chip.SCG_SIRCCSR).Get()
	return SIRCConfig{
		PeriphEnabled: v&chip.SCG_SIRCCSR_SIRC_CLK_PERIPH_EN != 0,
		StopEnabled:   v&chip.SCG_SIRCCSR_SIRCSTEN != 0,
	}
}
