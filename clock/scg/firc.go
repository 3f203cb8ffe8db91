package scg

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// FIRCRange is one output range of the fast internal oscillator.
type FIRCRange struct {
	Name      string
	Frequency uint32
	Code      uint32
}

// FIRCConfig describes the fast internal oscillator.
type FIRCConfig struct {
	Range       FIRCRange
	StopEnabled bool
	// SCLKPeriph delivers the fixed 48 MHz clock to peripherals.
	SCLKPeriph bool
	// FCLKPeriph delivers the full-range clock to peripherals.
	FCLKPeriph bool
}

// EnableFIRC selects the range, starts FIRC and waits until it is valid.
func (s *SCG) EnableFIRC(cfg FIRCConfig) error {
	if cfg.Range.Frequency == 0 {
		return fmt.Errorf("%w: FIRC requires a range", peripheral.ErrInvalidConfig)
	}
	if cfg.Range.Code > s.opts.FIRCRange.Max() {
		return fmt.Errorf("%w: FIRC range code %d", peripheral.ErrOutOfRange, cfg.Range.Code)
	}

	csr := s.reg(chip.SCG_FIRCCSR)
	unlock(csr)
	cfgReg := s.reg(chip.SCG_FIRCCFG)
	cfgReg.Modify(func(v uint32) uint32 {
		return s.opts.FIRCRange.Put(v, cfg.Range.Code)
	})
	csr.Modify(func(v uint32) uint32 {
		v |= chip.SCG_FIRCCSR_FIRCEN
		v = chip.Flag(v, chip.SCG_FIRCCSR_FIRCSTEN, cfg.StopEnabled)
		v = chip.Flag(v, chip.SCG_FIRCCSR_FIRC_SCLK_PERIPH_EN, cfg.SCLKPeriph)
		return chip.Flag(v, chip.SCG_FIRCCSR_FIRC_FCLK_PERIPH_EN, cfg.FCLKPeriph)
	})
	lock(csr)
	return s.waitValid(FIRC, csr)
}

func (s *SCG) DisableFIRC() error {
	if s.busy(FIRC) {
		return fmt.Errorf("%w: FIRC is in use", peripheral.ErrBusy)
	}
	csr := s.reg(chip.SCG_FIRCCSR)
	unlock(csr)
	csr.ClearBits(chip.SCG_FIRCCSR_FIRCEN | chip.SCG_FIRCCSR_FIRCSTEN |
		chip.SCG_FIRCCSR_FIRC_SCLK_PERIPH_EN | chip.SCG_FIRCCSR_FIRC_FCLK_PERIPH_EN)
	lock(csr)
	return nil
}

// FIRCRangeCode reads back the currently programmed range code.
func (s *SCG) FIRCRangeCode() uint32 {
	return s.opts.FIRCRange.Get(s.reg(chip.SCG_FIRCCFG).Get())
}

// ReadFIRC returns the FIRC settings currently programmed. Only the code of
// the range is known to the hardware.
func (s *SCG) ReadFIRC() FIRCConfig {
	v := s.reg(chip.SCG_FIRCCSR).Get()
	return FIRCConfig{
		Range:       FIRCRange{Code: s.FIRCRangeCode()},
		StopEnabled: v&chip.SCG_FIRCCSR_FIRCSTEN != 0,
		SCLKPeriph:  v&chip.SCG_FIRCCSR_FIRC_SCLK_PERIPH_EN != 0,
		FCLKPeriph:  v&chip.SCG_FIRCCSR_FIRC_FCLK_PERIPH_EN != 0,
	}
}
