package scg

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// SOSCMode selects what is attached to the EXTAL/XTAL pins.
type SOSCMode uint8

const (
	// ReferenceClock means an external square wave drives EXTAL directly.
	ReferenceClock SOSCMode = iota
	// CrystalOscillator means a crystal sits between EXTAL and XTAL and the
	// internal oscillator amplifier must drive it.
	CrystalOscillator
)

func (m SOSCMode) String() string {
	if m == CrystalOscillator {
		return "crystal"
	}
	return "reference"
}

// SOSCConfig describes the system oscillator.
type SOSCConfig struct {
	Mode        SOSCMode
	Frequency   uint32
	StopEnabled bool
}

type soscBand struct {
	low, high uint32
	code      uint32
}

// Frequency bands accepted by SOSCCFG.RANGE. The upper bound is exclusive.
var soscBands = []soscBand{
	{8_000_000, 20_000_000, 0},
	{20_000_000, 30_000_000, 1},
	{30_000_000, 50_000_000, 2},
	{50_000_000, 66_000_000, 3},
}

// SOSCRange returns the RANGE code for an oscillator running at hz.
func SOSCRange(hz uint32) (uint32, error) {
	for _, band := range soscBands {
		if hz >= band.low && hz < band.high {
			return band.code, nil
		}
	}
	return 0, fmt.Errorf("%w: SOSC frequency %d Hz outside 8-66 MHz", peripheral.ErrOutOfRange, hz)
}

// EnableSOSC powers the internal LDO, programs the oscillator and waits until
// the hardware reports it valid. The clock monitor is always armed.
func (s *SCG) EnableSOSC(cfg SOSCConfig) error {
	rng, err := SOSCRange(cfg.Frequency)
	if err != nil {
		return err
	}
	if err := s.enableLDO(); err != nil {
		return err
	}

	csr := s.reg(chip.SCG_SOSCCSR)
	unlock(csr)
	word := chip.SCG_SOSCCFG_RANGE.Put(0, rng)
	if cfg.Mode == CrystalOscillator {
		word |= chip.SCG_SOSCCFG_EREFS
	}
	s.reg(chip.SCG_SOSCCFG).Set(word)
	csr.Modify(func(v uint32) uint32 {
		v |= chip.SCG_SOSCCSR_SOSCEN | chip.SCG_SOSCCSR_SOSCCM
		return chip.Flag(v, chip.SCG_SOSCCSR_SOSCSTEN, cfg.StopEnabled)
	})
	lock(csr)
	return s.waitValid(SOSC, csr)
}

// DisableSOSC stops the system oscillator. It refuses with ErrBusy, without
// touching the hardware, while SOSC drives the main clock or a powered PLL.
func (s *SCG) DisableSOSC() error {
	if s.busy(SOSC) {
		return fmt.Errorf("%w: SOSC is in use", peripheral.ErrBusy)
	}
	csr := s.reg(chip.SCG_SOSCCSR)
	unlock(csr)
	csr.ClearBits(chip.SCG_SOSCCSR_SOSCEN | chip.SCG_SOSCCSR_SOSCSTEN |
		chip.SCG_SOSCCSR_SOSCCM | chip.SCG_SOSCCSR_SOSCCMRE)
	lock(csr)
	return nil
}
