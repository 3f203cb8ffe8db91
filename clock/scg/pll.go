package scg

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// PLL selects one of the two general purpose PLLs.
type PLL uint8

const (
	PLL0 PLL = iota // APLL
	PLL1            // SPLL
)

func (p PLL) String() string {
	return p.Source().String()
}

// Source returns the main clock source the PLL output appears as.
func (p PLL) Source() Source {
	if p == PLL1 {
		return SPLL
	}
	return APLL
}

func (p PLL) bank() uintptr {
	if p == PLL1 {
		return chip.SCG_SPLLBASE
	}
	return chip.SCG_APLLBASE
}

// PLLFor returns the PLL that produces src.
func PLLFor(src Source) (PLL, bool) {
	switch src {
	case APLL:
		return PLL0, true
	case SPLL:
		return PLL1, true
	}
	return 0, false
}

// Reference clock codes of the PLL SOURCE field.
var pllInputCodes = map[Source]uint32{
	SOSC: 0,
	FIRC: 1,
	ROSC: 2,
	SIRC: 3,
}

func pllInputFor(code uint32) Source {
	for src, c := range pllInputCodes {
		if c == code {
			return src
		}
	}
	return 0
}

// Divider limits of the PLL.
const (
	MaxPreDiv  = 0xFF
	MaxMult    = 0xFFFF
	MaxPostDiv = 0x1E
)

// PLLConfig holds the dividers of a PLL. A zero N or P means the pre or
// post divider is bypassed.
type PLLConfig struct {
	Input Source
	N     uint32
	M     uint32
	P     uint32
	// BypassPostDiv2 skips the fixed divide-by-two after P.
	BypassPostDiv2 bool
}

// PLLParams are the values derived from a PLLConfig for a given input
// frequency.
type PLLParams struct {
	PreDivided uint32
	CCO        uint32
	Output     uint32
	SELP       uint32
	SELI       uint32
	SELR       uint32
	LockTime   uint32
}

// SELP returns the proportional bandwidth selector for multiplier m.
func SELP(m uint32) uint32 {
	v := m/4 + 1
	if v > 31 {
		return 31
	}
	return v
}

// SELI returns the integral bandwidth selector for multiplier m.
func SELI(m uint32) uint32 {
	var v uint32
	switch {
	case m >= 8000:
		v = 1
	case m >= 122:
		v = 8000 / m
	case m >= 1:
		v = 2*(m/4) + 3
	default:
		v = 1
	}
	if v > 63 {
		return 63
	}
	return v
}

// Validate checks the divider values without regard to the input frequency.
func (c PLLConfig) Validate() error {
	var errs []error
	if _, ok := pllInputCodes[c.Input]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s cannot feed a PLL", peripheral.ErrInvalidConfig, c.Input))
	}
	if c.M == 0 {
		errs = append(errs, fmt.Errorf("%w: PLL multiplier must be nonzero", peripheral.ErrInvalidConfig))
	}
	if c.M > MaxMult {
		errs = append(errs, fmt.Errorf("%w: PLL multiplier %d", peripheral.ErrOutOfRange, c.M))
	}
	if c.N > MaxPreDiv {
		errs = append(errs, fmt.Errorf("%w: PLL pre-divider %d", peripheral.ErrOutOfRange, c.N))
	}
	if c.P > MaxPostDiv {
		errs = append(errs, fmt.Errorf("%w: PLL post-divider %d", peripheral.ErrOutOfRange, c.P))
	}
	return errors.Join(errs...)
}

// Compute validates the configuration and derives the PLL frequencies and
// bandwidth selectors for an input running at inputHz.
func (c PLLConfig) Compute(inputHz uint32) (PLLParams, error) {
	if err := c.Validate(); err != nil {
		return PLLParams{}, err
	}
	if inputHz == 0 {
		return PLLParams{}, fmt.Errorf("%w: PLL input frequency is zero", peripheral.ErrInvalidConfig)
	}

	// CCO and output divide once after the multiply; only PreDivided, used
	// for the lock budget, truncates.
	in, n, p := uint64(inputHz), uint64(1), uint64(1)
	if c.N != 0 {
		n = uint64(c.N)
	}
	if c.P != 0 {
		p = uint64(c.P)
		if !c.BypassPostDiv2 {
			p *= 2
		}
	}
	pre := in / n
	cco := in * uint64(c.M) / n
	out := in * uint64(c.M) / (n * p)
	if cco > math.MaxUint32 {
		return PLLParams{}, fmt.Errorf("%w: PLL CCO frequency %d Hz", peripheral.ErrOutOfRange, cco)
	}

	lockTime := pre/2000 + 300
	if limit := uint64(chip.SCG_PLLLOCK_CNFG_LOCK_TIME.Max()); lockTime > limit {
		lockTime = limit
	}
	return PLLParams{
		PreDivided: uint32(pre),
		CCO:        uint32(cco),
		Output:     uint32(out),
		SELP:       SELP(c.M),
		SELI:       SELI(c.M),
		SELR:       0,
		LockTime:   uint32(lockTime),
	}, nil
}

// EnablePLL programs p from cfg with its reference running at inputHz and
// waits for lock.
func (s *SCG) EnablePLL(p PLL, cfg PLLConfig, inputHz uint32, stopEnabled bool) (PLLParams, error) {
	if !s.HasPLL(p) {
		return PLLParams{}, fmt.Errorf("%w: no %s on this variant", peripheral.ErrUnsupported, p)
	}
	params, err := cfg.Compute(inputHz)
	if err != nil {
		return PLLParams{}, err
	}
	if err := s.enableLDO(); err != nil {
		return PLLParams{}, err
	}

	bank := p.bank()
	csr := s.reg(bank + chip.SCG_PLLCSR)
	csr.ClearBits(chip.SCG_PLLCSR_PWREN | chip.SCG_PLLCSR_CLKEN)

	s.reg(bank + chip.SCG_PLLCTRL).Modify(func(v uint32) uint32 {
		v = chip.SCG_PLLCTRL_SOURCE.Put(v, pllInputCodes[cfg.Input])
		v = chip.SCG_PLLCTRL_SELI.Put(v, params.SELI)
		v = chip.SCG_PLLCTRL_SELP.Put(v, params.SELP)
		v = chip.SCG_PLLCTRL_SELR.Put(v, params.SELR)
		v = chip.Flag(v, chip.SCG_PLLCTRL_BYPASSPREDIV, cfg.N == 0)
		v = chip.Flag(v, chip.SCG_PLLCTRL_BYPASSPOSTDIV, cfg.P == 0)
		return chip.Flag(v, chip.SCG_PLLCTRL_BYPASSPOSTDIV2, cfg.BypassPostDiv2)
	})

	if cfg.N != 0 {
		s.reg(bank + chip.SCG_PLLNDIV).Set(chip.SCG_PLLNDIV_NDIV.Put(0, cfg.N) | chip.SCG_PLLNDIV_NREQ)
	}
	s.reg(bank + chip.SCG_PLLMDIV).Set(chip.SCG_PLLMDIV_MDIV.Put(0, cfg.M) | chip.SCG_PLLMDIV_MREQ)
	if cfg.P != 0 {
		s.reg(bank + chip.SCG_PLLPDIV).Set(chip.SCG_PLLPDIV_PDIV.Put(0, cfg.P) | chip.SCG_PLLPDIV_PREQ)
	}

	csr.Modify(func(v uint32) uint32 {
		v |= chip.SCG_PLLCSR_PWREN | chip.SCG_PLLCSR_CLKEN
		return chip.Flag(v, chip.SCG_PLLCSR_STEN, stopEnabled)
	})
	s.reg(bank + chip.SCG_PLLLOCK_CNFG).Set(chip.SCG_PLLLOCK_CNFG_LOCK_TIME.Put(0, params.LockTime))

	if err := s.opts.Poller.Set(csr, chip.SCG_PLLCSR_LOCK); err != nil {
		return params, fmt.Errorf("%s: %w", p, err)
	}
	if csr.HasBits(chip.SCG_PLLCSR_ERR) {
		return params, fmt.Errorf("%w: %s reported an error", peripheral.ErrHardware, p)
	}
	return params, nil
}

// DisablePLL powers p down unless it drives the main clock.
func (s *SCG) DisablePLL(p PLL) error {
	if !s.HasPLL(p) {
		return fmt.Errorf("%w: no %s on this variant", peripheral.ErrUnsupported, p)
	}
	csr := s.reg(p.bank() + chip.SCG_PLLCSR)
	if csr.HasBits(chip.SCG_PLLCSR_SEL) {
		return fmt.Errorf("%w: %s is in use", peripheral.ErrBusy, p)
	}
	csr.ClearBits(chip.SCG_PLLCSR_PWREN | chip.SCG_PLLCSR_CLKEN | chip.SCG_PLLCSR_STEN)
	return nil
}

// HasPLL reports whether the variant implements p.
func (s *SCG) HasPLL(p PLL) bool {
	return slices.Contains(s.opts.PLLs, p)
}

// PLLEnabled reports whether p is powered.
func (s *SCG) PLLEnabled(p PLL) bool {
	return s.HasPLL(p) && s.reg(p.bank() + chip.SCG_PLLCSR).HasBits(chip.SCG_PLLCSR_PWREN)
}

// ReadPLL reconstructs the configuration currently programmed into p.
func (s *SCG) ReadPLL(p PLL) PLLConfig {
	bank := p.bank()
	ctrl := s.reg(bank + chip.SCG_PLLCTRL).Get()
	cfg := PLLConfig{
		Input:          pllInputFor(chip.SCG_PLLCTRL_SOURCE.Get(ctrl)),
		M:              chip.SCG_PLLMDIV_MDIV.Get(s.reg(bank + chip.SCG_PLLMDIV).Get()),
		BypassPostDiv2: ctrl&chip.SCG_PLLCTRL_BYPASSPOSTDIV2 != 0,
	}
	if ctrl&chip.SCG_PLLCTRL_BYPASSPREDIV == 0 {
		cfg.N = chip.SCG_PLLNDIV_NDIV.Get(s.reg(bank + chip.SCG_PLLNDIV).Get())
	}
	if ctrl&chip.SCG_PLLCTRL_BYPASSPOSTDIV == 0 {
		cfg.P = chip.SCG_PLLPDIV_PDIV.Get(s.reg(bank + chip.SCG_PLLPDIV).Get())
	}
	return cfg
}
