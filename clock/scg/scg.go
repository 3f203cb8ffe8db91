// Package scg drives the System Clock Generator: the SOSC, SIRC and FIRC
// oscillators, the auxiliary and system PLLs, and the main clock source
// selector.
//
// Every operation owns its hardware handshake for its own duration and none
// of them are safe for concurrent use. Callers serialize clock-tree
// reconfiguration themselves.
package scg

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// Source identifies a clock source by its main clock select code.
type Source uint8

const (
	SOSC Source = 1
	SIRC Source = 2
	FIRC Source = 3
	ROSC Source = 4
	APLL Source = 5
	SPLL Source = 6
	UPLL Source = 7
	Stop Source = 8
)

// TRO shares the last select code with Stop on parts that carry a trimmed
// ring oscillator.
const TRO = Stop

var sourceNames = map[Source]string{
	SOSC: "SOSC",
	SIRC: "SIRC",
	FIRC: "FIRC",
	ROSC: "ROSC",
	APLL: "APLL",
	SPLL: "SPLL",
	UPLL: "UPLL",
	Stop: "Stop",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", uint8(s))
}

// ParseSource converts a source name, case-insensitively, into a Source.
func ParseSource(name string) (Source, error) {
	if strings.EqualFold(name, "TRO") {
		return TRO, nil
	}
	for src, n := range sourceNames {
		if strings.EqualFold(n, name) {
			return src, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown clock source %q", peripheral.ErrInvalidConfig, name)
}

// IsPLL reports whether the source is one of the phase-locked loops.
func (s Source) IsPLL() bool {
	return s == APLL || s == SPLL || s == UPLL
}

// Options carries the per-variant details of the SCG block.
type Options struct {
	// FIRCRange is the FIRCCFG field selecting the FIRC output range.
	FIRCRange chip.Field
	// LDOVoutOK makes SOSC and PLL enables wait for the internal LDO to
	// report a stable output before continuing.
	LDOVoutOK bool
	// MainSources lists the sources the variant accepts as the main clock.
	MainSources []Source
	// PLLs lists the PLL banks the variant implements. Banks left out are
	// never accessed.
	PLLs   []PLL
	Poller chip.Poller
}

// SCG is an owned handle to one System Clock Generator instance.
type SCG struct {
	bus  chip.Bus
	base uintptr
	opts Options
}

func New(bus chip.Bus, base uintptr, opts Options) *SCG {
	if opts.FIRCRange.Width == 0 {
		opts.FIRCRange = chip.Field{Pos: 0, Width: 1}
	}
	if len(opts.MainSources) == 0 {
		opts.MainSources = []Source{SOSC, SIRC, FIRC, ROSC}
	}
	if len(opts.PLLs) == 0 {
		opts.PLLs = []PLL{PLL0, PLL1}
	}
	return &SCG{bus: bus, base: base, opts: opts}
}

func (s *SCG) reg(offset uintptr) chip.Register {
	return chip.NewRegister(s.bus, s.base+offset)
}

// Selectable reports whether the variant accepts src as the main clock.
func (s *SCG) Selectable(src Source) bool {
	return slices.Contains(s.opts.MainSources, src)
}

// csr returns the control/status register of a source.
func (s *SCG) csr(src Source) (chip.Register, bool) {
	switch src {
	case SOSC:
		return s.reg(chip.SCG_SOSCCSR), true
	case SIRC:
		return s.reg(chip.SCG_SIRCCSR), true
	case FIRC:
		return s.reg(chip.SCG_FIRCCSR), true
	case ROSC:
		return s.reg(chip.SCG_ROSCCSR), true
	case APLL, SPLL:
		p, _ := PLLFor(src)
		if !s.HasPLL(p) {
			return chip.Register{}, false
		}
		return s.reg(p.bank() + chip.SCG_PLLCSR), true
	case UPLL:
		return s.reg(chip.SCG_UPLLCSR), true
	}
	return chip.Register{}, false
}

// Valid reports whether src is running without a fault: VLD set for
// oscillators, LOCK set for PLLs, and ERR clear in both cases.
func (s *SCG) Valid(src Source) bool {
	csr, ok := s.csr(src)
	if !ok {
		return false
	}
	v := csr.Get()
	ready := uint32(chip.SCG_OSCCSR_VLD)
	if src.IsPLL() {
		ready = chip.SCG_PLLCSR_LOCK
	}
	return v&ready != 0 && v&chip.SCG_OSCCSR_ERR == 0
}

// Selected reports whether the hardware marks src as currently feeding the
// main clock.
func (s *SCG) Selected(src Source) bool {
	csr, ok := s.csr(src)
	return ok && csr.HasBits(chip.SCG_OSCCSR_SEL)
}

// busy reports whether src feeds the main clock or a powered PLL.
func (s *SCG) busy(src Source) bool {
	if s.Selected(src) {
		return true
	}
	code, ok := pllInputCodes[src]
	if !ok {
		return false
	}
	for _, p := range s.opts.PLLs {
		bank := p.bank()
		if !s.reg(bank+chip.SCG_PLLCSR).HasBits(chip.SCG_PLLCSR_PWREN) {
			continue
		}
		if chip.SCG_PLLCTRL_SOURCE.Get(s.reg(bank+chip.SCG_PLLCTRL).Get()) == code {
			return true
		}
	}
	return false
}

// unlock clears LK so the control fields of csr accept writes.
func unlock(csr chip.Register) {
	csr.ClearBits(chip.SCG_OSCCSR_LK)
}

func lock(csr chip.Register) {
	csr.SetBits(chip.SCG_OSCCSR_LK)
}

// waitValid waits for VLD and then inspects ERR.
func (s *SCG) waitValid(src Source, csr chip.Register) error {
	if err := s.opts.Poller.Set(csr, chip.SCG_OSCCSR_VLD); err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	if csr.HasBits(chip.SCG_OSCCSR_ERR) {
		return fmt.Errorf("%w: %s reported an error", peripheral.ErrHardware, src)
	}
	return nil
}

// enableLDO switches on the SCG's internal regulator, which supplies SOSC and
// the PLLs.
func (s *SCG) enableLDO() error {
	ldo := s.reg(chip.SCG_LDOCSR)
	ldo.SetBits(chip.SCG_LDOCSR_LDOEN)
	if s.opts.LDOVoutOK {
		if err := s.opts.Poller.Set(ldo, chip.SCG_LDOCSR_VOUT_OK); err != nil {
			return fmt.Errorf("LDO: %w", err)
		}
	}
	return nil
}
