package clock

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/clock/scg"
	"omibyte.io/mcxclk/clock/spc"
	"omibyte.io/mcxclk/peripheral"
	"omibyte.io/mcxclk/targets"
)

// PLLSetup configures one PLL.
type PLLSetup struct {
	scg.PLLConfig
	StopEnabled bool
}

// ClkoutConfig routes a clock to the CLKOUT pin.
type ClkoutConfig struct {
	Source  string
	Divider uint32
}

// Config is a complete clock tree: the oscillators and PLLs to run, the main
// clock source and the AHB divider deriving the system clock from it.
// Oscillators left nil are stopped when the configuration is applied. SIRC
// cannot be stopped and is left untouched when nil.
type Config struct {
	SOSC *scg.SOSCConfig
	SIRC *scg.SIRCConfig
	FIRC *scg.FIRCConfig
	APLL *PLLSetup
	SPLL *PLLSetup
	Main scg.Source
	// AHBDivider divides the main clock by AHBDivider+1.
	AHBDivider uint32
	Clkout     *ClkoutConfig
}

// DefaultConfig is the power-on clock tree of target: FIRC at its default
// range feeding the main clock, SIRC delivered to peripherals.
func DefaultConfig(target targets.TargetInfo) Config {
	return Config{
		SIRC: &scg.SIRCConfig{PeriphEnabled: true},
		FIRC: &scg.FIRCConfig{
			Range:      target.DefaultFIRCRange(),
			SCLKPeriph: true,
			FCLKPeriph: true,
		},
		Main: scg.FIRC,
	}
}

// PLL returns the setup of p, or nil.
func (c Config) PLL(p scg.PLL) *PLLSetup {
	if p == scg.PLL1 {
		return c.SPLL
	}
	return c.APLL
}

// Frequencies lists the clock rates of a clock tree. A zero value means the
// clock is not running.
type Frequencies struct {
	SOSC uint32
	SIRC uint32
	// SIRCPeriph is the 12 MHz clock delivered to peripherals.
	SIRCPeriph uint32
	Clk1M      uint32
	FIRC       uint32
	// FIRCFClk and FIRCSClk are the full-range and fixed FIRC clocks
	// delivered to peripherals.
	FIRCFClk   uint32
	FIRCSClk   uint32
	APLL       uint32
	SPLL       uint32
	Main       uint32
	System     uint32
	Mode       spc.RunMode
	WaitStates uint32
}

// Of returns the frequency of a main clock source.
func (f Frequencies) Of(src scg.Source) uint32 {
	switch src {
	case scg.SOSC:
		return f.SOSC
	case scg.SIRC:
		return f.SIRC
	case scg.FIRC:
		return f.FIRC
	case scg.APLL:
		return f.APLL
	case scg.SPLL:
		return f.SPLL
	}
	return 0
}

func (f *Frequencies) setPLL(p scg.PLL, hz uint32) {
	if p == scg.PLL1 {
		f.SPLL = hz
	} else {
		f.APLL = hz
	}
}

// Validate checks c against target without touching the hardware.
func (c Config) Validate(target targets.TargetInfo) error {
	_, err := c.Frequencies(target)
	return err
}

// Frequencies validates c and derives the frequency of every clock it
// produces.
func (c Config) Frequencies(target targets.TargetInfo) (Frequencies, error) {
	var f Frequencies
	var errs []error
	fail := func(err error) {
		errs = append(errs, err)
	}

	f.SIRC = scg.SIRCFrequency
	f.Clk1M = scg.SIRCFrequency / 12
	if c.SIRC != nil && c.SIRC.PeriphEnabled {
		f.SIRCPeriph = scg.SIRCFrequency
	}

	if c.SOSC != nil {
		if _, err := scg.SOSCRange(c.SOSC.Frequency); err != nil {
			fail(err)
		} else {
			f.SOSC = c.SOSC.Frequency
		}
	}

	if c.FIRC != nil {
		r, err := target.FIRCRangeByFrequency(c.FIRC.Range.Frequency)
		switch {
		case err != nil:
			fail(err)
		case r.Code != c.FIRC.Range.Code:
			fail(fmt.Errorf("%w: FIRC range %s has code %d", peripheral.ErrInvalidConfig, r.Name, r.Code))
		default:
			f.FIRC = r.Frequency
			if c.FIRC.FCLKPeriph {
				f.FIRCFClk = r.Frequency
			}
			if c.FIRC.SCLKPeriph {
				f.FIRCSClk = target.DefaultFIRCRange().Frequency
			}
		}
	}

	for _, p := range []scg.PLL{scg.PLL0, scg.PLL1} {
		setup := c.PLL(p)
		if setup == nil {
			continue
		}
		if !target.HasPLL(p) {
			fail(fmt.Errorf("%w: %s has no %s", peripheral.ErrUnsupported, target.Series, p))
			continue
		}
		input := f.Of(setup.Input)
		if input == 0 {
			fail(fmt.Errorf("%w: %s input %s is not configured", peripheral.ErrInvalidConfig, p, setup.Input))
			continue
		}
		params, err := setup.Compute(input)
		if err != nil {
			fail(fmt.Errorf("%s: %w", p, err))
			continue
		}
		f.setPLL(p, params.Output)
	}

	sources, err := target.MainSources()
	if err != nil {
		fail(err)
	}
	switch {
	case !slices.Contains(sources, c.Main):
		fail(fmt.Errorf("%w: %s cannot drive the main clock on %s", peripheral.ErrUnsupported, c.Main, target.Series))
	case c.Main == scg.FIRC && c.FIRC == nil:
		fail(fmt.Errorf("%w: FIRC selected without a FIRC range", peripheral.ErrInvalidConfig))
	case c.Main == scg.SOSC && c.SOSC == nil:
		fail(fmt.Errorf("%w: SOSC selected without a SOSC configuration", peripheral.ErrInvalidConfig))
	case c.Main.IsPLL() && c.Main != scg.UPLL:
		p, _ := scg.PLLFor(c.Main)
		if c.PLL(p) == nil {
			fail(fmt.Errorf("%w: %s selected without a PLL configuration", peripheral.ErrInvalidConfig, c.Main))
		}
	case c.Main != scg.SIRC && c.Main != scg.SOSC && c.Main != scg.FIRC:
		fail(fmt.Errorf("%w: %s is not managed by this engine", peripheral.ErrUnsupported, c.Main))
	}

	if c.AHBDivider != 0 && target.AHBDivider == 0 {
		fail(fmt.Errorf("%w: %s has no AHB divider", peripheral.ErrUnsupported, target.Series))
	} else if c.AHBDivider > chip.CLKDIV_DIV.Max() {
		fail(fmt.Errorf("%w: AHB divider %d", peripheral.ErrOutOfRange, c.AHBDivider))
	}
	if c.Clkout != nil {
		switch {
		case target.Clkout == nil:
			fail(fmt.Errorf("%w: %s has no CLKOUT", peripheral.ErrUnsupported, target.Series))
		case c.Clkout.Divider > chip.CLKDIV_DIV.Max():
			fail(fmt.Errorf("%w: CLKOUT divider %d", peripheral.ErrOutOfRange, c.Clkout.Divider))
		default:
			if _, ok := target.Clkout.Sources[c.Clkout.Source]; !ok {
				fail(fmt.Errorf("%w: unknown CLKOUT source %q", peripheral.ErrInvalidConfig, c.Clkout.Source))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Frequencies{}, err
	}

	f.Main = f.Of(c.Main)
	f.System = f.Main / (c.AHBDivider + 1)
	limits, err := target.Limits()
	if err != nil {
		return Frequencies{}, err
	}
	if f.Mode, err = limits.ModeFor(f.System); err != nil {
		return Frequencies{}, err
	}
	if f.WaitStates, err = limits.WaitStates(f.Mode, f.System); err != nil {
		return Frequencies{}, err
	}
	return f, nil
}
