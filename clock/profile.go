package clock

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"omibyte.io/mcxclk/clock/scg"
	"omibyte.io/mcxclk/peripheral"
	"omibyte.io/mcxclk/targets"
)

// Profile is the YAML form of a clock configuration:
//
//	chip: mcxn947
//	sosc: {mode: crystal, frequency: 24MHz}
//	firc: {range: 48MHz, fclk: true, sclk: true}
//	plls:
//	  apll: {input: sosc, m: 50, n: 2, p: 1}
//	main: apll
//	gates:
//	  - {name: LP_FLEXCOMM4, source: 2, divider: 0}
type Profile struct {
	Chip       string                 `yaml:"chip"`
	SOSC       *SOSCProfile           `yaml:"sosc"`
	SIRC       *SIRCProfile           `yaml:"sirc"`
	FIRC       *FIRCProfile           `yaml:"firc"`
	PLLs       map[string]*PLLProfile `yaml:"plls"`
	Main       string                 `yaml:"main"`
	AHBDivider uint32                 `yaml:"ahbDivider"`
	Clkout     *ClkoutProfile         `yaml:"clkout"`
	Gates      []GateProfile          `yaml:"gates"`
}

type SOSCProfile struct {
	Mode      string    `yaml:"mode"`
	Frequency Frequency `yaml:"frequency"`
	Stop      bool      `yaml:"stop"`
}

type SIRCProfile struct {
	Periph bool `yaml:"periph"`
	Stop   bool `yaml:"stop"`
}

type FIRCProfile struct {
	Range string `yaml:"range"`
	SCLK  bool   `yaml:"sclk"`
	FCLK  bool   `yaml:"fclk"`
	Stop  bool   `yaml:"stop"`
}

type PLLProfile struct {
	Input          string `yaml:"input"`
	N              uint32 `yaml:"n"`
	M              uint32 `yaml:"m"`
	P              uint32 `yaml:"p"`
	BypassPostDiv2 bool   `yaml:"bypassPostDiv2"`
	Stop           bool   `yaml:"stop"`
}

type ClkoutProfile struct {
	Source  string `yaml:"source"`
	Divider uint32 `yaml:"divider"`
}

// GateProfile configures one peripheral clock. Source and Divider are left
// untouched when absent.
type GateProfile struct {
	Name    string  `yaml:"name"`
	Source  *uint32 `yaml:"source"`
	Divider *uint32 `yaml:"divider"`
	Reset   bool    `yaml:"reset"`
	// Disabled gates the clock off instead of on.
	Disabled bool `yaml:"disabled"`
}

// LoadProfile decodes a profile. Unknown keys are rejected.
func LoadProfile(r io.Reader) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Profile{}, fmt.Errorf("%w: empty profile", peripheral.ErrInvalidConfig)
		}
		return Profile{}, fmt.Errorf("%w: %v", peripheral.ErrInvalidConfig, err)
	}
	return p, nil
}

// Target looks up the chip the profile is written for.
func (p Profile) Target() (targets.TargetInfo, error) {
	if len(p.Chip) == 0 {
		return targets.TargetInfo{}, fmt.Errorf("%w: profile names no chip", peripheral.ErrInvalidConfig)
	}
	return targets.All().Find(p.Chip)
}

// Config converts the profile into a clock configuration for target.
func (p Profile) Config(target targets.TargetInfo) (Config, error) {
	var c Config
	var errs []error

	if p.SOSC != nil {
		mode, err := parseSOSCMode(p.SOSC.Mode)
		if err != nil {
			errs = append(errs, err)
		}
		c.SOSC = &scg.SOSCConfig{Mode: mode, Frequency: uint32(p.SOSC.Frequency), StopEnabled: p.SOSC.Stop}
	}
	if p.SIRC != nil {
		c.SIRC = &scg.SIRCConfig{PeriphEnabled: p.SIRC.Periph, StopEnabled: p.SIRC.Stop}
	}
	if p.FIRC != nil {
		r := target.DefaultFIRCRange()
		if len(p.FIRC.Range) > 0 {
			var err error
			if r, err = target.FIRCRange(p.FIRC.Range); err != nil {
				errs = append(errs, err)
			}
		}
		c.FIRC = &scg.FIRCConfig{Range: r, StopEnabled: p.FIRC.Stop, SCLKPeriph: p.FIRC.SCLK, FCLKPeriph: p.FIRC.FCLK}
	}
	for name, pp := range p.PLLs {
		src, err := scg.ParseSource(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pll, ok := scg.PLLFor(src)
		if !ok || pp == nil {
			errs = append(errs, fmt.Errorf("%w: %q is not a configurable PLL", peripheral.ErrInvalidConfig, name))
			continue
		}
		input, err := scg.ParseSource(pp.Input)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s input: %w", pll, err))
			continue
		}
		setup := &PLLSetup{
			PLLConfig: scg.PLLConfig{
				Input:          input,
				N:              pp.N,
				M:              pp.M,
				P:              pp.P,
				BypassPostDiv2: pp.BypassPostDiv2,
			},
			StopEnabled: pp.Stop,
		}
		if pll == scg.PLL1 {
			c.SPLL = setup
		} else {
			c.APLL = setup
		}
	}

	main := p.Main
	if len(main) == 0 {
		main = "firc"
	}
	src, err := scg.ParseSource(main)
	if err != nil {
		errs = append(errs, err)
	}
	c.Main = src
	c.AHBDivider = p.AHBDivider
	if p.Clkout != nil {
		c.Clkout = &ClkoutConfig{Source: strings.ToLower(p.Clkout.Source), Divider: p.Clkout.Divider}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := c.Validate(target); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseSOSCMode(s string) (scg.SOSCMode, error) {
	switch strings.ToLower(s) {
	case "", "crystal", "xtal":
		return scg.CrystalOscillator, nil
	case "reference", "ref", "external":
		return scg.ReferenceClock, nil
	}
	return 0, fmt.Errorf("%w: unknown SOSC mode %q", peripheral.ErrInvalidConfig, s)
}

// ApplyGates configures the peripheral clocks listed in gates: the source
// and divider are programmed before the clock is enabled, and the
// peripheral is taken through reset once clocked.
func (e *Engine) ApplyGates(gates []GateProfile) error {
	r := e.gates
	for _, g := range gates {
		if g.Disabled {
			if err := r.Disable(g.Name); err != nil {
				return err
			}
			continue
		}
		if g.Source != nil {
			if err := r.SelectSource(g.Name, *g.Source); err != nil {
				return err
			}
		}
		if g.Divider != nil {
			if err := r.SetDivider(g.Name, *g.Divider); err != nil {
				return err
			}
		}
		if err := r.Enable(g.Name); err != nil {
			return err
		}
		if g.Reset {
			if err := r.Reset(g.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
