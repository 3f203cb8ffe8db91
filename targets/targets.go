package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/clock/mrcc"
	"omibyte.io/mcxclk/clock/scg"
	"omibyte.io/mcxclk/clock/spc"
	"omibyte.io/mcxclk/peripheral"
)

// SchemaMajor is the major version of the targets file format this package
// understands.
const SchemaMajor = "v1"

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var (
	ErrTargetNotFound = errors.New("target not found")
	ErrSchemaVersion  = errors.New("unsupported targets schema")
)

func All() Targets {
	return targets
}

type Targets []TargetInfo

// Blocks holds the base addresses of the register blocks a target uses.
type Blocks struct {
	SCG    uintptr `yaml:"scg"`
	SPC    uintptr `yaml:"spc"`
	FMU    uintptr `yaml:"fmu"`
	SYSCON uintptr `yaml:"syscon"`
	// Gates is the base of the block holding the peripheral gate table,
	// SYSCON or MRCC depending on the family.
	Gates uintptr `yaml:"gates"`
}

type RunModeInfo struct {
	Mode  string     `yaml:"mode"`
	Max   uint32     `yaml:"max"`
	Bands []spc.Band `yaml:"bands"`
}

// Clkout describes the CLKOUT pin clock selector and divider.
type Clkout struct {
	Select  uintptr           `yaml:"select"`
	Divider uintptr           `yaml:"divider"`
	Sources map[string]uint32 `yaml:"sources"`
}

type GateTable struct {
	Block   string      `yaml:"block"`
	Layout  mrcc.Layout `yaml:"layout"`
	Entries []mrcc.Gate `yaml:"entries"`
}

type TargetInfo struct {
	Series         string          `yaml:"series"`
	Chips          []string        `yaml:"chips"`
	Core           string          `yaml:"core"`
	Blocks         Blocks          `yaml:"blocks"`
	LDOVoutOK      bool            `yaml:"ldoVoutOk"`
	FIRCRangeField chip.Field      `yaml:"fircRangeField"`
	FIRC           []scg.FIRCRange `yaml:"firc"`
	DefaultFIRC    string          `yaml:"defaultFirc"`
	Sources        []string        `yaml:"mainSources"`
	PLLNames       []string        `yaml:"plls"`
	RunModes       []RunModeInfo   `yaml:"runModes"`
	AHBDivider     uintptr         `yaml:"ahbDivider"`
	Clkout         *Clkout         `yaml:"clkout"`
	Gates          GateTable       `yaml:"gates"`
}

// Limits converts the run mode table.
func (t TargetInfo) Limits() (spc.Limits, error) {
	limits := make(spc.Limits, 0, len(t.RunModes))
	for _, rm := range t.RunModes {
		mode, err := spc.ParseRunMode(rm.Mode)
		if err != nil {
			return nil, err
		}
		limits = append(limits, spc.ModeLimits{Mode: mode, Max: rm.Max, Bands: rm.Bands})
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return limits, nil
}

// MainSources returns the sources the target accepts as the main clock.
func (t TargetInfo) MainSources() ([]scg.Source, error) {
	sources := make([]scg.Source, 0, len(t.Sources))
	for _, name := range t.Sources {
		src, err := scg.ParseSource(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// PLLs returns the general purpose PLLs present on the target.
func (t TargetInfo) PLLs() ([]scg.PLL, error) {
	plls := make([]scg.PLL, 0, len(t.PLLNames))
	for _, name := range t.PLLNames {
		src, err := scg.ParseSource(name)
		if err != nil {
			return nil, err
		}
		p, ok := scg.PLLFor(src)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a configurable PLL", peripheral.ErrInvalidConfig, name)
		}
		plls = append(plls, p)
	}
	return plls, nil
}

// HasPLL reports whether the target carries p.
func (t TargetInfo) HasPLL(p scg.PLL) bool {
	plls, err := t.PLLs()
	return err == nil && slices.Contains(plls, p)
}

// FIRCRange looks up a FIRC range by name ("144MHz") or by frequency in Hz.
func (t TargetInfo) FIRCRange(name string) (scg.FIRCRange, error) {
	for _, r := range t.FIRC {
		if strings.EqualFold(r.Name, name) || fmt.Sprint(r.Frequency) == name {
			return r, nil
		}
	}
	return scg.FIRCRange{}, fmt.Errorf("%w: %s has no FIRC range %q", peripheral.ErrInvalidConfig, t.Series, name)
}

// FIRCRangeByFrequency returns the range running at hz.
func (t TargetInfo) FIRCRangeByFrequency(hz uint32) (scg.FIRCRange, error) {
	for _, r := range t.FIRC {
		if r.Frequency == hz {
			return r, nil
		}
	}
	return scg.FIRCRange{}, fmt.Errorf("%w: %s has no %d Hz FIRC range", peripheral.ErrInvalidConfig, t.Series, hz)
}

func (t TargetInfo) DefaultFIRCRange() scg.FIRCRange {
	r, err := t.FIRCRange(t.DefaultFIRC)
	if err != nil && len(t.FIRC) > 0 {
		return t.FIRC[0]
	}
	return r
}

// SCGOptions returns the SCG settings of the target.
func (t TargetInfo) SCGOptions(poller chip.Poller) (scg.Options, error) {
	sources, err := t.MainSources()
	if err != nil {
		return scg.Options{}, err
	}
	plls, err := t.PLLs()
	if err != nil {
		return scg.Options{}, err
	}
	return scg.Options{
		FIRCRange:   t.FIRCRangeField,
		LDOVoutOK:   t.LDOVoutOK,
		MainSources: sources,
		PLLs:        plls,
		Poller:      poller,
	}, nil
}

// Validate checks the internal consistency of the target description.
func (t TargetInfo) Validate() error {
	var errs []error
	if len(t.Series) == 0 || len(t.Chips) == 0 {
		errs = append(errs, fmt.Errorf("%w: target without series or chips", peripheral.ErrInvalidConfig))
	}
	if _, err := t.Limits(); err != nil {
		errs = append(errs, err)
	}
	if _, err := t.MainSources(); err != nil {
		errs = append(errs, err)
	}
	if _, err := t.PLLs(); err != nil {
		errs = append(errs, err)
	}
	if len(t.FIRC) == 0 {
		errs = append(errs, fmt.Errorf("%w: %s has no FIRC ranges", peripheral.ErrInvalidConfig, t.Series))
	}
	for _, r := range t.FIRC {
		if r.Code > t.FIRCRangeField.Max() {
			errs = append(errs, fmt.Errorf("%w: FIRC range %s code %d does not fit", peripheral.ErrInvalidConfig, r.Name, r.Code))
		}
	}
	if _, err := t.FIRCRange(t.DefaultFIRC); err != nil {
		errs = append(errs, err)
	}
	if _, err := mrcc.New(nil, 0, t.Gates.Layout, t.Gates.Entries, chip.Poller{}); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("target %s: %w", t.Series, err)
	}
	return nil
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: series %s", ErrTargetNotFound, name)
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: chip %s", ErrTargetNotFound, name)
}

// Find looks name up as a chip first and as a series second.
func (t Targets) Find(name string) (TargetInfo, error) {
	if target, err := t.FindByChip(name); err == nil {
		return target, nil
	}
	return t.FindBySeries(name)
}

// Chips returns every known chip name, sorted.
func (t Targets) Chips() []string {
	var chips []string
	for _, target := range t {
		chips = append(chips, target.Chips...)
	}
	slices.Sort(chips)
	return chips
}

// Parse decodes and validates a targets file.
func Parse(data []byte) (Targets, error) {
	var t struct {
		Schema   string       `yaml:"schema"`
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if !semver.IsValid(t.Schema) || semver.Major(t.Schema) != SchemaMajor {
		return nil, fmt.Errorf("%w: %q, want %s.x.x", ErrSchemaVersion, t.Schema, SchemaMajor)
	}
	var errs []error
	for _, target := range t.Elements {
		errs = append(errs, target.Validate())
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t.Elements, nil
}

func init() {
	var err error
	if targets, err = Parse(rawTargets); err != nil {
		panic(err)
	}
}
