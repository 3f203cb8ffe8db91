package spc

import (
	"errors"
	"fmt"
	"strings"

	"omibyte.io/mcxclk/peripheral"
)

// RunMode is an active-mode operating point. Higher modes raise the core
// voltage and allow faster clocks. The numeric value doubles as the voltage
// level code of the core LDO, the DCDC and the SRAM.
type RunMode uint8

const (
	UnderDrive RunMode = iota
	MidDrive
	StandardDrive
	OverDrive
)

var runModeNames = [...]string{"UnderDrive", "MidDrive", "StandardDrive", "OverDrive"}

func (m RunMode) String() string {
	if int(m) < len(runModeNames) {
		return runModeNames[m]
	}
	return fmt.Sprintf("RunMode(%d)", uint8(m))
}

// ParseRunMode accepts the mode names with or without the "Drive" suffix.
func ParseRunMode(name string) (RunMode, error) {
	for i, n := range runModeNames {
		if strings.EqualFold(n, name) || strings.EqualFold(strings.TrimSuffix(n, "Drive"), name) {
			return RunMode(i), nil
		}
	}
	if strings.EqualFold(name, "normal") || strings.EqualFold(name, "std") {
		return StandardDrive, nil
	}
	return 0, fmt.Errorf("%w: unknown run mode %q", peripheral.ErrInvalidConfig, name)
}

// Band maps system frequencies up to and including Max to a flash wait-state
// count.
type Band struct {
	Max        uint32 `yaml:"max"`
	WaitStates uint32 `yaml:"waitStates"`
}

// ModeLimits is the frequency ceiling and wait-state table of one RunMode.
type ModeLimits struct {
	Mode  RunMode
	Max   uint32
	Bands []Band
}

// Limits lists the supported run modes in ascending order.
type Limits []ModeLimits

// DefaultLimits are the operating points of the MCXN94x family.
var DefaultLimits = Limits{
	{
		Mode: MidDrive,
		Max:  50_000_000,
		Bands: []Band{
			{22_500_000, 0},
			{50_000_000, 1},
		},
	},
	{
		Mode: StandardDrive,
		Max:  100_000_000,
		Bands: []Band{
			{36_000_000, 0},
			{64_000_000, 1},
			{100_000_000, 2},
		},
	},
	{
		Mode: OverDrive,
		Max:  150_000_000,
		Bands: []Band{
			{36_000_000, 0},
			{64_000_000, 1},
			{100_000_000, 2},
			{150_000_000, 3},
		},
	},
}

// Validate checks that modes and bands are ordered and that every mode's
// bands cover its ceiling exactly.
func (l Limits) Validate() error {
	var errs []error
	for i, ml := range l {
		if ml.Mode == UnderDrive || ml.Mode > OverDrive {
			errs = append(errs, fmt.Errorf("%w: %s cannot be an operating point", peripheral.ErrInvalidConfig, ml.Mode))
		}
		if i > 0 && (ml.Mode <= l[i-1].Mode || ml.Max <= l[i-1].Max) {
			errs = append(errs, fmt.Errorf("%w: %s is not above %s", peripheral.ErrInvalidConfig, ml.Mode, l[i-1].Mode))
		}
		if len(ml.Bands) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s has no wait-state bands", peripheral.ErrInvalidConfig, ml.Mode))
			continue
		}
		for j := 1; j < len(ml.Bands); j++ {
			if ml.Bands[j].Max <= ml.Bands[j-1].Max {
				errs = append(errs, fmt.Errorf("%w: %s bands out of order", peripheral.ErrInvalidConfig, ml.Mode))
			}
		}
		if last := ml.Bands[len(ml.Bands)-1].Max; last != ml.Max {
			errs = append(errs, fmt.Errorf("%w: %s bands end at %d, ceiling is %d", peripheral.ErrInvalidConfig, ml.Mode, last, ml.Max))
		}
	}
	return errors.Join(errs...)
}

func (l Limits) Lookup(mode RunMode) (ModeLimits, bool) {
	for _, ml := range l {
		if ml.Mode == mode {
			return ml, true
		}
	}
	return ModeLimits{}, false
}

// Max returns the highest supported system frequency.
func (l Limits) Max() uint32 {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1].Max
}

// ModeFor returns the lowest run mode able to run the system clock at hz.
func (l Limits) ModeFor(hz uint32) (RunMode, error) {
	if hz == 0 {
		return 0, fmt.Errorf("%w: system frequency is zero", peripheral.ErrOutOfRange)
	}
	for _, ml := range l {
		if hz <= ml.Max {
			return ml.Mode, nil
		}
	}
	return 0, fmt.Errorf("%w: system frequency %d Hz above %d Hz", peripheral.ErrOutOfRange, hz, l.Max())
}

// WaitStates returns the flash wait states required at hz under mode.
func (l Limits) WaitStates(mode RunMode, hz uint32) (uint32, error) {
	ml, ok := l.Lookup(mode)
	if !ok {
		return 0, fmt.Errorf("%w: %s not supported", peripheral.ErrInvalidConfig, mode)
	}
	for _, band := range ml.Bands {
		if hz <= band.Max {
			return band.WaitStates, nil
		}
	}
	return 0, fmt.Errorf("%w: %d Hz above the %s ceiling", peripheral.ErrOutOfRange, hz, mode)
}
