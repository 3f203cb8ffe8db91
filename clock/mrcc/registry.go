// Package mrcc implements the peripheral clock gate registry: clock enables,
// resets, clock source multiplexers and dividers described by a per-chip
// table rather than per-peripheral code.
package mrcc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// GroupLayout locates a family of register groups. Group n sits at
// Status/Set/Clear + n*Stride relative to the block base.
type GroupLayout struct {
	Status uintptr `yaml:"status"`
	Set    uintptr `yaml:"set"`
	Clear  uintptr `yaml:"clear"`
	Stride uintptr `yaml:"stride"`
}

// Registers returns the status, set and clear offsets of group.
func (l GroupLayout) Registers(group uint) (status, set, clear uintptr) {
	return l.status(group), l.set(group), l.clear(group)
}

func (l GroupLayout) status(group uint) uintptr {
	return l.Status + uintptr(group)*l.Stride
}

func (l GroupLayout) set(group uint) uintptr {
	return l.Set + uintptr(group)*l.Stride
}

func (l GroupLayout) clear(group uint) uintptr {
	return l.Clear + uintptr(group)*l.Stride
}

// Layout describes the gate and reset registers of a chip variant.
type Layout struct {
	Clock GroupLayout `yaml:"clock"`
	// Reset is nil on variants without peripheral reset control.
	Reset *GroupLayout `yaml:"reset"`
	// ResetActiveLow is set when writing the Set register releases the reset
	// rather than asserting it.
	ResetActiveLow bool `yaml:"resetActiveLow"`
}

// Gate is one entry of the gate table.
type Gate struct {
	Name  string `yaml:"name"`
	Group uint   `yaml:"group"`
	Bit   uint8  `yaml:"bit"`
	// Reset is set when the peripheral has a reset control bit at the same
	// group and bit position.
	Reset bool `yaml:"reset"`
	// Divider and Mux are block offsets of the peripheral's clock divider
	// and clock source select registers, zero when absent.
	Divider uintptr `yaml:"divider"`
	Mux     uintptr `yaml:"mux"`
}

func (g Gate) mask() uint32 {
	return chip.Bit(g.Bit)
}

// Registry drives the gates of one clock control block.
type Registry struct {
	bus    chip.Bus
	base   uintptr
	layout Layout
	gates  map[string]Gate
	poller chip.Poller
}

// New builds a registry over the table gates for the block at base.
func New(bus chip.Bus, base uintptr, layout Layout, gates []Gate, poller chip.Poller) (*Registry, error) {
	r := &Registry{
		bus:    bus,
		base:   base,
		layout: layout,
		gates:  make(map[string]Gate, len(gates)),
		poller: poller,
	}
	var errs []error
	for _, g := range gates {
		key := strings.ToUpper(g.Name)
		if len(key) == 0 {
			errs = append(errs, fmt.Errorf("%w: gate without a name", peripheral.ErrInvalidConfig))
			continue
		}
		if _, ok := r.gates[key]; ok {
			errs = append(errs, fmt.Errorf("%w: duplicate gate %s", peripheral.ErrInvalidConfig, g.Name))
		}
		if g.Bit > 31 {
			errs = append(errs, fmt.Errorf("%w: gate %s bit %d", peripheral.ErrInvalidConfig, g.Name, g.Bit))
		}
		if g.Reset && layout.Reset == nil {
			errs = append(errs, fmt.Errorf("%w: gate %s has a reset but the block has none", peripheral.ErrInvalidConfig, g.Name))
		}
		r.gates[key] = g
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) reg(offset uintptr) chip.Register {
	return chip.NewRegister(r.bus, r.base+offset)
}

// Lookup returns the table entry for name, ignoring case.
func (r *Registry) Lookup(name string) (Gate, error) {
	g, ok := r.gates[strings.ToUpper(name)]
	if !ok {
		return Gate{}, fmt.Errorf("%w: %s", peripheral.ErrUnknownPeripheral, name)
	}
	return g, nil
}

// Names returns the sorted gate names.
func (r *Registry) Names() []string {
	names := maps.Keys(r.gates)
	slices.Sort(names)
	return names
}

// Enable ungates the peripheral clock. The set register is write-1-to-set,
// so repeated calls are harmless and concurrent calls for other peripherals
// cannot race.
func (r *Registry) Enable(name string) error {
	g, err := r.Lookup(name)
	if err != nil {
		return err
	}
	r.reg(r.layout.Clock.set(g.Group)).Set(g.mask())
	return nil
}

func (r *Registry) Disable(name string) error {
	g, err := r.Lookup(name)
	if err != nil {
		return err
	}
	r.reg(r.layout.Clock.clear(g.Group)).Set(g.mask())
	return nil
}

func (r *Registry) Enabled(name string) (bool, error) {
	g, err := r.Lookup(name)
	if err != nil {
		return false, err
	}
	return r.reg(r.layout.Clock.status(g.Group)).HasBits(g.mask()), nil
}

// Reset pulses the peripheral's reset line.
func (r *Registry) Reset(name string) error {
	g, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if !g.Reset {
		return fmt.Errorf("%w: %s has no reset control", peripheral.ErrUnsupported, g.Name)
	}
	rst := r.layout.Reset
	assert, release := rst.set(g.Group), rst.clear(g.Group)
	if r.layout.ResetActiveLow {
		assert, release = release, assert
	}
	r.reg(assert).Set(g.mask())
	r.reg(release).Set(g.mask())
	return nil
}

// Divider returns the clock divider of the peripheral.
func (r *Registry) Divider(name string) (Divider, error) {
	g, err := r.Lookup(name)
	if err != nil {
		return Divider{}, err
	}
	if g.Divider == 0 {
		return Divider{}, fmt.Errorf("%w: %s has no clock divider", peripheral.ErrUnsupported, g.Name)
	}
	return NewDivider(r.bus, r.base+g.Divider, r.poller), nil
}

// SetDivider runs the peripheral's divider at div (dividing by div+1).
func (r *Registry) SetDivider(name string, div uint32) error {
	d, err := r.Divider(name)
	if err != nil {
		return err
	}
	return d.Run(div)
}

// HaltDivider stops the peripheral's divided clock.
func (r *Registry) HaltDivider(name string) error {
	d, err := r.Divider(name)
	if err != nil {
		return err
	}
	d.Halt()
	return nil
}

// SelectSource writes the peripheral's clock source multiplexer.
func (r *Registry) SelectSource(name string, sel uint32) error {
	g, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if g.Mux == 0 {
		return fmt.Errorf("%w: %s has no clock source select", peripheral.ErrUnsupported, g.Name)
	}
	if sel > chip.CLKSEL_SEL.Max() {
		return fmt.Errorf("%w: clock source %d", peripheral.ErrOutOfRange, sel)
	}
	r.reg(g.Mux).Set(chip.CLKSEL_SEL.Put(0, sel))
	return nil
}
