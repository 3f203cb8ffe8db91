package mrcc

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// Divider is a clock divider register with the DIV/RESET/HALT/UNSTAB
// layout shared by SYSCON and MRCC.
type Divider struct {
	reg    chip.Register
	poller chip.Poller
}

func NewDivider(bus chip.Bus, addr uintptr, poller chip.Poller) Divider {
	return Divider{reg: chip.NewRegister(bus, addr), poller: poller}
}

func (d Divider) Address() uintptr {
	return d.reg.Address()
}

// Run programs div, releases HALT and RESET, and waits for the divider to
// become stable. The output clock is the input divided by div+1.
func (d Divider) Run(div uint32) error {
	if div > chip.CLKDIV_DIV.Max() {
		return fmt.Errorf("%w: divider %d above %d", peripheral.ErrOutOfRange, div, chip.CLKDIV_DIV.Max())
	}
	d.reg.Set(chip.CLKDIV_DIV.Put(0, div))
	if err := d.poller.Clear(d.reg, chip.CLKDIV_UNSTAB); err != nil {
		return fmt.Errorf("divider %#x: %w", d.reg.Address(), err)
	}
	return nil
}

// Halt stops the divider output.
func (d Divider) Halt() {
	d.reg.Set(chip.CLKDIV_HALT)
}

// Value returns the programmed divider and whether the output is halted.
func (d Divider) Value() (div uint32, halted bool) {
	v := d.reg.Get()
	return chip.CLKDIV_DIV.Get(v), v&chip.CLKDIV_HALT != 0
}

// Apply divides hz by the divider, or returns zero when halted.
func (d Divider) Apply(hz uint32) uint32 {
	div, halted := d.Value()
	if halted {
		return 0
	}
	return hz / (div + 1)
}
