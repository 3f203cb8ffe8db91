package scg

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

// Current returns the source the hardware reports as driving the main clock.
func (s *SCG) Current() Source {
	return Source(chip.SCG_CSR_SCS.Get(s.reg(chip.SCG_CSR).Get()))
}

// Switch moves the main clock to src and waits until the status register
// echoes the new selection. The source must already be running; only its
// hardware valid status is consulted.
func (s *SCG) Switch(src Source) error {
	if !s.Selectable(src) {
		return fmt.Errorf("%w: %s cannot drive the main clock", peripheral.ErrUnsupported, src)
	}
	if s.Current() == src {
		return nil
	}
	if !s.Valid(src) {
		return fmt.Errorf("%w: %s is not running", peripheral.ErrInvalidConfig, src)
	}

	s.reg(chip.SCG_RCCR).Modify(func(v uint32) uint32 {
		return chip.SCG_RCCR_SCS.Put(v, uint32(src))
	})
	err := s.opts.Poller.Until(func() bool {
		return s.Current() == src
	})
	if err != nil {
		return fmt.Errorf("switch to %s: %w", src, err)
	}
	return nil
}
