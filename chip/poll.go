package chip

import "omibyte.io/mcxclk/peripheral"

// DefaultPollLimit bounds every hardware wait when no explicit limit is
// configured.
const DefaultPollLimit = 1_000_000

// Poller repeatedly evaluates a hardware status condition. Waits are bounded
// by Limit checks and report peripheral.ErrTimeout when the condition never
// becomes true.
type Poller struct {
	Limit int
}

func (p Poller) limit() int {
	if p.Limit <= 0 {
		return DefaultPollLimit
	}
	return p.Limit
}

// Until spins until ready returns true.
func (p Poller) Until(ready func() bool) error {
	for i := p.limit(); i > 0; i-- {
		if ready() {
			return nil
		}
	}
	return peripheral.ErrTimeout
}

// Set waits for every bit in mask to read as one.
func (p Poller) Set(r Register, mask uint32) error {
	return p.Until(func() bool {
		return r.Get()&mask == mask
	})
}

// Clear waits for every bit in mask to read as zero.
func (p Poller) Clear(r Register, mask uint32) error {
	return p.Until(func() bool {
		return r.Get()&mask == 0
	})
}
