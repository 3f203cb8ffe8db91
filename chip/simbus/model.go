package simbus

import "omibyte.io/mcxclk/chip"

// Model reproduces the externally visible behaviour of the SCG, SPC and
// clock divider hardware on top of a Bus: enabling an oscillator makes it
// valid, powering a PLL makes it lock, a main clock request is echoed once the
// requested source is usable, and voltage or divider changes raise their busy
// or unstable flags for a few reads.
type Model struct {
	bus *Bus
	scg uintptr
	spc uintptr

	// StallSwitch keeps the clock status from following RCCR.
	StallSwitch bool
	// BusyReads is the number of SC reads that still observe BUSY after an
	// ACTIVE_CFG write.
	BusyReads int
	// UnstableReads is the number of divider reads that still observe
	// UNSTAB after the divider was started.
	UnstableReads int

	busyLeft     int
	unstableLeft map[uintptr]int
}

// Install attaches a hardware model for the SCG block at scg and the SPC
// block at spc, and loads their reset values.
func Install(b *Bus, scg, spc uintptr) *Model {
	m := &Model{
		bus:           b,
		scg:           scg,
		spc:           spc,
		BusyReads:     1,
		UnstableReads: 1,
		unstableLeft:  map[uintptr]int{},
	}

	b.OnStore(scg+chip.SCG_SOSCCSR, m.oscillator(chip.SCG_SOSCCSR_SOSCEN, false))
	b.OnStore(scg+chip.SCG_SIRCCSR, m.oscillator(0, true))
	b.OnStore(scg+chip.SCG_FIRCCSR, m.oscillator(chip.SCG_FIRCCSR_FIRCEN, false))
	b.OnStore(scg+chip.SCG_LDOCSR, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		return chip.Flag(value, chip.SCG_LDOCSR_VOUT_OK, value&chip.SCG_LDOCSR_LDOEN != 0)
	})
	for _, bank := range []uintptr{chip.SCG_APLLBASE, chip.SCG_SPLLBASE} {
		base := scg + bank
		b.OnStore(base+chip.SCG_PLLCSR, m.pll)
		b.OnStore(base+chip.SCG_PLLNDIV, takeRequest(chip.SCG_PLLNDIV_NREQ))
		b.OnStore(base+chip.SCG_PLLMDIV, takeRequest(chip.SCG_PLLMDIV_MREQ))
		b.OnStore(base+chip.SCG_PLLPDIV, takeRequest(chip.SCG_PLLPDIV_PREQ))
	}
	b.OnStore(scg+chip.SCG_RCCR, m.request)

	b.OnStore(spc+chip.SPC_ACTIVE_CFG, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		b.poke(m.spc+chip.SPC_SC, b.peek(m.spc+chip.SPC_SC)|chip.SPC_SC_BUSY)
		m.busyLeft = m.BusyReads
		return value
	})
	b.OnLoad(spc+chip.SPC_SC, func(b *Bus, addr uintptr, current uint32) uint32 {
		if current&chip.SPC_SC_BUSY == 0 {
			return current
		}
		if m.busyLeft > 0 {
			m.busyLeft--
			return current
		}
		return current &^ chip.SPC_SC_BUSY
	})
	b.OnStore(spc+chip.SPC_SRAMCTL, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		return chip.Flag(value, chip.SPC_SRAMCTL_ACK, value&chip.SPC_SRAMCTL_REQ != 0)
	})

	m.Reset()
	return m
}

// Reset loads the power-on register values: FIRC running and selected, SIRC
// valid, core supply at mid voltage.
func (m *Model) Reset() {
	b := m.bus
	b.Poke(m.scg+chip.SCG_CSR, chip.SCG_CSR_SCS.Put(0, 3))
	b.Poke(m.scg+chip.SCG_RCCR, chip.SCG_RCCR_SCS.Put(0, 3))
	b.Poke(m.scg+chip.SCG_FIRCCSR, chip.SCG_FIRCCSR_FIRCEN|
		chip.SCG_FIRCCSR_FIRC_SCLK_PERIPH_EN|chip.SCG_FIRCCSR_FIRC_FCLK_PERIPH_EN|
		chip.SCG_OSCCSR_VLD|chip.SCG_OSCCSR_SEL)
	b.Poke(m.scg+chip.SCG_SIRCCSR, chip.SCG_SIRCCSR_SIRC_CLK_PERIPH_EN|chip.SCG_OSCCSR_VLD)
	b.Poke(m.scg+chip.SCG_SOSCCSR, 0)
	b.Poke(m.spc+chip.SPC_ACTIVE_CFG, chip.SPC_ACTIVE_CFG_CORELDO_VDD_LVL.Put(
		chip.SPC_ACTIVE_CFG_DCDC_VDD_LVL.Put(0, 1), 1)|chip.SPC_ACTIVE_CFG_CORELDO_VDD_DS)
	b.Poke(m.spc+chip.SPC_SRAMCTL, chip.SPC_SRAMCTL_VSM.Put(0, 1))
	b.Poke(m.spc+chip.SPC_SC, 0)
}

// Fail marks the oscillator or PLL whose control/status register lives at
// offset (relative to the SCG base) as faulted.
func (m *Model) Fail(offset uintptr) {
	addr := m.scg + offset
	m.bus.Poke(addr, m.bus.Peek(addr)|chip.SCG_OSCCSR_ERR)
}

// AddDivider models a clock divider register at addr.
func (m *Model) AddDivider(addr uintptr) {
	m.bus.OnStore(addr, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		value &^= chip.CLKDIV_UNSTAB
		if value&chip.CLKDIV_HALT == 0 {
			m.unstableLeft[addr] = m.UnstableReads
			value |= chip.CLKDIV_UNSTAB
		}
		return value
	})
	m.bus.OnLoad(addr, func(b *Bus, addr uintptr, current uint32) uint32 {
		if current&chip.CLKDIV_UNSTAB == 0 {
			return current
		}
		if m.unstableLeft[addr] > 0 {
			m.unstableLeft[addr]--
			return current
		}
		return current &^ chip.CLKDIV_UNSTAB
	})
}

// AddGateGroup models a write-1-to-set / write-1-to-clear register pair
// updating the status register at status.
func (m *Model) AddGateGroup(status, set, clear uintptr) {
	m.bus.OnStore(set, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		b.poke(status, b.peek(status)|value)
		return 0
	})
	m.bus.OnStore(clear, func(b *Bus, addr uintptr, old, value uint32) uint32 {
		b.poke(status, b.peek(status)&^value)
		return 0
	})
}

func (m *Model) oscillator(enable uint32, alwaysOn bool) StoreHook {
	const readOnly = chip.SCG_OSCCSR_VLD | chip.SCG_OSCCSR_SEL | chip.SCG_OSCCSR_ERR
	return func(b *Bus, addr uintptr, old, value uint32) uint32 {
		if old&chip.SCG_OSCCSR_LK != 0 {
			// Locked: only the lock bit itself accepts the write.
			value = old&^chip.SCG_OSCCSR_LK | value&chip.SCG_OSCCSR_LK
		}
		v := value&^readOnly | old&(chip.SCG_OSCCSR_SEL|chip.SCG_OSCCSR_ERR)
		if alwaysOn || v&enable != 0 {
			v |= chip.SCG_OSCCSR_VLD
		}
		return v
	}
}

func (m *Model) pll(b *Bus, addr uintptr, old, value uint32) uint32 {
	const sticky = chip.SCG_PLLCSR_SEL | chip.SCG_PLLCSR_ERR | chip.SCG_PLLCSR_LOCK_FAIL
	v := value&^(sticky|chip.SCG_PLLCSR_LOCK) | old&sticky
	if v&(chip.SCG_PLLCSR_PWREN|chip.SCG_PLLCSR_CLKEN) == chip.SCG_PLLCSR_PWREN|chip.SCG_PLLCSR_CLKEN {
		v |= chip.SCG_PLLCSR_LOCK
	}
	return v
}

func takeRequest(req uint32) StoreHook {
	return func(b *Bus, addr uintptr, old, value uint32) uint32 {
		return value &^ req
	}
}

type sourceStatus struct {
	offset uintptr
	ready  uint32
}

// sources maps main clock source codes to the register holding the source's
// SEL bit and the bit that must be set for the source to be usable.
var sources = map[uint32]sourceStatus{
	1: {chip.SCG_SOSCCSR, chip.SCG_OSCCSR_VLD},
	2: {chip.SCG_SIRCCSR, chip.SCG_OSCCSR_VLD},
	3: {chip.SCG_FIRCCSR, chip.SCG_OSCCSR_VLD},
	4: {chip.SCG_ROSCCSR, chip.SCG_OSCCSR_VLD},
	5: {chip.SCG_APLLBASE + chip.SCG_PLLCSR, chip.SCG_PLLCSR_LOCK},
	6: {chip.SCG_SPLLBASE + chip.SCG_PLLCSR, chip.SCG_PLLCSR_LOCK},
	7: {chip.SCG_UPLLCSR, chip.SCG_PLLCSR_LOCK},
}

func (m *Model) request(b *Bus, addr uintptr, old, value uint32) uint32 {
	if m.StallSwitch {
		return value
	}
	code := chip.SCG_RCCR_SCS.Get(value)
	target, ok := sources[code]
	if !ok || b.peek(m.scg+target.offset)&target.ready == 0 {
		// The hardware refuses to switch to a source that is not running.
		return value
	}
	for _, s := range sources {
		a := m.scg + s.offset
		b.poke(a, b.peek(a)&^chip.SCG_OSCCSR_SEL)
	}
	a := m.scg + target.offset
	b.poke(a, b.peek(a)|chip.SCG_OSCCSR_SEL)
	b.poke(m.scg+chip.SCG_CSR, chip.SCG_CSR_SCS.Put(b.peek(m.scg+chip.SCG_CSR), code))
	return value
}
