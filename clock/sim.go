package clock

import (
	"fmt"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/chip/simbus"
	"omibyte.io/mcxclk/targets"
)

// Simulate returns a simulated bus holding the clock hardware of target in
// its power-on state, together with the hardware model driving it.
func Simulate(target targets.TargetInfo) (*simbus.Bus, *simbus.Model) {
	b := simbus.New()
	m := simbus.Install(b, target.Blocks.SCG, target.Blocks.SPC)
	b.Poke(target.Blocks.SCG+chip.SCG_FIRCCFG, target.FIRCRangeField.Put(0, target.DefaultFIRCRange().Code))

	if target.AHBDivider != 0 {
		m.AddDivider(target.Blocks.SYSCON + target.AHBDivider)
	}
	if c := target.Clkout; c != nil {
		m.AddDivider(target.Blocks.SYSCON + c.Divider)
	}

	base := target.Gates.Layout
	groups := map[uint]bool{}
	for _, g := range target.Gates.Entries {
		groups[g.Group] = true
		if g.Divider != 0 {
			m.AddDivider(target.Blocks.Gates + g.Divider)
		}
	}
	for group := range groups {
		status, set, clear := base.Clock.Registers(group)
		m.AddGateGroup(target.Blocks.Gates+status, target.Blocks.Gates+set, target.Blocks.Gates+clear)
		if base.Reset != nil {
			status, set, clear := base.Reset.Registers(group)
			m.AddGateGroup(target.Blocks.Gates+status, target.Blocks.Gates+set, target.Blocks.Gates+clear)
		}
	}
	return b, m
}

// RegisterNames names the clock registers of target for register traces.
func RegisterNames(target targets.TargetInfo) map[uintptr]string {
	names := map[uintptr]string{}
	add := func(base uintptr, block string, regs map[uintptr]string) {
		for off, name := range regs {
			names[base+off] = block + "." + name
		}
	}
	add(target.Blocks.SCG, "SCG", map[uintptr]string{
		chip.SCG_CSR:     "CSR",
		chip.SCG_RCCR:    "RCCR",
		chip.SCG_SOSCCSR: "SOSCCSR",
		chip.SCG_SOSCCFG: "SOSCCFG",
		chip.SCG_SIRCCSR: "SIRCCSR",
		chip.SCG_FIRCCSR: "FIRCCSR",
		chip.SCG_FIRCCFG: "FIRCCFG",
		chip.SCG_ROSCCSR: "ROSCCSR",
		chip.SCG_LDOCSR:  "LDOCSR",
		chip.SCG_UPLLCSR: "UPLLCSR",
	})
	for _, bank := range []struct {
		name string
		base uintptr
	}{{"APLL", chip.SCG_APLLBASE}, {"SPLL", chip.SCG_SPLLBASE}} {
		add(target.Blocks.SCG+bank.base, "SCG", map[uintptr]string{
			chip.SCG_PLLCSR:       bank.name + "CSR",
			chip.SCG_PLLCTRL:      bank.name + "CTRL",
			chip.SCG_PLLNDIV:      bank.name + "NDIV",
			chip.SCG_PLLMDIV:      bank.name + "MDIV",
			chip.SCG_PLLPDIV:      bank.name + "PDIV",
			chip.SCG_PLLLOCK_CNFG: bank.name + "LOCK_CNFG",
		})
	}
	add(target.Blocks.SPC, "SPC", map[uintptr]string{
		chip.SPC_SC:         "SC",
		chip.SPC_ACTIVE_CFG: "ACTIVE_CFG",
		chip.SPC_SRAMCTL:    "SRAMCTL",
	})
	add(target.Blocks.FMU, "FMU", map[uintptr]string{
		chip.FMU_FCTRL: "FCTRL",
	})
	if target.AHBDivider != 0 {
		names[target.Blocks.SYSCON+target.AHBDivider] = "SYSCON.AHBCLKDIV"
	}
	if c := target.Clkout; c != nil {
		names[target.Blocks.SYSCON+c.Select] = "SYSCON.CLKOUTSEL"
		names[target.Blocks.SYSCON+c.Divider] = "SYSCON.CLKOUTDIV"
	}

	layout := target.Gates.Layout
	block := target.Gates.Block
	for _, g := range target.Gates.Entries {
		status, set, clear := layout.Clock.Registers(g.Group)
		names[target.Blocks.Gates+status] = fmt.Sprintf("%s.CC%d", block, g.Group)
		names[target.Blocks.Gates+set] = fmt.Sprintf("%s.CC_SET%d", block, g.Group)
		names[target.Blocks.Gates+clear] = fmt.Sprintf("%s.CC_CLR%d", block, g.Group)
		if layout.Reset != nil {
			status, set, clear := layout.Reset.Registers(g.Group)
			names[target.Blocks.Gates+status] = fmt.Sprintf("%s.RST%d", block, g.Group)
			names[target.Blocks.Gates+set] = fmt.Sprintf("%s.RST_SET%d", block, g.Group)
			names[target.Blocks.Gates+clear] = fmt.Sprintf("%s.RST_CLR%d", block, g.Group)
		}
		if g.Divider != 0 {
			names[target.Blocks.Gates+g.Divider] = block + "." + g.Name + "_CLKDIV"
		}
		if g.Mux != 0 {
			names[target.Blocks.Gates+g.Mux] = block + "." + g.Name + "_CLKSEL"
		}
	}
	return names
}
