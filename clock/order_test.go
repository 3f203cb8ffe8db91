package clock

import (
	"testing"

	"omibyte.io/mcxclk/clock/scg"
)

func position(steps []Step, kind StepKind, src scg.Source) int {
	for i, s := range steps {
		if s.Kind == kind && s.Source == src {
			return i
		}
	}
	return -1
}

func TestBringUpOrder(t *testing.T) {
	cfg := Config{
		SOSC:   &soscCrystal24,
		SIRC:   &scg.SIRCConfig{PeriphEnabled: true},
		SPLL:   &PLLSetup{PLLConfig: scg.PLLConfig{Input: scg.SOSC, M: 10, P: 1}},
		Main:   scg.SPLL,
		Clkout: &ClkoutConfig{Source: "spll"},
	}
	steps, err := BringUpOrder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	pos := func(kind StepKind, src scg.Source) int {
		t.Helper()
		i := position(steps, kind, src)
		if i < 0 {
			t.Fatalf("%s %s missing from %v", kind, src, steps)
		}
		return i
	}
	before := []struct {
		a, b int
		desc string
	}{
		{pos(StepEnable, scg.SOSC), pos(StepEnable, scg.SPLL), "SOSC before SPLL"},
		{pos(StepEnable, scg.SPLL), pos(StepSwitch, scg.SPLL), "SPLL before switch"},
		{pos(StepEnable, scg.SIRC), pos(StepSwitch, scg.SPLL), "SIRC before switch"},
		{pos(StepSwitch, scg.SPLL), pos(StepDisable, scg.FIRC), "switch before FIRC off"},
		{pos(StepSwitch, scg.SPLL), pos(StepDisable, scg.APLL), "switch before APLL off"},
		{pos(StepDisable, scg.APLL), pos(StepDisable, scg.FIRC), "APLL off before FIRC off"},
		{pos(StepSwitch, scg.SPLL), pos(StepAHBDivider, 0), "switch before AHB divider"},
		{pos(StepAHBDivider, 0), pos(StepClkout, 0), "AHB divider before CLKOUT"},
	}
	for _, c := range before {
		if c.a >= c.b {
			t.Errorf("%s: got %v", c.desc, steps)
		}
	}
	for _, s := range steps {
		if s.Kind == StepDisable && (s.Source == scg.SIRC || s.Source == scg.SOSC || s.Source == scg.SPLL) {
			t.Errorf("unexpected %s", s)
		}
	}
}

func TestBringUpOrderDefault(t *testing.T) {
	steps, err := BringUpOrder(Config{FIRC: &scg.FIRCConfig{}, Main: scg.FIRC})
	if err != nil {
		t.Fatal(err)
	}
	if position(steps, StepEnable, scg.SIRC) >= 0 || position(steps, StepDisable, scg.SIRC) >= 0 {
		t.Errorf("SIRC touched: %v", steps)
	}
	if position(steps, StepClkout, 0) >= 0 {
		t.Errorf("CLKOUT step without CLKOUT: %v", steps)
	}
	if position(steps, StepEnable, scg.FIRC) > position(steps, StepSwitch, scg.FIRC) {
		t.Errorf("FIRC enabled after switch: %v", steps)
	}
	if got := (Step{Kind: StepDisable, Source: scg.SOSC}).String(); got != "disable SOSC" {
		t.Errorf("String() = %q", got)
	}
}
