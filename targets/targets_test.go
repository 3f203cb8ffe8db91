package targets

import (
	"errors"
	"reflect"
	"testing"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/clock/scg"
	"omibyte.io/mcxclk/clock/spc"
	"omibyte.io/mcxclk/peripheral"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name   string
		series string
	}{
		{"mcxn947", "mcxn94x"},
		{"MCXN946", "mcxn94x"},
		{"mcxa276", "mcxa27x"},
		{"mcxa27x", "mcxa27x"},
	}
	for _, test := range tests {
		target, err := All().Find(test.name)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if target.Series != test.series {
			t.Errorf("%s: found series %s, want %s", test.name, target.Series, test.series)
		}
	}
	if _, err := All().Find("lpc55s69"); !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestChips(t *testing.T) {
	want := []string{"mcxa276", "mcxa277", "mcxn946", "mcxn947"}
	if got := All().Chips(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMCXN947(t *testing.T) {
	target, err := All().FindByChip("mcxn947")
	if err != nil {
		t.Fatal(err)
	}
	limits, err := target.Limits()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(limits, spc.DefaultLimits) {
		t.Errorf("run modes differ from the defaults:\n%+v", limits)
	}
	if target.Blocks.SCG != 0x4004_4000 {
		t.Errorf("SCG base %#x", target.Blocks.SCG)
	}

	firc, err := target.FIRCRange("144mhz")
	if err != nil {
		t.Fatal(err)
	}
	if firc.Frequency != 144_000_000 || firc.Code != 1 {
		t.Errorf("unexpected FIRC range %+v", firc)
	}
	if def := target.DefaultFIRCRange(); def.Frequency != 48_000_000 {
		t.Errorf("default FIRC range %+v", def)
	}

	plls, err := target.PLLs()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plls, []scg.PLL{scg.PLL0, scg.PLL1}) {
		t.Errorf("PLLs %v", plls)
	}
	if target.Clkout == nil || target.Clkout.Sources["sirc"] != 4 {
		t.Errorf("unexpected CLKOUT description %+v", target.Clkout)
	}

	var uart *struct{ mux, div uintptr }
	for _, g := range target.Gates.Entries {
		if g.Name == "LP_FLEXCOMM4" {
			uart = &struct{ mux, div uintptr }{g.Mux, g.Divider}
		}
	}
	if uart == nil || uart.mux != 0x2C0 || uart.div != 0x860 {
		t.Errorf("LP_FLEXCOMM4 entry %+v", uart)
	}
}

func TestMCXA27x(t *testing.T) {
	target, err := All().FindBySeries("mcxa27x")
	if err != nil {
		t.Fatal(err)
	}
	if target.HasPLL(scg.PLL0) || !target.HasPLL(scg.PLL1) {
		t.Error("MCXA27x only carries SPLL")
	}
	opts, err := target.SCGOptions(chip.Poller{})
	if err != nil {
		t.Fatal(err)
	}
	if !opts.LDOVoutOK || opts.FIRCRange.Pos != 1 || opts.FIRCRange.Width != 3 {
		t.Errorf("unexpected SCG options %+v", opts)
	}
	if _, err := target.FIRCRangeByFrequency(180_000_000); err != nil {
		t.Error(err)
	}
	if !target.Gates.Layout.ResetActiveLow || target.Gates.Layout.Reset == nil {
		t.Error("MRCC resets are released through the set register")
	}
}

func TestParseSchema(t *testing.T) {
	for _, schema := range []string{"v2.0.0", "1.0.0", ""} {
		_, err := Parse([]byte("schema: \"" + schema + "\"\ntargets: []\n"))
		if !errors.Is(err, ErrSchemaVersion) {
			t.Errorf("schema %q: expected ErrSchemaVersion, got %v", schema, err)
		}
	}
	if _, err := Parse([]byte("schema: v1.4.2\ntargets: []\n")); err != nil {
		t.Errorf("minor versions are compatible: %v", err)
	}
}

func TestValidate(t *testing.T) {
	good, err := All().FindByChip("mcxn947")
	if err != nil {
		t.Fatal(err)
	}

	noFIRC := good
	noFIRC.FIRC = nil
	badSource := good
	badSource.Sources = []string{"XTAL"}
	badMode := good
	badMode.RunModes = []RunModeInfo{{Mode: "turbo", Max: 1}}
	badCode := good
	badCode.FIRC = []scg.FIRCRange{{Name: "48MHz", Frequency: 48_000_000, Code: 2}}

	for name, target := range map[string]TargetInfo{
		"no firc":    noFIRC,
		"bad source": badSource,
		"bad mode":   badMode,
		"bad code":   badCode,
	} {
		if err := target.Validate(); !errors.Is(err, peripheral.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}
