package mcxn947

import (
	"testing"

	"omibyte.io/mcxclk/clock"
	"omibyte.io/mcxclk/targets"
)

func TestMatchesTargetTable(t *testing.T) {
	target, err := targets.All().FindBySeries(Series)
	if err != nil {
		t.Fatal(err)
	}
	if len(All) != len(target.Gates.Entries) {
		t.Fatalf("%d peripherals, table has %d", len(All), len(target.Gates.Entries))
	}
	for i, p := range All {
		if string(p) != target.Gates.Entries[i].Name {
			t.Errorf("entry %d: %s, table has %s", i, p, target.Gates.Entries[i].Name)
		}
	}
}

func TestTypedGates(t *testing.T) {
	target, err := targets.All().FindByChip("mcxn947")
	if err != nil {
		t.Fatal(err)
	}
	bus, _ := clock.Simulate(target)
	e, err := clock.New(target, bus, clock.WithPollLimit(100))
	if err != nil {
		t.Fatal(err)
	}
	r := e.Gates()

	if err := LP_FLEXCOMM4.SelectSource(r, 1); err != nil {
		t.Fatal(err)
	}
	if err := LP_FLEXCOMM4.SetDivider(r, 0); err != nil {
		t.Fatal(err)
	}
	if err := LP_FLEXCOMM4.Enable(r); err != nil {
		t.Fatal(err)
	}
	if err := LP_FLEXCOMM4.Reset(r); err != nil {
		t.Fatal(err)
	}
	if on, _ := r.Enabled(string(LP_FLEXCOMM4)); !on {
		t.Error("LP_FLEXCOMM4 not enabled")
	}
	if err := LP_FLEXCOMM4.Disable(r); err != nil {
		t.Fatal(err)
	}
	if on, _ := r.Enabled(string(LP_FLEXCOMM4)); on {
		t.Error("LP_FLEXCOMM4 still enabled")
	}
}
