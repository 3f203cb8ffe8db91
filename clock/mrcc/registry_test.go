package mrcc

import (
	"errors"
	"reflect"
	"testing"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/chip/simbus"
	"omibyte.io/mcxclk/peripheral"
)

const testBase uintptr = 0x4009_1000

var testLayout = Layout{
	Clock:          GroupLayout{Status: 0x40, Set: 0x44, Clear: 0x48, Stride: 0x10},
	Reset:          &GroupLayout{Status: 0x00, Set: 0x04, Clear: 0x08, Stride: 0x10},
	ResetActiveLow: true,
}

var testGates = []Gate{
	{Name: "LPUART0", Group: 0, Bit: 13, Reset: true, Divider: 0x108, Mux: 0x100},
	{Name: "GPIO2", Group: 1, Bit: 5},
	{Name: "ADC0", Group: 2, Bit: 31, Reset: true, Divider: 0x118},
}

func newTestRegistry(t *testing.T) (*Registry, *simbus.Bus, *simbus.Model) {
	t.Helper()
	b := simbus.New()
	m := simbus.Install(b, 0x4004_4000, 0x4001_6000)
	for g := uintptr(0); g < 3; g++ {
		c := testLayout.Clock
		m.AddGateGroup(testBase+c.Status+g*c.Stride, testBase+c.Set+g*c.Stride, testBase+c.Clear+g*c.Stride)
	}
	for _, gate := range testGates {
		if gate.Divider != 0 {
			m.AddDivider(testBase + gate.Divider)
		}
	}
	r, err := New(b, testBase, testLayout, testGates, chip.Poller{Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	b.ClearOps()
	return r, b, m
}

func TestEnableIdempotent(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	status := testBase + 0x50

	if err := r.Enable("gpio2"); err != nil {
		t.Fatal(err)
	}
	once := b.Peek(status)
	if err := r.Enable("GPIO2"); err != nil {
		t.Fatal(err)
	}
	if twice := b.Peek(status); twice != once || once != 1<<5 {
		t.Errorf("status after one enable %#x, after two %#x", once, twice)
	}
	for _, op := range b.Writes() {
		if op.Addr != testBase+0x54 || op.Value != 1<<5 {
			t.Errorf("unexpected write %v", op)
		}
	}
	if on, err := r.Enabled("GPIO2"); err != nil || !on {
		t.Errorf("Enabled = %v, %v", on, err)
	}

	if err := r.Disable("GPIO2"); err != nil {
		t.Fatal(err)
	}
	if err := r.Disable("GPIO2"); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek(status); got != 0 {
		t.Errorf("status after disable %#x", got)
	}
	last := b.Writes()[len(b.Writes())-1]
	if last.Addr != testBase+0x58 || last.Value != 1<<5 {
		t.Errorf("disable wrote %v", last)
	}
}

func TestGatesDoNotDisturbEachOther(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	b.Poke(testBase+0x60, 0x0000_00FF)
	if err := r.Enable("ADC0"); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek(testBase + 0x60); got != 0x8000_00FF {
		t.Errorf("group 2 status %#x", got)
	}
	if err := r.Disable("ADC0"); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek(testBase + 0x60); got != 0xFF {
		t.Errorf("group 2 status %#x", got)
	}
}

func TestUnknownPeripheral(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	ops := []func(string) error{
		r.Enable,
		r.Disable,
		r.Reset,
		r.HaltDivider,
		func(name string) error { return r.SetDivider(name, 1) },
		func(name string) error { return r.SelectSource(name, 1) },
		func(name string) error { _, err := r.Enabled(name); return err },
	}
	for i, op := range ops {
		if err := op("LPSPI9"); !errors.Is(err, peripheral.ErrUnknownPeripheral) {
			t.Errorf("op %d: expected ErrUnknownPeripheral, got %v", i, err)
		}
	}
	if writes := b.Writes(); len(writes) != 0 {
		t.Errorf("expected no writes, got %v", writes)
	}
}

func TestUnsupportedFeatures(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	for name, err := range map[string]error{
		"reset":   r.Reset("GPIO2"),
		"divider": r.SetDivider("GPIO2", 1),
		"halt":    r.HaltDivider("GPIO2"),
		"mux":     r.SelectSource("ADC0", 1),
	} {
		if !errors.Is(err, peripheral.ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
	}
	if writes := b.Writes(); len(writes) != 0 {
		t.Errorf("expected no writes, got %v", writes)
	}
}

func TestReset(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	if err := r.Reset("LPUART0"); err != nil {
		t.Fatal(err)
	}
	want := []simbus.Op{
		{Kind: simbus.Write, Addr: testBase + 0x08, Value: 1 << 13},
		{Kind: simbus.Write, Addr: testBase + 0x04, Value: 1 << 13},
	}
	if got := b.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResetActiveHigh(t *testing.T) {
	b := simbus.New()
	layout := Layout{
		Clock: GroupLayout{Status: 0x200, Set: 0x220, Clear: 0x240, Stride: 4},
		Reset: &GroupLayout{Status: 0x100, Set: 0x120, Clear: 0x140, Stride: 4},
	}
	r, err := New(b, testBase, layout, []Gate{{Name: "FLEXCOMM4", Group: 1, Bit: 15, Reset: true}}, chip.Poller{})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Reset("FLEXCOMM4"); err != nil {
		t.Fatal(err)
	}
	want := []simbus.Op{
		{Kind: simbus.Write, Addr: testBase + 0x124, Value: 1 << 15},
		{Kind: simbus.Write, Addr: testBase + 0x144, Value: 1 << 15},
	}
	if got := b.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDivider(t *testing.T) {
	r, b, m := newTestRegistry(t)
	m.UnstableReads = 3
	if err := r.SetDivider("LPUART0", 3); err != nil {
		t.Fatal(err)
	}
	addr := testBase + 0x108
	if got := b.Peek(addr); got != 3 {
		t.Errorf("divider register %#x, want 3", got)
	}
	d, err := r.Divider("LPUART0")
	if err != nil {
		t.Fatal(err)
	}
	if hz := d.Apply(48_000_000); hz != 12_000_000 {
		t.Errorf("divided clock %d, want 12 MHz", hz)
	}

	if err := r.HaltDivider("LPUART0"); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek(addr); got != chip.CLKDIV_HALT {
		t.Errorf("halted divider register %#x", got)
	}
	if hz := d.Apply(48_000_000); hz != 0 {
		t.Errorf("halted divider passes %d Hz", hz)
	}

	b.ClearOps()
	if err := r.SetDivider("LPUART0", 256); !errors.Is(err, peripheral.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if writes := b.Writes(); len(writes) != 0 {
		t.Errorf("expected no writes, got %v", writes)
	}
}

func TestDividerTimeout(t *testing.T) {
	r, _, m := newTestRegistry(t)
	m.UnstableReads = 1000
	if err := r.SetDivider("ADC0", 0); !errors.Is(err, peripheral.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSelectSource(t *testing.T) {
	r, b, _ := newTestRegistry(t)
	if err := r.SelectSource("LPUART0", 2); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek(testBase + 0x100); got != 2 {
		t.Errorf("mux register %#x, want 2", got)
	}
	if err := r.SelectSource("LPUART0", 16); !errors.Is(err, peripheral.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestNames(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	want := []string{"ADC0", "GPIO2", "LPUART0"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNewRejectsBadTables(t *testing.T) {
	tests := map[string][]Gate{
		"duplicate": {{Name: "A", Bit: 1}, {Name: "a", Bit: 2}},
		"bit":       {{Name: "A", Bit: 32}},
		"unnamed":   {{Bit: 3}},
		"reset":     {{Name: "A", Bit: 1, Reset: true}},
	}
	layout := Layout{Clock: testLayout.Clock}
	for name, gates := range tests {
		if _, err := New(simbus.New(), testBase, layout, gates, chip.Poller{}); !errors.Is(err, peripheral.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}
