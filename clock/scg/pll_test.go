package scg

import (
	"errors"
	"testing"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/peripheral"
)

func TestBandwidthSelectors(t *testing.T) {
	seli := map[uint32]uint32{
		1:    3,
		4:    5,
		50:   27,
		121:  63,
		122:  63,
		200:  40,
		1000: 8,
		7999: 1,
		8000: 1,
	}
	for m, want := range seli {
		if got := SELI(m); got != want {
			t.Errorf("SELI(%d) = %d, want %d", m, got, want)
		}
	}
	selp := map[uint32]uint32{1: 1, 4: 2, 50: 13, 120: 31, 8000: 31}
	for m, want := range selp {
		if got := SELP(m); got != want {
			t.Errorf("SELP(%d) = %d, want %d", m, got, want)
		}
	}
}

func TestBandwidthSelectorBounds(t *testing.T) {
	prev := SELI(122)
	for m := uint32(1); m < 8000; m++ {
		i, p := SELI(m), SELP(m)
		if i < 1 || i > 63 {
			t.Fatalf("SELI(%d) = %d out of [1, 63]", m, i)
		}
		if p < 1 || p > 31 {
			t.Fatalf("SELP(%d) = %d out of [1, 31]", m, p)
		}
		if m > 122 {
			if i > prev {
				t.Fatalf("SELI increased from %d to %d at M=%d", prev, i, m)
			}
			prev = i
		}
	}
}

func TestPLLCompute(t *testing.T) {
	tests := []struct {
		name   string
		cfg    PLLConfig
		input  uint32
		params PLLParams
	}{
		{
			name:  "dividers bypassed",
			cfg:   PLLConfig{Input: SOSC, M: 25},
			input: 24_000_000,
			params: PLLParams{
				PreDivided: 24_000_000, CCO: 600_000_000, Output: 600_000_000,
				SELP: 7, SELI: 15, LockTime: 12_300,
			},
		},
		{
			name:  "pre and post divider",
			cfg:   PLLConfig{Input: SOSC, N: 2, M: 50, P: 1},
			input: 24_000_000,
			params: PLLParams{
				PreDivided: 12_000_000, CCO: 600_000_000, Output: 300_000_000,
				SELP: 13, SELI: 27, LockTime: 6_300,
			},
		},
		{
			name:  "divide by two bypassed",
			cfg:   PLLConfig{Input: FIRC, N: 3, M: 25, P: 1, BypassPostDiv2: true},
			input: 48_000_000,
			params: PLLParams{
				PreDivided: 16_000_000, CCO: 400_000_000, Output: 400_000_000,
				SELP: 7, SELI: 15, LockTime: 8_300,
			},
		},
		{
			name:  "post divider",
			cfg:   PLLConfig{Input: SIRC, N: 1, M: 40, P: 2},
			input: 12_000_000,
			params: PLLParams{
				PreDivided: 12_000_000, CCO: 480_000_000, Output: 120_000_000,
				SELP: 11, SELI: 23, LockTime: 6_300,
			},
		},
		{
			name:  "input not divisible by N",
			cfg:   PLLConfig{Input: SOSC, N: 7, M: 70, P: 1},
			input: 24_000_000,
			params: PLLParams{
				PreDivided: 3_428_571, CCO: 240_000_000, Output: 120_000_000,
				SELP: 18, SELI: 37, LockTime: 2_014,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params, err := test.cfg.Compute(test.input)
			if err != nil {
				t.Fatal(err)
			}
			if params != test.params {
				t.Errorf("got %+v\nwant %+v", params, test.params)
			}
		})
	}
}

func TestPLLComputeErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   PLLConfig
		input uint32
		err   error
	}{
		{"zero multiplier", PLLConfig{Input: SOSC}, 24_000_000, peripheral.ErrInvalidConfig},
		{"post divider too large", PLLConfig{Input: SOSC, M: 10, P: 31}, 24_000_000, peripheral.ErrOutOfRange},
		{"pre divider too large", PLLConfig{Input: SOSC, M: 10, N: 256}, 24_000_000, peripheral.ErrOutOfRange},
		{"multiplier too large", PLLConfig{Input: SOSC, M: 0x10000}, 24_000_000, peripheral.ErrOutOfRange},
		{"pll input", PLLConfig{Input: APLL, M: 10}, 24_000_000, peripheral.ErrInvalidConfig},
		{"no input frequency", PLLConfig{Input: SOSC, M: 10}, 0, peripheral.ErrInvalidConfig},
		{"cco overflow", PLLConfig{Input: FIRC, M: 0xFFFF}, 192_000_000, peripheral.ErrOutOfRange},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.cfg.Compute(test.input); !errors.Is(err, test.err) {
				t.Errorf("expected %v, got %v", test.err, err)
			}
		})
	}
}

func TestLockTimeClamped(t *testing.T) {
	params, err := PLLConfig{Input: FIRC, M: 2}.Compute(1_000_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if params.LockTime != chip.SCG_PLLLOCK_CNFG_LOCK_TIME.Max() {
		t.Errorf("lock time %d not clamped", params.LockTime)
	}
}

func TestEnablePLL(t *testing.T) {
	s, b, _ := newTestSCG(t)
	if err := s.EnableSOSC(SOSCConfig{Mode: CrystalOscillator, Frequency: 24_000_000}); err != nil {
		t.Fatal(err)
	}
	cfg := PLLConfig{Input: SOSC, N: 2, M: 50, P: 1}
	b.ClearOps()
	params, err := s.EnablePLL(PLL0, cfg, 24_000_000, true)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Valid(APLL) || !s.PLLEnabled(PLL0) {
		t.Fatal("APLL not locked")
	}

	bank := testSCG + chip.SCG_APLLBASE
	var order []uintptr
	for _, op := range b.Writes() {
		if op.Addr >= bank && op.Addr < bank+0x100 {
			order = append(order, op.Addr-bank)
		}
	}
	want := []uintptr{
		chip.SCG_PLLCSR,
		chip.SCG_PLLCTRL,
		chip.SCG_PLLNDIV,
		chip.SCG_PLLMDIV,
		chip.SCG_PLLPDIV,
		chip.SCG_PLLCSR,
		chip.SCG_PLLLOCK_CNFG,
	}
	if len(order) != len(want) {
		t.Fatalf("unexpected PLL writes:\n%s", b.Trace(nil))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("write %d went to %#x, want %#x:\n%s", i, order[i], want[i], b.Trace(nil))
		}
	}

	ctrl := b.Peek(bank + chip.SCG_PLLCTRL)
	if got := chip.SCG_PLLCTRL_SELI.Get(ctrl); got != 27 {
		t.Errorf("SELI = %d, want 27", got)
	}
	if got := chip.SCG_PLLCTRL_SELP.Get(ctrl); got != 13 {
		t.Errorf("SELP = %d, want 13", got)
	}
	if got := chip.SCG_PLLCTRL_SOURCE.Get(ctrl); got != 0 {
		t.Errorf("SOURCE = %d, want SOSC", got)
	}
	if got := chip.SCG_PLLLOCK_CNFG_LOCK_TIME.Get(b.Peek(bank + chip.SCG_PLLLOCK_CNFG)); got != params.LockTime {
		t.Errorf("LOCK_TIME = %d, want %d", got, params.LockTime)
	}
	if b.Peek(bank+chip.SCG_PLLNDIV)&chip.SCG_PLLNDIV_NREQ != 0 {
		t.Error("NREQ not taken by the hardware")
	}

	// Reading the dividers back yields the same output frequency.
	readBack := s.ReadPLL(PLL0)
	if readBack != cfg {
		t.Errorf("read back %+v, want %+v", readBack, cfg)
	}
	again, err := readBack.Compute(24_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if again.Output != params.Output || params.Output != 300_000_000 {
		t.Errorf("output %d after read back, %d computed", again.Output, params.Output)
	}
}

func TestEnablePLLBypassedDividers(t *testing.T) {
	s, b, _ := newTestSCG(t)
	cfg := PLLConfig{Input: FIRC, M: 4}
	if _, err := s.EnablePLL(PLL1, cfg, 48_000_000, false); err != nil {
		t.Fatal(err)
	}
	bank := testSCG + chip.SCG_SPLLBASE
	for _, op := range b.Writes() {
		if op.Addr == bank+chip.SCG_PLLNDIV || op.Addr == bank+chip.SCG_PLLPDIV {
			t.Errorf("bypassed divider written: %v", op)
		}
	}
	ctrl := b.Peek(bank + chip.SCG_PLLCTRL)
	if ctrl&chip.SCG_PLLCTRL_BYPASSPREDIV == 0 || ctrl&chip.SCG_PLLCTRL_BYPASSPOSTDIV == 0 {
		t.Errorf("bypass bits missing in CTRL %#x", ctrl)
	}
	if got := s.ReadPLL(PLL1); got != cfg {
		t.Errorf("read back %+v, want %+v", got, cfg)
	}
}

func TestEnablePLLInvalidWritesNothing(t *testing.T) {
	s, b, _ := newTestSCG(t)
	b.ClearOps()
	if _, err := s.EnablePLL(PLL0, PLLConfig{Input: SOSC, M: 0}, 24_000_000, false); !errors.Is(err, peripheral.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if writes := b.Writes(); len(writes) != 0 {
		t.Errorf("expected no writes, got %v", writes)
	}
}

func TestEnablePLLHardwareError(t *testing.T) {
	s, _, m := newTestSCG(t)
	m.Fail(chip.SCG_APLLBASE + chip.SCG_PLLCSR)
	_, err := s.EnablePLL(PLL0, PLLConfig{Input: FIRC, N: 4, M: 25, P: 1}, 48_000_000, false)
	if !errors.Is(err, peripheral.ErrHardware) {
		t.Fatalf("expected ErrHardware, got %v", err)
	}
}

func TestDisablePLLReleasesInput(t *testing.T) {
	s, _, _ := newTestSCG(t)
	if err := s.EnableSOSC(SOSCConfig{Mode: CrystalOscillator, Frequency: 24_000_000}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.EnablePLL(PLL0, PLLConfig{Input: SOSC, N: 2, M: 50, P: 1}, 24_000_000, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Switch(APLL); err != nil {
		t.Fatal(err)
	}
	if err := s.Switch(FIRC); err != nil {
		t.Fatal(err)
	}
	if err := s.DisablePLL(PLL0); err != nil {
		t.Fatal(err)
	}
	if s.Valid(APLL) {
		t.Error("APLL still locked")
	}
	if err := s.DisableSOSC(); err != nil {
		t.Fatal(err)
	}
}
