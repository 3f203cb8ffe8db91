package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omibyte.io/mcxclk/peripheral"
)

const profile = `
chip: mcxn947
sosc: {mode: crystal, frequency: 24MHz}
sirc: {periph: true}
firc: {range: 48MHz, fclk: true}
plls:
  apll: {input: sosc, n: 2, m: 20, p: 1}
main: apll
gates:
  - {name: LP_FLEXCOMM4, source: 2, divider: 0}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	stdout = &out
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clocks.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommands(t *testing.T) {
	path := writeProfile(t, profile)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"targets", []string{"targets"}, []string{"mcxn94x", "mcxa27x"}},
		{"plan", []string{"plan", "-c", path}, []string{"120,000,000 Hz", "OverDrive", "profile is valid"}},
		{"apply", []string{"apply", "-c", path, "--trace"}, []string{"SCG.APLLCSR", "SCG.RCCR", "syscon.CC_SET1", "running from APLL"}},
		{"pll", []string{"pll", "--input", "24MHz", "-n", "2", "-m", "20", "-p", "1"}, []string{"240,000,000 Hz", "120,000,000 Hz", "SELP"}},
		{"gate list", []string{"gate", "list", "--chip", "mcxn947"}, []string{"LP_FLEXCOMM4"}},
		{"gate divider", []string{"gate", "divider", "LP_FLEXCOMM4", "3"}, []string{"divides by 4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, tc.args...)
			if err != nil {
				t.Fatalf("%v: %v", tc.args, err)
			}
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("output lacks %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	bad := writeProfile(t, "chip: mcxn947\nmain: spll\n")
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"invalid profile", []string{"plan", "-c", bad}, peripheral.ErrInvalidConfig},
		{"unknown gate", []string{"gate", "enable", "NOPE"}, peripheral.ErrUnknownPeripheral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			if !errors.Is(err, tc.is) {
				t.Errorf("got %v, want %v", err, tc.is)
			}
		})
	}
	if _, err := run(t, "apply", "-c", writeProfile(t, profile), "--bus", "jtag"); err == nil {
		t.Error("unknown bus accepted")
	}
}
