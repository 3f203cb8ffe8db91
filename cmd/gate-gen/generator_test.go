package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"omibyte.io/mcxclk/clock/mrcc"
	"omibyte.io/mcxclk/targets"
)

func TestIdentifier(t *testing.T) {
	for in, want := range map[string]string{
		"LP_FLEXCOMM4": "LP_FLEXCOMM4",
		"gpio0":        "GPIO0",
		"I3C-1":        "I3C_1",
		"0ADC":         "P0ADC",
	} {
		if got := identifier(in); got != want {
			t.Errorf("identifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate(t *testing.T) {
	target := targets.TargetInfo{
		Series: "test",
		Gates: targets.GateTable{Entries: []mrcc.Gate{
			{Name: "LPUART0", Group: 0, Bit: 1},
			{Name: "gpio-2", Group: 1, Bit: 3},
		}},
	}
	var buf bytes.Buffer
	if err := generate(&buf, "testchip", target); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	if _, err := parser.ParseFile(token.NewFileSet(), "gates.go", src, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	for _, want := range []string{
		"// Code generated by gate-gen. DO NOT EDIT.",
		"package testchip",
		`LPUART0 Peripheral = "LPUART0"`,
		`GPIO_2  Peripheral = "gpio-2"`,
		"func (p Peripheral) Reset(r *mrcc.Registry) error {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}
