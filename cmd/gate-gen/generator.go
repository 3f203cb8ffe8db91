package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/tools/imports"

	"omibyte.io/mcxclk/targets"
)

// generate writes the typed peripheral identifiers of target as a Go source
// file of package pkg.
func generate(w io.Writer, pkg string, target targets.TargetInfo) error {
	var b strings.Builder

	writePreamble(&b, pkg)
	fmt.Fprintln(&b, "import (")
	fmt.Fprintln(&b, `"omibyte.io/mcxclk/clock/mrcc"`)
	fmt.Fprint(&b, ")\n\n")

	fmt.Fprintf(&b, "// Series is the target series the gate table was generated from.\n")
	fmt.Fprintf(&b, "const Series = %q\n\n", target.Series)

	fmt.Fprintf(&b, "// Peripheral names a clocked peripheral of the %s series.\n", strings.ToUpper(target.Series))
	fmt.Fprintln(&b, "type Peripheral string")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "const (")
	for _, g := range target.Gates.Entries {
		fmt.Fprintf(&b, "%s Peripheral = %q\n", identifier(g.Name), g.Name)
	}
	fmt.Fprint(&b, ")\n\n")

	fmt.Fprintln(&b, "// All lists every peripheral in gate table order.")
	fmt.Fprintln(&b, "var All = []Peripheral{")
	for _, g := range target.Gates.Entries {
		fmt.Fprintf(&b, "%s,\n", identifier(g.Name))
	}
	fmt.Fprint(&b, "}\n\n")

	// Accessors forwarding to the registry.
	for _, m := range []struct{ name, doc string }{
		{"Enable", "ungates the peripheral clock."},
		{"Disable", "gates the peripheral clock off."},
		{"Reset", "pulses the peripheral reset."},
	} {
		fmt.Fprintf(&b, "// %s %s\n", m.name, m.doc)
		fmt.Fprintf(&b, "func (p Peripheral) %s(r *mrcc.Registry) error {\n", m.name)
		fmt.Fprintf(&b, "return r.%s(string(p))\n}\n\n", m.name)
	}
	fmt.Fprintln(&b, "// SetDivider runs the peripheral clock divider at div+1.")
	fmt.Fprintln(&b, "func (p Peripheral) SetDivider(r *mrcc.Registry, div uint32) error {")
	fmt.Fprint(&b, "return r.SetDivider(string(p), div)\n}\n\n")
	fmt.Fprintln(&b, "// SelectSource writes the peripheral clock source select.")
	fmt.Fprintln(&b, "func (p Peripheral) SelectSource(r *mrcc.Registry, sel uint32) error {")
	fmt.Fprint(&b, "return r.SelectSource(string(p), sel)\n}\n")

	src, err := imports.Process(pkg+".go", []byte(b.String()), nil)
	if err != nil {
		return fmt.Errorf("error formatting package %s: %v", pkg, err)
	}
	_, err = w.Write(src)
	return err
}

func writePreamble(w io.Writer, pkg string) {
	fmt.Fprintln(w, "// Code generated by gate-gen. DO NOT EDIT.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "package %s\n\n", pkg)
}

// identifier turns a gate name into an exported Go identifier.
func identifier(name string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, strings.ToUpper(name))
	if len(id) == 0 || id[0] >= '0' && id[0] <= '9' || id[0] == '_' {
		id = "P" + id
	}
	return id
}
