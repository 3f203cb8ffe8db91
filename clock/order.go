package clock

import (
	"fmt"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/mcxclk/clock/scg"
)

// StepKind is the kind of action in a bring-up plan.
type StepKind uint8

const (
	StepEnable StepKind = iota
	StepSwitch
	StepAHBDivider
	StepClkout
	StepDisable
)

var stepNames = [...]string{"enable", "switch", "ahb-divider", "clkout", "disable"}

func (k StepKind) String() string {
	if int(k) < len(stepNames) {
		return stepNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", uint8(k))
}

// Step is one action of a bring-up plan. Source is the affected clock for
// enable, disable and switch steps.
type Step struct {
	Kind   StepKind
	Source scg.Source
}

func (s Step) String() string {
	switch s.Kind {
	case StepEnable, StepDisable, StepSwitch:
		return fmt.Sprintf("%s %s", s.Kind, s.Source)
	}
	return s.Kind.String()
}

type stepNode struct {
	step Step
}

// ID orders nodes by kind first, then by source code.
func (n stepNode) ID() int64 {
	return int64(n.step.Kind)<<8 | int64(n.step.Source)
}

var oscillators = []scg.Source{scg.SOSC, scg.SIRC, scg.FIRC}

// BringUpOrder returns the order in which Apply performs the steps of c:
// every configured clock is started before the PLLs it feeds and before the
// main clock switch, and clocks left out of c are stopped after the switch,
// PLLs before their inputs.
func BringUpOrder(c Config) ([]Step, error) {
	g := multi.NewDirectedGraph()
	node := func(kind StepKind, src scg.Source) stepNode {
		n := stepNode{Step{Kind: kind, Source: src}}
		if g.Node(n.ID()) == nil {
			g.AddNode(n)
		}
		return n
	}
	edge := func(from, to stepNode) {
		g.SetLine(g.NewLine(from, to))
	}

	sw := node(StepSwitch, c.Main)
	configured := map[scg.Source]bool{
		scg.SOSC: c.SOSC != nil,
		scg.SIRC: c.SIRC != nil,
		scg.FIRC: c.FIRC != nil,
	}
	var disabledPLLs []stepNode
	for _, p := range []scg.PLL{scg.PLL0, scg.PLL1} {
		setup := c.PLL(p)
		if setup == nil {
			disabledPLLs = append(disabledPLLs, node(StepDisable, p.Source()))
			continue
		}
		pll := node(StepEnable, p.Source())
		if configured[setup.Input] {
			edge(node(StepEnable, setup.Input), pll)
		}
		edge(pll, sw)
	}
	for _, pll := range disabledPLLs {
		edge(sw, pll)
	}

	for _, osc := range oscillators {
		if configured[osc] {
			edge(node(StepEnable, osc), sw)
			continue
		}
		if osc == scg.SIRC {
			continue
		}
		off := node(StepDisable, osc)
		edge(sw, off)
		for _, pll := range disabledPLLs {
			edge(pll, off)
		}
	}

	ahb := node(StepAHBDivider, 0)
	edge(sw, ahb)
	if c.Clkout != nil {
		edge(ahb, node(StepClkout, 0))
	}

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, len(sorted))
	for i, n := range sorted {
		steps[i] = n.(stepNode).step
	}
	return steps, nil
}
