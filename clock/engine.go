// Package clock sequences the clock tree of an MCX microcontroller: it starts
// oscillators and PLLs, moves the main clock between them and keeps the core
// voltage and flash wait states in step with the resulting system frequency.
package clock

import (
	"fmt"
	"log"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/mcxclk/chip"
	"omibyte.io/mcxclk/clock/mrcc"
	"omibyte.io/mcxclk/clock/scg"
	"omibyte.io/mcxclk/clock/spc"
	"omibyte.io/mcxclk/peripheral"
	"omibyte.io/mcxclk/targets"
)

// Engine owns the clock and power blocks of one chip. It records which
// sources are running and what they run at, and rejects requests that depend
// on a clock that has not been started before any register is accessed.
type Engine struct {
	target targets.TargetInfo
	bus    chip.Bus
	poller chip.Poller
	log    *log.Logger

	scg    *scg.SCG
	spc    *spc.SPC
	gates  *mrcc.Registry
	ahb    mrcc.Divider
	hasAHB bool

	// running maps every valid source to its frequency. Zero means the
	// source runs at a rate the engine did not program.
	running   map[scg.Source]uint32
	pllInputs map[scg.PLL]scg.Source
	main      scg.Source
}

type Option func(*Engine)

// WithLogger traces every sequencing step to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithPollLimit bounds every hardware wait to n status reads.
func WithPollLimit(n int) Option {
	return func(e *Engine) {
		e.poller = chip.Poller{Limit: n}
	}
}

// New takes ownership of the clock blocks of target on bus and reads their
// current state.
func New(target targets.TargetInfo, bus chip.Bus, opts ...Option) (*Engine, error) {
	e := &Engine{target: target, bus: bus}
	for _, opt := range opts {
		opt(e)
	}

	scgOpts, err := target.SCGOptions(e.poller)
	if err != nil {
		return nil, err
	}
	limits, err := target.Limits()
	if err != nil {
		return nil, err
	}
	e.gates, err = mrcc.New(bus, target.Blocks.Gates, target.Gates.Layout, target.Gates.Entries, e.poller)
	if err != nil {
		return nil, err
	}
	e.scg = scg.New(bus, target.Blocks.SCG, scgOpts)
	e.spc = spc.New(bus, target.Blocks.SPC, target.Blocks.FMU, spc.Options{Limits: limits, Poller: e.poller})
	if target.AHBDivider != 0 {
		e.ahb = mrcc.NewDivider(bus, target.Blocks.SYSCON+target.AHBDivider, e.poller)
		e.hasAHB = true
	}
	e.Sync()
	return e, nil
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Printf(format, args...)
	}
}

// Sync rebuilds the engine state from the hardware. The frequency of a
// running SOSC cannot be read back and is recorded as unknown until SOSC is
// enabled through the engine.
func (e *Engine) Sync() {
	e.running = map[scg.Source]uint32{}
	e.pllInputs = map[scg.PLL]scg.Source{}

	if e.scg.Valid(scg.SIRC) {
		e.running[scg.SIRC] = scg.SIRCFrequency
	}
	if e.scg.Valid(scg.SOSC) {
		e.running[scg.SOSC] = 0
	}
	if e.scg.Valid(scg.FIRC) {
		code := e.scg.FIRCRangeCode()
		e.running[scg.FIRC] = 0
		for _, r := range e.target.FIRC {
			if r.Code == code {
				e.running[scg.FIRC] = r.Frequency
				break
			}
		}
	}
	plls, _ := e.target.PLLs()
	for _, p := range plls {
		if !e.scg.PLLEnabled(p) || !e.scg.Valid(p.Source()) {
			continue
		}
		cfg := e.scg.ReadPLL(p)
		e.pllInputs[p] = cfg.Input
		var hz uint32
		if in := e.running[cfg.Input]; in != 0 {
			if params, err := cfg.Compute(in); err == nil {
				hz = params.Output
			}
		}
		e.running[p.Source()] = hz
	}
	e.main = e.scg.Current()
	e.spc.Sync()
}

// Target returns the chip variant the engine drives.
func (e *Engine) Target() targets.TargetInfo {
	return e.target
}

// Main returns the current main clock source.
func (e *Engine) Main() scg.Source {
	return e.main
}

// Mode returns the current run mode.
func (e *Engine) Mode() spc.RunMode {
	return e.spc.Mode()
}

// Valid reports whether src is running.
func (e *Engine) Valid(src scg.Source) bool {
	_, ok := e.running[src]
	return ok
}

// ValidSources returns the running sources in code order.
func (e *Engine) ValidSources() []scg.Source {
	sources := maps.Keys(e.running)
	slices.Sort(sources)
	return sources
}

// Gates returns the peripheral clock gate registry.
func (e *Engine) Gates() *mrcc.Registry {
	return e.gates
}

func (e *Engine) ahbDivider() uint32 {
	if !e.hasAHB {
		return 0
	}
	div, _ := e.ahb.Value()
	return div
}

// SystemFrequency returns the current system clock, or zero when the main
// clock runs at an unknown rate.
func (e *Engine) SystemFrequency() uint32 {
	return e.running[e.main] / (e.ahbDivider() + 1)
}

// inUse reports whether src drives the main clock or a running PLL.
func (e *Engine) inUse(src scg.Source) bool {
	if e.main == src {
		return true
	}
	for p, in := range e.pllInputs {
		if in == src && e.Valid(p.Source()) {
			return true
		}
	}
	return false
}

// retune runs op, which changes the system clock to hz, with the run mode
// raised before op when the clock goes up and lowered after op when it goes
// down.
func (e *Engine) retune(hz uint32, op func() error) error {
	if hz == 0 {
		return fmt.Errorf("%w: resulting system frequency is unknown", peripheral.ErrInvalidConfig)
	}
	limits := e.spc.Limits()
	if _, err := limits.ModeFor(hz); err != nil {
		return err
	}

	cur := e.SystemFrequency()
	switch {
	case cur == 0:
		// Unknown starting point: run the change at the top operating point.
		top := limits[len(limits)-1]
		e.logf("run mode %s for unknown system clock", top.Mode)
		if err := e.spc.SetRunMode(top.Mode, top.Max); err != nil {
			return err
		}
		if err := op(); err != nil {
			return err
		}
	case hz > cur:
		e.logf("raise system clock %s -> %s", Frequency(cur), Frequency(hz))
		if err := e.spc.SetSystemFrequency(hz); err != nil {
			return err
		}
		return op()
	default:
		if err := op(); err != nil {
			return err
		}
		if hz < cur {
			e.logf("lower system clock %s -> %s", Frequency(cur), Frequency(hz))
		}
	}
	return e.spc.SetSystemFrequency(hz)
}

// forget drops src from the running set when the hardware no longer reports
// it valid, after a failed request.
func (e *Engine) forget(src scg.Source) {
	if !e.scg.Valid(src) {
		delete(e.running, src)
		if p, ok := scg.PLLFor(src); ok {
			delete(e.pllInputs, p)
		}
	}
}

// EnableSOSC starts the system oscillator. Reprogramming SOSC while it
// drives the main clock or a PLL is refused unless the frequency stays the
// same.
func (e *Engine) EnableSOSC(cfg scg.SOSCConfig) error {
	if e.inUse(scg.SOSC) {
		if hz, ok := e.running[scg.SOSC]; ok && hz == cfg.Frequency {
			return nil
		}
		return fmt.Errorf("%w: SOSC is in use", peripheral.ErrBusy)
	}
	e.logf("enable SOSC %s %s", cfg.Mode, Frequency(cfg.Frequency))
	if err := e.scg.EnableSOSC(cfg); err != nil {
		e.forget(scg.SOSC)
		return err
	}
	e.running[scg.SOSC] = cfg.Frequency
	return nil
}

// EnableSIRC sets the SIRC output flags. SIRC itself never stops.
func (e *Engine) EnableSIRC(cfg scg.SIRCConfig) error {
	e.logf("enable SIRC periph=%t stop=%t", cfg.PeriphEnabled, cfg.StopEnabled)
	if err := e.scg.EnableSIRC(cfg); err != nil {
		return err
	}
	e.running[scg.SIRC] = scg.SIRCFrequency
	return nil
}

// EnableFIRC starts FIRC or moves it to another range. A range change while
// FIRC drives the main clock is sequenced with the run mode; a range change
// while FIRC feeds a PLL is refused.
func (e *Engine) EnableFIRC(cfg scg.FIRCConfig) error {
	hz := cfg.Range.Frequency
	if cur, ok := e.running[scg.FIRC]; ok && cur != hz {
		for p, in := range e.pllInputs {
			if in == scg.FIRC && e.Valid(p.Source()) {
				return fmt.Errorf("%w: FIRC feeds %s", peripheral.ErrBusy, p)
			}
		}
	}
	e.logf("enable FIRC %s", Frequency(hz))
	op := func() error {
		return e.scg.EnableFIRC(cfg)
	}
	var err error
	if e.main == scg.FIRC {
		err = e.retune(hz/(e.ahbDivider()+1), op)
	} else {
		err = op()
	}
	if err != nil {
		e.forget(scg.FIRC)
		return err
	}
	e.running[scg.FIRC] = hz
	return nil
}

// EnablePLL powers p from a running input and waits for it to lock. A PLL
// driving the main clock cannot be reprogrammed.
func (e *Engine) EnablePLL(p scg.PLL, setup PLLSetup) error {
	if !e.target.HasPLL(p) {
		return fmt.Errorf("%w: %s has no %s", peripheral.ErrUnsupported, e.target.Series, p)
	}
	in, ok := e.running[setup.Input]
	switch {
	case !ok:
		return fmt.Errorf("%w: %s input %s is not running", peripheral.ErrInvalidConfig, p, setup.Input)
	case in == 0:
		return fmt.Errorf("%w: %s input %s runs at an unknown rate", peripheral.ErrInvalidConfig, p, setup.Input)
	}
	src := p.Source()
	if e.main == src {
		if e.Valid(src) && e.scg.ReadPLL(p) == setup.PLLConfig {
			return nil
		}
		return fmt.Errorf("%w: %s drives the main clock", peripheral.ErrBusy, p)
	}

	e.logf("enable %s from %s M=%d N=%d P=%d", p, setup.Input, setup.M, setup.N, setup.P)
	params, err := e.scg.EnablePLL(p, setup.PLLConfig, in, setup.StopEnabled)
	if err != nil {
		e.forget(src)
		return err
	}
	e.running[src] = params.Output
	e.pllInputs[p] = setup.Input
	return nil
}

// Disable stops src. Sources that drive the main clock or a running PLL are
// refused with ErrBusy.
func (e *Engine) Disable(src scg.Source) error {
	if e.inUse(src) {
		return fmt.Errorf("%w: %s is in use", peripheral.ErrBusy, src)
	}
	e.logf("disable %s", src)
	var err error
	switch src {
	case scg.SOSC:
		err = e.scg.DisableSOSC()
	case scg.SIRC:
		// SIRC keeps running; only its outputs are turned off.
		return e.scg.DisableSIRC()
	case scg.FIRC:
		err = e.scg.DisableFIRC()
	case scg.APLL, scg.SPLL:
		p, _ := scg.PLLFor(src)
		if !e.target.HasPLL(p) {
			return fmt.Errorf("%w: %s has no %s", peripheral.ErrUnsupported, e.target.Series, p)
		}
		if err = e.scg.DisablePLL(p); err == nil {
			delete(e.pllInputs, p)
		}
	default:
		return fmt.Errorf("%w: %s is not managed by this engine", peripheral.ErrUnsupported, src)
	}
	if err != nil {
		return err
	}
	delete(e.running, src)
	return nil
}

// Switch moves the main clock to src. src must be running; the run mode is
// adjusted around the switch.
func (e *Engine) Switch(src scg.Source) error {
	return e.switchMain(src, e.ahbDivider())
}

// switchMain moves the main clock to src. A div above the current AHB
// divider is programmed before the switch so the system clock never runs
// undivided from src; a lower one is left for SetAHBDivider afterwards.
func (e *Engine) switchMain(src scg.Source, div uint32) error {
	hz, ok := e.running[src]
	if !ok {
		return fmt.Errorf("%w: %s is not running", peripheral.ErrInvalidConfig, src)
	}
	if src == e.main {
		return nil
	}
	cur := e.ahbDivider()
	if !e.hasAHB || div < cur {
		div = cur
	}
	e.logf("switch main clock %s -> %s", e.main, src)
	err := e.retune(hz/(div+1), func() error {
		if div != cur {
			e.logf("AHB divider %d", div)
			if err := e.ahb.Run(div); err != nil {
				return err
			}
		}
		return e.scg.Switch(src)
	})
	if err != nil {
		return err
	}
	e.main = src
	return nil
}

// SetSystemFrequency moves the run mode and flash wait states to the
// operating point of hz without touching the clock tree.
func (e *Engine) SetSystemFrequency(hz uint32) error {
	return e.spc.SetSystemFrequency(hz)
}

// SetAHBDivider sets the divider between the main clock and the system
// clock to div+1.
func (e *Engine) SetAHBDivider(div uint32) error {
	if !e.hasAHB {
		if div == 0 {
			return nil
		}
		return fmt.Errorf("%w: %s has no AHB divider", peripheral.ErrUnsupported, e.target.Series)
	}
	if div > chip.CLKDIV_DIV.Max() {
		return fmt.Errorf("%w: AHB divider %d", peripheral.ErrOutOfRange, div)
	}
	if cur, halted := e.ahb.Value(); cur == div && !halted {
		return nil
	}
	e.logf("AHB divider %d", div)
	return e.retune(e.running[e.main]/(div+1), func() error {
		return e.ahb.Run(div)
	})
}

// ConfigureClkout routes source to the CLKOUT pin divided by div+1.
func (e *Engine) ConfigureClkout(source string, div uint32) error {
	c := e.target.Clkout
	if c == nil {
		return fmt.Errorf("%w: %s has no CLKOUT", peripheral.ErrUnsupported, e.target.Series)
	}
	code, ok := c.Sources[source]
	if !ok {
		return fmt.Errorf("%w: unknown CLKOUT source %q", peripheral.ErrInvalidConfig, source)
	}
	if div > chip.CLKDIV_DIV.Max() {
		return fmt.Errorf("%w: CLKOUT divider %d", peripheral.ErrOutOfRange, div)
	}
	e.logf("CLKOUT %s / %d", source, div+1)
	d := mrcc.NewDivider(e.bus, e.target.Blocks.SYSCON+c.Divider, e.poller)
	d.Halt()
	chip.NewRegister(e.bus, e.target.Blocks.SYSCON+c.Select).Set(chip.CLKSEL_SEL.Put(0, code))
	return d.Run(div)
}

// Frequencies reports the clocks as currently running.
func (e *Engine) Frequencies() Frequencies {
	f := Frequencies{
		SOSC:       e.running[scg.SOSC],
		SIRC:       e.running[scg.SIRC],
		FIRC:       e.running[scg.FIRC],
		APLL:       e.running[scg.APLL],
		SPLL:       e.running[scg.SPLL],
		Main:       e.running[e.main],
		System:     e.SystemFrequency(),
		Mode:       e.spc.Mode(),
		WaitStates: e.spc.WaitStates(),
	}
	if f.SIRC != 0 {
		f.Clk1M = f.SIRC / 12
		if e.scg.ReadSIRC().PeriphEnabled {
			f.SIRCPeriph = f.SIRC
		}
	}
	if f.FIRC != 0 {
		firc := e.scg.ReadFIRC()
		if firc.FCLKPeriph {
			f.FIRCFClk = f.FIRC
		}
		if firc.SCLKPeriph {
			f.FIRCSClk = e.target.DefaultFIRCRange().Frequency
		}
	}
	return f
}

// Apply brings the clock tree into the state described by cfg. Clocks are
// started in dependency order, the main clock is switched with the run mode
// raised beforehand or lowered afterwards, and clocks cfg leaves out are
// stopped last. A failing step ends Apply; completed steps are not undone.
func (e *Engine) Apply(cfg Config) error {
	want, err := cfg.Frequencies(e.target)
	if err != nil {
		return err
	}
	steps, err := BringUpOrder(cfg)
	if err != nil {
		return err
	}
	e.logf("apply: %s main, system %s, %s", cfg.Main, Frequency(want.System), want.Mode)
	if err := e.release(cfg); err != nil {
		return err
	}
	for _, step := range steps {
		if err := e.run(cfg, step); err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
	}
	return nil
}

// Reset returns the clock tree to the power-on configuration of the target.
func (e *Engine) Reset() error {
	return e.Apply(DefaultConfig(e.target))
}

// changes reports whether applying cfg reprograms the running source src to
// a different output.
func (e *Engine) changes(cfg Config, src scg.Source) bool {
	hz, ok := e.running[src]
	if !ok {
		return false
	}
	switch src {
	case scg.SOSC:
		return cfg.SOSC != nil && cfg.SOSC.Frequency != hz
	case scg.FIRC:
		return cfg.FIRC != nil && cfg.FIRC.Range.Frequency != hz
	case scg.APLL, scg.SPLL:
		p, _ := scg.PLLFor(src)
		setup := cfg.PLL(p)
		if setup == nil {
			return false
		}
		return e.scg.ReadPLL(p) != setup.PLLConfig || e.changes(cfg, setup.Input) || e.changes(cfg, e.pllInputs[p])
	}
	return false
}

// release moves the main clock to SIRC and stops PLLs when cfg reprograms
// the clocks they run from.
func (e *Engine) release(cfg Config) error {
	if e.main != scg.FIRC && e.changes(cfg, e.main) {
		if err := e.Switch(scg.SIRC); err != nil {
			return fmt.Errorf("park on SIRC: %w", err)
		}
	}
	for p, in := range e.pllInputs {
		src := p.Source()
		if src == e.main || !e.Valid(src) {
			continue
		}
		if e.changes(cfg, src) || e.changes(cfg, in) {
			if err := e.Disable(src); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) run(cfg Config, step Step) error {
	switch step.Kind {
	case StepEnable:
		switch step.Source {
		case scg.SOSC:
			return e.EnableSOSC(*cfg.SOSC)
		case scg.SIRC:
			return e.EnableSIRC(*cfg.SIRC)
		case scg.FIRC:
			return e.EnableFIRC(*cfg.FIRC)
		}
		p, _ := scg.PLLFor(step.Source)
		return e.EnablePLL(p, *cfg.PLL(p))
	case StepSwitch:
		return e.switchMain(step.Source, cfg.AHBDivider)
	case StepAHBDivider:
		return e.SetAHBDivider(cfg.AHBDivider)
	case StepClkout:
		return e.ConfigureClkout(cfg.Clkout.Source, cfg.Clkout.Divider)
	case StepDisable:
		if !e.Valid(step.Source) {
			return nil
		}
		if p, ok := scg.PLLFor(step.Source); ok && !e.target.HasPLL(p) {
			return nil
		}
		return e.Disable(step.Source)
	}
	return fmt.Errorf("%w: unknown step %s", peripheral.ErrInvalidConfig, step)
}
