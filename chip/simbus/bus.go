// Package simbus provides an in-memory register bus that records every access.
// Together with the hardware model in model.go it stands in for the real
// clock and power blocks in tests and dry runs.
package simbus

import (
	"fmt"
	"strings"
	"sync"
)

type OpKind uint8

const (
	Read OpKind = iota
	Write
)

func (k OpKind) String() string {
	if k == Write {
		return "W"
	}
	return "R"
}

// Op is one recorded bus access.
type Op struct {
	Kind  OpKind
	Addr  uintptr
	Value uint32
}

func (o Op) String() string {
	return fmt.Sprintf("%s %#08x %#08x", o.Kind, o.Addr, o.Value)
}

// StoreHook decides the value that actually lands in the register when
// software writes value over old.
type StoreHook func(b *Bus, addr uintptr, old, value uint32) uint32

// LoadHook may change the register contents observed by a read.
type LoadHook func(b *Bus, addr uintptr, current uint32) uint32

type Bus struct {
	mutex      sync.Mutex
	mem        map[uintptr]uint32
	ops        []Op
	storeHooks map[uintptr]StoreHook
	loadHooks  map[uintptr]LoadHook
}

func New() *Bus {
	return &Bus{
		mem:        map[uintptr]uint32{},
		storeHooks: map[uintptr]StoreHook{},
		loadHooks:  map[uintptr]LoadHook{},
	}
}

func (b *Bus) Load(addr uintptr) uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	v := b.mem[addr]
	if hook, ok := b.loadHooks[addr]; ok {
		v = hook(b, addr, v)
		b.mem[addr] = v
	}
	b.ops = append(b.ops, Op{Kind: Read, Addr: addr, Value: v})
	return v
}

func (b *Bus) Store(addr uintptr, value uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.ops = append(b.ops, Op{Kind: Write, Addr: addr, Value: value})
	if hook, ok := b.storeHooks[addr]; ok {
		value = hook(b, addr, b.mem[addr], value)
	}
	b.mem[addr] = value
}

// OnStore installs hook for writes to addr, replacing any previous hook.
func (b *Bus) OnStore(addr uintptr, hook StoreHook) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.storeHooks[addr] = hook
}

// OnLoad installs hook for reads of addr, replacing any previous hook.
func (b *Bus) OnLoad(addr uintptr, hook LoadHook) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.loadHooks[addr] = hook
}

// Poke sets a register without recording an access or running hooks.
func (b *Bus) Poke(addr uintptr, value uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.mem[addr] = value
}

// Peek reads a register without recording an access or running hooks.
func (b *Bus) Peek(addr uintptr) uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.mem[addr]
}

// poke and peek are for hooks, which already run under the bus lock.
func (b *Bus) poke(addr uintptr, value uint32) {
	b.mem[addr] = value
}

func (b *Bus) peek(addr uintptr) uint32 {
	return b.mem[addr]
}

// Ops returns a copy of every recorded access.
func (b *Bus) Ops() []Op {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]Op(nil), b.ops...)
}

// Writes returns the recorded writes in order.
func (b *Bus) Writes() []Op {
	var writes []Op
	for _, op := range b.Ops() {
		if op.Kind == Write {
			writes = append(writes, op)
		}
	}
	return writes
}

// ClearOps forgets the recorded accesses but keeps register contents.
func (b *Bus) ClearOps() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.ops = nil
}

// Trace formats the recorded accesses, one per line. Names maps addresses to
// register names where known.
func (b *Bus) Trace(names map[uintptr]string) string {
	var w strings.Builder
	for _, op := range b.Ops() {
		name := names[op.Addr]
		if len(name) == 0 {
			name = fmt.Sprintf("%#08x", op.Addr)
		}
		fmt.Fprintf(&w, "%s %-18s %#08x\n", op.Kind, name, op.Value)
	}
	return w.String()
}
