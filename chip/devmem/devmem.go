// Package devmem implements chip.Bus over physical memory mapped from
// /dev/mem, for running the clock engine from a host that shares the
// address space of the clock blocks.
package devmem

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/exp/slices"
	"periph.io/x/periph/host/pmem"
)

// PageSize is the granularity of every mapping.
const PageSize = 0x1000

// ErrUnmapped is reported by accesses outside every mapped region.
var ErrUnmapped = errors.New("address not mapped")

// Region is a physical address range to map.
type Region struct {
	Base uintptr
	Size int
}

// Pages returns one page-aligned region per distinct page in addrs.
func Pages(addrs ...uintptr) []Region {
	var regions []Region
	for _, a := range addrs {
		base := a &^ (PageSize - 1)
		if slices.IndexFunc(regions, func(r Region) bool { return r.Base == base }) < 0 {
			regions = append(regions, Region{Base: base, Size: PageSize})
		}
	}
	return regions
}

type window struct {
	base  uintptr
	words []uint32
	io.Closer
}

// Bus accesses the mapped regions one 32-bit word at a time.
type Bus struct {
	windows []window
}

// Open maps regions through the periph physical memory driver.
func Open(regions ...Region) (*Bus, error) {
	b := &Bus{}
	for _, r := range regions {
		v, err := pmem.Map(uint64(r.Base), r.Size)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("map %#x: %w", r.Base, err)
		}
		b.windows = append(b.windows, window{base: r.Base, words: v.Uint32(), Closer: v})
	}
	return b, nil
}

func (b *Bus) word(addr uintptr) *uint32 {
	for _, w := range b.windows {
		if addr >= w.base && addr < w.base+uintptr(len(w.words))*4 {
			return &w.words[(addr-w.base)/4]
		}
	}
	panic(fmt.Errorf("devmem: %w: %#x", ErrUnmapped, addr))
}

func (b *Bus) Load(addr uintptr) uint32 {
	return atomic.LoadUint32(b.word(addr))
}

func (b *Bus) Store(addr uintptr, value uint32) {
	atomic.StoreUint32(b.word(addr), value)
}

// Close unmaps every region.
func (b *Bus) Close() error {
	var errs []error
	for _, w := range b.windows {
		if w.Closer != nil {
			errs = append(errs, w.Close())
		}
	}
	b.windows = nil
	return errors.Join(errs...)
}
