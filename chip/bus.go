// Package chip describes the memory-mapped register contract of the clock,
// power and peripheral clock-control blocks.
package chip

// Bus performs 32-bit accesses to the peripheral address space.
type Bus interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, value uint32)
}

// Register is a single 32-bit register reached through a Bus.
type Register struct {
	bus  Bus
	addr uintptr
}

func NewRegister(bus Bus, addr uintptr) Register {
	return Register{bus: bus, addr: addr}
}

func (r Register) Address() uintptr {
	return r.addr
}

func (r Register) Get() uint32 {
	return r.bus.Load(r.addr)
}

func (r Register) Set(value uint32) {
	r.bus.Store(r.addr, value)
}

// SetBits performs a read-modify-write setting every bit in mask.
func (r Register) SetBits(mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits performs a read-modify-write clearing every bit in mask.
func (r Register) ClearBits(mask uint32) {
	r.Set(r.Get() &^ mask)
}

func (r Register) HasBits(mask uint32) bool {
	return r.Get()&mask != 0
}

// ReplaceBits replaces the bits selected by mask<<pos with value<<pos.
func (r Register) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Modify applies fn to the current value and stores the result in a single
// write.
func (r Register) Modify(fn func(v uint32) uint32) {
	r.Set(fn(r.Get()))
}

// Field is a bit-field inside a register word.
type Field struct {
	Pos   uint8
	Width uint8
}

func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return (1<<f.Width - 1) << f.Pos
}

// Max returns the largest value the field can hold.
func (f Field) Max() uint32 {
	return f.Mask() >> f.Pos
}

func (f Field) Get(word uint32) uint32 {
	return (word & f.Mask()) >> f.Pos
}

// Put returns word with the field replaced by value. Bits of value that do not
// fit are discarded.
func (f Field) Put(word, value uint32) uint32 {
	return word&^f.Mask() | (value<<f.Pos)&f.Mask()
}

// Bit returns the mask for a single-bit flag.
func Bit(pos uint8) uint32 {
	return 1 << pos
}

// Flag sets or clears mask in word depending on on.
func Flag(word, mask uint32, on bool) uint32 {
	if on {
		return word | mask
	}
	return word &^ mask
}
