// Package serialbus implements chip.Bus on top of a register monitor
// reached over a serial port. Each access is one text line:
//
//	r 0x40044010            ok 0x03000000
//	w 0x40044014 0x3000000  ok
//
// and failures come back as `err "reason"`.
package serialbus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"go.bug.st/serial"
)

var (
	ErrRemote   = errors.New("monitor error")
	ErrProtocol = errors.New("malformed monitor reply")
)

// Bus forwards register accesses to the monitor. The first failure is kept
// and every later access is skipped; loads then read as zero. Check Err
// after a sequence of accesses.
type Bus struct {
	port   io.ReadWriter
	reader *bufio.Reader
	err    error
}

func New(port io.ReadWriter) *Bus {
	return &Bus{port: port, reader: bufio.NewReader(port)}
}

// Open connects to the monitor on the serial port name.
func Open(name string, baud int) (*Bus, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return New(port), nil
}

// Ports lists the serial ports present on the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

func (b *Bus) Err() error {
	return b.err
}

func (b *Bus) Close() error {
	if c, ok := b.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (b *Bus) call(format string, args ...interface{}) []string {
	if b.err != nil {
		return nil
	}
	if _, err := fmt.Fprintf(b.port, format+"\n", args...); err != nil {
		b.err = err
		return nil
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		b.err = err
		return nil
	}
	fields, err := shlex.Split(line)
	if err != nil {
		b.err = fmt.Errorf("%w: %q: %v", ErrProtocol, line, err)
		return nil
	}
	if len(fields) == 0 {
		b.err = fmt.Errorf("%w: empty line", ErrProtocol)
		return nil
	}
	switch fields[0] {
	case "ok":
		return fields[1:]
	case "err":
		b.err = fmt.Errorf("%w: %s", ErrRemote, strings.Join(fields[1:], " "))
	default:
		b.err = fmt.Errorf("%w: %q", ErrProtocol, strings.TrimSpace(line))
	}
	return nil
}

func (b *Bus) Load(addr uintptr) uint32 {
	fields := b.call("r %#x", addr)
	if b.err != nil {
		return 0
	}
	if len(fields) != 1 {
		b.err = fmt.Errorf("%w: read of %#x returned %d values", ErrProtocol, addr, len(fields))
		return 0
	}
	v, err := strconv.ParseUint(fields[0], 0, 32)
	if err != nil {
		b.err = fmt.Errorf("%w: %v", ErrProtocol, err)
		return 0
	}
	return uint32(v)
}

func (b *Bus) Store(addr uintptr, value uint32) {
	b.call("w %#x %#x", addr, value)
}
