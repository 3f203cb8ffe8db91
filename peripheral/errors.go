// Package peripheral holds the error kinds shared by the clock and power
// packages.
package peripheral

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrOutOfRange        = errors.New("value out of range")
	ErrBusy              = errors.New("resource busy")
	ErrHardware          = errors.New("hardware error")
	ErrTimeout           = errors.New("timed out waiting for hardware")
	ErrUnknownPeripheral = errors.New("unknown peripheral")
	ErrUnsupported       = errors.New("not supported by this chip")
)
