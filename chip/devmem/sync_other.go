//go:build !linux

package devmem

import (
	"fmt"
	"runtime"

	"omibyte.io/mcxclk/peripheral"
)

func OpenSync(regions ...Region) (*Bus, error) {
	return nil, fmt.Errorf("%w: /dev/mem on %s", peripheral.ErrUnsupported, runtime.GOOS)
}
