//go:build linux

package devmem

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

type mapping []byte

func (m mapping) Close() error {
	return unix.Munmap(m)
}

// OpenSync maps regions from /dev/mem opened with O_SYNC, which keeps the
// kernel from caching the device pages on platforms where the periph driver
// maps them cached.
func OpenSync(regions ...Region) (*Bus, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := &Bus{}
	for _, r := range regions {
		data, err := unix.Mmap(int(f.Fd()), int64(r.Base), r.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("mmap %#x: %w", r.Base, err)
		}
		words := unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
		b.windows = append(b.windows, window{base: r.Base, words: words, Closer: mapping(data)})
	}
	return b, nil
}
