//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Map maps the file at path read-only into memory.
func Map(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() // the mapping keeps the pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &Mapping{Data: []byte{}, release: noRelease}, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Mapping{
		Data: data,
		release: func() error {
			err := syscall.Munmap(data)
			if errors.Is(err, syscall.EINVAL) {
				return nil
			}
			return err
		},
	}, nil
}
