//go:build !unix

package mmfile

import "os"

// Map reads the whole file; mmap is not used on this platform.
func Map(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{Data: data, release: noRelease}, nil
}
