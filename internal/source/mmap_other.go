//go:build !unix

package source

import (
	"errors"
	"os"
)

// mmapFile is unavailable on non-unix GOOS; Open falls back to a buffered
// read whenever this returns an error.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	return nil, errors.New("source: mmap not supported on this platform")
}

func munmapFile(data []byte) error {
	return nil
}
