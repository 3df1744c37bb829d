// Package source implements the codec's MappedSource (C2) and BOM/transcode
// (C3) layers: an immutable, borrowed byte region backing every downstream
// parse, obtained via mmap where possible and via a buffered read otherwise.
//
// Grounded on entreya-csvquery's Scanner, which maps a file with a direct
// syscall.Mmap call rather than a third-party mmap wrapper.
package source

import (
	"fmt"
	"io"
	"os"
)

// MappedSource owns an immutable byte region for the lifetime of a single
// decode invocation. Bytes() must not be retained past Close().
type MappedSource struct {
	data    []byte
	mmapped bool
	file    *os.File
}

// Open maps path read-only. Regular files are memory-mapped; anything else
// (named pipes, sockets, character devices) is read fully into an owned
// buffer, matching the spec's "advisory" mapping contract.
func Open(path string) (*MappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() || info.Size() == 0 {
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("source: read %s: %w", path, err)
		}
		return &MappedSource{data: data}, nil
	}

	data, err := mmapFile(f, info.Size())
	if err != nil {
		// Advisory mapping failed (e.g. unsupported filesystem); fall back
		// to an ordinary buffered read rather than failing the open.
		if _, serr := f.Seek(0, io.SeekStart); serr == nil {
			data, rerr := io.ReadAll(f)
			f.Close()
			if rerr != nil {
				return nil, fmt.Errorf("source: fallback read %s: %w", path, rerr)
			}
			return &MappedSource{data: data}, nil
		}
		f.Close()
		return nil, fmt.Errorf("source: mmap %s: %w", path, err)
	}
	return &MappedSource{data: data, mmapped: true, file: f}, nil
}

// FromBytes wraps an already-owned byte slice (e.g. from a pipe read, or
// after BOM transcoding) as a MappedSource.
func FromBytes(data []byte) *MappedSource {
	return &MappedSource{data: data}
}

// FromReader fully drains r into an owned buffer and wraps it.
func FromReader(r io.Reader) (*MappedSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read: %w", err)
	}
	return &MappedSource{data: data}, nil
}

// Len returns the byte length of the source.
func (m *MappedSource) Len() int { return len(m.data) }

// Bytes returns the borrowed byte view. Valid only until Close.
func (m *MappedSource) Bytes() []byte { return m.data }

// Close releases the mapping (or is a no-op for owned buffers).
func (m *MappedSource) Close() error {
	if !m.mmapped {
		return nil
	}
	err := munmapFile(m.data)
	m.data = nil
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
