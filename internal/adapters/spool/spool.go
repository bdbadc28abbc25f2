// Package spool buffers a streamed upload so it can be read again from the
// start for every storage attempt.
package spool

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

var errClosed = errors.New("spool closed")

// Spool holds up to memLimit bytes in memory and moves to a temporary file
// past that. It implements domain.FileSource once written.
type Spool struct {
	dir      string
	memLimit int64
	buf      bytes.Buffer
	file     *os.File
	size     int64
	closed   bool
}

// New creates an empty spool. An empty dir means os.TempDir.
func New(dir string, memLimit int64) *Spool {
	return &Spool{dir: dir, memLimit: memLimit}
}

// Write appends p, switching to disk when the memory limit would be crossed
func (s *Spool) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errClosed
	}
	if s.file == nil && int64(s.buf.Len()+len(p)) > s.memLimit {
		if err := s.moveToDisk(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.buf.Write(p)
	}
	s.size += int64(n)
	return n, err
}

func (s *Spool) moveToDisk() error {
	f, err := os.CreateTemp(s.dir, "upload-*.spool")
	if err != nil {
		return fmt.Errorf("failed to create spool file: %w", err)
	}
	if _, err := f.Write(s.buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write spool file: %w", err)
	}
	s.buf = bytes.Buffer{}
	s.file = f
	return nil
}

// Size returns the number of bytes written so far
func (s *Spool) Size() int64 {
	return s.size
}

// OnDisk reports whether the spool has moved to a temporary file
func (s *Spool) OnDisk() bool {
	return s.file != nil
}

// Open returns a reader positioned on the first byte
func (s *Spool) Open() (io.ReadCloser, error) {
	if s.closed {
		return nil, errClosed
	}
	if s.file == nil {
		return io.NopCloser(bytes.NewReader(s.buf.Bytes())), nil
	}
	f, err := os.Open(s.file.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open spool file: %w", err)
	}
	return f, nil
}

// Close frees the buffer and deletes the temporary file. It is safe to call twice.
func (s *Spool) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf = bytes.Buffer{}
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	closeErr := s.file.Close()
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove spool file: %w", err)
	}
	return closeErr
}
