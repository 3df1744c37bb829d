package csvcore

import (
	"bytes"
	"errors"
	"testing"
)

func TestSinkBuffersSmallWrites(t *testing.T) {
	var buf bytes.Buffer
	s := NewSinkSize(&buf, 16)
	if _, err := s.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected buffered write to not reach the destination yet, got %d bytes", buf.Len())
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "abc" {
		t.Errorf("got %q", buf.String())
	}
}

func TestSinkFlushesBeforeOverflow(t *testing.T) {
	var buf bytes.Buffer
	s := NewSinkSize(&buf, 8)
	if _, err := s.Write([]byte("1234")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write([]byte("5678")); err != nil {
		t.Fatal(err)
	}
	// "12345678" fits exactly; still buffered.
	if buf.Len() != 0 {
		t.Errorf("expected still-buffered, got %d bytes flushed", buf.Len())
	}
	if _, err := s.Write([]byte("9")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "12345678" {
		t.Errorf("got %q, want flush of first 8 bytes", buf.String())
	}
}

func TestSinkBypassesLargeWrite(t *testing.T) {
	var buf bytes.Buffer
	s := NewSinkSize(&buf, 8)
	if _, err := s.Write([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	big := bytes.Repeat([]byte("x"), 100)
	if _, err := s.Write(big); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "ab"+string(big) {
		t.Errorf("bypass write did not preserve ordering")
	}
}

type closeTrackingWriter struct {
	bytes.Buffer
	closed bool
}

func (c *closeTrackingWriter) Close() error {
	c.closed = true
	return nil
}

func TestSinkCloseClosesUnderlying(t *testing.T) {
	w := &closeTrackingWriter{}
	s := NewSink(w)
	if _, err := s.Write([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed {
		t.Error("expected underlying writer to be closed")
	}
	if w.String() != "hi" {
		t.Errorf("got %q", w.String())
	}
}

type erroringWriter struct{}

func (erroringWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestSinkSurfacesBypassWriteError(t *testing.T) {
	s := NewSinkSize(erroringWriter{}, 4)
	if _, err := s.Write([]byte("abcdefgh")); err == nil {
		t.Error("expected error from bypassed large write")
	}
}

func TestSinkCloseIsIdempotent(t *testing.T) {
	w := &closeTrackingWriter{}
	s := NewSink(w)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
