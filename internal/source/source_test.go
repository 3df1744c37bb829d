package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		wantEnc  Encoding
		wantSkip int
	}{
		{"none", []byte("name,age\n"), UTF8, 0},
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'n', 'a'}, UTF8, 3},
		{"utf16le", []byte{0xFF, 0xFE, 'n', 0}, UTF16LE, 2},
		{"utf16be", []byte{0xFE, 0xFF, 0, 'n'}, UTF16BE, 2},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00, 'n', 0, 0, 0}, UTF32LE, 4},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF, 0, 0, 0, 'n'}, UTF32BE, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, skip := DetectBOM(c.data)
			if enc != c.wantEnc || skip != c.wantSkip {
				t.Errorf("DetectBOM(%v) = (%v, %d), want (%v, %d)", c.data, enc, skip, c.wantEnc, c.wantSkip)
			}
		})
	}
}

func TestNormalizeBOMPlainUTF8(t *testing.T) {
	out, err := NormalizeBOM([]byte("name,age\nAlice,30\n"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "name,age\nAlice,30\n" {
		t.Errorf("got %q", out)
	}
}

func TestNormalizeBOMStripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\n")...)
	out, err := NormalizeBOM(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "name\n" {
		t.Errorf("got %q", out)
	}
}

func TestOpenAndFromBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if src.Len() != 8 {
		t.Errorf("Len() = %d, want 8", src.Len())
	}
	if string(src.Bytes()) != "a,b\n1,2\n" {
		t.Errorf("Bytes() = %q", src.Bytes())
	}

	fb := FromBytes([]byte("x,y\n"))
	if fb.Len() != 4 {
		t.Errorf("FromBytes Len() = %d", fb.Len())
	}
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if src.Len() != 0 {
		t.Errorf("Len() = %d, want 0", src.Len())
	}
}
