package csvcore

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func compareWriterWithStdlib(t *testing.T, records [][]string, crlf bool) {
	t.Helper()

	var got bytes.Buffer
	w := NewWriter(&got)
	if crlf {
		w.LineEnding = CRLF
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var want bytes.Buffer
	stdW := csv.NewWriter(&want)
	stdW.UseCRLF = crlf
	if err := stdW.WriteAll(records); err != nil {
		t.Fatalf("stdlib Write: %v", err)
	}

	if got.String() != want.String() {
		t.Errorf("got %q, want %q (stdlib)", got.String(), want.String())
	}
}

func TestWriteSimple(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{"single row single field", [][]string{{"hello"}}},
		{"single row multiple fields", [][]string{{"a", "b", "c"}}},
		{"multiple rows", [][]string{{"a", "b"}, {"c", "d"}}},
		{"empty string field", [][]string{{"", "b", ""}}},
		{"numeric strings", [][]string{{"1", "2", "3"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareWriterWithStdlib(t, tt.records, false)
		})
	}
}

func TestWriteQuoteRequired(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{"field with comma", [][]string{{"hello,world", "foo"}}},
		{"field with newline", [][]string{{"hello\nworld", "foo"}}},
		{"field with quote", [][]string{{`he said "hello"`, "foo"}}},
		{"field with CRLF", [][]string{{"hello\r\nworld", "foo"}}},
		{"field starting with space", [][]string{{" hello", "foo"}}},
		{"field starting with tab", [][]string{{"\thello", "foo"}}},
		{"field with multiple special chars", [][]string{{"hello,\n\"world\"", "foo"}}},
		{"just a quote", [][]string{{`"`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareWriterWithStdlib(t, tt.records, false)
		})
	}
}

func TestWriteAll(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{"multiple simple rows", [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"x", "y", "z"}}},
		{"mixed quoted and unquoted", [][]string{{"hello", "world,foo"}, {"bar", "baz"}}},
		{"empty records", [][]string{}},
		{"single empty row", [][]string{{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareWriterWithStdlib(t, tt.records, false)
		})
	}
}

func TestWriteCRLF(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
	}{
		{"simple with CRLF", [][]string{{"a", "b"}, {"c", "d"}}},
		{"quoted fields with CRLF", [][]string{{"hello,world", "foo"}, {"bar", "baz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compareWriterWithStdlib(t, tt.records, true)
		})
	}
}

func TestNeedsQuotingLongInput(t *testing.T) {
	w := NewWriter(nil)
	tests := []struct {
		name  string
		field string
		want  bool
	}{
		{"100 chars no special", strings.Repeat("abcdefghij", 10), false},
		{"100 chars with comma at end", strings.Repeat("abcdefghij", 10) + ",", true},
		{"100 chars with newline at position 50", strings.Repeat("a", 50) + "\n" + strings.Repeat("b", 50), true},
		{"100 chars with quote at position 80", strings.Repeat("x", 80) + `"` + strings.Repeat("y", 19), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.needsQuoting(tt.field); got != tt.want {
				t.Errorf("needsQuoting = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteQuotedFieldLong(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{
			name:  "long with quotes",
			field: strings.Repeat("a", 20) + `"` + strings.Repeat("b", 20) + `"` + strings.Repeat("c", 20),
			want:  `"` + strings.Repeat("a", 20) + `""` + strings.Repeat("b", 20) + `""` + strings.Repeat("c", 20) + `"`,
		},
		{
			name:  "long no quotes to escape",
			field: strings.Repeat("hello,world ", 10),
			want:  `"` + strings.Repeat("hello,world ", 10) + `"`,
		},
		{
			name:  "quote at chunk boundary",
			field: strings.Repeat("x", 31) + `"` + strings.Repeat("y", 31),
			want:  `"` + strings.Repeat("x", 31) + `""` + strings.Repeat("y", 31) + `"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.Write([]string{tt.field}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			got := strings.TrimSuffix(buf.String(), "\n")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkNeedsQuotingShort(b *testing.B) {
	w := NewWriter(nil)
	field := "hello,world"
	for b.Loop() {
		w.needsQuoting(field)
	}
}

func BenchmarkNeedsQuotingLong(b *testing.B) {
	w := NewWriter(nil)
	field := strings.Repeat("abcdefgh", 100)
	for b.Loop() {
		w.needsQuoting(field)
	}
}

func BenchmarkWriteQuotedFieldLong(b *testing.B) {
	field := strings.Repeat("a", 50) + `"` + strings.Repeat("b", 50)
	for b.Loop() {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		_ = w.Write([]string{field})
		_ = w.Flush()
	}
}
