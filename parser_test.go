package csvcore

import (
	"io"
	"testing"
)

func collectRows(t *testing.T, p *RowParser) [][]string {
	t.Helper()
	var out [][]string
	for {
		v, err := p.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		row := make([]string, v.FieldCount())
		for i := range row {
			s, ok := v.Field(i)
			if !ok {
				t.Fatalf("field %d not ok", i)
			}
			row[i] = s
		}
		out = append(out, row)
	}
}

func TestRowParserSimple(t *testing.T) {
	p := NewRowParser([]byte("a,b,c\n1,2,3\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	want := [][]string{{"a", "b", "c"}, {"1", "2", "3"}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d field %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestRowParserNoTrailingNewline(t *testing.T) {
	p := NewRowParser([]byte("a,b,c"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRowParserTrailingNewlineYieldsNoExtraRow(t *testing.T) {
	p := NewRowParser([]byte("a,b\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want 1", rows)
	}
}

func TestRowParserQuotedField(t *testing.T) {
	p := NewRowParser([]byte(`1,"hello, world",3` + "\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 1 || rows[0][1] != "hello, world" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRowParserEscapedQuote(t *testing.T) {
	p := NewRowParser([]byte(`"she said ""hi"""` + "\n"), ',', ParsingLenient)
	v, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.Field(0)
	if !ok || s != `she said "hi"` {
		t.Fatalf("field = %q, ok=%v", s, ok)
	}
}

func TestRowParserQuotedFieldWithEmbeddedNewline(t *testing.T) {
	p := NewRowParser([]byte("\"line1\nline2\",b\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 1 || rows[0][0] != "line1\nline2" || rows[0][1] != "b" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRowParserCRLF(t *testing.T) {
	p := NewRowParser([]byte("a,b\r\nc,d\r\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 2 || rows[1][0] != "c" || rows[1][1] != "d" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRowParserUnterminatedQuote(t *testing.T) {
	p := NewRowParser([]byte(`"unterminated`), ',', ParsingLenient)
	v, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.UnterminatedQuote {
		t.Error("expected UnterminatedQuote flag")
	}
	if v.UnterminatedQuoteColumn != 1 {
		t.Errorf("expected UnterminatedQuoteColumn 1, got %d", v.UnterminatedQuoteColumn)
	}
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("expected EOF after unterminated row, got %v", err)
	}
}

func TestRowParserBareQuoteLenientVsStrict(t *testing.T) {
	data := []byte(`a"b,c` + "\n")

	lenient := NewRowParser(data, ',', ParsingLenient)
	v, err := lenient.Next()
	if err != nil {
		t.Fatalf("lenient: unexpected error: %v", err)
	}
	if !v.QuoteInUnquoted {
		t.Error("expected QuoteInUnquoted flag in lenient mode")
	}

	strict := NewRowParser(data, ',', ParsingStrict)
	if _, err := strict.Next(); err == nil {
		t.Error("expected error in strict mode for bare quote")
	}
}

func TestRowParserEmptyInput(t *testing.T) {
	p := NewRowParser(nil, ',', ParsingLenient)
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("expected EOF on empty input, got %v", err)
	}
}

func TestRowParserEmptyFields(t *testing.T) {
	p := NewRowParser([]byte(",,\n"), ',', ParsingLenient)
	rows := collectRows(t, p)
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	for _, f := range rows[0] {
		if f != "" {
			t.Errorf("expected empty field, got %q", f)
		}
	}
}

func TestRowViewFieldOutOfRange(t *testing.T) {
	p := NewRowParser([]byte("a,b\n"), ',', ParsingLenient)
	v, err := p.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Field(5); ok {
		t.Error("expected ok=false for out-of-range field")
	}
}
