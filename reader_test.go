package csvcore

import (
	"reflect"
	"testing"
)

func TestReadSimple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "single row multiple fields",
			input: "a,b,c\n",
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "multiple rows",
			input: "a,b,c\n1,2,3\nx,y,z\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"x", "y", "z"}},
		},
		{
			name:  "quoted field with embedded comma",
			input: "name,note\nAlice,\"hi, there\"\n",
			want:  [][]string{{"name", "note"}, {"Alice", "hi, there"}},
		},
		{
			name:  "escaped quote",
			input: `a,"she said ""hi"""` + "\n",
			want:  [][]string{{"a", `she said "hi"`}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBytes([]byte(tc.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReaderReadOneAtATime(t *testing.T) {
	r := NewReaderBytes([]byte("a,b\nc,d\n"))

	rec, err := r.Read()
	if err != nil || !reflect.DeepEqual(rec, []string{"a", "b"}) {
		t.Fatalf("first record = %v, %v", rec, err)
	}

	rec, err = r.Read()
	if err != nil || !reflect.DeepEqual(rec, []string{"c", "d"}) {
		t.Fatalf("second record = %v, %v", rec, err)
	}

	_, err = r.Read()
	if err == nil {
		t.Fatal("expected io.EOF on exhausted reader")
	}
}

func TestReaderCustomDelimiter(t *testing.T) {
	r := NewReaderBytes([]byte("a;b;c\n"), WithReaderDelimiter(';'))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a", "b", "c"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("got %v, want %v", records, want)
	}
}

func TestParseBytesStreamingStopsEarly(t *testing.T) {
	var seen [][]string
	ParseBytesStreaming([]byte("a\nb\nc\n"))(func(rec []string, err error) bool {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen = append(seen, rec)
		return len(seen) < 2
	})

	want := [][]string{{"a"}, {"b"}}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("got %v, want %v", seen, want)
	}
}

func TestReadStrictModeReportsBareQuote(t *testing.T) {
	r := NewReaderBytes([]byte("a\"b,c\n"), WithReaderParsingMode(ParsingStrict))
	_, err := r.Read()
	if err == nil {
		t.Fatal("expected strict-mode bare-quote error")
	}
}

func TestReadUnterminatedQuoteIsFatal(t *testing.T) {
	r := NewReaderBytes([]byte(`a,"b` + "\n"))
	_, err := r.Read()
	if err == nil {
		t.Fatal("expected an error for an unterminated quoted field")
	}
	pe, ok := err.(*ParsingError)
	if !ok {
		t.Fatalf("expected *ParsingError, got %T (%v)", err, err)
	}
	if pe.Message != "Unterminated quoted field" {
		t.Errorf("got message %q", pe.Message)
	}
	if pe.Location.Row != 1 || pe.Location.ColumnIndex != 3 {
		t.Errorf("got location %+v, want row 1 column 3", pe.Location)
	}
}
