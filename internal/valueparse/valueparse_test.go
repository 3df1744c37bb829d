package valueparse

import "testing"

func TestParseBoolStandard(t *testing.T) {
	cases := map[string]bool{"true": true, "YES": true, "1": true, "off": false, "n": false}
	for in, want := range cases {
		got, err := ParseBool(in, BoolStrategy{Kind: BoolStandard})
		if err != nil {
			t.Fatalf("ParseBool(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseBool(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseBoolFlexible(t *testing.T) {
	got, err := ParseBool("oui", BoolStrategy{Kind: BoolFlexible})
	if err != nil || !got {
		t.Fatalf("ParseBool(oui) = %v, %v", got, err)
	}
	got, err = ParseBool("nein", BoolStrategy{Kind: BoolFlexible})
	if err != nil || got {
		t.Fatalf("ParseBool(nein) = %v, %v", got, err)
	}
}

func TestParseBoolUnrecognized(t *testing.T) {
	if _, err := ParseBool("maybe", BoolStrategy{Kind: BoolStandard}); err == nil {
		t.Error("expected error for unrecognized token")
	}
}

func TestParseFloatStandard(t *testing.T) {
	f, err := ParseFloat("3.14", NumberStrategy{Kind: NumberStandard})
	if err != nil || f != 3.14 {
		t.Fatalf("got %v, %v", f, err)
	}
}

func TestParseFloatFlexibleEuropean(t *testing.T) {
	f, err := ParseFloat("1.234,56", NumberStrategy{Kind: NumberFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.56 {
		t.Errorf("got %v, want 1234.56", f)
	}
}

func TestParseFloatFlexibleUS(t *testing.T) {
	f, err := ParseFloat("1,234.56", NumberStrategy{Kind: NumberFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.56 {
		t.Errorf("got %v, want 1234.56", f)
	}
}

func TestParseFloatFlexibleCurrency(t *testing.T) {
	f, err := ParseFloat("$1,234.56", NumberStrategy{Kind: NumberFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.56 {
		t.Errorf("got %v, want 1234.56", f)
	}
}

func TestParseFloatFlexibleSingleCommaDecimal(t *testing.T) {
	f, err := ParseFloat("19,99", NumberStrategy{Kind: NumberFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if f != 19.99 {
		t.Errorf("got %v, want 19.99", f)
	}
}

func TestParseFloatFlexibleSingleCommaGrouping(t *testing.T) {
	f, err := ParseFloat("1,234", NumberStrategy{Kind: NumberFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234 {
		t.Errorf("got %v, want 1234", f)
	}
}

func TestParseIntStandard(t *testing.T) {
	n, err := ParseInt("42", NumberStrategy{Kind: NumberStandard})
	if err != nil || n != 42 {
		t.Fatalf("got %v, %v", n, err)
	}
}

func TestParseFloatLocaleGerman(t *testing.T) {
	f, err := ParseFloat("1.234,5", NumberStrategy{Kind: NumberLocale, LocaleTag: "de"})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.5 {
		t.Errorf("got %v, want 1234.5", f)
	}
}

func TestParseFloatLocaleEnglish(t *testing.T) {
	f, err := ParseFloat("1,234.5", NumberStrategy{Kind: NumberLocale, LocaleTag: "en"})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.5 {
		t.Errorf("got %v, want 1234.5", f)
	}
}

func TestParseFloatCurrencyStripsSymbol(t *testing.T) {
	f, err := ParseFloat("$1,234.56", NumberStrategy{Kind: NumberCurrency, LocaleTag: "en", CurrencyCode: "USD"})
	if err != nil {
		t.Fatal(err)
	}
	if f != 1234.56 {
		t.Errorf("got %v, want 1234.56", f)
	}
}

func TestFormatNumberLocaleRoundTrips(t *testing.T) {
	s, err := FormatNumber(1234.5, NumberStrategy{Kind: NumberLocale, LocaleTag: "de"})
	if err != nil {
		t.Fatal(err)
	}
	f, err := ParseFloat(s, NumberStrategy{Kind: NumberLocale, LocaleTag: "de"})
	if err != nil {
		t.Fatalf("round trip parse failed on %q: %v", s, err)
	}
	if f != 1234.5 {
		t.Errorf("round trip got %v, want 1234.5", f)
	}
}

func TestFormatNumberRejectsNonFinite(t *testing.T) {
	if _, err := FormatNumber(nan(), NumberStrategy{Kind: NumberLocale, LocaleTag: "en"}); err == nil {
		t.Error("expected error for NaN")
	}
}

func TestFormatFloatRejectsNonFinite(t *testing.T) {
	if _, err := FormatFloat(nan()); err == nil {
		t.Error("expected error for NaN")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestParseDateISO8601(t *testing.T) {
	tm, err := ParseDate("2024-03-15T10:30:00Z", DateStrategy{Kind: DateISO8601})
	if err != nil {
		t.Fatal(err)
	}
	if tm.Year() != 2024 || tm.Month() != 3 || tm.Day() != 15 {
		t.Errorf("got %v", tm)
	}
}

func TestParseDateFlexibleCatalog(t *testing.T) {
	tm, err := ParseDate("2024-03-15", DateStrategy{Kind: DateFlexible})
	if err != nil {
		t.Fatal(err)
	}
	if tm.Year() != 2024 {
		t.Errorf("got %v", tm)
	}
}

func TestParseDateSecondsSinceEpoch(t *testing.T) {
	tm, err := ParseDate("0", DateStrategy{Kind: DateSecondsSinceEpoch})
	if err != nil {
		t.Fatal(err)
	}
	if !tm.Equal(tm.Truncate(0)) || tm.Year() != 1970 {
		t.Errorf("got %v", tm)
	}
}

func TestIsNil(t *testing.T) {
	if !IsNil("", NilStrategy{Kind: NilEmpty}) {
		t.Error("expected empty string to be nil under NilEmpty")
	}
	if !IsNil("NULL", NilStrategy{Kind: NilNullLiteral}) {
		t.Error("expected NULL to be nil under NilNullLiteral")
	}
	custom := NilStrategy{Kind: NilCustom, Custom: map[string]struct{}{"N/A": {}}}
	if !IsNil("N/A", custom) {
		t.Error("expected N/A to be nil under custom strategy")
	}
	if IsNil("present", custom) {
		t.Error("did not expect present to be nil")
	}
}
