package valueparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type NumberKind int

const (
	NumberStandard NumberKind = iota
	NumberFlexible
	NumberLocale
	NumberParseStrategy
	NumberCurrency
)

// NumberStrategy configures ParseInt/ParseFloat/FormatNumber.
type NumberStrategy struct {
	Kind         NumberKind
	LocaleTag    string
	CurrencyCode string
}

// ParseFloat parses value as a float64 under strategy.
func ParseFloat(value string, strategy NumberStrategy) (float64, error) {
	switch strategy.Kind {
	case NumberStandard:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("valueparse: %q is not a valid number: %w", value, err)
		}
		return f, nil
	case NumberFlexible:
		normalized, err := normalizeFlexibleNumber(value)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(normalized, 64)
	case NumberLocale, NumberParseStrategy:
		return parseLocaleNumber(value, strategy.LocaleTag)
	case NumberCurrency:
		return parseCurrencyNumber(value, strategy)
	default:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	}
}

// ParseInt parses value as an int64 under strategy.
func ParseInt(value string, strategy NumberStrategy) (int64, error) {
	if strategy.Kind == NumberStandard {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("valueparse: %q is not a valid integer: %w", value, err)
		}
		return n, nil
	}
	f, err := ParseFloat(value, strategy)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// normalizeFlexibleNumber implements the flexible-strategy normalization
// rules from spec §4.7: strip currency symbols/unit suffixes, then
// disambiguate "," vs "." as decimal vs grouping separator.
func normalizeFlexibleNumber(value string) (string, error) {
	s := strings.TrimSpace(value)

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return "", fmt.Errorf("valueparse: %q has no numeric content", value)
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// comma is the decimal separator; dot(s) are grouping.
			s = strings.ReplaceAll(s[:lastComma], ".", "") + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s[:lastDot], ",", "") + "." + s[lastDot+1:]
		}
	case lastComma >= 0:
		trailing := s[lastComma+1:]
		commaCount := strings.Count(s, ",")
		if commaCount == 1 && len(trailing) <= 2 {
			s = s[:lastComma] + "." + trailing
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	return strings.ReplaceAll(s, ",", ""), nil
}

// localeSeparators derives the decimal and grouping separator runes a
// locale uses by formatting a sentinel value through golang.org/x/text/
// number and reading off the punctuation it produced: x/text exposes no
// general-purpose locale number *parser* to invert directly, but its
// formatter is the authoritative source of each locale's CLDR separator
// choice, so parsing borrows it rather than hardcoding a locale table.
func localeSeparators(tag language.Tag) (decimal, group rune) {
	formatted := message.NewPrinter(tag).Sprintf("%v", number.Decimal(1234.5))
	decimal = '.'
	runes := []rune(formatted)
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsDigit(runes[i]) {
			decimal = runes[i]
			break
		}
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) && r != decimal {
			group = r
			break
		}
	}
	return decimal, group
}

// applyLocaleSeparators rewrites value into Go's canonical decimal form
// given the locale's actual decimal/grouping runes, dropping currency
// symbols and other decoration the same way the flexible strategy does.
func applyLocaleSeparators(value string, decimal, group rune) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r == decimal:
			b.WriteByte('.')
		case r == group || unicode.IsSpace(r):
			// grouping separator or stray whitespace (including the
			// no-break space some locales group with): drop.
		case r >= '0' && r <= '9', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" || s == "+" {
		return "", fmt.Errorf("valueparse: %q has no numeric content", value)
	}
	return s, nil
}

// parseLocaleNumber parses value using the decimal/grouping separators
// golang.org/x/text/number reports for the given BCP-47 locale tag.
func parseLocaleNumber(value string, tag string) (float64, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return 0, fmt.Errorf("valueparse: invalid locale tag %q: %w", tag, err)
	}
	decimal, group := localeSeparators(t)
	normalized, err := applyLocaleSeparators(value, decimal, group)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(normalized, 64)
}

// parseCurrencyNumber strips the locale's symbol for strategy.CurrencyCode
// (resolved via golang.org/x/text/currency) before applying the same
// locale-aware separator rules parseLocaleNumber uses.
func parseCurrencyNumber(value string, strategy NumberStrategy) (float64, error) {
	tag := strategy.LocaleTag
	if tag == "" {
		tag = "en"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return 0, fmt.Errorf("valueparse: invalid locale tag %q: %w", tag, err)
	}
	decimal, group := localeSeparators(t)

	s := value
	if strategy.CurrencyCode != "" {
		unit, err := currency.ParseISO(strategy.CurrencyCode)
		if err != nil {
			return 0, fmt.Errorf("valueparse: invalid currency code %q: %w", strategy.CurrencyCode, err)
		}
		if sym := currencySymbol(unit, t, decimal, group); sym != "" {
			s = strings.ReplaceAll(s, sym, "")
		}
	}
	normalized, err := applyLocaleSeparators(s, decimal, group)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(normalized, 64)
}

// currencySymbol formats a zero amount of unit through the locale's
// printer and strips the digits/separators it produced, leaving the bare
// symbol (e.g. "$", "€", "CHF").
func currencySymbol(unit currency.Unit, tag language.Tag, decimal, group rune) string {
	formatted := message.NewPrinter(tag).Sprintf("%v", currency.Symbol(unit.Amount(0)))
	var b strings.Builder
	for _, r := range formatted {
		if unicode.IsDigit(r) || r == decimal || r == group || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatNumber is the encode-side inverse of ParseFloat/ParseInt: canonical
// base-10 for standard/flexible strategies, locale- or currency-formatted
// (via golang.org/x/text/number and /currency) otherwise.
func FormatNumber(v float64, strategy NumberStrategy) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("valueparse: cannot format non-finite float %v", v)
	}

	switch strategy.Kind {
	case NumberLocale, NumberParseStrategy:
		t, err := language.Parse(strategy.LocaleTag)
		if err != nil {
			return "", fmt.Errorf("valueparse: invalid locale tag %q: %w", strategy.LocaleTag, err)
		}
		return message.NewPrinter(t).Sprintf("%v", number.Decimal(v)), nil
	case NumberCurrency:
		tag := strategy.LocaleTag
		if tag == "" {
			tag = "en"
		}
		t, err := language.Parse(tag)
		if err != nil {
			return "", fmt.Errorf("valueparse: invalid locale tag %q: %w", tag, err)
		}
		if strategy.CurrencyCode == "" {
			return message.NewPrinter(t).Sprintf("%v", number.Decimal(v)), nil
		}
		unit, err := currency.ParseISO(strategy.CurrencyCode)
		if err != nil {
			return "", fmt.Errorf("valueparse: invalid currency code %q: %w", strategy.CurrencyCode, err)
		}
		return message.NewPrinter(t).Sprintf("%v", currency.Symbol(unit.Amount(v))), nil
	default:
		return FormatFloat(v)
	}
}

// FormatFloat is the plain encode-side inverse: canonical base-10 string,
// rejecting NaN/±Inf per spec §4.11.
func FormatFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("valueparse: cannot format non-finite float %v", v)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

// FormatInt is the encode-side inverse for integers.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
