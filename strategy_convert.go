package csvcore

import (
	"time"

	"github.com/csvcore/csvcore/internal/valueparse"
)

// Strategy types are deliberately duplicated (by shape, not by identity)
// across csvcore, internal/bind, and internal/valueparse to avoid an
// import cycle (csvcore imports both; neither may import csvcore back).
// These functions perform the one-time field-by-field conversion at the
// call site, the boundary where the public Configuration meets the
// internal decode/encode machinery.

func toValueparseNil(s NilStrategy) valueparse.NilStrategy {
	return valueparse.NilStrategy{Kind: valueparse.NilKind(s.Kind), Custom: s.Custom}
}

func toValueparseBool(s BoolStrategy) valueparse.BoolStrategy {
	return valueparse.BoolStrategy{Kind: valueparse.BoolKind(s.Kind), TrueSet: s.TrueSet, FalseSet: s.FalseSet}
}

func toValueparseNumber(s NumberStrategy) valueparse.NumberStrategy {
	return valueparse.NumberStrategy{Kind: valueparse.NumberKind(s.Kind), LocaleTag: s.LocaleTag, CurrencyCode: s.CurrencyCode}
}

func toValueparseDate(s DateStrategy) valueparse.DateStrategy {
	var custom valueparse.DateParseFunc
	if s.Custom != nil {
		orig := s.Custom
		custom = func(v string) (time.Time, error) {
			unixNano, err := orig(v)
			if err != nil {
				return time.Time{}, err
			}
			return time.Unix(0, unixNano).UTC(), nil
		}
	}
	return valueparse.DateStrategy{
		Kind:      valueparse.DateKind(s.Kind),
		Pattern:   s.Pattern,
		Custom:    custom,
		LocaleTag: s.LocaleTag,
		Style:     s.Style,
	}
}
