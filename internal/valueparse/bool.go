package valueparse

import (
	"fmt"
	"strings"
)

type BoolKind int

const (
	BoolStandard BoolKind = iota
	BoolFlexible
	BoolCustom
)

// BoolStrategy configures ParseBool.
type BoolStrategy struct {
	Kind     BoolKind
	TrueSet  map[string]struct{}
	FalseSet map[string]struct{}
}

var standardTrue = map[string]struct{}{
	"true": {}, "yes": {}, "1": {}, "y": {}, "t": {}, "on": {},
}

var standardFalse = map[string]struct{}{
	"false": {}, "no": {}, "0": {}, "n": {}, "f": {}, "off": {},
}

// flexibleTrue/flexibleFalse extend the standard vocabulary with a fixed
// multi-language affirmative/negative token set, per spec §4.7.
var flexibleTrue = union(standardTrue, map[string]struct{}{
	"si": {}, "sí": {}, "oui": {}, "ja": {}, "sim": {}, "da": {}, "tak": {}, "evet": {},
})

var flexibleFalse = union(standardFalse, map[string]struct{}{
	"non": {}, "nein": {}, "não": {}, "nao": {}, "nie": {}, "hayir": {}, "hayır": {},
})

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// ParseBool converts value to a bool under strategy, case-insensitively.
func ParseBool(value string, strategy BoolStrategy) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(value))

	var trueSet, falseSet map[string]struct{}
	switch strategy.Kind {
	case BoolCustom:
		trueSet, falseSet = strategy.TrueSet, strategy.FalseSet
	case BoolFlexible:
		trueSet, falseSet = flexibleTrue, flexibleFalse
	default:
		trueSet, falseSet = standardTrue, standardFalse
	}

	if _, ok := trueSet[lower]; ok {
		return true, nil
	}
	if _, ok := falseSet[lower]; ok {
		return false, nil
	}
	return false, fmt.Errorf("valueparse: %q is not a recognized boolean", value)
}

// FormatBool is the encode-side inverse: canonical "true"/"false".
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
