package bind

import "strings"

type KeyStrategyKind int

const (
	KeyIdentity KeyStrategyKind = iota
	KeyFromSnakeCase
	KeyFromKebabCase
	KeyFromScreamingSnake
	KeyFromPascal
	KeyCustom
)

// KeyStrategy configures how a header name is normalized before comparison
// against a destination field's Go name.
type KeyStrategy struct {
	Kind   KeyStrategyKind
	Custom func(header string) string
}

// normalizeKey maps header into a PascalCase candidate comparable to a Go
// struct field name, per the active strategy.
func normalizeKey(header string, strategy KeyStrategy) string {
	switch strategy.Kind {
	case KeyFromSnakeCase:
		return splitJoinPascal(header, "_")
	case KeyFromKebabCase:
		return splitJoinPascal(header, "-")
	case KeyFromScreamingSnake:
		return splitJoinPascal(strings.ToLower(header), "_")
	case KeyFromPascal:
		return header
	case KeyCustom:
		if strategy.Custom != nil {
			return strategy.Custom(header)
		}
		return header
	default: // KeyIdentity
		return header
	}
}

func splitJoinPascal(s, sep string) string {
	parts := strings.Split(s, sep)
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// keysMatch reports whether header, normalized under strategy, identifies
// goName (case-insensitively, since Go exported field names are always
// capitalized but a normalized header's capitalization convention may
// differ in edge cases).
func keysMatch(header, goName string, strategy KeyStrategy) bool {
	return strings.EqualFold(normalizeKey(header, strategy), goName)
}
