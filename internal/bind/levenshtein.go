package bind

import "strings"

// levenshtein computes the classic edit distance between a and b. Used only
// to attach a "did you mean" suggestion to a key_not_found error; no file in
// the retrieval pack vendors a reusable edit-distance library, and the
// computation is small and self-contained enough not to warrant one.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// suggestKey returns the header in available nearest to missing, or "" if
// none is within the acceptance threshold (edit distance <= 2, or a
// case-only difference).
func suggestKey(missing string, available []string) string {
	best := ""
	bestDist := 3
	for _, candidate := range available {
		if strings.EqualFold(missing, candidate) {
			return candidate
		}
		d := levenshtein(strings.ToLower(missing), strings.ToLower(candidate))
		if d <= 2 && d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best
}
