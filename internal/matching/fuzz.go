package matching

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Ratio is the indel similarity of a and b scaled to 0-100. Either string
// being empty scores 0.
func Ratio(a, b string) int {
	return roundScore(ratio([]rune(a), []rune(b)))
}

// PartialRatio scores the shorter string against the best-aligned window
// of the longer one
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	best := 0.0
	for start := 0; start < len(longer); start++ {
		end := min(start+len(shorter), len(longer))
		r := ratio(shorter, longer[start:end])
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return roundScore(best)
}

// TokenSortRatio compares the processed strings after sorting their tokens
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// shared-plus-remaining tokens and keeps the best pairing
func TokenSetRatio(a, b string) int {
	pa, pb := fullProcess(a), fullProcess(b)
	if pa == "" || pb == "" {
		return 0
	}

	setA, setB := tokenSet(pa), tokenSet(pb)
	var common, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(Ratio(sect, combinedA), Ratio(sect, combinedB), Ratio(combinedA, combinedB))
}

// Similarity is the best of the token-sort, partial and token-set ratios of
// the lower-cased inputs, in [0, 1]
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return float64(max(TokenSortRatio(a, b), PartialRatio(a, b), TokenSetRatio(a, b))) / 100
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return float64(total-indelDistance(a, b)) / float64(total)
}

// indelDistance is the edit distance with insertions and deletions only
// (a substitution costs 2)
func indelDistance(s1, s2 []rune) int {
	rows := len(s1) + 1
	cols := len(s2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 2
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[rows-1][cols-1]
}

// fullProcess drops non-ASCII characters, turns anything that is not a
// letter or digit into a space, lower-cases and trims
func fullProcess(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

func sortedTokens(s string) string {
	tokens := strings.Fields(fullProcess(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func roundScore(r float64) int {
	return int(math.RoundToEven(100 * r))
}
