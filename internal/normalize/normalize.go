// Package normalize provides the pure string transforms used to compare
// correspondent names: case/diacritic folding, legal-suffix stripping,
// bigram similarity and edit-distance key similarity.
package normalize

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing corporate-form tokens ignored for key comparison.
var legalSuffixes = map[string]struct{}{
	"ag": {}, "gmbh": {}, "kg": {}, "ohg": {}, "ug": {}, "eg": {}, "egmbh": {},
	"se": {}, "sa": {}, "sarl": {}, "srl": {}, "oy": {}, "ab": {}, "as": {},
	"nv": {}, "bv": {}, "llc": {}, "inc": {}, "ltd": {}, "plc": {}, "co": {},
}

// stripAccents decomposes to NFD, drops combining marks, recomposes.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CollapseWhitespace joins whitespace-separated fields with single spaces,
// trimming both ends. Idempotent.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PrettyDisplayName trims and collapses whitespace without changing case.
// This is the form stored as a canonical name.
func PrettyDisplayName(s string) string {
	return CollapseWhitespace(strings.TrimSpace(s))
}

// NormalizedKey projects a name onto its comparison key: folded case and
// diacritics, trailing legal suffixes stripped, everything that is not a
// letter or digit removed. Two names with equal keys refer to the same
// entity modulo legal form, punctuation, spacing, case and accents.
func NormalizedKey(s string) string {
	stripped := stripLegalSuffixes(fold(s))
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two names in [0,1] using a Dice coefficient over
// character-bigram counts of their similarity-normalized forms. Strings
// shorter than two runes after normalization score 0 against anything.
func Similarity(a, b string) float64 {
	left := bigrams(normalizeForSimilarity(a))
	right := bigrams(normalizeForSimilarity(b))
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	leftCounts := counts(left)
	rightCounts := counts(right)

	intersection := 0
	for gram, lc := range leftCounts {
		if rc, ok := rightCounts[gram]; ok {
			intersection += min(lc, rc)
		}
	}

	return float64(2*intersection) / float64(len(left)+len(right))
}

// KeySimilarity compares two already-normalized keys as
// 1 - editDistance/maxLen. Equal keys (including both empty) score 1;
// one empty key against a non-empty one scores 0.
func KeySimilarity(keyA, keyB string) float64 {
	if keyA == keyB {
		return 1
	}
	if keyA == "" || keyB == "" {
		return 0
	}
	longer := len([]rune(keyA))
	if l := len([]rune(keyB)); l > longer {
		longer = l
	}
	dist := levenshtein.ComputeDistance(keyA, keyB)
	return 1 - float64(dist)/float64(longer)
}

func fold(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// stripLegalSuffixes drops a trailing run of legal-form tokens, never an
// interior one, and always leaves at least one token.
func stripLegalSuffixes(s string) string {
	parts := strings.Split(CollapseWhitespace(s), " ")
	for len(parts) > 1 {
		last := strings.TrimFunc(parts[len(parts)-1], unicode.IsPunct)
		if _, ok := legalSuffixes[strings.ToLower(last)]; !ok {
			break
		}
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, " ")
}

// normalizeForSimilarity folds, strips suffixes, and blanks out everything
// outside letters, digits and spaces before collapsing whitespace.
func normalizeForSimilarity(s string) string {
	stripped := stripLegalSuffixes(fold(s))
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return ' '
	}, stripped)
	return CollapseWhitespace(mapped)
}

func bigrams(s string) []string {
	chars := []rune(s)
	if len(chars) < 2 {
		return nil
	}
	result := make([]string, 0, len(chars)-1)
	for i := 0; i < len(chars)-1; i++ {
		result = append(result, string(chars[i:i+2]))
	}
	return result
}

func counts(grams []string) map[string]int {
	m := make(map[string]int, len(grams))
	for _, g := range grams {
		m[g]++
	}
	return m
}
