package textnorm

import (
	_ "embed"
	"strings"
	"unicode/utf8"
)

//go:embed roots.txt
var defaultRoots string

// maxPrefixes bounds stacked derivational prefixes (memper-, diper-).
const maxPrefixes = 2

var (
	particleSuffixes   = []string{"lah", "kah", "tah", "pun"}
	possessiveSuffixes = []string{"nya", "ku", "mu"}
	plainPrefixes      = []string{"di", "ke", "se", "ter", "ber", "per"}
)

// IndonesianStemmer strips Bahasa Indonesia affixes: inflectional particles
// and possessives, up to two derivational prefixes with me-/pe- nasal
// assimilation, and one derivational suffix.
//
// Ambiguous assimilations (meng+vowel may hide a dropped k, meny- an s or a
// ny- root) are resolved against a root dictionary. Without a dictionary hit
// the first rule reading wins, so corpus and queries still agree.
type IndonesianStemmer struct {
	minLen int
	roots  map[string]struct{}
}

// NewIndonesianStemmer returns a stemmer over the built-in root list plus
// extraRoots. Words shorter than four runes are left untouched.
func NewIndonesianStemmer(extraRoots ...string) *IndonesianStemmer {
	roots := make(map[string]struct{}, 256)
	for _, line := range strings.Split(defaultRoots, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			roots[strings.ToLower(w)] = struct{}{}
		}
	}
	for _, w := range extraRoots {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			roots[w] = struct{}{}
		}
	}
	return &IndonesianStemmer{minLen: 4, roots: roots}
}

// IsRoot reports whether word is in the root dictionary.
func (s *IndonesianStemmer) IsRoot(word string) bool {
	_, ok := s.roots[word]
	return ok
}

// Stem implements Stemmer.
func (s *IndonesianStemmer) Stem(word string) string {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) < s.minLen || s.IsRoot(word) {
		return word
	}

	word = trimSuffixMin(word, particleSuffixes, 4)
	if s.IsRoot(word) {
		return word
	}
	word = trimSuffixMin(word, possessiveSuffixes, 3)
	if s.IsRoot(word) {
		return word
	}

	fallback := ruleStem(word)
	if s.IsRoot(fallback) {
		return fallback
	}
	found := ""
	expand(word, maxPrefixes, false, func(c string) bool {
		if s.IsRoot(c) {
			found = c
			return true
		}
		return false
	})
	if found != "" {
		return found
	}
	return fallback
}

// ruleStem follows the first reading of every ambiguous rule.
func ruleStem(word string) string {
	prefixed := false
	for range maxPrefixes {
		alts := prefixReadings(word)
		if len(alts) == 0 {
			break
		}
		word = alts[0]
		prefixed = true
	}
	v := suffixReadings(word, prefixed)
	return v[len(v)-1]
}

// expand visits every prefix and suffix reading of word, shallowest first,
// until visit returns true.
func expand(word string, depth int, prefixed bool, visit func(string) bool) bool {
	for _, v := range suffixReadings(word, prefixed) {
		if visit(v) {
			return true
		}
	}
	if depth == 0 {
		return false
	}
	for _, alt := range prefixReadings(word) {
		if expand(alt, depth-1, true, visit) {
			return true
		}
	}
	return false
}

func trimSuffixMin(word string, suffixes []string, minLen int) string {
	for _, suf := range suffixes {
		if rest, ok := strings.CutSuffix(word, suf); ok && utf8.RuneCountInString(rest) >= minLen {
			return rest
		}
	}
	return word
}

// suffixReadings returns word and, when one applies, word without its
// derivational suffix as the last element. -i is only removed from prefixed
// words and never after s, which keeps loanwords like konfigurasi whole.
func suffixReadings(word string, prefixed bool) []string {
	anMin := 5
	if prefixed {
		anMin = 3
	}
	if rest, ok := strings.CutSuffix(word, "kan"); ok && utf8.RuneCountInString(rest) >= 4 {
		return []string{word, rest}
	}
	if rest, ok := strings.CutSuffix(word, "an"); ok && utf8.RuneCountInString(rest) >= anMin {
		return []string{word, rest}
	}
	if prefixed {
		if rest, ok := strings.CutSuffix(word, "i"); ok && utf8.RuneCountInString(rest) >= 4 && !strings.HasSuffix(rest, "s") {
			return []string{word, rest}
		}
	}
	return []string{word}
}

// prefixReadings returns the plausible roots left after removing one prefix,
// preferred reading first. It is empty when no prefix applies.
func prefixReadings(word string) []string {
	for _, p := range plainPrefixes {
		if rest, ok := strings.CutPrefix(word, p); ok && plausibleRoot(rest) {
			return []string{rest}
		}
	}
	for _, p := range []string{"be", "pe"} {
		if rest, ok := strings.CutPrefix(word, p); ok && strings.HasPrefix(rest, "ker") && plausibleRoot(rest) {
			return []string{rest}
		}
	}
	for _, p := range []string{"me", "pe"} {
		rest, ok := strings.CutPrefix(word, p)
		if !ok {
			continue
		}
		var out []string
		for _, root := range assimilate(rest) {
			if plausibleRoot(root) {
				out = append(out, root)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// assimilate undoes the nasal sound change after me- or pe-, listing every
// reading with the most common first.
func assimilate(rest string) []string {
	switch {
	case strings.HasPrefix(rest, "ny") && startsWithVowel(rest[2:]):
		return []string{"s" + rest[2:], rest}
	case strings.HasPrefix(rest, "nge") && oneSyllable(rest[3:]):
		// menge-/penge- before a one-syllable root: mengecek, pengecatan
		return []string{rest[3:], rest[2:], "k" + rest[2:]}
	case strings.HasPrefix(rest, "ng") && startsWithVowel(rest[2:]):
		return []string{rest[2:], "k" + rest[2:]}
	case strings.HasPrefix(rest, "ng"):
		return []string{rest[2:]}
	case strings.HasPrefix(rest, "mb"), strings.HasPrefix(rest, "mp"):
		return []string{rest[1:]}
	case strings.HasPrefix(rest, "m") && startsWithVowel(rest[1:]):
		return []string{"p" + rest[1:], rest}
	case strings.HasPrefix(rest, "nd"), strings.HasPrefix(rest, "nj"), strings.HasPrefix(rest, "nc"):
		return []string{rest[1:]}
	case strings.HasPrefix(rest, "n") && startsWithVowel(rest[1:]):
		return []string{"t" + rest[1:], rest}
	case rest != "" && strings.ContainsRune("lrwy", rune(rest[0])):
		return []string{rest}
	}
	return nil
}

// oneSyllable reports whether s, with or without a derivational suffix, is
// a single consonant-led syllable.
func oneSyllable(s string) bool {
	if startsWithVowel(s) {
		return false
	}
	if vowelGroups(s) == 1 {
		return true
	}
	for _, suf := range []string{"kan", "an", "i"} {
		if rest, ok := strings.CutSuffix(s, suf); ok && utf8.RuneCountInString(rest) >= 3 && vowelGroups(rest) == 1 {
			return true
		}
	}
	return false
}

func vowelGroups(s string) int {
	n, in := 0, false
	for _, r := range s {
		v := isVowel(r)
		if v && !in {
			n++
		}
		in = v
	}
	return n
}

func plausibleRoot(root string) bool {
	if utf8.RuneCountInString(root) < 3 {
		return false
	}
	i := 0
	for _, r := range root {
		if i >= 2 {
			break
		}
		if isVowel(r) {
			return true
		}
		i++
	}
	return false
}

func startsWithVowel(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isVowel(r)
}
