package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	mentionPattern  = regexp.MustCompile(`@[A-Za-z0-9_]+`)
	hashtagPattern  = regexp.MustCompile(`#[A-Za-z0-9_]+`)
	urlPattern      = regexp.MustCompile(`(?i)\b(?:https?://|https|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,4}/)[^\s<>]+`)
	nonWordPattern  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	digitRunPattern = regexp.MustCompile(`\p{Nd}+`)
)

// Stemmer reduces a lower-cased token to its root form.
type Stemmer interface {
	Stem(word string) string
}

// Normalizer turns free-form ticket text into a space-joined stream of
// stemmed tokens. It holds no mutable state after construction and is safe
// for concurrent use.
type Normalizer struct {
	stopwords map[string]struct{}
	stemmer   Stemmer
}

// New builds a Normalizer over the built-in stopword set plus any extra
// words. A nil stemmer selects the Indonesian affix stemmer.
func New(stemmer Stemmer, extraStopwords ...string) *Normalizer {
	if stemmer == nil {
		stemmer = NewIndonesianStemmer()
	}
	stop := DefaultStopwords()
	for _, w := range extraStopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Normalizer{stopwords: stop, stemmer: stemmer}
}

// Clean strips mentions, hashtags, URLs, punctuation and digits, then drops
// tokens of two runes or fewer and tokens containing three consecutive
// vowels. Case is preserved.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = mentionPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = digitRunPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "_", "")

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if hasVowelRun(tok, 3) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Normalize runs the full pipeline: Clean, lower-case, stopword removal and
// stemming. Token order is preserved; the result may be empty.
func (n *Normalizer) Normalize(text string) string {
	cleaned := strings.ToLower(Clean(text))
	if cleaned == "" {
		return ""
	}
	words := strings.Fields(cleaned)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n.IsStopword(w) {
			continue
		}
		if root := n.stemmer.Stem(w); root != "" {
			out = append(out, root)
		}
	}
	return strings.Join(out, " ")
}

// IsStopword reports whether the lower-cased word is in the frozen set.
func (n *Normalizer) IsStopword(word string) bool {
	_, ok := n.stopwords[word]
	return ok
}

func hasVowelRun(tok string, run int) bool {
	count := 0
	for _, r := range tok {
		if isVowel(unicode.ToLower(r)) {
			count++
			if count >= run {
				return true
			}
		} else {
			count = 0
		}
	}
	return false
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	}
	return false
}
