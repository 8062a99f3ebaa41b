package skill

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a dense term-weight vector over a fitted vocabulary.
type Vector []float64

// Vectorizer is a fitted TF-IDF model: smoothed IDF, raw term counts, L2
// normalized rows. Terms are indexed in lexical order.
type Vectorizer struct {
	Terms []string  `json:"terms" cbor:"terms"`
	IDF   []float64 `json:"idf" cbor:"idf"`

	index map[string]int
}

// VectorizerOptions bound the vocabulary by document frequency.
type VectorizerOptions struct {
	// MinDF is the minimum number of documents a term must occur in.
	MinDF int
	// MaxDF is the maximum fraction of documents a term may occur in.
	MaxDF float64
}

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// FitVectorizer learns the vocabulary and IDF weights from docs. The returned
// vectorizer has an empty vocabulary when docs is empty or every term is
// pruned.
func FitVectorizer(docs []string, opts VectorizerOptions) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := len(docs)
	maxCount := opts.MaxDF * float64(n)
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < opts.MinDF || float64(count) > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{Terms: terms, IDF: make([]float64, len(terms))}
	for i, term := range terms {
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	v.Prepare()
	return v
}

// Prepare rebuilds the term index. Call it once after decoding a cached
// vectorizer and before sharing it between goroutines.
func (v *Vectorizer) Prepare() {
	v.index = indexTerms(v.Terms)
}

func indexTerms(terms []string) map[string]int {
	idx := make(map[string]int, len(terms))
	for i, t := range terms {
		idx[t] = i
	}
	return idx
}

// Len is the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.Terms)
}

// Transform maps a document onto the frozen vocabulary. Unknown terms are
// ignored; a document with no known terms yields the zero vector.
func (v *Vectorizer) Transform(doc string) Vector {
	index := v.index
	if index == nil {
		index = indexTerms(v.Terms)
	}
	vec := make(Vector, len(v.Terms))
	for _, tok := range tokenize(doc) {
		if i, ok := index[tok]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] *= v.IDF[i]
	}
	normalize(vec)
	return vec
}

func normalize(vec Vector) {
	n := norm(vec)
	if n == 0 {
		return
	}
	for i := range vec {
		vec[i] /= n
	}
}

func norm(vec Vector) float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, or 0 if either is the
// zero vector.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}
