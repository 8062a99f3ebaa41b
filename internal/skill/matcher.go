package skill

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Triage/internal/store"
	"github.com/MikeSquared-Agency/Triage/internal/textnorm"
)

// Options control model construction.
type Options struct {
	MinDF           int
	MaxDF           float64
	TopNTags        int
	FrequencyWeight float64
	RelativeWeight  float64
}

// DefaultOptions returns the vocabulary bounds and tag weights used in
// production.
func DefaultOptions() Options {
	return Options{
		MinDF:           3,
		MaxDF:           0.95,
		TopNTags:        8,
		FrequencyWeight: 0.7,
		RelativeWeight:  0.3,
	}
}

// Model is the cached skill artifact: the fitted vectorizer, one centroid per
// engineer and the diagnostic tag profiles.
type Model struct {
	Vectorizer *Vectorizer                   `json:"vectorizer" cbor:"vectorizer"`
	Centroids  map[string]Vector             `json:"centroids" cbor:"centroids"`
	Profiles   map[string]map[string]float64 `json:"profiles" cbor:"profiles"`
	Documents  int                           `json:"documents" cbor:"documents"`
}

// Empty reports whether the model has no usable vocabulary or centroids.
func (m *Model) Empty() bool {
	return m == nil || m.Vectorizer == nil || m.Vectorizer.Len() == 0 || len(m.Centroids) == 0
}

// Engineers returns the engineers with a centroid, sorted.
func (m *Model) Engineers() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Centroids))
	for eng := range m.Centroids {
		out = append(out, eng)
	}
	sort.Strings(out)
	return out
}

// Tag is one entry of an engineer's diagnostic skill profile.
type Tag struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// TopTags returns up to n tags for an engineer by descending score, ties
// broken by term. n <= 0 returns all tags.
func (m *Model) TopTags(engineer string, n int) []Tag {
	if m == nil {
		return nil
	}
	profile := m.Profiles[engineer]
	tags := make([]Tag, 0, len(profile))
	for term, score := range profile {
		tags = append(tags, Tag{Term: term, Score: score})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Score != tags[j].Score {
			return tags[i].Score > tags[j].Score
		}
		return tags[i].Term < tags[j].Term
	})
	if n > 0 && len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// Build fits the skill model over historical tickets. Tickets without an
// engineer, or whose normalized text is empty, are skipped. An empty corpus,
// or one whose vocabulary is pruned to nothing, yields an empty model.
func Build(tickets []store.HistoricalTicket, norm *textnorm.Normalizer, opts Options, logger *slog.Logger) *Model {
	var docs, owners []string
	for _, t := range tickets {
		eng := strings.TrimSpace(t.Engineer)
		if eng == "" {
			continue
		}
		doc := norm.Normalize(t.Text())
		if strings.TrimSpace(doc) == "" {
			continue
		}
		docs = append(docs, doc)
		owners = append(owners, eng)
	}

	m := &Model{
		Vectorizer: FitVectorizer(docs, VectorizerOptions{MinDF: opts.MinDF, MaxDF: opts.MaxDF}),
		Centroids:  make(map[string]Vector),
		Profiles:   make(map[string]map[string]float64),
		Documents:  len(docs),
	}
	if m.Vectorizer.Len() == 0 {
		logger.Warn("skill corpus produced an empty vocabulary", "documents", len(docs))
		return m
	}

	rows := make([]Vector, len(docs))
	for i, doc := range docs {
		rows[i] = m.Vectorizer.Transform(doc)
	}

	m.Profiles = buildProfiles(rows, owners, m.Vectorizer.Terms, opts)
	m.Centroids = buildCentroids(rows, owners, m.Vectorizer.Len())

	logger.Info("skill model built",
		"documents", len(docs),
		"vocabulary", m.Vectorizer.Len(),
		"engineers", len(m.Centroids),
	)
	return m
}

func buildCentroids(rows []Vector, owners []string, dim int) map[string]Vector {
	sums := make(map[string]Vector)
	counts := make(map[string]int)
	for i, row := range rows {
		eng := owners[i]
		sum, ok := sums[eng]
		if !ok {
			sum = make(Vector, dim)
			sums[eng] = sum
		}
		for j, x := range row {
			sum[j] += x
		}
		counts[eng]++
	}
	for eng, sum := range sums {
		n := float64(counts[eng])
		for j := range sum {
			sum[j] /= n
		}
	}
	return sums
}

func buildProfiles(rows []Vector, owners []string, terms []string, opts Options) map[string]map[string]float64 {
	tagCounts := make(map[string]map[string]int)
	for i, row := range rows {
		var total float64
		for _, x := range row {
			total += x
		}
		if total == 0 {
			continue
		}
		ctr, ok := tagCounts[owners[i]]
		if !ok {
			ctr = make(map[string]int)
			tagCounts[owners[i]] = ctr
		}
		for _, j := range topIndices(row, opts.TopNTags) {
			ctr[terms[j]]++
		}
	}

	profiles := make(map[string]map[string]float64, len(tagCounts))
	for eng, ctr := range tagCounts {
		total, maxCount := 0, 0
		for _, c := range ctr {
			total += c
			maxCount = max(maxCount, c)
		}
		scores := make(map[string]float64, len(ctr))
		for tag, c := range ctr {
			freq := float64(c) / float64(maxCount)
			rel := float64(c) / float64(total)
			scores[tag] = freq*opts.FrequencyWeight + rel*opts.RelativeWeight
		}
		profiles[eng] = scores
	}
	return profiles
}

// topIndices returns up to n indices of positive weights, heaviest first,
// ties broken by the higher index.
func topIndices(row Vector, n int) []int {
	idx := make([]int, 0, len(row))
	for j, x := range row {
		if x > 0 {
			idx = append(idx, j)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		if row[idx[a]] != row[idx[b]] {
			return row[idx[a]] > row[idx[b]]
		}
		return idx[a] > idx[b]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

// Matcher scores ticket text against every engineer centroid. It is
// read-only and safe for concurrent use.
type Matcher struct {
	model *Model
	norm  *textnorm.Normalizer
}

// NewMatcher pairs a model with the normalizer its corpus was built with.
func NewMatcher(model *Model, norm *textnorm.Normalizer) *Matcher {
	if model != nil && model.Vectorizer != nil {
		model.Vectorizer.Prepare()
	}
	return &Matcher{model: model, norm: norm}
}

// Model returns the underlying artifact.
func (m *Matcher) Model() *Model {
	return m.model
}

// Match returns each engineer's cosine similarity to the ticket divided by
// the best similarity for this ticket, so the top engineer scores 1. When no
// engineer has a positive similarity every score stays 0.
func (m *Matcher) Match(text string) map[string]float64 {
	if m.model.Empty() {
		return map[string]float64{}
	}
	sims := make(map[string]float64, len(m.model.Centroids))
	v := m.model.Vectorizer.Transform(m.norm.Normalize(text))

	var best float64
	for eng, centroid := range m.model.Centroids {
		s := Cosine(v, centroid)
		sims[eng] = s
		best = max(best, s)
	}
	if best > 0 {
		for eng := range sims {
			sims[eng] /= best
		}
	}
	return sims
}
