// Package talent ranks available engineers for a ticket by skill match,
// seniority and current workload capacity.
package talent

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Triage/internal/risk"
	"github.com/MikeSquared-Agency/Triage/internal/roster"
	"github.com/MikeSquared-Agency/Triage/internal/scoring"
)

// Defaults used when an engineer is missing from one of the sources.
const (
	DefaultSkill     = 0.0
	DefaultSeniority = 0.25
	DefaultWorkload  = 0.5
)

// Inputs are the per-request sources of a ranking. Maps are keyed by
// engineer name.
type Inputs struct {
	Roster   []roster.Employee
	Workload map[string]int
	Skill    map[string]float64
}

type Scorer struct {
	weights scoring.WeightSet
	logger  *slog.Logger
}

func NewScorer(weights scoring.WeightSet, logger *slog.Logger) *Scorer {
	return &Scorer{weights: weights, logger: logger}
}

// Rank scores every available roster engineer and orders them by TSM score
// descending, then name ascending. An empty result is a valid outcome.
func (s *Scorer) Rank(in Inputs) []scoring.Candidate {
	if len(in.Roster) == 0 {
		return nil
	}

	// Later entries for the same name replace earlier ones.
	byName := make(map[string]roster.Employee, len(in.Roster))
	for _, e := range in.Roster {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		byName[name] = e
	}

	seniority := SeniorityWeights(in.Roster)
	capacity := WorkloadCapacity(in.Workload)

	ranked := make([]scoring.Candidate, 0, len(byName))
	excluded := 0
	for name, e := range byName {
		if !e.Available() {
			excluded++
			continue
		}
		c := scoring.Candidate{
			Engineer:         name,
			SkillScore:       lookup(in.Skill, name, DefaultSkill),
			SeniorityWeight:  lookup(seniority, name, DefaultSeniority),
			WorkloadCapacity: lookup(capacity, name, DefaultWorkload),
		}
		c.TSMScore = s.weights.Apply(c.SkillScore, c.SeniorityWeight, c.WorkloadCapacity)
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TSMScore != ranked[j].TSMScore {
			return ranked[i].TSMScore > ranked[j].TSMScore
		}
		return ranked[i].Engineer < ranked[j].Engineer
	})

	s.logger.Debug("tsm ranked", "available", len(ranked), "excluded", excluded)
	return ranked
}

// Top returns at most k of the best candidates.
func Top(ranked []scoring.Candidate, k int) []scoring.Candidate {
	if k < len(ranked) {
		return ranked[:k]
	}
	return ranked
}

// SeniorityWeights buckets years of service into roster quartiles:
// <=Q1 0.25, <=Q2 0.5, <=Q3 0.75, above 1.0. Missing years get 0.25.
func SeniorityWeights(emps []roster.Employee) map[string]float64 {
	years := make([]float64, 0, len(emps))
	for _, e := range emps {
		if e.YearsOfService != nil {
			years = append(years, *e.YearsOfService)
		}
	}
	q1 := risk.Percentile(years, 25)
	q2 := risk.Percentile(years, 50)
	q3 := risk.Percentile(years, 75)

	out := make(map[string]float64, len(emps))
	for _, e := range emps {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		out[name] = bucket(e.YearsOfService, q1, q2, q3)
	}
	return out
}

func bucket(years *float64, q1, q2, q3 float64) float64 {
	if years == nil || math.IsNaN(*years) {
		return DefaultSeniority
	}
	y := *years
	switch {
	case y <= q1:
		return 0.25
	case y <= q2:
		return 0.5
	case y <= q3:
		return 0.75
	default:
		return 1.0
	}
}

// WorkloadCapacity inverts min-max normalized in-progress counts. Uniform
// counts give every engineer 0.5.
func WorkloadCapacity(counts map[string]int) map[string]float64 {
	out := make(map[string]float64, len(counts))
	if len(counts) == 0 {
		return out
	}
	lo, hi := math.MaxInt, math.MinInt
	for _, n := range counts {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	for name, n := range counts {
		if hi == lo {
			out[name] = 0.5
			continue
		}
		out[name] = 1 - float64(n-lo)/float64(hi-lo)
	}
	return out
}

func lookup(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
