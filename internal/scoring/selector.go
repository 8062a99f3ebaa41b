package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Triage/internal/risk"
)

// Candidate is one engineer's talent score for a ticket.
type Candidate struct {
	Engineer         string  `json:"engineer"`
	SkillScore       float64 `json:"skill_score"`
	SeniorityWeight  float64 `json:"seniority_weight"`
	WorkloadCapacity float64 `json:"workload_capacity"`
	TSMScore         float64 `json:"tsm_score"`
}

// CRIAnalysis is the risk summary embedded in an assignment.
type CRIAnalysis struct {
	CRINormalized   float64    `json:"cri_normalized"`
	RiskLevel       risk.Level `json:"risk_level"`
	ComplexityScore float64    `json:"complexity_score"`
	UrgencyCategory float64    `json:"urgency_category"`
	DependencyCount int        `json:"dependency_count"`
	Likelihood      float64    `json:"likelihood"`
}

// Assignment is the final routing decision for one ticket.
type Assignment struct {
	AssignmentID         string      `json:"assignment_id,omitempty"`
	SelectedEngineer     string      `json:"selected_engineer"`
	AssignmentScore      float64     `json:"assignment_score"`
	CRIAnalysis          CRIAnalysis `json:"cri_analysis"`
	TSMAnalysis          Candidate   `json:"tsm_analysis"`
	TopCandidates        []Candidate `json:"top_candidates"`
	RecommendationReason string      `json:"recommendation_reason"`
}

// Select applies the risk tier's weighting to the top candidates and picks
// the highest selection score. Ties keep the candidates' input order. It
// returns nil when there are no candidates.
func Select(profile risk.Profile, top []Candidate) *Assignment {
	if len(top) == 0 {
		return nil
	}
	tier := TierFor(profile.RiskLevel)

	type scored struct {
		c     Candidate
		score float64
	}
	ranked := make([]scored, len(top))
	for i, c := range top {
		ranked[i] = scored{c: c, score: tier.Weights.Apply(c.SkillScore, c.SeniorityWeight, c.WorkloadCapacity)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	best := ranked[0]

	candidates := make([]Candidate, len(top))
	copy(candidates, top)

	return &Assignment{
		SelectedEngineer: best.c.Engineer,
		AssignmentScore:  best.score,
		CRIAnalysis: CRIAnalysis{
			CRINormalized:   profile.CRINormalized,
			RiskLevel:       profile.RiskLevel,
			ComplexityScore: profile.ComplexityScore,
			UrgencyCategory: profile.UrgencyCategory,
			DependencyCount: profile.DependencyCount,
			Likelihood:      profile.Likelihood,
		},
		TSMAnalysis:          best.c,
		TopCandidates:        candidates,
		RecommendationReason: tier.Reason,
	}
}
