package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Triage/internal/risk"
)

// WeightTolerance is the allowed deviation of a weight sum from 1.0.
const WeightTolerance = 0.001

// WeightSet defines the relative importance of the three talent factors.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	Skill     float64 `json:"skill" yaml:"skill"`
	Seniority float64 `json:"seniority" yaml:"seniority"`
	Workload  float64 `json:"workload" yaml:"workload"`
}

// DefaultTSMWeights returns the weights of the composite talent score.
func DefaultTSMWeights() WeightSet {
	return WeightSet{Skill: 0.4, Seniority: 0.3, Workload: 0.3}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Skill + w.Seniority + w.Workload
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > WeightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

// Apply computes the weighted sum of the three factors.
func (w WeightSet) Apply(skill, seniority, workload float64) float64 {
	return w.Skill*skill + w.Seniority*seniority + w.Workload*workload
}

func (w WeightSet) asList() []float64 {
	return []float64{w.Skill, w.Seniority, w.Workload}
}

// Tier is the selection policy applied for one risk level.
type Tier struct {
	Level   risk.Level
	Weights WeightSet
	Reason  string
}

var tiers = map[risk.Level]Tier{
	risk.LevelHigh: {
		Level:   risk.LevelHigh,
		Weights: WeightSet{Skill: 0.6, Seniority: 0.3, Workload: 0.1},
		Reason:  "High complexity task requires most skilled and senior engineer",
	},
	risk.LevelMedium: {
		Level:   risk.LevelMedium,
		Weights: WeightSet{Skill: 0.4, Seniority: 0.3, Workload: 0.3},
		Reason:  "Medium complexity task requires balanced skill and capacity",
	},
	risk.LevelLow: {
		Level:   risk.LevelLow,
		Weights: WeightSet{Skill: 0.2, Seniority: 0.2, Workload: 0.6},
		Reason:  "Low complexity task can be handled by engineer with more capacity",
	},
}

// TierFor returns the selection policy for a risk level. Unknown levels get
// the MEDIUM policy.
func TierFor(level risk.Level) Tier {
	if t, ok := tiers[level]; ok {
		return t
	}
	return tiers[risk.LevelMedium]
}
