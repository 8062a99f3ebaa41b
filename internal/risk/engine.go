package risk

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Triage/internal/store"
)

// ErrEmptyCalibration is returned when the calibration table has no rows with
// usable complexity and dependency values.
var ErrEmptyCalibration = errors.New("calibration table has no usable rows")

// DefaultLikelihood is used when a request type has no historical match.
const DefaultLikelihood = 0.05

// Level is the risk tier derived from the normalized CRI.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Tier thresholds on cri_normalized.
const (
	MediumThreshold = 0.3
	HighThreshold   = 0.7
)

// LevelFor maps a normalized CRI onto its tier.
func LevelFor(cri float64) Level {
	switch {
	case cri < MediumThreshold:
		return LevelLow
	case cri < HighThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Urgency labels accepted on requests.
const (
	UrgencyLow    = "Low"
	UrgencyMedium = "Medium"
	UrgencyHigh   = "High"
)

var urgencyScores = map[string]float64{
	UrgencyLow:    0.5,
	UrgencyMedium: 0.75,
	UrgencyHigh:   1.0,
}

// NormalizeUrgency trims and capitalizes s. Anything other than Low, Medium
// or High becomes Medium.
func NormalizeUrgency(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UrgencyMedium
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if _, ok := urgencyScores[s]; !ok {
		return UrgencyMedium
	}
	return s
}

// UrgencyScore returns the numeric urgency category for a label.
func UrgencyScore(urgency string) float64 {
	return urgencyScores[NormalizeUrgency(urgency)]
}

// Weights are the fixed CRI feature weights.
type Weights struct {
	Complexity float64
	Urgency    float64
	Dependency float64
	Likelihood float64
}

// DefaultWeights returns the CRI composite weights.
func DefaultWeights() Weights {
	return Weights{Complexity: 0.40, Urgency: 0.30, Dependency: 0.20, Likelihood: 0.10}
}

// FeatureStats summarizes one calibration column, NaN cells excluded.
type FeatureStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

type labelFreq struct {
	label      string
	lower      string
	likelihood float64
}

// Calibration holds the statistics derived from the CRI calibration table.
// It is immutable after NewCalibration returns.
type Calibration struct {
	Complexity FeatureStats
	Dependency FeatureStats

	rows    [][]float64
	labels  []labelFreq
	byLabel map[string]float64
}

// NewCalibration computes column statistics and the request-type frequency
// distribution.
func NewCalibration(rows []store.CalibrationRow) (*Calibration, error) {
	c := &Calibration{
		rows:    make([][]float64, 0, len(rows)),
		byLabel: make(map[string]float64),
	}
	var complexity, dependency []float64
	counts := make(map[string]int)
	total := 0
	for _, r := range rows {
		c.rows = append(c.rows, []float64{r.Complexity, r.Urgency, r.Dependency, r.Likelihood})
		complexity = append(complexity, r.Complexity)
		dependency = append(dependency, r.Dependency)
		if name := strings.TrimSpace(r.RequestName); name != "" {
			counts[name]++
			total++
		}
	}

	var ok bool
	if c.Complexity, ok = summarize(complexity); !ok {
		return nil, fmt.Errorf("complexity_score: %w", ErrEmptyCalibration)
	}
	if c.Dependency, ok = summarize(dependency); !ok {
		return nil, fmt.Errorf("dependency_count: %w", ErrEmptyCalibration)
	}

	for label, n := range counts {
		f := float64(n) / float64(total)
		c.labels = append(c.labels, labelFreq{label: label, lower: strings.ToLower(label), likelihood: f})
		c.byLabel[label] = f
	}
	sort.Slice(c.labels, func(i, j int) bool {
		if c.labels[i].likelihood != c.labels[j].likelihood {
			return c.labels[i].likelihood > c.labels[j].likelihood
		}
		return c.labels[i].label < c.labels[j].label
	})
	return c, nil
}

// Matrix returns the four-feature calibration matrix in column order
// complexity, urgency, dependency, likelihood.
func (c *Calibration) Matrix() [][]float64 {
	return c.rows
}

// Likelihood returns the historical frequency of a request type: exact match,
// then case-insensitive match, then the most frequent label that contains or
// is contained in it. An empty type gets DefaultLikelihood.
func (c *Calibration) Likelihood(requestType string) float64 {
	requestType = strings.TrimSpace(requestType)
	if requestType == "" {
		return DefaultLikelihood
	}
	if f, ok := c.byLabel[requestType]; ok {
		return f
	}
	lower := strings.ToLower(requestType)
	for _, l := range c.labels {
		if l.lower == lower {
			return l.likelihood
		}
	}
	for _, l := range c.labels {
		if strings.Contains(l.lower, lower) || strings.Contains(lower, l.lower) {
			return l.likelihood
		}
	}
	return DefaultLikelihood
}

// Profile is the risk assessment of one ticket.
type Profile struct {
	ComplexityScore float64 `json:"complexity_score"`
	UrgencyCategory float64 `json:"urgency_category"`
	DependencyCount int     `json:"dependency_count"`
	Likelihood      float64 `json:"likelihood"`
	CRIRobust       float64 `json:"cri_robust"`
	CRINormalized   float64 `json:"cri_normalized"`
	RiskLevel       Level   `json:"risk_level"`
}

// Engine computes CRI profiles. It is read-only after construction and safe
// for concurrent use.
type Engine struct {
	calib   *Calibration
	scalers *Scalers
	weights Weights
}

// NewEngine pairs calibration statistics with fitted scalers.
func NewEngine(calib *Calibration, scalers *Scalers) (*Engine, error) {
	if calib == nil {
		return nil, ErrEmptyCalibration
	}
	if scalers == nil || scalers.Width() != 4 {
		return nil, fmt.Errorf("scalers must be fit on 4 features")
	}
	return &Engine{calib: calib, scalers: scalers, weights: DefaultWeights()}, nil
}

// Calibration exposes the statistics the engine was built on.
func (e *Engine) Calibration() *Calibration {
	return e.calib
}

// EstimateComplexity scales the historical median by keyword multipliers and
// text length, clipped to the historical range.
func (e *Engine) EstimateComplexity(text string) float64 {
	words := float64(len(strings.Fields(text)))
	c := e.calib.Complexity.Median * ComplexityMultiplier(text) * (1 + words/100)
	return clip(c, e.calib.Complexity.Min, e.calib.Complexity.Max)
}

// EstimateDependency sums keyword weights, falling back to the historical
// median dependency count truncated to an integer.
func (e *Engine) EstimateDependency(text string) int {
	if w := DependencyWeight(text); w != 0 {
		return int(w)
	}
	return int(e.calib.Dependency.Median)
}

// Calculate builds the full risk profile for a ticket. Identical inputs
// always produce identical output.
func (e *Engine) Calculate(text, requestType, urgency string) Profile {
	p := Profile{
		ComplexityScore: e.EstimateComplexity(text),
		UrgencyCategory: UrgencyScore(urgency),
		DependencyCount: e.EstimateDependency(text),
		Likelihood:      e.calib.Likelihood(requestType),
	}

	scaled := e.scalers.Robust.Transform([]float64{
		p.ComplexityScore, p.UrgencyCategory, float64(p.DependencyCount), p.Likelihood,
	})
	p.CRIRobust = e.weights.Complexity*scaled[0] +
		e.weights.Urgency*scaled[1] +
		e.weights.Dependency*scaled[2] +
		e.weights.Likelihood*scaled[3]

	// The min-max scaler was fit per column on the 4-wide robust matrix;
	// only slot 0 of the padded vector is read back.
	norm := e.scalers.MinMax.Transform([]float64{p.CRIRobust, 0, 0, 0})[0]
	if math.IsNaN(norm) {
		norm = 0
	}
	p.CRINormalized = clip(norm, 0, 1)
	p.RiskLevel = LevelFor(p.CRINormalized)
	return p
}

func summarize(values []float64) (FeatureStats, bool) {
	var s FeatureStats
	n := 0
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if n == 0 {
			s.Min, s.Max = v, v
		}
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
		n++
	}
	if n == 0 {
		return s, false
	}
	s.Mean = sum / float64(n)
	s.Median = Percentile(values, 50)
	return s, true
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
