package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Triage/internal/store"
)

func calibrationFixture() []store.CalibrationRow {
	return []store.CalibrationRow{
		{RequestName: "Server & Database Request", Complexity: 2, Urgency: 0.5, Dependency: 0, Likelihood: 0.02},
		{RequestName: "Server & Database Request", Complexity: 3, Urgency: 0.75, Dependency: 1, Likelihood: 0.05},
		{RequestName: "Server & Database Request", Complexity: 4, Urgency: 1.0, Dependency: 2, Likelihood: 0.1},
		{RequestName: "Reset Password", Complexity: 5, Urgency: 0.75, Dependency: 3, Likelihood: 0.2},
		{RequestName: "Reset Password", Complexity: 6, Urgency: 0.5, Dependency: 4, Likelihood: 0.05},
		{RequestName: "Email", Complexity: 7, Urgency: 1.0, Dependency: 5, Likelihood: 0.1},
		{RequestName: "Printer", Complexity: 8, Urgency: 0.75, Dependency: 6, Likelihood: 0.05},
		{RequestName: "Printer", Complexity: 10, Urgency: 0.5, Dependency: 2, Likelihood: 0.2},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	calib, err := NewCalibration(calibrationFixture())
	require.NoError(t, err)
	scalers, err := FitScalers(calib.Matrix())
	require.NoError(t, err)
	e, err := NewEngine(calib, scalers)
	require.NoError(t, err)
	return e
}

func TestLevelForBoundaries(t *testing.T) {
	tests := []struct {
		cri  float64
		want Level
	}{
		{0, LevelLow},
		{0.2999999, LevelLow},
		{0.3, LevelMedium},
		{0.5, LevelMedium},
		{0.6999999, LevelMedium},
		{0.7, LevelHigh},
		{1, LevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.cri), "cri=%v", tt.cri)
	}
}

func TestNormalizeUrgency(t *testing.T) {
	tests := map[string]string{
		"high":     "High",
		" LOW ":    "Low",
		"Medium":   "Medium",
		"":         "Medium",
		"critical": "Medium",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeUrgency(in), "input %q", in)
	}
	assert.Equal(t, 1.0, UrgencyScore("HIGH"))
	assert.Equal(t, 0.75, UrgencyScore("whatever"))
}

func TestWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Complexity+w.Urgency+w.Dependency+w.Likelihood, 1e-9)
}

func TestCalibrationStats(t *testing.T) {
	calib, err := NewCalibration(calibrationFixture())
	require.NoError(t, err)

	assert.Equal(t, 2.0, calib.Complexity.Min)
	assert.Equal(t, 10.0, calib.Complexity.Max)
	assert.InDelta(t, 5.5, calib.Complexity.Median, 1e-9)
	assert.InDelta(t, 5.625, calib.Complexity.Mean, 1e-9)
	assert.InDelta(t, 2.5, calib.Dependency.Median, 1e-9)
}

func TestCalibrationSkipsNaN(t *testing.T) {
	rows := calibrationFixture()
	rows = append(rows, store.CalibrationRow{Complexity: math.NaN(), Urgency: 0.5, Dependency: math.NaN(), Likelihood: 0.1})
	calib, err := NewCalibration(rows)
	require.NoError(t, err)
	assert.Equal(t, 10.0, calib.Complexity.Max)
	assert.InDelta(t, 5.5, calib.Complexity.Median, 1e-9)
}

func TestCalibrationEmpty(t *testing.T) {
	_, err := NewCalibration(nil)
	assert.True(t, errors.Is(err, ErrEmptyCalibration))

	_, err = NewCalibration([]store.CalibrationRow{{Complexity: math.NaN(), Dependency: 1}})
	assert.True(t, errors.Is(err, ErrEmptyCalibration))
}

func TestLikelihood(t *testing.T) {
	calib, err := NewCalibration(calibrationFixture())
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"exact", "Server & Database Request", 0.375},
		{"case insensitive", "SERVER & DATABASE REQUEST", 0.375},
		{"label contains input", "server", 0.375},
		{"input contains label", "Printer issue on floor 2", 0.25},
		{"most frequent label first", "a", 0.375},
		{"no match", "Unknown", DefaultLikelihood},
		{"empty", "", DefaultLikelihood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calib.Likelihood(tt.in), 1e-12)
		})
	}
}

func TestLikelihoodWithoutLabels(t *testing.T) {
	rows := calibrationFixture()
	for i := range rows {
		rows[i].RequestName = ""
	}
	calib, err := NewCalibration(rows)
	require.NoError(t, err)
	assert.Equal(t, DefaultLikelihood, calib.Likelihood("Server & Database Request"))
}

func TestScenarioInfrastructureTicketIsHigh(t *testing.T) {
	e := newTestEngine(t)
	text := "Instalasi server database utama"

	assert.Greater(t, ComplexityMultiplier(text), 1.0)

	p := e.Calculate(text, "Server & Database Request", "High")
	assert.Equal(t, 10.0, p.ComplexityScore, "clipped to the historical max")
	assert.Equal(t, 1.0, p.UrgencyCategory)
	assert.Equal(t, 4, p.DependencyCount)
	assert.InDelta(t, 0.375, p.Likelihood, 1e-12)
	assert.InDelta(t, 1.2742857142857145, p.CRIRobust, 1e-9)
	assert.InDelta(t, 0.995, p.CRINormalized, 1e-9)
	assert.Equal(t, LevelHigh, p.RiskLevel)
}

func TestScenarioPasswordResetIsLow(t *testing.T) {
	e := newTestEngine(t)
	text := "Reset password email"

	assert.Less(t, ComplexityMultiplier(text), 1.0)

	p := e.Calculate(text, "General Request", "Low")
	assert.Equal(t, 2.0, p.ComplexityScore, "clipped to the historical min")
	assert.Equal(t, 2, p.DependencyCount, "falls back to truncated median")
	assert.Equal(t, DefaultLikelihood, p.Likelihood)
	assert.InDelta(t, 0.12541666666666665, p.CRINormalized, 1e-9)
	assert.Equal(t, LevelLow, p.RiskLevel)
}

func TestScenarioMediumTicket(t *testing.T) {
	e := newTestEngine(t)
	p := e.Calculate("Printer lantai dua tidak bisa mencetak", "Printer", "Medium")
	assert.InDelta(t, 3.498, p.ComplexityScore, 1e-9)
	assert.InDelta(t, 0.4219833333333334, p.CRINormalized, 1e-9)
	assert.Equal(t, LevelMedium, p.RiskLevel)
}

func TestCalculateDeterministic(t *testing.T) {
	e := newTestEngine(t)
	first := e.Calculate("Backup database server gagal", "Server & Database Request", "Medium")
	for range 20 {
		assert.Equal(t, first, e.Calculate("Backup database server gagal", "Server & Database Request", "Medium"))
	}
}

func TestCalculateNormalizedInUnitRange(t *testing.T) {
	e := newTestEngine(t)
	inputs := []string{"", "x", "critical emergency recovery server database network", "user login akses account"}
	for _, in := range inputs {
		p := e.Calculate(in, "", "High")
		assert.GreaterOrEqual(t, p.CRINormalized, 0.0)
		assert.LessOrEqual(t, p.CRINormalized, 1.0)
	}
}

func TestDependencyDoubleCounts(t *testing.T) {
	// "sistem" and "aplikasi" each match independently.
	assert.Equal(t, 2.0, DependencyWeight("Aplikasi sistem"))
	assert.Equal(t, 0.0, DependencyWeight("printer"))
}

func TestNewEngineRejectsBadScalers(t *testing.T) {
	calib, err := NewCalibration(calibrationFixture())
	require.NoError(t, err)

	_, err = NewEngine(calib, nil)
	assert.Error(t, err)

	_, err = NewEngine(calib, &Scalers{Robust: RobustScaler{Center: []float64{0}, Scale: []float64{1}}})
	assert.Error(t, err)
}
