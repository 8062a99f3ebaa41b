package talent

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Triage/internal/roster"
	"github.com/MikeSquared-Agency/Triage/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func years(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestSeniorityBuckets(t *testing.T) {
	// Q1=2, Q2=3, Q3=4
	emps := []roster.Employee{
		{Name: "a", YearsOfService: years(1)},
		{Name: "b", YearsOfService: years(2)},
		{Name: "c", YearsOfService: years(3)},
		{Name: "d", YearsOfService: years(4)},
		{Name: "e", YearsOfService: years(4.01)},
		{Name: "g"},
	}
	w := SeniorityWeights(emps)
	assert.Equal(t, 0.25, w["a"])
	assert.Equal(t, 0.25, w["b"], "exactly at Q1")
	assert.Equal(t, 0.5, w["c"])
	assert.Equal(t, 0.75, w["d"])
	assert.Equal(t, 1.0, w["e"], "just above Q3")
	assert.Equal(t, 0.25, w["g"], "missing years")
}

func TestSeniorityAllMissing(t *testing.T) {
	w := SeniorityWeights([]roster.Employee{{Name: "a"}, {Name: "b"}})
	assert.Equal(t, 0.25, w["a"])
	assert.Equal(t, 0.25, w["b"])
}

func TestWorkloadCapacity(t *testing.T) {
	c := WorkloadCapacity(map[string]int{"a": 1, "b": 3, "c": 5})
	assert.Equal(t, 1.0, c["a"], "minimum count has full capacity")
	assert.Equal(t, 0.5, c["b"])
	assert.Equal(t, 0.0, c["c"])

	uniform := WorkloadCapacity(map[string]int{"a": 2, "b": 2})
	assert.Equal(t, 0.5, uniform["a"])
	assert.Equal(t, 0.5, uniform["b"])

	assert.Empty(t, WorkloadCapacity(nil))
}

func TestRankAllOnLeave(t *testing.T) {
	s := NewScorer(scoring.DefaultTSMWeights(), discardLogger())
	got := s.Rank(Inputs{
		Roster: []roster.Employee{
			{Name: "a", OnLeave: boolPtr(true)},
			{Name: "b", OnLeave: boolPtr(true)},
		},
		Skill: map[string]float64{"a": 1, "b": 1},
	})
	assert.Empty(t, got)
}

func TestRankEmptyRoster(t *testing.T) {
	s := NewScorer(scoring.DefaultTSMWeights(), discardLogger())
	assert.Empty(t, s.Rank(Inputs{Skill: map[string]float64{"a": 1}}))
}

func TestRankOrderAndDefaults(t *testing.T) {
	s := NewScorer(scoring.DefaultTSMWeights(), discardLogger())
	got := s.Rank(Inputs{
		Roster: []roster.Employee{
			{Name: "andi", YearsOfService: years(10)},
			{Name: "budi", YearsOfService: years(1)},
			{Name: "citra", Status: "cuti"},
			{Name: "dewi"},
			{Name: "eka"},
		},
		Workload: map[string]int{"andi": 4, "budi": 0},
		Skill:    map[string]float64{"andi": 1.0, "budi": 0.2, "citra": 1.0, "ghost": 1.0},
	})
	require.Len(t, got, 4, "citra is inactive, ghost is not on the roster")

	assert.Equal(t, "andi", got[0].Engineer)
	assert.InDelta(t, 0.4*1.0+0.3*1.0+0.3*0.0, got[0].TSMScore, 1e-12)
	assert.Equal(t, 0.0, got[0].WorkloadCapacity)
	assert.Equal(t, "budi", got[1].Engineer)
	assert.InDelta(t, 0.4*0.2+0.3*0.25+0.3*1.0, got[1].TSMScore, 1e-12)
	assert.Equal(t, 1.0, got[1].WorkloadCapacity, "minimum count has full capacity")

	// dewi and eka tie on defaults; name order breaks the tie
	assert.Equal(t, "dewi", got[2].Engineer)
	assert.Equal(t, "eka", got[3].Engineer)
	assert.Equal(t, DefaultSkill, got[2].SkillScore)
	assert.Equal(t, DefaultSeniority, got[2].SeniorityWeight)
	assert.Equal(t, DefaultWorkload, got[2].WorkloadCapacity)
}

func TestRankDuplicateNameLastWins(t *testing.T) {
	s := NewScorer(scoring.DefaultTSMWeights(), discardLogger())
	got := s.Rank(Inputs{Roster: []roster.Employee{
		{Name: "andi"},
		{Name: "andi ", OnLeave: boolPtr(true)},
	}})
	assert.Empty(t, got)
}

func TestTop(t *testing.T) {
	ranked := []scoring.Candidate{{Engineer: "a"}, {Engineer: "b"}, {Engineer: "c"}}
	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 5), 3)
}
