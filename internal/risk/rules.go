package risk

import "strings"

// Rule pairs a lower-case substring with a weight.
type Rule struct {
	Pattern string
	Weight  float64
}

// Complexity multipliers. Patterns raising complexity come first, then those
// lowering it; every matching rule multiplies in.
var complexityRules = []Rule{
	{"server", 1.5},
	{"database", 1.5},
	{"network", 1.4},
	{"jaringan", 1.4},
	{"instalasi", 1.3},
	{"maintenance", 1.3},
	{"backup", 1.2},
	{"recovery", 1.5},
	{"website", 1.3},
	{"aplikasi", 1.3},
	{"sistem", 1.2},
	{"hardware", 1.4},
	{"urgent", 1.3},
	{"critical", 1.5},
	{"emergency", 1.5},

	{"password", 0.3},
	{"reset", 0.3},
	{"user", 0.4},
	{"email", 0.5},
	{"printer", 0.6},
	{"akses", 0.5},
	{"login", 0.4},
	{"account", 0.5},
}

// Dependency weights are summed; overlapping patterns each count.
var dependencyRules = []Rule{
	{"server", 2},
	{"database", 2},
	{"network", 2},
	{"sistem", 1},
	{"aplikasi", 1},
	{"website", 2},
	{"hardware", 1},
	{"software", 1},
	{"backup", 1},
	{"recovery", 2},
	{"maintenance", 1},
}

// ComplexityMultiplier returns the product of every complexity rule whose
// pattern occurs in text. No match yields 1.
func ComplexityMultiplier(text string) float64 {
	lower := strings.ToLower(text)
	m := 1.0
	for _, r := range complexityRules {
		if strings.Contains(lower, r.Pattern) {
			m *= r.Weight
		}
	}
	return m
}

// DependencyWeight returns the sum of every dependency rule whose pattern
// occurs in text.
func DependencyWeight(text string) float64 {
	lower := strings.ToLower(text)
	var sum float64
	for _, r := range dependencyRules {
		if strings.Contains(lower, r.Pattern) {
			sum += r.Weight
		}
	}
	return sum
}
