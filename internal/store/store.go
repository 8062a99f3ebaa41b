package store

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingColumn is returned when a required column cannot be resolved.
var ErrMissingColumn = errors.New("required column missing")

// StatusInProgress is the normalized status of tickets counted as workload.
const StatusInProgress = "in progress"

// HistoricalTicket is one resolved or open service ticket from operational
// history. Fields whose column could not be resolved are empty.
type HistoricalTicket struct {
	Summary     string `json:"summary,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Engineer    string `json:"engineer,omitempty"`
}

// Text joins the free-text fields in summary, title, description order.
func (t HistoricalTicket) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Summary, t.Title, t.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// InProgress reports whether the ticket counts toward current workload.
func (t HistoricalTicket) InProgress() bool {
	return strings.ToLower(strings.TrimSpace(t.Status)) == StatusInProgress
}

// CalibrationRow is one row of the CRI calibration table. Empty numeric cells
// are NaN.
type CalibrationRow struct {
	RequestName string  `json:"request_name,omitempty"`
	Complexity  float64 `json:"complexity_score"`
	Urgency     float64 `json:"urgency_category"`
	Dependency  float64 `json:"dependency_count"`
	Likelihood  float64 `json:"likelihood"`
}

// Store is the read side of historical data.
type Store interface {
	// LoadTickets returns the operational ticket history.
	LoadTickets(ctx context.Context) ([]HistoricalTicket, error)
	// LoadCalibration returns the CRI calibration table. A missing required
	// column yields an error wrapping ErrMissingColumn.
	LoadCalibration(ctx context.Context) ([]CalibrationRow, error)
	// InProgressCounts returns the number of in-progress tickets per
	// engineer. Engineers without open tickets are absent.
	InProgressCounts(ctx context.Context) (map[string]int, error)

	Close() error
}

// CountInProgress groups in-progress tickets by trimmed engineer name.
func CountInProgress(tickets []HistoricalTicket) map[string]int {
	counts := make(map[string]int)
	for _, t := range tickets {
		eng := strings.TrimSpace(t.Engineer)
		if eng == "" || !t.InProgress() {
			continue
		}
		counts[eng]++
	}
	return counts
}
