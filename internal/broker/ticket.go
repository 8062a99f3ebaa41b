package broker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/Triage/internal/risk"
)

const (
	DefaultRequestType = "General Request"
	// MinTextLength is the minimum trimmed ticket text length, in runes.
	MinTextLength = 3
)

var ErrInvalidTicket = errors.New("invalid ticket")

// Ticket is one routing request.
type Ticket struct {
	ID          string
	Text        string
	RequestType string
	Urgency     string
}

// Normalize fills the default request type and canonicalizes urgency.
func (t Ticket) Normalize() Ticket {
	t.ID = strings.TrimSpace(t.ID)
	t.RequestType = strings.TrimSpace(t.RequestType)
	if t.RequestType == "" {
		t.RequestType = DefaultRequestType
	}
	t.Urgency = risk.NormalizeUrgency(t.Urgency)
	return t
}

// Validate rejects text shorter than MinTextLength after trimming.
func (t Ticket) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(t.Text)) < MinTextLength {
		return fmt.Errorf("%w: ticket_text must be at least %d characters", ErrInvalidTicket, MinTextLength)
	}
	return nil
}
