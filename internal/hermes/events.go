package hermes

import "time"

// TicketRequestEvent asks for one ticket to be routed.
type TicketRequestEvent struct {
	ID          string `json:"id"`
	TicketText  string `json:"ticket_text"`
	RequestType string `json:"request_type,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
}

type TicketUnmatchedEvent struct {
	TicketID  string    `json:"ticket_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type BatchCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	TotalRequests  int       `json:"total_requests"`
	TotalProcessed int       `json:"total_processed"`
	Timestamp      time.Time `json:"timestamp"`
}
