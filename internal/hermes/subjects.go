package hermes

const (
	SubjectTicketRequest = "triage.ticket.request"

	StreamName     = "TRIAGE_EVENTS"
	StreamSubjects = "triage.>"
	StreamMaxAge   = "720h" // 30 days
)

func SubjectTicketAssigned(ticketID string) string  { return "triage.ticket." + ticketID + ".assigned" }
func SubjectTicketUnmatched(ticketID string) string { return "triage.ticket." + ticketID + ".unmatched" }
func SubjectBatchCompleted(batchID string) string   { return "triage.batch." + batchID + ".completed" }
