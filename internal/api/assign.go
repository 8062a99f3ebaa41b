package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Triage/internal/broker"
)

type AssignHandler struct {
	broker *broker.Broker
	logger *slog.Logger
}

func NewAssignHandler(b *broker.Broker, logger *slog.Logger) *AssignHandler {
	return &AssignHandler{broker: b, logger: logger}
}

type AssignRequest struct {
	TicketText  string `json:"ticket_text"`
	RequestType string `json:"request_type,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
}

func (req AssignRequest) ticket() broker.Ticket {
	return broker.Ticket{Text: req.TicketText, RequestType: req.RequestType, Urgency: req.Urgency}
}

func (h *AssignHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t := req.ticket()
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "ticket_text must be at least 3 characters")
		return
	}

	a, err := h.broker.AssignTicket(r.Context(), t)
	if err != nil {
		h.writeBrokerError(w, err)
		return
	}
	if a == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    nil,
			"message": "no available engineers found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a})
}

func (h *AssignHandler) CRIOnly(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TicketText) == "" {
		writeError(w, http.StatusBadRequest, "ticket_text is required")
		return
	}
	p, err := h.broker.EvaluateRisk(req.ticket())
	if err != nil {
		h.writeBrokerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}

// requestID accepts ids sent as JSON strings or numbers.
type requestID string

func (id *requestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = requestID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = requestID(n.String())
	return nil
}

// BatchItem accepts both the assignment field names and the ticketing
// system's description/serviceTitle names.
type BatchItem struct {
	ID           requestID `json:"id"`
	TicketText   string    `json:"ticket_text"`
	Description  string    `json:"description"`
	RequestType  string    `json:"request_type"`
	ServiceTitle string    `json:"serviceTitle"`
	Urgency      string    `json:"urgency"`
}

func (it BatchItem) ticket() broker.Ticket {
	t := broker.Ticket{ID: string(it.ID), Text: it.TicketText, RequestType: it.RequestType, Urgency: it.Urgency}
	if t.Text == "" {
		t.Text = it.Description
	}
	if t.RequestType == "" {
		t.RequestType = it.ServiceTitle
	}
	return t
}

type BatchRequest struct {
	Requests []BatchItem `json:"requests"`
}

type batchResponse struct {
	Success bool `json:"success"`
	*broker.BatchResult
}

func (h *AssignHandler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Requests == nil {
		writeError(w, http.StatusBadRequest, "requests array is required")
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests must be a non-empty array")
		return
	}

	tickets := make([]broker.Ticket, len(req.Requests))
	for i, it := range req.Requests {
		tickets[i] = it.ticket()
	}
	res, err := h.broker.AssignBatch(r.Context(), tickets)
	if err != nil {
		h.writeBrokerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Success: true, BatchResult: res})
}

func (h *AssignHandler) writeBrokerError(w http.ResponseWriter, err error) {
	if errors.Is(err, broker.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.logger.Error("assignment failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
