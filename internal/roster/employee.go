package roster

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Statuses that take an engineer out of rotation, compared lower-cased.
var inactiveStatuses = map[string]struct{}{
	"cuti":     {},
	"leave":    {},
	"inactive": {},
}

// Employee is one roster entry. Optional fields are nil when the provider
// omitted them.
type Employee struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Unit           string   `json:"unit,omitempty" yaml:"unit"`
	Email          string   `json:"email,omitempty" yaml:"email"`
	YearsOfService *float64 `json:"years_of_service,omitempty" yaml:"years_of_service"`
	OnLeave        *bool    `json:"on_leave,omitempty" yaml:"on_leave"`
	IsAvailable    *bool    `json:"is_available,omitempty" yaml:"is_available"`
	Status         string   `json:"status,omitempty" yaml:"status"`
}

// Available applies the availability gate: on leave, explicitly unavailable
// or an inactive status removes the employee, checked in that order.
func (e Employee) Available() bool {
	if e.OnLeave != nil && *e.OnLeave {
		return false
	}
	if e.IsAvailable != nil && !*e.IsAvailable {
		return false
	}
	_, inactive := inactiveStatuses[strings.ToLower(strings.TrimSpace(e.Status))]
	return !inactive
}

type wireEmployee struct {
	ID             json.RawMessage `json:"id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Email          string          `json:"email"`
	YearsOfService json.RawMessage `json:"years_of_service"`
	OnLeave        json.RawMessage `json:"on_leave"`
	IsAvailable    json.RawMessage `json:"is_available"`
	Status         *string         `json:"status"`
	Attendance     string          `json:"attendance"`
}

// UnmarshalJSON accepts numeric or string ids and years, loose booleans, and
// falls back to attendance when status is absent.
func (e *Employee) UnmarshalJSON(data []byte) error {
	var w wireEmployee
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Employee{
		ID:             rawString(w.ID),
		Name:           w.Name,
		Unit:           w.Unit,
		Email:          w.Email,
		YearsOfService: rawNumber(w.YearsOfService),
		OnLeave:        rawBool(w.OnLeave),
		IsAvailable:    rawBool(w.IsAvailable),
		Status:         w.Attendance,
	}
	if w.Status != nil {
		e.Status = *w.Status
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func rawString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func rawNumber(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func rawBool(raw json.RawMessage) *bool {
	if isNull(raw) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		b = f != 0
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return &parsed
		}
	}
	return nil
}
