package store

import (
	"fmt"
	"strings"
)

// Field is a semantic column of the ticket history.
type Field string

const (
	FieldSummary     Field = "summary"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldEngineer    Field = "engineer"
)

// Candidate header names per field, tried in order.
var ticketCandidates = []struct {
	field Field
	names []string
}{
	{FieldSummary, []string{"Summary", "summary", "Summary_x"}},
	{FieldTitle, []string{"Judul Request_x", "Judul_Request_x", "Judul Request x", "judul request_x", "judul"}},
	{FieldDescription, []string{"Description", "Deskripsi", "description", "deskripsi"}},
	{FieldStatus, []string{"Status", "status", "Status_x", "status_x"}},
	{FieldEngineer, []string{"Engineer", "engineer", "Assignee", "assignee", "petugas", "pegawai"}},
}

// Calibration table columns.
const (
	ColComplexity  = "complexity_score"
	ColUrgency     = "Urgency_Category"
	ColDependency  = "dependency_count"
	ColLikelihood  = "likelihood"
	ColRequestName = "Request Name"
)

// TicketColumns maps each semantic field to a header index, or -1 when the
// field could not be resolved.
type TicketColumns map[Field]int

// Index returns the column index for f, or -1.
func (c TicketColumns) Index(f Field) int {
	if i, ok := c[f]; ok {
		return i
	}
	return -1
}

// Missing lists the fields that did not resolve, in declaration order.
func (c TicketColumns) Missing() []Field {
	var out []Field
	for _, tc := range ticketCandidates {
		if c.Index(tc.field) < 0 {
			out = append(out, tc.field)
		}
	}
	return out
}

// Record builds a ticket from one data row.
func (c TicketColumns) Record(row []string) HistoricalTicket {
	get := func(f Field) string {
		i := c.Index(f)
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return HistoricalTicket{
		Summary:     get(FieldSummary),
		Title:       get(FieldTitle),
		Description: get(FieldDescription),
		Status:      get(FieldStatus),
		Engineer:    get(FieldEngineer),
	}
}

// ResolveColumns maps the ticket history header onto semantic fields. For
// each field, an exact case-insensitive match on the trimmed header wins over
// a case-insensitive substring match; candidates are tried in order.
func ResolveColumns(header []string) TicketColumns {
	cols := make(TicketColumns, len(ticketCandidates))
	for _, tc := range ticketCandidates {
		if i := findColumn(header, tc.names); i >= 0 {
			cols[tc.field] = i
		} else {
			cols[tc.field] = -1
		}
	}
	return cols
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		lc := strings.ToLower(cand)
		for i, h := range header {
			if lc == strings.ToLower(strings.TrimSpace(h)) {
				return i
			}
		}
	}
	for _, cand := range candidates {
		lc := strings.ToLower(cand)
		for i, h := range header {
			if strings.Contains(strings.ToLower(h), lc) {
				return i
			}
		}
	}
	return -1
}

// CalibrationColumns holds header indices for the calibration table.
// RequestName is -1 when the optional label column is absent.
type CalibrationColumns struct {
	Complexity  int
	Urgency     int
	Dependency  int
	Likelihood  int
	RequestName int
}

// ResolveCalibrationColumns requires the four numeric columns by
// case-insensitive exact name.
func ResolveCalibrationColumns(header []string) (CalibrationColumns, error) {
	exact := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	cols := CalibrationColumns{
		Complexity:  exact(ColComplexity),
		Urgency:     exact(ColUrgency),
		Dependency:  exact(ColDependency),
		Likelihood:  exact(ColLikelihood),
		RequestName: exact(ColRequestName),
	}
	required := []struct {
		name string
		idx  int
	}{
		{ColComplexity, cols.Complexity},
		{ColUrgency, cols.Urgency},
		{ColDependency, cols.Dependency},
		{ColLikelihood, cols.Likelihood},
	}
	for _, r := range required {
		if r.idx < 0 {
			return cols, fmt.Errorf("%w: %s", ErrMissingColumn, r.name)
		}
	}
	return cols, nil
}
