package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   map[Field]int
	}{
		{
			name:   "exact names",
			header: []string{"Summary", "Judul Request_x", "Description", "Status", "Engineer"},
			want:   map[Field]int{FieldSummary: 0, FieldTitle: 1, FieldDescription: 2, FieldStatus: 3, FieldEngineer: 4},
		},
		{
			name:   "case and whitespace",
			header: []string{" SUMMARY ", "deskripsi", "status_x", "ASSIGNEE"},
			want:   map[Field]int{FieldSummary: 0, FieldTitle: -1, FieldDescription: 1, FieldStatus: 2, FieldEngineer: 3},
		},
		{
			name:   "substring fallback",
			header: []string{"Ticket Summary Text", "Nama Petugas", "Judul Permintaan"},
			want:   map[Field]int{FieldSummary: 0, FieldTitle: 2, FieldDescription: -1, FieldStatus: -1, FieldEngineer: 1},
		},
		{
			name:   "exact beats earlier substring",
			header: []string{"Status_y", "Status"},
			want:   map[Field]int{FieldSummary: -1, FieldTitle: -1, FieldDescription: -1, FieldStatus: 1, FieldEngineer: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := ResolveColumns(tt.header)
			for f, want := range tt.want {
				assert.Equal(t, want, cols.Index(f), "field %s", f)
			}
		})
	}
}

func TestTicketText(t *testing.T) {
	tk := HistoricalTicket{Summary: "Printer", Description: "tidak bisa cetak"}
	assert.Equal(t, "Printer tidak bisa cetak", tk.Text())
	assert.Equal(t, "", HistoricalTicket{}.Text())
}

func TestCountInProgress(t *testing.T) {
	counts := CountInProgress([]HistoricalTicket{
		{Engineer: "Andi", Status: "In Progress"},
		{Engineer: "Andi ", Status: " in progress "},
		{Engineer: "Budi", Status: "IN PROGRESS"},
		{Engineer: "Budi", Status: "Done"},
		{Engineer: "", Status: "In Progress"},
		{Engineer: "Citra", Status: "in_progress"},
	})
	assert.Equal(t, map[string]int{"Andi": 2, "Budi": 1}, counts)
}

const ticketsCSV = "\ufeffSummary,Judul Request_x,Deskripsi,Status,Engineer\n" +
	"Server down,Perbaikan server,\"Server mati, tolong cek\",In Progress,Andi\n" +
	"Reset password,Akun,Lupa password,Done,Budi\n" +
	"Printer,Printer rusak,,in progress,Andi\n"

func TestCSVStoreLoadTickets(t *testing.T) {
	s := NewCSVStore(writeFile(t, "tickets.csv", ticketsCSV), "", discardLogger())

	tickets, err := s.LoadTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, HistoricalTicket{
		Summary:     "Server down",
		Title:       "Perbaikan server",
		Description: "Server mati, tolong cek",
		Status:      "In Progress",
		Engineer:    "Andi",
	}, tickets[0])

	counts, err := s.InProgressCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Andi": 2}, counts)
}

func TestCSVStoreMissingEngineerColumn(t *testing.T) {
	s := NewCSVStore(writeFile(t, "tickets.csv", "Summary,Status\nServer down,In Progress\n"), "", discardLogger())

	tickets, err := s.LoadTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Empty(t, tickets[0].Engineer)

	counts, err := s.InProgressCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCSVStoreMissingFile(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "absent.csv"), "", discardLogger())
	_, err := s.LoadTickets(context.Background())
	assert.Error(t, err)
}

func TestCSVStoreLoadCalibration(t *testing.T) {
	csv := "Request Name,complexity_score,urgency_category,dependency_count,likelihood\n" +
		"Server Request,4.5,1,2,0.1\n" +
		"Reset Password,,0.5,0,0.3\n"
	s := NewCSVStore("", writeFile(t, "cri.csv", csv), discardLogger())

	rows, err := s.LoadCalibration(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Server Request", rows[0].RequestName)
	assert.Equal(t, 4.5, rows[0].Complexity)
	assert.Equal(t, 1.0, rows[0].Urgency)
	assert.True(t, math.IsNaN(rows[1].Complexity))
	assert.Equal(t, 0.3, rows[1].Likelihood)
}

func TestCSVStoreCalibrationMissingColumn(t *testing.T) {
	s := NewCSVStore("", writeFile(t, "cri.csv", "complexity_score,Urgency_Category,likelihood\n1,1,1\n"), discardLogger())

	_, err := s.LoadCalibration(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), ColDependency)
}

func TestCSVStoreCalibrationNonNumeric(t *testing.T) {
	s := NewCSVStore("", writeFile(t, "cri.csv", "complexity_score,Urgency_Category,dependency_count,likelihood\nhigh,1,1,1\n"), discardLogger())

	_, err := s.LoadCalibration(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVStoreEmptyFile(t *testing.T) {
	s := NewCSVStore(writeFile(t, "tickets.csv", ""), "", discardLogger())
	_, err := s.LoadTickets(context.Background())
	assert.Error(t, err)
}
