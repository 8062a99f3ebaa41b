package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// CSVStore reads ticket history and calibration data from CSV exports.
type CSVStore struct {
	ticketsPath     string
	calibrationPath string
	logger          *slog.Logger
}

// NewCSVStore returns a store over the two files. Files are read on every
// call, so updated exports are picked up without a restart.
func NewCSVStore(ticketsPath, calibrationPath string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		ticketsPath:     ticketsPath,
		calibrationPath: calibrationPath,
		logger:          logger,
	}
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) LoadTickets(ctx context.Context) ([]HistoricalTicket, error) {
	header, rows, err := readCSV(s.ticketsPath)
	if err != nil {
		return nil, fmt.Errorf("read tickets: %w", err)
	}
	cols := ResolveColumns(header)
	if missing := cols.Missing(); len(missing) > 0 {
		s.logger.Warn("ticket columns not resolved", "path", s.ticketsPath, "fields", missing)
	}

	tickets := make([]HistoricalTicket, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tickets = append(tickets, cols.Record(row))
	}
	return tickets, nil
}

func (s *CSVStore) LoadCalibration(ctx context.Context) ([]CalibrationRow, error) {
	header, rows, err := readCSV(s.calibrationPath)
	if err != nil {
		return nil, fmt.Errorf("read calibration: %w", err)
	}
	cols, err := ResolveCalibrationColumns(header)
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w", s.calibrationPath, err)
	}

	out := make([]CalibrationRow, 0, len(rows))
	for n, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := parseCalibrationRow(cols, row)
		if err != nil {
			// header is line 1
			return nil, fmt.Errorf("calibration %s line %d: %w", s.calibrationPath, n+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *CSVStore) InProgressCounts(ctx context.Context) (map[string]int, error) {
	tickets, err := s.LoadTickets(ctx)
	if err != nil {
		return nil, err
	}
	return CountInProgress(tickets), nil
}

func parseCalibrationRow(cols CalibrationColumns, row []string) (CalibrationRow, error) {
	var r CalibrationRow
	var err error
	if r.Complexity, err = numericCell(row, cols.Complexity, ColComplexity); err != nil {
		return r, err
	}
	if r.Urgency, err = numericCell(row, cols.Urgency, ColUrgency); err != nil {
		return r, err
	}
	if r.Dependency, err = numericCell(row, cols.Dependency, ColDependency); err != nil {
		return r, err
	}
	if r.Likelihood, err = numericCell(row, cols.Likelihood, ColLikelihood); err != nil {
		return r, err
	}
	if cols.RequestName >= 0 && cols.RequestName < len(row) {
		r.RequestName = strings.TrimSpace(row[cols.RequestName])
	}
	return r, nil
}

// numericCell parses a float cell. Empty or missing cells are NaN.
func numericCell(row []string, idx int, name string) (float64, error) {
	if idx >= len(row) {
		return math.NaN(), nil
	}
	v := strings.TrimSpace(row[idx])
	if v == "" || strings.EqualFold(v, "nan") {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not numeric", name, v)
	}
	return f, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
