package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads ticket history from service_tickets and calibration
// data from cri_calibration.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const ticketColumns = `COALESCE(summary, ''), COALESCE(title, ''), COALESCE(description, ''),
	COALESCE(status, ''), COALESCE(engineer, '')`

func (s *PostgresStore) LoadTickets(ctx context.Context) ([]HistoricalTicket, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ticketColumns+` FROM service_tickets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query service_tickets: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (s *PostgresStore) LoadCalibration(ctx context.Context) ([]CalibrationRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(request_name, ''), complexity_score, urgency_category,
			dependency_count, likelihood
		FROM cri_calibration ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cri_calibration: %w", err)
	}
	defer rows.Close()

	var out []CalibrationRow
	for rows.Next() {
		var r CalibrationRow
		var complexity, urgency, dependency, likelihood sql.NullFloat64
		if err := rows.Scan(&r.RequestName, &complexity, &urgency, &dependency, &likelihood); err != nil {
			return nil, err
		}
		r.Complexity = nullToNaN(complexity)
		r.Urgency = nullToNaN(urgency)
		r.Dependency = nullToNaN(dependency)
		r.Likelihood = nullToNaN(likelihood)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InProgressCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT TRIM(engineer), COUNT(*)
		FROM service_tickets
		WHERE LOWER(TRIM(status)) = $1 AND COALESCE(TRIM(engineer), '') <> ''
		GROUP BY TRIM(engineer)`, StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("count in-progress tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eng string
		var n int
		if err := rows.Scan(&eng, &n); err != nil {
			return nil, err
		}
		counts[eng] = n
	}
	return counts, rows.Err()
}

func scanTickets(rows pgx.Rows) ([]HistoricalTicket, error) {
	var tickets []HistoricalTicket
	for rows.Next() {
		var t HistoricalTicket
		if err := rows.Scan(&t.Summary, &t.Title, &t.Description, &t.Status, &t.Engineer); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
