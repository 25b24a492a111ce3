// Package store loads enriched NEISS rows into PostgreSQL and answers the
// rate questions in SQL.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"neiss/internal/dataset"
	"neiss/internal/metrics"
)

//go:embed schema.sql
var schema string

var caseColumns = []string{
	"case_number", "body_part", "diag", "disposition", "age", "sex", "narrative",
	"body_part_name", "diagnosis_name", "disposition_name", "age_in_years", "age_group",
}

// Store wraps a connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// Connect opens a pool against connStr and verifies it with a ping.
func Connect(ctx context.Context, connStr string, log *zap.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return New(pool, log), nil
}

// New wraps an existing pool. A nil logger discards output.
func New(pool *pgxpool.Pool, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, log: log}
}

func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Truncate removes every loaded case.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE injury_cases RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate injury_cases: %w", err)
	}
	return nil
}

// LoadParquet streams an enriched Parquet file into injury_cases,
// committing a transaction every batchSize rows.
func (s *Store) LoadParquet(ctx context.Context, path string, batchSize int) (int64, error) {
	reader, err := dataset.OpenEnrichedParquet(path)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	if batchSize <= 0 {
		batchSize = 500
	}
	totalRows := reader.NumRows()
	s.log.Info("loading parquet", zap.String("path", path), zap.Int64("rows", totalRows))

	start := time.Now()
	lastLog := start
	buf := make([]dataset.EnrichedRecord, batchSize)
	var loaded int64

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			copied, err := s.copyBatch(ctx, buf[:n])
			if err != nil {
				return loaded, fmt.Errorf("load rows %d-%d: %w", loaded+1, loaded+int64(n), err)
			}
			loaded += copied

			if time.Since(lastLog) >= 5*time.Second {
				elapsed := time.Since(start).Seconds()
				s.log.Info("progress",
					zap.Int64("loaded", loaded),
					zap.Int64("total", totalRows),
					zap.Float64("rows_per_sec", float64(loaded)/elapsed))
				lastLog = time.Now()
			}
		}
		if readErr == io.EOF || (readErr == nil && n == 0) {
			break
		}
		if readErr != nil {
			return loaded, readErr
		}
	}

	s.log.Info("parquet load complete",
		zap.Int64("rows", loaded),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return loaded, nil
}

// LoadRows inserts rows directly, batchSize rows per transaction.
func (s *Store) LoadRows(ctx context.Context, rows []dataset.EnrichedRecord, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = len(rows)
	}
	var loaded int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := s.copyBatch(ctx, rows[start:end])
		if err != nil {
			return loaded, fmt.Errorf("load rows %d-%d: %w", start+1, end, err)
		}
		loaded += n
	}
	return loaded, nil
}

// copyBatch bulk-inserts one batch via COPY in its own transaction.
func (s *Store) copyBatch(ctx context.Context, rows []dataset.EnrichedRecord) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"injury_cases"},
		caseColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := &rows[i]
			return []any{
				sanitizeUTF8(r.CaseNumber),
				r.BodyPart,
				r.Diagnosis,
				r.Disposition,
				r.Age,
				sanitizeUTF8(r.Sex),
				sanitizeUTF8(r.Narrative),
				ptrToText(r.BodyPartName),
				ptrToText(r.DiagnosisName),
				ptrToText(r.DispositionName),
				r.AgeInYears,
				ptrToText(r.AgeGroup),
			}, nil
		}),
	)
	if err != nil {
		tx.Rollback(ctx)
		return 0, fmt.Errorf("copy injury_cases: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

const rateQuery = `
SELECT diagnosis_name,
       COUNT(*) AS total_population,
       COUNT(*) FILTER (WHERE disposition_name = $1) AS matching
FROM injury_cases
WHERE diagnosis_name IS NOT NULL
GROUP BY diagnosis_name`

// RateTable counts, per diagnosis, the rows ending in disposition. The
// database does the grouping; the percentage and ordering come from
// metrics.Rate and metrics.SortRates so both paths print the same table.
func (s *Store) RateTable(ctx context.Context, disposition string) ([]metrics.RateRow, error) {
	rows, err := s.pool.Query(ctx, rateQuery, disposition)
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	table := []metrics.RateRow{}
	for rows.Next() {
		var diagnosis string
		var total, matching int64
		if err := rows.Scan(&diagnosis, &total, &matching); err != nil {
			return nil, fmt.Errorf("scan rate row: %w", err)
		}
		table = append(table, metrics.RateRow{
			Diagnosis: diagnosis,
			Total:     int(total),
			Matching:  int(matching),
			Rate:      metrics.Rate(int(matching), int(total)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}
	metrics.SortRates(table)
	return table, nil
}

// CountCases returns the row count and the distinct case count.
func (s *Store) CountCases(ctx context.Context) (metrics.Summary, error) {
	var rows, unique int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT case_number) FROM injury_cases`,
	).Scan(&rows, &unique)
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("count cases: %w", err)
	}
	return metrics.Summary{Rows: int(rows), UniqueCases: int(unique)}, nil
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with spaces.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, " ")
}

func ptrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: sanitizeUTF8(*s), Valid: true}
}
