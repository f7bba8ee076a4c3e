package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize        = 200
	defaultFetchConcurrency = 4
)

const availabilityColumns = `contractor_id, to_char(available_on, 'YYYY-MM-DD'), status, blocks, notes`

// PostgresAvailabilityStore reads contractor_availability. A NULL blocks
// column marks a whole-day record.
type PostgresAvailabilityStore struct {
	db          *sql.DB
	batchSize   int
	concurrency int
}

type AvailabilityOption func(*PostgresAvailabilityStore)

// WithBatchSize caps how many contractor IDs go into one query.
func WithBatchSize(n int) AvailabilityOption {
	return func(s *PostgresAvailabilityStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithFetchConcurrency caps how many batch queries run at once.
func WithFetchConcurrency(n int) AvailabilityOption {
	return func(s *PostgresAvailabilityStore) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewPostgresAvailabilityStore(db *sql.DB, opts ...AvailabilityOption) *PostgresAvailabilityStore {
	s := &PostgresAvailabilityStore{
		db:          db,
		batchSize:   defaultBatchSize,
		concurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresAvailabilityStore) RecordForDate(ctx context.Context, contractorID, dateKey string) (*models.AvailabilityRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+availabilityColumns+` FROM contractor_availability
		WHERE contractor_id = $1 AND available_on = $2::date`,
		contractorID, dateKey)

	rec, err := scanAvailability(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SnapshotForDate splits contractorIDs into batches and queries them in
// parallel.
func (s *PostgresAvailabilityStore) SnapshotForDate(ctx context.Context, dateKey string, contractorIDs []string) (*availability.Snapshot, error) {
	snapshot := availability.NewSnapshot()
	if len(contractorIDs) == 0 {
		return snapshot, nil
	}

	batches := chunk(contractorIDs, s.batchSize)
	results := make([][]models.AvailabilityRecord, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			records, err := s.queryBatch(gctx, dateKey, batch)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, records := range results {
		for _, rec := range records {
			snapshot.Add(rec)
		}
	}
	return snapshot, nil
}

func (s *PostgresAvailabilityStore) queryBatch(ctx context.Context, dateKey string, ids []string) ([]models.AvailabilityRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+availabilityColumns+` FROM contractor_availability
		WHERE available_on = $1::date AND contractor_id = ANY($2)`,
		dateKey, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query availability for %s: %w", dateKey, err)
	}
	defer rows.Close()

	var records []models.AvailabilityRecord
	for rows.Next() {
		rec, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query availability for %s: %w", dateKey, err)
	}
	return records, nil
}

func scanAvailability(row rowScanner) (models.AvailabilityRecord, error) {
	var (
		rec    models.AvailabilityRecord
		status sql.NullString
		blocks []byte
		notes  sql.NullString
	)
	if err := row.Scan(&rec.ContractorID, &rec.Date, &status, &blocks, &notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan availability: %w", err)
	}

	if status.Valid && status.String != "" {
		parsed, err := models.ParseAvailabilityStatus(status.String)
		if err != nil {
			return rec, fmt.Errorf("contractor %s on %s: %w", rec.ContractorID, rec.Date, err)
		}
		rec.Status = parsed
	}
	if blocks != nil {
		var bs models.BlockStatus
		if err := json.Unmarshal(blocks, &bs); err != nil {
			return rec, fmt.Errorf("contractor %s on %s: decode blocks: %w", rec.ContractorID, rec.Date, err)
		}
		rec.Blocks = &bs
	}
	rec.Notes = notes.String
	return rec, nil
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
