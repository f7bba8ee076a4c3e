package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"renovation-workers/internal/models"

	"github.com/lib/pq"
)

const contractorColumns = `id, business_name, email, phone,
		street, city, state, zip, lat, lng,
		trades, skills, service_radius,
		rating_overall, rating_quality, rating_timeliness, rating_communication, rating_value,
		status`

// PostgresContractorStore reads the contractors table.
type PostgresContractorStore struct {
	db *sql.DB
}

func NewPostgresContractorStore(db *sql.DB) *PostgresContractorStore {
	return &PostgresContractorStore{db: db}
}

func (s *PostgresContractorStore) ListContractors(ctx context.Context, filter ContractorFilter) ([]models.Contractor, error) {
	query := `SELECT ` + contractorColumns + ` FROM contractors`

	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(filter.Trades) > 0 {
		args = append(args, pq.Array(tradeStrings(filter.Trades)))
		where = append(where, fmt.Sprintf("trades && $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	defer rows.Close()

	contractors := make([]models.Contractor, 0)
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, err
		}
		contractors = append(contractors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	return contractors, nil
}

func (s *PostgresContractorStore) GetContractor(ctx context.Context, id string) (*models.Contractor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contractorColumns+` FROM contractors WHERE id = $1`, id)

	c, err := scanContractor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrContractorNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContractor(row rowScanner) (models.Contractor, error) {
	var (
		c             models.Contractor
		email, phone  sql.NullString
		lat, lng      sql.NullFloat64
		serviceRadius sql.NullFloat64
		trades        pq.StringArray
		skills        pq.StringArray
		status        string
	)

	err := row.Scan(
		&c.ID, &c.BusinessName, &email, &phone,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.Zip, &lat, &lng,
		&trades, &skills, &serviceRadius,
		&c.Rating.Overall, &c.Rating.Quality, &c.Rating.Timeliness, &c.Rating.Communication, &c.Rating.Value,
		&status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan contractor: %w", err)
	}

	c.Email = email.String
	c.Phone = phone.String
	if lat.Valid && lng.Valid {
		c.Address = c.Address.WithCoordinates(lat.Float64, lng.Float64)
	}
	if serviceRadius.Valid {
		c.ServiceRadius = serviceRadius.Float64
	}
	c.Trades = parseTrades(trades)
	c.Skills = []string(skills)
	c.Status = models.ContractorStatus(status)
	return c, nil
}
