// Package store loads contractors and availability records for the
// scheduling workers.
package store

import (
	"context"
	"errors"

	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"
)

var ErrContractorNotFound = errors.New("contractor not found")

// ContractorFilter narrows ListContractors. Zero values mean no constraint.
type ContractorFilter struct {
	Status models.ContractorStatus
	Trades []models.Trade
}

// ContractorSource is implemented by the Postgres and Elasticsearch stores.
type ContractorSource interface {
	ListContractors(ctx context.Context, filter ContractorFilter) ([]models.Contractor, error)
	GetContractor(ctx context.Context, id string) (*models.Contractor, error)
}

// AvailabilitySource reads availability records keyed by contractor and date.
type AvailabilitySource interface {
	// RecordForDate returns nil, nil when the contractor has no record for dateKey.
	RecordForDate(ctx context.Context, contractorID, dateKey string) (*models.AvailabilityRecord, error)
	// SnapshotForDate loads every record for dateKey belonging to contractorIDs.
	SnapshotForDate(ctx context.Context, dateKey string, contractorIDs []string) (*availability.Snapshot, error)
}

func tradeStrings(trades []models.Trade) []string {
	out := make([]string, 0, len(trades))
	for _, t := range trades {
		out = append(out, string(t))
	}
	return out
}

// parseTrades keeps the recognised trades and drops the rest.
func parseTrades(raw []string) []models.Trade {
	out := make([]models.Trade, 0, len(raw))
	for _, s := range raw {
		if t, err := models.ParseTrade(s); err == nil {
			out = append(out, t)
		}
	}
	return out
}
