// Package availability resolves a contractor's status for a date and time block
// from already-fetched availability records.
package availability

import (
	"time"

	"renovation-workers/internal/models"
)

// Provider looks up the availability record for a contractor on a date key.
// It returns false when no record exists.
type Provider interface {
	AvailabilityForDate(contractorID, dateKey string) (*models.AvailabilityRecord, bool)
}

// Source describes where a resolved status came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceWholeDay Source = "whole_day"
	SourceBlock    Source = "block"
)

// Resolution is a resolved status plus how it was derived.
type Resolution struct {
	Status  models.AvailabilityStatus `json:"status"`
	DateKey string                    `json:"dateKey"`
	Source  Source                    `json:"source"`
}

// Explicit reports whether the status came from a stored record rather than
// the optimistic default.
func (r Resolution) Explicit() bool {
	return r.Source != SourceDefault
}

type Resolver struct {
	provider Provider
	location *time.Location
}

type Option func(*Resolver)

// WithLocation fixes the time zone used to turn dates into date keys. Without
// it each date is keyed in its own location.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		r.location = loc
	}
}

func NewResolver(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{provider: provider}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) DateKey(date time.Time) string {
	return FormatDateKeyIn(date, r.location)
}

// ResolveStatus returns the contractor's status for the slot. A missing record
// means available.
func (r *Resolver) ResolveStatus(contractorID string, date time.Time, block models.TimeBlock) models.AvailabilityStatus {
	return r.Resolve(contractorID, date, block).Status
}

func (r *Resolver) Resolve(contractorID string, date time.Time, block models.TimeBlock) Resolution {
	key := r.DateKey(date)
	res := Resolution{Status: models.StatusAvailable, DateKey: key, Source: SourceDefault}

	if r.provider == nil {
		return res
	}
	record, ok := r.provider.AvailabilityForDate(contractorID, key)
	if !ok || record == nil {
		return res
	}
	return ResolveRecord(*record, block, key)
}

// ResolveRecord applies the resolution rules to a single fetched record.
func ResolveRecord(record models.AvailabilityRecord, block models.TimeBlock, dateKey string) Resolution {
	res := Resolution{Status: models.StatusAvailable, DateKey: dateKey, Source: SourceDefault}

	if record.Blocks != nil {
		if status, ok := record.Blocks.For(block); ok {
			res.Status = status
			res.Source = SourceBlock
		}
		return res
	}
	if record.Status != "" {
		res.Status = record.Status
		res.Source = SourceWholeDay
	}
	return res
}
