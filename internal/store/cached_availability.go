package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"renovation-workers/internal/common/logger"
	"renovation-workers/internal/common/metrics"
	"renovation-workers/internal/models"
	"renovation-workers/internal/scheduling/availability"

	"github.com/redis/go-redis/v9"
)

// absentRecord is cached when the backend has no record, so repeated lookups
// for contractors with no entry stay off the database.
const absentRecord = "null"

// CachedAvailabilityStore is a Redis read-through cache in front of another
// AvailabilitySource. Cache failures fall back to the backend.
type CachedAvailabilityStore struct {
	backend AvailabilitySource
	redis   redis.Cmdable
	ttl     time.Duration
	logger  logger.Logger
}

func NewCachedAvailabilityStore(backend AvailabilitySource, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedAvailabilityStore {
	return &CachedAvailabilityStore{
		backend: backend,
		redis:   rdb,
		ttl:     ttl,
		logger:  log,
	}
}

func availabilityKey(contractorID, dateKey string) string {
	return fmt.Sprintf("availability:%s:%s", contractorID, dateKey)
}

func (s *CachedAvailabilityStore) RecordForDate(ctx context.Context, contractorID, dateKey string) (*models.AvailabilityRecord, error) {
	key := availabilityKey(contractorID, dateKey)

	raw, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		rec, decodeErr := decodeCached(raw)
		if decodeErr == nil {
			metrics.AvailabilityCacheLookups.WithLabelValues("hit").Inc()
			return rec, nil
		}
		s.warn("discarding undecodable cache entry", key, decodeErr)
		metrics.AvailabilityCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.AvailabilityCacheLookups.WithLabelValues("miss").Inc()
	default:
		s.warn("availability cache read failed", key, err)
		metrics.AvailabilityCacheLookups.WithLabelValues("error").Inc()
	}

	rec, err := s.backend.RecordForDate(ctx, contractorID, dateKey)
	if err != nil {
		return nil, err
	}
	s.store(ctx, map[string]*models.AvailabilityRecord{key: rec})
	return rec, nil
}

// SnapshotForDate reads all keys with one MGET, then loads the misses from the
// backend in a single call and caches them.
func (s *CachedAvailabilityStore) SnapshotForDate(ctx context.Context, dateKey string, contractorIDs []string) (*availability.Snapshot, error) {
	snapshot := availability.NewSnapshot()
	if len(contractorIDs) == 0 {
		return snapshot, nil
	}

	keys := make([]string, len(contractorIDs))
	for i, id := range contractorIDs {
		keys[i] = availabilityKey(id, dateKey)
	}

	var misses []string
	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		s.warn("availability cache read failed", dateKey, err)
		metrics.AvailabilityCacheLookups.WithLabelValues("error").Add(float64(len(keys)))
		misses = contractorIDs
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				misses = append(misses, contractorIDs[i])
				metrics.AvailabilityCacheLookups.WithLabelValues("miss").Inc()
				continue
			}
			rec, err := decodeCached(raw)
			if err != nil {
				misses = append(misses, contractorIDs[i])
				metrics.AvailabilityCacheLookups.WithLabelValues("error").Inc()
				continue
			}
			metrics.AvailabilityCacheLookups.WithLabelValues("hit").Inc()
			if rec != nil {
				snapshot.Add(*rec)
			}
		}
	}

	if len(misses) == 0 {
		return snapshot, nil
	}

	fetched, err := s.backend.SnapshotForDate(ctx, dateKey, misses)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*models.AvailabilityRecord, len(misses))
	for _, id := range misses {
		rec, _ := fetched.AvailabilityForDate(id, dateKey)
		entries[availabilityKey(id, dateKey)] = rec
		if rec != nil {
			snapshot.Add(*rec)
		}
	}
	s.store(ctx, entries)
	return snapshot, nil
}

// Invalidate drops the cached entry for one contractor and date.
func (s *CachedAvailabilityStore) Invalidate(ctx context.Context, contractorID, dateKey string) error {
	return s.redis.Del(ctx, availabilityKey(contractorID, dateKey)).Err()
}

func (s *CachedAvailabilityStore) store(ctx context.Context, entries map[string]*models.AvailabilityRecord) {
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, rec := range entries {
			payload := []byte(absentRecord)
			if rec != nil {
				encoded, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				payload = encoded
			}
			pipe.Set(ctx, key, payload, s.ttl)
		}
		return nil
	})
	if err != nil {
		s.warn("availability cache write failed", "", err)
	}
}

func decodeCached(raw string) (*models.AvailabilityRecord, error) {
	if raw == absentRecord {
		return nil, nil
	}
	var rec models.AvailabilityRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *CachedAvailabilityStore) warn(msg, key string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, map[string]interface{}{
		"key":   key,
		"error": err.Error(),
	})
}
