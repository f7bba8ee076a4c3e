// internal/common/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"renovation-workers/internal/common/config"
)

// Clients are the data stores a worker process needs. Redis and Elasticsearch
// are nil unless the scheduling config asks for them.
type Clients struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Connect opens and pings every store the configuration requires.
func Connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	pg, err := NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	clients := &Clients{Postgres: pg}

	if cfg.Scheduling.AvailabilityCacheTTL > 0 {
		clients.Redis = NewRedis(cfg.Database.Redis)
	}

	if cfg.Scheduling.ContractorSource == config.ContractorSourceElasticsearch {
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			_ = clients.Close()
			return nil, err
		}
		clients.Elasticsearch = es
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := clients.Ping(pingCtx); err != nil {
		_ = clients.Close()
		return nil, err
	}
	return clients, nil
}

func (c *Clients) Ping(ctx context.Context) error {
	if err := c.Postgres.Ping(ctx); err != nil {
		return err
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			return err
		}
	}
	if c.Elasticsearch != nil {
		if err := c.Elasticsearch.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Clients) Close() error {
	var errs []error
	if err := c.Postgres.Close(); err != nil {
		errs = append(errs, fmt.Errorf("postgres: %w", err))
	}
	if err := c.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	return errors.Join(errs...)
}
