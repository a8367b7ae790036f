package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// connectBaseDelay is the first retry delay; each subsequent attempt doubles it.
const connectBaseDelay = 500 * time.Millisecond

// ConnectWithRetry establishes the connection pool at startup, retrying with
// bounded exponential backoff. retries is the number of additional attempts
// after the first failure; the last error is returned once they are exhausted.
func ConnectWithRetry(ctx context.Context, logger zerolog.Logger, databaseURL string, maxConns, minConns int32, retries int) (*pgxpool.Pool, error) {
	var lastErr error
	delay := connectBaseDelay

	for attempt := 0; attempt <= retries; attempt++ {
		pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == retries {
			break
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("retry_in", delay).
			Msg("database connection failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("connect database after %d attempts: %w", retries+1, lastErr)
}
