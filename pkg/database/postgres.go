package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/church-events-api/pkg/config"
)

// uniqueViolation is the SQLSTATE postgres reports for unique index conflicts.
const uniqueViolation = "23505"

// NewPostgres opens the pool and waits up to cfg.ConnectTimeout for the
// server to answer, so the API can start alongside a database container
// that is still booting.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := pingUntilReady(ctx, db.PingContext, cfg.ConnectTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres not reachable at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// pingUntilReady calls ping with exponential backoff until it succeeds, ctx
// ends or wait has elapsed. A non-positive wait tries once.
func pingUntilReady(ctx context.Context, ping func(context.Context) error, wait time.Duration) error {
	attempt := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return ping(pingCtx)
	}
	if wait <= 0 {
		return attempt()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 3 * time.Second
	policy.MaxElapsedTime = wait
	return backoff.Retry(attempt, backoff.WithContext(policy, ctx))
}

// UniqueViolation reports whether err is a unique index conflict and, if so,
// the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
