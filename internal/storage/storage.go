// Package storage is the Postgres persistence layer. Every table is keyed by
// shop so one deployment serves many stores; the capacity counter is the only
// row the request path mutates and is maintained with an atomic
// upsert-increment.
package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/r-sadik/deliverywindow/libs/db"
)

type Store struct {
	pool *db.Pool
}

func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.pool.Begin(ctx)
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
