package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DeliveryCount returns how many orders already carry this delivery date.
// A shop+date pair with no row counts as zero.
func (s *Store) DeliveryCount(ctx context.Context, shop, date string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count
		FROM delivery_day_counts
		WHERE shop = $1 AND date = $2
	`, shop, date).Scan(&count)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// IncrementDeliveryCount bumps the counter for a shop+date, creating the row
// on first use. The upsert keeps concurrent order webhooks for the same date
// from losing updates.
func (s *Store) IncrementDeliveryCount(ctx context.Context, shop, date string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO delivery_day_counts (shop, date, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (shop, date) DO UPDATE
		SET count = delivery_day_counts.count + 1
	`, shop, date)
	return err
}

// IncrementDeliveryCountTx is IncrementDeliveryCount inside the caller's
// transaction, so an order webhook commits its counter bump and its outbox
// event together.
func (s *Store) IncrementDeliveryCountTx(ctx context.Context, tx pgx.Tx, shop, date string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO delivery_day_counts (shop, date, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (shop, date) DO UPDATE
		SET count = delivery_day_counts.count + 1
	`, shop, date)
	return err
}
