package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// GetOverrides returns the cached overrides for a product, or nil when the
// product has never synced any.
func (s *Store) GetOverrides(ctx context.Context, shop, productID string) (*model.ProductOverrides, error) {
	var out model.ProductOverrides
	err := s.pool.QueryRow(ctx, `
		SELECT enabled, cutoff_hours, max_days_ahead, daily_capacity
		FROM product_override_cache
		WHERE shop = $1 AND product_id = $2
	`, shop, productID).Scan(
		&out.Enabled,
		&out.CutoffHours,
		&out.MaxDaysAhead,
		&out.DailyCapacity,
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// UpsertOverridesTx stores a product's synced overrides inside the caller's
// transaction. Fields the sync left nil keep whatever a previous sync set,
// mirroring partial metafield updates.
func (s *Store) UpsertOverridesTx(ctx context.Context, tx pgx.Tx, shop, productID string, o model.ProductOverrides) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_override_cache
			(shop, product_id, enabled, cutoff_hours, max_days_ahead, daily_capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (shop, product_id) DO UPDATE
		SET enabled = COALESCE(EXCLUDED.enabled, product_override_cache.enabled),
			cutoff_hours = COALESCE(EXCLUDED.cutoff_hours, product_override_cache.cutoff_hours),
			max_days_ahead = COALESCE(EXCLUDED.max_days_ahead, product_override_cache.max_days_ahead),
			daily_capacity = COALESCE(EXCLUDED.daily_capacity, product_override_cache.daily_capacity),
			updated_at = now()
	`, shop, productID, o.Enabled, o.CutoffHours, o.MaxDaysAhead, o.DailyCapacity)
	return err
}
