package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// PurgeShopTx removes every row a shop owns, inside the caller's transaction.
// Called when the app is uninstalled; the outbox is left alone so in-flight
// events still publish.
func (s *Store) PurgeShopTx(ctx context.Context, tx pgx.Tx, shop string) error {
	tables := []string{
		"shop_settings",
		"blackout_dates",
		"product_override_cache",
		"delivery_day_counts",
		"add_ons",
	}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE shop = $1", shop); err != nil {
			return err
		}
	}
	return nil
}
