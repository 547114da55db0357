// Package inbox deduplicates Shopify webhook deliveries. Shopify retries
// webhooks aggressively, so every handler records the X-Shopify-Webhook-Id
// in the same transaction as its side effects; a repeat delivery is
// acknowledged without acting again, and a failed transaction releases the
// id so the retry can succeed.
package inbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Record claims this webhook delivery inside the caller's transaction.
// It returns true when the delivery is new and false when it has been seen
// before. ON CONFLICT keeps a duplicate from aborting the transaction.
func (r *Repository) Record(ctx context.Context, tx pgx.Tx, webhookID, topic, shop string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO webhook_inbox (webhook_id, topic, shop)
		VALUES ($1, $2, $3)
		ON CONFLICT (webhook_id) DO NOTHING
	`, webhookID, topic, shop)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
