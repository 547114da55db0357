// Package handlers exposes the HTTP surface: storefront app-proxy endpoints,
// the merchant admin API, first-party validation, and Shopify webhooks.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/r-sadik/deliverywindow/internal/model"
	"github.com/r-sadik/deliverywindow/internal/outbox"
	"github.com/r-sadik/deliverywindow/internal/storage"
)

// ShopStore is the slice of the persistence layer the request handlers read
// and write. *storage.Store satisfies it.
type ShopStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	GetSettings(ctx context.Context, shop string) (model.ShopSettings, bool, error)
	UpsertSettingsTx(ctx context.Context, tx pgx.Tx, shop string, update storage.SettingsUpdate) (model.ShopSettings, error)
	ListBlackouts(ctx context.Context, shop string) ([]model.BlackoutEntry, error)
	AddBlackout(ctx context.Context, shop, date string, recurring bool, label string) (model.BlackoutEntry, error)
	RemoveBlackout(ctx context.Context, shop, id string) error
	DeliveryCount(ctx context.Context, shop, date string) (int, error)
	ListAddOns(ctx context.Context, shop string, activeOnly bool) ([]model.AddOn, error)
	CreateAddOn(ctx context.Context, shop string, a model.AddOn) (model.AddOn, error)
	UpdateAddOn(ctx context.Context, shop, id string, update storage.AddOnUpdate) error
	DeleteAddOn(ctx context.Context, shop, id string) error
}

// OverrideSource resolves per-product overrides. Satisfied by
// *storage.Store directly and by *storage.OverrideCache when redis is on.
type OverrideSource interface {
	GetOverrides(ctx context.Context, shop, productID string) (*model.ProductOverrides, error)
}

// WebhookStore is the transactional slice of the persistence layer the
// webhook handlers write through. *storage.Store satisfies it.
type WebhookStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	IncrementDeliveryCountTx(ctx context.Context, tx pgx.Tx, shop, date string) error
	UpsertOverridesTx(ctx context.Context, tx pgx.Tx, shop, productID string, o model.ProductOverrides) error
	PurgeShopTx(ctx context.Context, tx pgx.Tx, shop string) error
}

// InboxRecorder claims a webhook delivery inside a transaction; false means
// the delivery was already processed. *inbox.Repository satisfies it.
type InboxRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, webhookID, topic, shop string) (bool, error)
}

// OutboxWriter stages a domain event inside a transaction.
// *outbox.Repository satisfies it.
type OutboxWriter interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
