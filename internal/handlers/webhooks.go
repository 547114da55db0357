package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/r-sadik/deliverywindow/internal/outbox"
	"github.com/r-sadik/deliverywindow/internal/shopify"
	"github.com/r-sadik/deliverywindow/internal/storage"
)

// deliveryDateProperty is the line-item property the storefront picker writes
// on the cart.
const deliveryDateProperty = "Delivery Date"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// WebhookHandler processes Shopify webhooks. Signature verification is the
// auth; every topic records its delivery id in the inbox inside the same
// transaction as its side effects, so a failed action releases the id and
// Shopify's retry can succeed.
type WebhookHandler struct {
	store         WebhookStore
	inboxRepo     InboxRecorder
	outboxRepo    OutboxWriter
	cache         *storage.OverrideCache
	logger        *slog.Logger
	webhookSecret string
}

func NewWebhookHandler(store WebhookStore, inboxRepo InboxRecorder, outboxRepo OutboxWriter, cache *storage.OverrideCache, logger *slog.Logger, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		store:         store,
		inboxRepo:     inboxRepo,
		outboxRepo:    outboxRepo,
		cache:         cache,
		logger:        logger,
		webhookSecret: webhookSecret,
	}
}

// authorize reads and verifies the webhook body. Shopify treats any non-2xx
// as a delivery failure and retries, so verification failures return 401 and
// everything after this point should prefer 200 over retry storms.
func (h *WebhookHandler) authorize(w http.ResponseWriter, r *http.Request) (body []byte, shop string, ok bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, "", false
	}
	if strings.TrimSpace(h.webhookSecret) == "" {
		http.Error(w, "webhooks not configured", http.StatusServiceUnavailable)
		return nil, "", false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return nil, "", false
	}
	if !shopify.VerifyWebhookHMAC(body, r.Header.Get("X-Shopify-Hmac-Sha256"), h.webhookSecret) {
		http.Error(w, "invalid hmac", http.StatusUnauthorized)
		return nil, "", false
	}

	shop = shopify.NormalizeShopDomain(r.Header.Get("X-Shopify-Shop-Domain"))
	if shop == "" {
		http.Error(w, "missing shop domain", http.StatusBadRequest)
		return nil, "", false
	}
	return body, shop, true
}

// dedupe claims the delivery id within the caller's transaction; a false
// return means a response has been written and the caller should stop. A
// duplicate commits the (side-effect-free) transaction and acknowledges.
func (h *WebhookHandler) dedupe(ctx context.Context, tx pgx.Tx, w http.ResponseWriter, r *http.Request, topic, shop string) bool {
	webhookID := strings.TrimSpace(r.Header.Get("X-Shopify-Webhook-Id"))
	if webhookID == "" {
		// Old webhook API versions omit the id; process without dedupe.
		return true
	}
	fresh, err := h.inboxRepo.Record(ctx, tx, webhookID, topic, shop)
	if err != nil {
		http.Error(w, "failed to record webhook", http.StatusInternalServerError)
		return false
	}
	if !fresh {
		_ = tx.Commit(ctx)
		h.logger.Info("duplicate webhook ignored", "topic", topic, "shop", shop, "webhook_id", webhookID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return false
	}
	return true
}

type orderPayload struct {
	ID                int64  `json:"id"`
	AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
	LineItems         []struct {
		Properties []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"properties"`
	} `json:"line_items"`
}

// extractDeliveryDate returns the first delivery-date line-item property on
// the order, or "" when the customer did not pick one.
func extractDeliveryDate(order orderPayload) string {
	for _, item := range order.LineItems {
		for _, prop := range item.Properties {
			if prop.Name == deliveryDateProperty && strings.TrimSpace(prop.Value) != "" {
				return strings.TrimSpace(prop.Value)
			}
		}
	}
	return ""
}

// OrdersCreate handles POST /webhooks/orders/create: bump the day's capacity
// counter and emit a scheduled event, atomically with the dedupe record.
func (h *WebhookHandler) OrdersCreate(w http.ResponseWriter, r *http.Request) {
	body, shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var order orderPayload
	if err := json.Unmarshal(body, &order); err != nil {
		h.logger.Warn("orders/create payload unparseable", "shop", shop, "err", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	deliveryDate := extractDeliveryDate(order)
	if deliveryDate == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no delivery date"})
		return
	}
	if !dateRe.MatchString(deliveryDate) {
		h.logger.Warn("orders/create carried malformed delivery date", "shop", shop, "value", deliveryDate)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	orderID := order.AdminGraphqlAPIID
	if orderID == "" && order.ID != 0 {
		orderID = "gid://shopify/Order/" + strconv.FormatInt(order.ID, 10)
	}

	ctx := r.Context()
	tx, err := h.store.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !h.dedupe(ctx, tx, w, r, "orders/create", shop) {
		return
	}

	if err := h.store.IncrementDeliveryCountTx(ctx, tx, shop, deliveryDate); err != nil {
		http.Error(w, "failed to increment delivery count", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"shop":          shop,
		"order_id":      orderID,
		"delivery_date": deliveryDate,
		"occurred_at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "shop",
		AggregateID:   shop,
		EventType:     outbox.EventDateScheduled,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	h.logger.Info("delivery date scheduled", "shop", shop, "date", deliveryDate, "order_id", orderID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type productPayload struct {
	ID                int64               `json:"id"`
	AdminGraphqlAPIID string              `json:"admin_graphql_api_id"`
	Metafields        []shopify.Metafield `json:"metafields"`
}

// ProductsUpdate handles POST /webhooks/products/update: sync delivery
// metafields into the override table and drop the cached copy.
func (h *WebhookHandler) ProductsUpdate(w http.ResponseWriter, r *http.Request) {
	body, shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var product productPayload
	if err := json.Unmarshal(body, &product); err != nil {
		h.logger.Warn("products/update payload unparseable", "shop", shop, "err", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	productID := product.AdminGraphqlAPIID
	if productID == "" && product.ID != 0 {
		productID = strconv.FormatInt(product.ID, 10)
	}
	if productID == "" || len(product.Metafields) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "nothing to sync"})
		return
	}
	productID = shopify.NormalizeProductID(productID)
	overrides := shopify.DecodeProductOverrides(product.Metafields)

	ctx := r.Context()
	tx, err := h.store.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !h.dedupe(ctx, tx, w, r, "products/update", shop) {
		return
	}

	if err := h.store.UpsertOverridesTx(ctx, tx, shop, productID, overrides); err != nil {
		http.Error(w, "failed to sync overrides", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, shop, productID)
	}

	h.logger.Info("product overrides synced", "shop", shop, "product_id", productID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AppUninstalled handles POST /webhooks/app/uninstalled: drop everything the
// shop stored with us.
func (h *WebhookHandler) AppUninstalled(w http.ResponseWriter, r *http.Request) {
	_, shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	tx, err := h.store.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !h.dedupe(ctx, tx, w, r, "app/uninstalled", shop) {
		return
	}

	if err := h.store.PurgeShopTx(ctx, tx, shop); err != nil {
		http.Error(w, "failed to purge shop data", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	h.logger.Info("shop data purged on uninstall", "shop", shop)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
