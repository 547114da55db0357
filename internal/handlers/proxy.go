package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/r-sadik/deliverywindow/internal/delivery"
	"github.com/r-sadik/deliverywindow/internal/model"
	"github.com/r-sadik/deliverywindow/internal/shopify"
)

// ProxyHandler serves the storefront app-proxy endpoints. Shopify forwards
// these requests with a signed query string; the HMAC is the auth.
type ProxyHandler struct {
	store     ShopStore
	overrides OverrideSource
	logger    *slog.Logger
	apiSecret string
	now       func() time.Time
}

func NewProxyHandler(store ShopStore, overrides OverrideSource, logger *slog.Logger, apiSecret string) *ProxyHandler {
	return &ProxyHandler{
		store:     store,
		overrides: overrides,
		logger:    logger,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

type availabilityResponse struct {
	AvailableDates  []string          `json:"availableDates"`
	ExcludedDates   []string          `json:"excludedDates"`
	NextValidDate   *string           `json:"nextValidDate"`
	ExcludedReasons map[string]string `json:"excludedReasons"`
	Message         string            `json:"message,omitempty"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// authorize verifies the proxy signature and extracts the shop. A failed
// check writes the response itself and returns ok=false.
func (h *ProxyHandler) authorize(w http.ResponseWriter, r *http.Request) (shop string, ok bool) {
	if strings.TrimSpace(h.apiSecret) == "" {
		writeError(w, http.StatusInternalServerError, "Server misconfiguration")
		return "", false
	}
	if !shopify.VerifyProxySignature(r.URL.Query(), h.apiSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return "", false
	}
	shop = shopify.NormalizeShopDomain(r.URL.Query().Get("shop"))
	if shop == "" {
		writeError(w, http.StatusBadRequest, "Missing shop")
		return "", false
	}
	return shop, true
}

// AvailableDates handles GET /apps/delivery/available-dates.
func (h *ProxyHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))

	overrides, err := h.loadOverrides(ctx, shop, productID)
	if err != nil {
		h.logger.Error("override lookup failed", "shop", shop, "product_id", productID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load product overrides")
		return
	}
	if overrides.Disabled() {
		resp := toAvailabilityResponse(delivery.DisabledResult())
		resp.Message = "Delivery date picker is disabled for this product."
		writeJSON(w, http.StatusOK, resp)
		return
	}

	settings, blackouts, err := h.loadShopConfig(ctx, shop)
	if err != nil {
		h.logger.Error("shop config load failed", "shop", shop, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	result, err := delivery.ComputeAvailability(ctx, settings, overrides, blackouts, h.capacityLookup(shop), h.now())
	if err != nil {
		h.logger.Error("availability scan failed", "shop", shop, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute availability")
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityResponse(result))
}

// ValidateDate handles POST /apps/delivery/validate-date. The storefront
// calls it right before checkout; it must agree with the range scan.
func (h *ProxyHandler) ValidateDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, validateResponse{Reason: "Method not allowed"})
		return
	}
	shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req struct {
		DeliveryDate string `json:"deliveryDate"`
		ProductID    string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validateResponse{Reason: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.DeliveryDate) == "" {
		writeJSON(w, http.StatusBadRequest, validateResponse{Reason: "Missing deliveryDate"})
		return
	}

	h.validate(r.Context(), w, shop, req.DeliveryDate, strings.TrimSpace(req.ProductID))
}

// AddOns handles GET /apps/delivery/add-ons.
func (h *ProxyHandler) AddOns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	shop, ok := h.authorize(w, r)
	if !ok {
		return
	}

	addOns, err := h.store.ListAddOns(r.Context(), shop, true)
	if err != nil {
		h.logger.Error("add-on listing failed", "shop", shop, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list add-ons")
		return
	}
	if addOns == nil {
		addOns = []model.AddOn{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.AddOn{"addOns": addOns})
}

func (h *ProxyHandler) validate(ctx context.Context, w http.ResponseWriter, shop, date, productID string) {
	overrides, err := h.loadOverrides(ctx, shop, productID)
	if err != nil {
		h.logger.Error("override lookup failed", "shop", shop, "product_id", productID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load product overrides")
		return
	}

	settings, blackouts, err := h.loadShopConfig(ctx, shop)
	if err != nil {
		h.logger.Error("shop config load failed", "shop", shop, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	verdict, err := delivery.ValidateDate(ctx, settings, overrides, blackouts, h.capacityLookup(shop), date, h.now())
	if err != nil {
		if errors.Is(err, delivery.ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, validateResponse{Reason: "Invalid date format"})
			return
		}
		h.logger.Error("date validation failed", "shop", shop, "date", date, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to validate date")
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: verdict.Valid, Reason: verdict.Reason})
}

func (h *ProxyHandler) loadOverrides(ctx context.Context, shop, productID string) (*model.ProductOverrides, error) {
	if productID == "" {
		return nil, nil
	}
	return h.overrides.GetOverrides(ctx, shop, shopify.NormalizeProductID(productID))
}

func (h *ProxyHandler) loadShopConfig(ctx context.Context, shop string) (model.ShopSettings, []model.BlackoutEntry, error) {
	settings, _, err := h.store.GetSettings(ctx, shop)
	if err != nil {
		return model.ShopSettings{}, nil, err
	}
	blackouts, err := h.store.ListBlackouts(ctx, shop)
	if err != nil {
		return model.ShopSettings{}, nil, err
	}
	return settings, blackouts, nil
}

func (h *ProxyHandler) capacityLookup(shop string) delivery.CapacityLookup {
	return func(ctx context.Context, date string) (int, error) {
		return h.store.DeliveryCount(ctx, shop, date)
	}
}

func toAvailabilityResponse(res delivery.Result) availabilityResponse {
	out := availabilityResponse{
		AvailableDates:  res.AvailableDates,
		ExcludedDates:   res.ExcludedDates,
		ExcludedReasons: res.ExcludedReasons,
	}
	if res.NextValidDate != "" {
		next := res.NextValidDate
		out.NextValidDate = &next
	}
	return out
}
