package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/r-sadik/deliverywindow/internal/shopify"
)

// ValidateHandler is the first-party validation endpoint. Theme extensions
// call it directly (not through the app proxy), so the shop arrives in the
// body instead of a signed query string.
type ValidateHandler struct {
	proxy *ProxyHandler
}

func NewValidateHandler(store ShopStore, overrides OverrideSource, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{
		proxy: &ProxyHandler{
			store:     store,
			overrides: overrides,
			logger:    logger,
			now:       time.Now,
		},
	}
}

// ValidateDate handles POST /api/v1/validate-date.
func (h *ValidateHandler) ValidateDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, validateResponse{Reason: "Method not allowed"})
		return
	}

	var req struct {
		Shop         string `json:"shop"`
		DeliveryDate string `json:"deliveryDate"`
		ProductID    string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validateResponse{Reason: "Invalid JSON body"})
		return
	}
	req.Shop = strings.TrimSpace(req.Shop)
	req.DeliveryDate = strings.TrimSpace(req.DeliveryDate)
	if req.Shop == "" || req.DeliveryDate == "" {
		writeJSON(w, http.StatusBadRequest, validateResponse{Reason: "Missing shop or deliveryDate"})
		return
	}

	shop := shopify.NormalizeShopDomain(req.Shop)
	h.proxy.validate(r.Context(), w, shop, req.DeliveryDate, strings.TrimSpace(req.ProductID))
}
