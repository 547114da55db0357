package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/r-sadik/deliverywindow/internal/delivery"
	"github.com/r-sadik/deliverywindow/internal/model"
	"github.com/r-sadik/deliverywindow/internal/outbox"
	"github.com/r-sadik/deliverywindow/internal/shopify"
	"github.com/r-sadik/deliverywindow/internal/storage"
)

// AdminHandler is the embedded-admin API. Requests carry a Shopify session
// token; the shop in its dest claim scopes every operation.
type AdminHandler struct {
	store     ShopStore
	events    OutboxWriter
	logger    *slog.Logger
	apiSecret string
	now       func() time.Time
}

func NewAdminHandler(store ShopStore, events OutboxWriter, logger *slog.Logger, apiSecret string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		events:    events,
		logger:    logger,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

type shopCtxKey struct{}

// shopFromContext returns the authenticated shop set by RequireSessionToken.
func shopFromContext(ctx context.Context) string {
	shop, _ := ctx.Value(shopCtxKey{}).(string)
	return shop
}

// RequireSessionToken verifies the Authorization bearer token and stores the
// shop in the request context.
func (h *AdminHandler) RequireSessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := shopify.VerifySessionToken(strings.TrimSpace(token), h.apiSecret, h.now())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		shop := claims.Shop()
		if shop == "" {
			writeError(w, http.StatusUnauthorized, "session token missing shop")
			return
		}
		ctx := context.WithValue(r.Context(), shopCtxKey{}, shop)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type settingsPayload struct {
	CutoffTime           string `json:"cutoffTime"`
	DailyCapacity        int    `json:"dailyCapacity"`
	MaxDaysAhead         int    `json:"maxDaysAhead"`
	AllowWeekendDelivery bool   `json:"allowWeekendDelivery"`
	Timezone             string `json:"timezone"`
	ShowOnCartPage       bool   `json:"showOnCartPage"`
}

type settingsUpdatePayload struct {
	CutoffTime           *string `json:"cutoffTime"`
	DailyCapacity        *int    `json:"dailyCapacity"`
	MaxDaysAhead         *int    `json:"maxDaysAhead"`
	AllowWeekendDelivery *bool   `json:"allowWeekendDelivery"`
	Timezone             *string `json:"timezone"`
	ShowOnCartPage       *bool   `json:"showOnCartPage"`
}

func toSettingsPayload(s model.ShopSettings) settingsPayload {
	return settingsPayload{
		CutoffTime:           s.CutoffTime,
		DailyCapacity:        s.DailyCapacity,
		MaxDaysAhead:         s.MaxDaysAhead,
		AllowWeekendDelivery: s.AllowWeekendDelivery,
		Timezone:             s.Timezone,
		ShowOnCartPage:       s.ShowOnCartPage,
	}
}

// Settings handles GET and PUT /api/v1/settings.
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	shop := shopFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		settings, _, err := h.store.GetSettings(r.Context(), shop)
		if err != nil {
			h.logger.Error("settings load failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, toSettingsPayload(settings))

	case http.MethodPut:
		var req settingsUpdatePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if msg := validateSettingsUpdate(req); msg != "" {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		ctx := r.Context()
		tx, err := h.store.Begin(ctx)
		if err != nil {
			h.logger.Error("settings save failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		defer func() { _ = tx.Rollback(ctx) }()

		saved, err := h.store.UpsertSettingsTx(ctx, tx, shop, storage.SettingsUpdate{
			CutoffTime:           req.CutoffTime,
			DailyCapacity:        req.DailyCapacity,
			MaxDaysAhead:         req.MaxDaysAhead,
			AllowWeekendDelivery: req.AllowWeekendDelivery,
			Timezone:             req.Timezone,
			ShowOnCartPage:       req.ShowOnCartPage,
		})
		if err != nil {
			h.logger.Error("settings save failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}

		payload, err := json.Marshal(map[string]any{
			"shop":        shop,
			"settings":    toSettingsPayload(saved),
			"occurred_at": h.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		if err := h.events.Insert(ctx, tx, outbox.Event{
			AggregateType: "shop",
			AggregateID:   shop,
			EventType:     outbox.EventSettingsUpdated,
			Payload:       payload,
		}); err != nil {
			h.logger.Error("settings event write failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		if err := tx.Commit(ctx); err != nil {
			h.logger.Error("settings save failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		writeJSON(w, http.StatusOK, toSettingsPayload(saved))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// validateSettingsUpdate rejects values the engine could not run with; ""
// means the update is acceptable.
func validateSettingsUpdate(req settingsUpdatePayload) string {
	if req.CutoffTime != nil {
		if _, err := time.Parse("15:04", *req.CutoffTime); err != nil {
			return "cutoffTime must be HH:MM"
		}
	}
	if req.DailyCapacity != nil && *req.DailyCapacity < 0 {
		return "dailyCapacity must be >= 0"
	}
	if req.MaxDaysAhead != nil && *req.MaxDaysAhead < 0 {
		return "maxDaysAhead must be >= 0"
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return "timezone must be a valid IANA name"
		}
	}
	return ""
}

type blackoutPayload struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`
	Label     string `json:"label,omitempty"`
}

// Blackouts handles GET and POST /api/v1/blackouts.
func (h *AdminHandler) Blackouts(w http.ResponseWriter, r *http.Request) {
	shop := shopFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		entries, err := h.store.ListBlackouts(r.Context(), shop)
		if err != nil {
			h.logger.Error("blackout listing failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to list blackout dates")
			return
		}
		items := make([]blackoutPayload, 0, len(entries))
		for _, e := range entries {
			items = append(items, blackoutPayload{ID: e.ID, Date: e.Date, Recurring: e.Recurring, Label: e.Label})
		}
		writeJSON(w, http.StatusOK, map[string][]blackoutPayload{"blackouts": items})

	case http.MethodPost:
		var req struct {
			Date      string `json:"date"`
			Recurring bool   `json:"recurring"`
			Label     string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		req.Date = strings.TrimSpace(req.Date)
		if !validBlackoutDate(req.Date, req.Recurring) {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD (or MM-DD for recurring)")
			return
		}
		entry, err := h.store.AddBlackout(r.Context(), shop, req.Date, req.Recurring, strings.TrimSpace(req.Label))
		if err != nil {
			h.logger.Error("blackout add failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to add blackout date")
			return
		}
		writeJSON(w, http.StatusCreated, blackoutPayload{ID: entry.ID, Date: entry.Date, Recurring: entry.Recurring, Label: entry.Label})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// BlackoutByID handles DELETE /api/v1/blackouts/{id}.
func (h *AdminHandler) BlackoutByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	shop := shopFromContext(r.Context())
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/blackouts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "blackout id required")
		return
	}
	if err := h.store.RemoveBlackout(r.Context(), shop, id); err != nil {
		h.logger.Error("blackout removal failed", "shop", shop, "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to remove blackout date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func validBlackoutDate(date string, recurring bool) bool {
	if _, err := delivery.ParseDate(date); err == nil {
		return true
	}
	if !recurring {
		return false
	}
	_, err := time.Parse("01-02", date)
	return err == nil
}

// AddOns handles GET and POST /api/v1/addons.
func (h *AdminHandler) AddOns(w http.ResponseWriter, r *http.Request) {
	shop := shopFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		addOns, err := h.store.ListAddOns(r.Context(), shop, false)
		if err != nil {
			h.logger.Error("add-on listing failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to list add-ons")
			return
		}
		if addOns == nil {
			addOns = []model.AddOn{}
		}
		writeJSON(w, http.StatusOK, map[string][]model.AddOn{"addOns": addOns})

	case http.MethodPost:
		var req struct {
			Name      string  `json:"name"`
			Price     float64 `json:"price"`
			VariantID string  `json:"variantId"`
			SortOrder int     `json:"sortOrder"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.VariantID = strings.TrimSpace(req.VariantID)
		if req.Name == "" || req.VariantID == "" {
			writeError(w, http.StatusUnprocessableEntity, "name and variantId are required")
			return
		}
		if req.Price < 0 {
			writeError(w, http.StatusUnprocessableEntity, "price must be >= 0")
			return
		}
		created, err := h.store.CreateAddOn(r.Context(), shop, model.AddOn{
			Name:      req.Name,
			Price:     req.Price,
			VariantID: req.VariantID,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			h.logger.Error("add-on create failed", "shop", shop, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create add-on")
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// AddOnByID handles PUT and DELETE /api/v1/addons/{id}.
func (h *AdminHandler) AddOnByID(w http.ResponseWriter, r *http.Request) {
	shop := shopFromContext(r.Context())
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/addons/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "add-on id required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Name      *string  `json:"name"`
			Price     *float64 `json:"price"`
			VariantID *string  `json:"variantId"`
			SortOrder *int     `json:"sortOrder"`
			Active    *bool    `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Price != nil && *req.Price < 0 {
			writeError(w, http.StatusUnprocessableEntity, "price must be >= 0")
			return
		}
		err := h.store.UpdateAddOn(r.Context(), shop, id, storage.AddOnUpdate{
			Name:      req.Name,
			Price:     req.Price,
			VariantID: req.VariantID,
			SortOrder: req.SortOrder,
			Active:    req.Active,
		})
		if err != nil {
			h.logger.Error("add-on update failed", "shop", shop, "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to update add-on")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})

	case http.MethodDelete:
		if err := h.store.DeleteAddOn(r.Context(), shop, id); err != nil {
			h.logger.Error("add-on delete failed", "shop", shop, "id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to delete add-on")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
