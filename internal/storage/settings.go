package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// SettingsUpdate is a partial settings change. Nil fields keep their current
// (or default) value.
type SettingsUpdate struct {
	CutoffTime           *string
	DailyCapacity        *int
	MaxDaysAhead         *int
	AllowWeekendDelivery *bool
	Timezone             *string
	ShowOnCartPage       *bool
}

// GetSettings loads a shop's settings; found=false means the shop has never
// saved any and the documented defaults are returned.
func (s *Store) GetSettings(ctx context.Context, shop string) (model.ShopSettings, bool, error) {
	var out model.ShopSettings
	err := s.pool.QueryRow(ctx, `
		SELECT cutoff_time, daily_capacity, max_days_ahead, allow_weekend_delivery, timezone, show_on_cart_page
		FROM shop_settings
		WHERE shop = $1
	`, shop).Scan(
		&out.CutoffTime,
		&out.DailyCapacity,
		&out.MaxDaysAhead,
		&out.AllowWeekendDelivery,
		&out.Timezone,
		&out.ShowOnCartPage,
	)
	if err != nil {
		if IsNotFound(err) {
			return model.DefaultSettings(), false, nil
		}
		return model.ShopSettings{}, false, err
	}
	return out, true, nil
}

// UpsertSettingsTx merges the partial update over the shop's current settings
// (or the defaults when none exist yet) and writes the full row back, inside
// the caller's transaction so the write can commit together with its outbox
// event.
func (s *Store) UpsertSettingsTx(ctx context.Context, tx pgx.Tx, shop string, update SettingsUpdate) (model.ShopSettings, error) {
	current := model.DefaultSettings()
	err := tx.QueryRow(ctx, `
		SELECT cutoff_time, daily_capacity, max_days_ahead, allow_weekend_delivery, timezone, show_on_cart_page
		FROM shop_settings
		WHERE shop = $1
	`, shop).Scan(
		&current.CutoffTime,
		&current.DailyCapacity,
		&current.MaxDaysAhead,
		&current.AllowWeekendDelivery,
		&current.Timezone,
		&current.ShowOnCartPage,
	)
	if err != nil && !IsNotFound(err) {
		return model.ShopSettings{}, err
	}

	if update.CutoffTime != nil {
		current.CutoffTime = *update.CutoffTime
	}
	if update.DailyCapacity != nil {
		current.DailyCapacity = *update.DailyCapacity
	}
	if update.MaxDaysAhead != nil {
		current.MaxDaysAhead = *update.MaxDaysAhead
	}
	if update.AllowWeekendDelivery != nil {
		current.AllowWeekendDelivery = *update.AllowWeekendDelivery
	}
	if update.Timezone != nil {
		current.Timezone = *update.Timezone
	}
	if update.ShowOnCartPage != nil {
		current.ShowOnCartPage = *update.ShowOnCartPage
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shop_settings
			(shop, cutoff_time, daily_capacity, max_days_ahead, allow_weekend_delivery, timezone, show_on_cart_page)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (shop) DO UPDATE
		SET cutoff_time = EXCLUDED.cutoff_time,
			daily_capacity = EXCLUDED.daily_capacity,
			max_days_ahead = EXCLUDED.max_days_ahead,
			allow_weekend_delivery = EXCLUDED.allow_weekend_delivery,
			timezone = EXCLUDED.timezone,
			show_on_cart_page = EXCLUDED.show_on_cart_page,
			updated_at = now()
	`, shop, current.CutoffTime, current.DailyCapacity, current.MaxDaysAhead,
		current.AllowWeekendDelivery, current.Timezone, current.ShowOnCartPage)
	if err != nil {
		return model.ShopSettings{}, err
	}
	return current, nil
}
