package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/r-sadik/deliverywindow/internal/model"
)

// ListBlackouts returns the shop's blackout entries ordered by date. The table
// is owner-curated and small; callers scan it linearly per date check.
func (s *Store) ListBlackouts(ctx context.Context, shop string) ([]model.BlackoutEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date, recurring, COALESCE(label, '')
		FROM blackout_dates
		WHERE shop = $1
		ORDER BY date ASC
	`, shop)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.BlackoutEntry
	for rows.Next() {
		var e model.BlackoutEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Recurring, &e.Label); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AddBlackout(ctx context.Context, shop, date string, recurring bool, label string) (model.BlackoutEntry, error) {
	entry := model.BlackoutEntry{
		ID:        uuid.NewString(),
		Date:      date,
		Recurring: recurring,
		Label:     label,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO blackout_dates (id, shop, date, recurring, label)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, entry.ID, shop, entry.Date, entry.Recurring, entry.Label)
	if err != nil {
		return model.BlackoutEntry{}, err
	}
	return entry, nil
}

// RemoveBlackout deletes by (shop, id); removing an id that is already gone
// is not an error.
func (s *Store) RemoveBlackout(ctx context.Context, shop, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM blackout_dates
		WHERE shop = $1 AND id = $2
	`, shop, id)
	return err
}
