package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/r-sadik/deliverywindow/internal/model"
)

// AddOnUpdate is a partial add-on change; nil fields are left untouched.
type AddOnUpdate struct {
	Name      *string
	Price     *float64
	VariantID *string
	SortOrder *int
	Active    *bool
}

// ListAddOns returns a shop's add-ons in display order. activeOnly restricts
// to the ones the storefront should offer.
func (s *Store) ListAddOns(ctx context.Context, shop string, activeOnly bool) ([]model.AddOn, error) {
	query := `
		SELECT id, name, price, variant_id, sort_order, active
		FROM add_ons
		WHERE shop = $1
		ORDER BY sort_order ASC, created_at ASC
	`
	if activeOnly {
		query = `
		SELECT id, name, price, variant_id, sort_order, active
		FROM add_ons
		WHERE shop = $1 AND active
		ORDER BY sort_order ASC, created_at ASC
	`
	}
	rows, err := s.pool.Query(ctx, query, shop)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addOns []model.AddOn
	for rows.Next() {
		var a model.AddOn
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.VariantID, &a.SortOrder, &a.Active); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}

func (s *Store) CreateAddOn(ctx context.Context, shop string, a model.AddOn) (model.AddOn, error) {
	a.ID = uuid.NewString()
	a.Active = true
	_, err := s.pool.Exec(ctx, `
		INSERT INTO add_ons (id, shop, name, price, variant_id, sort_order, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, shop, a.Name, a.Price, a.VariantID, a.SortOrder, a.Active)
	if err != nil {
		return model.AddOn{}, err
	}
	return a, nil
}

func (s *Store) UpdateAddOn(ctx context.Context, shop, id string, update AddOnUpdate) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE add_ons
		SET name = COALESCE($3, name),
			price = COALESCE($4, price),
			variant_id = COALESCE($5, variant_id),
			sort_order = COALESCE($6, sort_order),
			active = COALESCE($7, active)
		WHERE shop = $1 AND id = $2
	`, shop, id, update.Name, update.Price, update.VariantID, update.SortOrder, update.Active)
	return err
}

func (s *Store) DeleteAddOn(ctx context.Context, shop, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM add_ons
		WHERE shop = $1 AND id = $2
	`, shop, id)
	return err
}
