package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
)

type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

const pricingColumns = `
	id,
	outfitter_id,
	title,
	category,
	add_on_type,
	amount,
	included_days,
	created_at
`

func (r *PricingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PricingItem, error) {
	var item model.PricingItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+pricingColumns+` FROM pricing_items WHERE id = ? LIMIT 1`, id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *PricingRepository) ListByOutfitter(ctx context.Context, outfitterID uuid.UUID) ([]model.PricingItem, error) {
	var items []model.PricingItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+pricingColumns+` FROM pricing_items WHERE outfitter_id = ? ORDER BY category, title`,
		outfitterID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
