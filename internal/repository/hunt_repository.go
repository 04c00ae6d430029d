package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
)

type HuntRepository struct {
	db *gorm.DB
}

func NewHuntRepository(db *gorm.DB) *HuntRepository {
	return &HuntRepository{db: db}
}

const huntColumns = `
	id,
	outfitter_id,
	title,
	species,
	unit,
	weapon,
	start_at,
	end_at,
	hunt_code,
	window_start,
	window_end,
	private_land_tag_id,
	client_email,
	tag_status,
	pricing_item_id,
	created_at
`

func (r *HuntRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Hunt, error) {
	var hunt model.Hunt
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+huntColumns+` FROM hunts WHERE id = ? LIMIT 1`, id,
	).Scan(&hunt).Error
	if err != nil {
		return nil, err
	}
	if hunt.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &hunt, nil
}

func (r *HuntRepository) UpdateTagStatus(ctx context.Context, id uuid.UUID, status model.TagStatus) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE hunts SET tag_status = ? WHERE id = ?`, status, id,
	).Error
}

// SaveBooking records the outcome of a completed booking: the chosen
// guide-fee plan and the normalized hunt dates.
func (r *HuntRepository) SaveBooking(ctx context.Context, id uuid.UUID, pricingItemID uuid.UUID, startAt, endAt time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE hunts
		SET pricing_item_id = ?, start_at = ?, end_at = ?
		WHERE id = ?
	`, pricingItemID, startAt, endAt, id).Error
}
