package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
)

type SeasonRepository struct {
	db *gorm.DB
}

func NewSeasonRepository(db *gorm.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetWindow(ctx context.Context, huntCode string) (*model.SeasonWindow, error) {
	var window model.SeasonWindow
	err := r.db.WithContext(ctx).Raw(`
		SELECT hunt_code, start_at, end_at
		FROM season_windows
		WHERE UPPER(hunt_code) = UPPER(?)
		LIMIT 1
	`, strings.TrimSpace(huntCode)).Scan(&window).Error
	if err != nil {
		return nil, err
	}
	if window.HuntCode == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &window, nil
}
