package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `
	id,
	outfitter_id,
	hunt_id,
	client_email,
	status,
	content,
	pricing_item_id,
	guide_fee_cents,
	add_ons_cents,
	total_cents,
	completion,
	client_completed_at,
	client_signed_at,
	admin_signed_at,
	created_at,
	updated_at
`

type contractRow struct {
	ID                uuid.UUID
	OutfitterID       uuid.UUID
	HuntID            *uuid.UUID
	ClientEmail       string
	Status            model.ContractStatus
	Content           string
	PricingItemID     *uuid.UUID
	GuideFeeCents     int64
	AddOnsCents       int64
	TotalCents        int64
	Completion        []byte
	ClientCompletedAt *time.Time
	ClientSignedAt    *time.Time
	AdminSignedAt     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (row contractRow) toModel() (*model.HuntContract, error) {
	contract := &model.HuntContract{
		ID:                row.ID,
		OutfitterID:       row.OutfitterID,
		HuntID:            row.HuntID,
		ClientEmail:       row.ClientEmail,
		Status:            row.Status,
		Content:           row.Content,
		PricingItemID:     row.PricingItemID,
		GuideFeeCents:     row.GuideFeeCents,
		AddOnsCents:       row.AddOnsCents,
		TotalCents:        row.TotalCents,
		ClientCompletedAt: row.ClientCompletedAt,
		ClientSignedAt:    row.ClientSignedAt,
		AdminSignedAt:     row.AdminSignedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if len(row.Completion) > 0 {
		if err := json.Unmarshal(row.Completion, &contract.Completion); err != nil {
			return nil, fmt.Errorf("decode completion payload for contract %s: %w", row.ID, err)
		}
	}
	return contract, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HuntContract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM hunt_contracts WHERE id = ? LIMIT 1`, id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel()
}

func (r *ContractRepository) GetByHuntID(ctx context.Context, huntID uuid.UUID) (*model.HuntContract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM hunt_contracts WHERE hunt_id = ? LIMIT 1`, huntID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel()
}

func (r *ContractRepository) ListByClientEmail(ctx context.Context, email string) ([]model.HuntContract, error) {
	var rows []contractRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM hunt_contracts WHERE LOWER(client_email) = LOWER(?) ORDER BY created_at DESC`,
		strings.TrimSpace(email),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToModels(rows)
}

func (r *ContractRepository) ListByOutfitter(ctx context.Context, outfitterID uuid.UUID, status *model.ContractStatus) ([]model.HuntContract, error) {
	query := `SELECT ` + contractColumns + ` FROM hunt_contracts WHERE outfitter_id = ?`
	args := []interface{}{outfitterID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToModels(rows)
}

func rowsToModels(rows []contractRow) ([]model.HuntContract, error) {
	contracts := make([]model.HuntContract, 0, len(rows))
	for _, row := range rows {
		contract, err := row.toModel()
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *contract)
	}
	return contracts, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract model.HuntContract) (*model.HuntContract, error) {
	payload, err := json.Marshal(contract.Completion)
	if err != nil {
		return nil, err
	}

	var row contractRow
	err = r.db.WithContext(ctx).Raw(`
		INSERT INTO hunt_contracts (
			outfitter_id,
			hunt_id,
			client_email,
			status,
			content,
			pricing_item_id,
			guide_fee_cents,
			add_ons_cents,
			total_cents,
			completion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+contractColumns,
		contract.OutfitterID,
		contract.HuntID,
		contract.ClientEmail,
		contract.Status,
		contract.Content,
		contract.PricingItemID,
		contract.GuideFeeCents,
		contract.AddOnsCents,
		contract.TotalCents,
		payload,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// Save persists the mutable lifecycle fields of a contract. Immutable
// identity columns (outfitter, hunt, client email) are never touched here.
func (r *ContractRepository) Save(ctx context.Context, contract *model.HuntContract) error {
	payload, err := json.Marshal(contract.Completion)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
		UPDATE hunt_contracts
		SET
			status = ?,
			content = ?,
			pricing_item_id = ?,
			guide_fee_cents = ?,
			add_ons_cents = ?,
			total_cents = ?,
			completion = ?,
			client_completed_at = ?,
			client_signed_at = ?,
			admin_signed_at = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		contract.Status,
		contract.Content,
		contract.PricingItemID,
		contract.GuideFeeCents,
		contract.AddOnsCents,
		contract.TotalCents,
		payload,
		contract.ClientCompletedAt,
		contract.ClientSignedAt,
		contract.AdminSignedAt,
		contract.ID,
	).Error
}
