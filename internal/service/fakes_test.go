package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/outfitterhq/contracts-service/internal/config"
	"github.com/outfitterhq/contracts-service/internal/model"
)

type fakeContractStore struct {
	contracts map[uuid.UUID]model.HuntContract
	failSave  map[uuid.UUID]bool
}

func newFakeContractStore() *fakeContractStore {
	return &fakeContractStore{
		contracts: map[uuid.UUID]model.HuntContract{},
		failSave:  map[uuid.UUID]bool{},
	}
}

func (f *fakeContractStore) GetByID(_ context.Context, id uuid.UUID) (*model.HuntContract, error) {
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (f *fakeContractStore) GetByHuntID(_ context.Context, huntID uuid.UUID) (*model.HuntContract, error) {
	for _, contract := range f.contracts {
		if contract.HuntID != nil && *contract.HuntID == huntID {
			c := contract
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractStore) ListByClientEmail(_ context.Context, email string) ([]model.HuntContract, error) {
	var result []model.HuntContract
	for _, contract := range f.contracts {
		if strings.EqualFold(contract.ClientEmail, email) {
			result = append(result, contract)
		}
	}
	return result, nil
}

func (f *fakeContractStore) ListByOutfitter(_ context.Context, outfitterID uuid.UUID, status *model.ContractStatus) ([]model.HuntContract, error) {
	var result []model.HuntContract
	for _, contract := range f.contracts {
		if contract.OutfitterID != outfitterID {
			continue
		}
		if status != nil && contract.Status != *status {
			continue
		}
		result = append(result, contract)
	}
	return result, nil
}

func (f *fakeContractStore) Create(_ context.Context, contract model.HuntContract) (*model.HuntContract, error) {
	if contract.HuntID != nil {
		for _, existing := range f.contracts {
			if existing.HuntID != nil && *existing.HuntID == *contract.HuntID {
				return nil, errors.New(`duplicate key value violates unique constraint "uq_hunt_contracts_hunt_id"`)
			}
		}
	}
	contract.ID = uuid.New()
	contract.CreatedAt = time.Now().UTC()
	contract.UpdatedAt = contract.CreatedAt
	f.contracts[contract.ID] = contract
	saved := contract
	return &saved, nil
}

func (f *fakeContractStore) Save(_ context.Context, contract *model.HuntContract) error {
	if f.failSave[contract.ID] {
		return errors.New("save failed")
	}
	if _, ok := f.contracts[contract.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	contract.UpdatedAt = time.Now().UTC()
	f.contracts[contract.ID] = *contract
	return nil
}

type fakeHuntStore struct {
	hunts map[uuid.UUID]model.Hunt
}

func newFakeHuntStore() *fakeHuntStore {
	return &fakeHuntStore{hunts: map[uuid.UUID]model.Hunt{}}
}

func (f *fakeHuntStore) GetByID(_ context.Context, id uuid.UUID) (*model.Hunt, error) {
	hunt, ok := f.hunts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &hunt, nil
}

func (f *fakeHuntStore) UpdateTagStatus(_ context.Context, id uuid.UUID, status model.TagStatus) error {
	hunt, ok := f.hunts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	hunt.TagStatus = status
	f.hunts[id] = hunt
	return nil
}

func (f *fakeHuntStore) SaveBooking(_ context.Context, id uuid.UUID, pricingItemID uuid.UUID, startAt, endAt time.Time) error {
	hunt, ok := f.hunts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	hunt.PricingItemID = &pricingItemID
	hunt.StartAt = &startAt
	hunt.EndAt = &endAt
	f.hunts[id] = hunt
	return nil
}

type fakePricingStore struct {
	items []model.PricingItem
}

func (f *fakePricingStore) GetByID(_ context.Context, id uuid.UUID) (*model.PricingItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePricingStore) ListByOutfitter(_ context.Context, outfitterID uuid.UUID) ([]model.PricingItem, error) {
	var result []model.PricingItem
	for _, item := range f.items {
		if item.OutfitterID == outfitterID {
			result = append(result, item)
		}
	}
	return result, nil
}

type fakeSeasonStore struct {
	windows map[string]model.SeasonWindow
}

func (f *fakeSeasonStore) GetWindow(_ context.Context, huntCode string) (*model.SeasonWindow, error) {
	window, ok := f.windows[strings.ToUpper(huntCode)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &window, nil
}

type testEnv struct {
	service   *ContractService
	contracts *fakeContractStore
	hunts     *fakeHuntStore
	pricing   *fakePricingStore
	seasons   *fakeSeasonStore
}

func newTestEnv() *testEnv {
	contracts := newFakeContractStore()
	hunts := newFakeHuntStore()
	pricingStore := &fakePricingStore{}
	seasons := &fakeSeasonStore{windows: map[string]model.SeasonWindow{}}

	cfg := &config.Config{}
	cfg.Seasons.LookupTimeout = time.Second

	return &testEnv{
		service:   NewContractService(contracts, hunts, pricingStore, seasons, cfg, zerolog.Nop()),
		contracts: contracts,
		hunts:     hunts,
		pricing:   pricingStore,
		seasons:   seasons,
	}
}

func strPtr(s string) *string { return &s }

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
