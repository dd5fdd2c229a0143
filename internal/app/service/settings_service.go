package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidStoreMode      = apperrors.InvalidError(apperrors.StoreInvalidMode, "store mode must be multi or single")
	ErrSingleProductRequired = apperrors.InvalidError(apperrors.StoreSingleProductRequired, "single mode requires a product")
	ErrInvalidRates          = apperrors.InvalidError(apperrors.ValidationInvalidInput, "tax rate must be within 0-100 and shipping rate non-negative")
	ErrInvalidCurrency       = apperrors.InvalidError(apperrors.ValidationInvalidInput, "currency must be a 3-letter code")
)

type UpdateSettingsInput struct {
	StoreMode       model.StoreMode
	SingleProductID *uint
	TaxRate         decimal.Decimal
	ShippingRate    decimal.Decimal
	Currency        string
}

// SettingsService is the read-mostly store configuration. Every read goes
// through the cache; admin writes replace the row and invalidate it.
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.StoreSettings, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*model.StoreSettings, error)
	IsSingleProductMode(ctx context.Context) (bool, error)
	SingleProductID(ctx context.Context) (*uint, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	productRepo  repository.ProductRepository
	cache        SettingsCache
}

func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	productRepo repository.ProductRepository,
	cache SettingsCache,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		productRepo:  productRepo,
		cache:        cache,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.StoreSettings, error) {
	cached, generation, ok := s.cache.Get(ctx)
	if ok {
		return cached, nil
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, settings, generation)
	return settings, nil
}

func (s *settingsService) IsSingleProductMode(ctx context.Context) (bool, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return false, err
	}
	return settings.IsSingleProduct(), nil
}

func (s *settingsService) SingleProductID(ctx context.Context) (*uint, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsSingleProduct() {
		return nil, nil
	}
	id := *settings.SingleProductID
	return &id, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*model.StoreSettings, error) {
	logger.Info("Updating store settings", map[string]interface{}{
		"store_mode":        input.StoreMode,
		"single_product_id": input.SingleProductID,
	})

	if input.StoreMode != model.StoreModeMulti && input.StoreMode != model.StoreModeSingle {
		return nil, ErrInvalidStoreMode
	}
	if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(hundred) || input.ShippingRate.IsNegative() {
		return nil, ErrInvalidRates
	}

	current, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.StoreMode = input.StoreMode
	updated.TaxRate = input.TaxRate
	updated.ShippingRate = input.ShippingRate
	updated.SingleProductID = nil

	if currency := strings.ToUpper(strings.TrimSpace(input.Currency)); currency != "" {
		if len(currency) != 3 {
			return nil, ErrInvalidCurrency
		}
		updated.Currency = currency
	}

	if input.StoreMode == model.StoreModeSingle {
		if input.SingleProductID == nil {
			return nil, ErrSingleProductRequired
		}
		if _, err := s.productRepo.FindByID(*input.SingleProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		id := *input.SingleProductID
		updated.SingleProductID = &id
	}

	if err := s.settingsRepo.Save(&updated); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	logger.Info("Store settings updated", map[string]interface{}{
		"store_mode":        updated.StoreMode,
		"single_product_id": updated.SingleProductID,
	})
	return &updated, nil
}
