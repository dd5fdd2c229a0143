package repository

import (
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	Get() (*model.StoreSettings, error)
	Save(settings *model.StoreSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the settings row, creating it with defaults on first access.
func (r *settingsRepository) Get() (*model.StoreSettings, error) {
	settings := model.DefaultStoreSettings()
	err := r.db.Where(model.StoreSettings{ID: model.StoreSettingsID}).
		Attrs(settings).
		FirstOrCreate(&settings).Error
	if err != nil {
		logger.Error("Failed to load store settings", err)
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(settings *model.StoreSettings) error {
	settings.ID = model.StoreSettingsID
	err := r.db.Model(settings).
		Select("store_mode", "single_product_id", "tax_rate", "shipping_rate", "currency").
		Updates(settings).Error
	if err != nil {
		logger.Error("Failed to save store settings", err, map[string]interface{}{
			"store_mode": settings.StoreMode,
		})
		return err
	}
	return nil
}
