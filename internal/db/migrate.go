package db

import (
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Address{},
		&model.Category{},
		&model.Product{},
		&model.Variant{},
		&model.StoreSettings{},
		&model.Cart{},
		&model.CartItem{},
		&model.Coupon{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.Refund{},
	}
}

// Migrate runs database migrations against the global connection.
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedStoreSettings(db); err != nil {
		logger.Error("Failed to seed store settings during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedStoreSettings inserts the default settings row unless it already exists.
func seedStoreSettings(db *gorm.DB) error {
	defaults := model.DefaultStoreSettings()
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info("Seeded default store settings", map[string]interface{}{
			"store_mode": defaults.StoreMode,
			"currency":   defaults.Currency,
		})
	}
	return nil
}
