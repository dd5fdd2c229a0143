package repository

import (
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type VariantRepository interface {
	Create(variant *model.Variant) error
	FindByID(id uint) (*model.Variant, error)
	FindByIDAndProduct(id, productID uint) (*model.Variant, error)
	Update(variant *model.Variant) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) VariantRepository
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) WithTx(tx *gorm.DB) VariantRepository {
	return &variantRepository{db: tx}
}

func (r *variantRepository) Create(variant *model.Variant) error {
	if err := r.db.Create(variant).Error; err != nil {
		logger.Error("Failed to create variant in database", err, map[string]interface{}{
			"product_id": variant.ProductID,
			"sku":        variant.SKU,
		})
		return err
	}
	return nil
}

func (r *variantRepository) FindByID(id uint) (*model.Variant, error) {
	var variant model.Variant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByIDAndProduct(id, productID uint) (*model.Variant, error) {
	var variant model.Variant
	if err := r.db.Where("id = ? AND product_id = ?", id, productID).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) Update(variant *model.Variant) error {
	err := r.db.Model(variant).
		Select("size", "color", "sku", "stock", "price_diff").
		Updates(variant).Error
	if err != nil {
		logger.Error("Failed to update variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}
	return nil
}

func (r *variantRepository) Delete(id uint) error {
	if err := r.db.Where("variant_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	result := r.db.Delete(&model.Variant{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *variantRepository) DecrementStock(id uint, quantity int) (bool, error) {
	result := r.db.Model(&model.Variant{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *variantRepository) IncrementStock(id uint, quantity int) error {
	return r.db.Model(&model.Variant{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}
