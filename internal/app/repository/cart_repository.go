package repository

import (
	"errors"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	FindByUserID(userID uint) (*model.Cart, error)
	GetOrCreate(userID uint) (*model.Cart, error)
	UpsertItem(item *model.CartItem) error
	FindItem(cartID, itemID uint) (*model.CartItem, error)
	UpdateItemQuantity(itemID uint, quantity int) error
	DeleteItem(itemID uint) error
	DeleteItems(cartID uint) error
	UpdateTotal(cartID uint, total decimal.Decimal) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

// FindByUserID loads the cart with items, products and variants in insertion order.
func (r *cartRepository) FindByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Variant").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate is idempotent per user; a concurrent insert loses on the unique
// user index and falls back to reading the winner's row.
func (r *cartRepository) GetOrCreate(userID uint) (*model.Cart, error) {
	cart, err := r.FindByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	logger.Debug("Creating cart for user", map[string]interface{}{
		"user_id": userID,
	})
	created := &model.Cart{UserID: userID, Total: decimal.Zero}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(created).Error; err != nil {
		logger.Error("Failed to create cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return r.FindByUserID(userID)
}

// UpsertItem inserts the item or adds its quantity to the existing line with
// the same (cart, product, variant) identity.
func (r *cartRepository) UpsertItem(item *model.CartItem) error {
	item.VariantKey = model.VariantKeyOf(item.VariantID)

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "variant_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + ?", item.Quantity),
		}),
	}).Omit(clause.Associations).Create(item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
			"variant_id": item.VariantID,
		})
		return err
	}
	return nil
}

// FindItem loads one line of the given cart with its product and variant.
func (r *cartRepository) FindItem(cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Preload("Product").Preload("Variant").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	return r.db.Model(&model.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *cartRepository) DeleteItem(itemID uint) error {
	return r.db.Delete(&model.CartItem{}, itemID).Error
}

func (r *cartRepository) DeleteItems(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart items", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateTotal(cartID uint, total decimal.Decimal) error {
	return r.db.Model(&model.Cart{}).Where("id = ?", cartID).Update("total", total).Error
}
