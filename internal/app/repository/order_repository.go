package repository

import (
	"time"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByIDForUpdate(id uint) (*model.Order, error)
	FindByPaymentRef(ref string) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll(status *model.OrderStatus) ([]model.Order, error)
	FindStalePending(createdBefore time.Time) ([]model.Order, error)
	UpdateStatusIf(id uint, from, to model.OrderStatus) (bool, error)
	SetPaymentCheckout(id uint, ref, url string, at time.Time) error
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.id ASC")
		})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"items":        len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDForUpdate(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("OrderItems").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByPaymentRef(ref string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Where("payment_ref = ?", ref).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll(status *model.OrderStatus) ([]model.Order, error) {
	query := r.preloadOrder().Order("created_at DESC").Order("id DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindStalePending skips orders whose provider checkout opened after the
// cutoff; a payment may still arrive for them.
func (r *orderRepository) FindStalePending(createdBefore time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Where("status = ? AND created_at < ?", model.OrderStatusPending, createdBefore).
		Where("checkout_at IS NULL OR checkout_at < ?", createdBefore).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatusIf is a compare-and-set on status. It reports false when the
// order is no longer in the expected state.
func (r *orderRepository) UpdateStatusIf(id uint, from, to model.OrderStatus) (bool, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update order status", result.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) SetPaymentCheckout(id uint, ref, url string, at time.Time) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"payment_ref": ref, "payment_url": url, "checkout_at": at}).Error
}
