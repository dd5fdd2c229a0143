package repository

import (
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(refund *model.Refund) error
	FindByID(id uint) (*model.Refund, error)
	ExistsForOrder(orderID uint) (bool, error)
	FindByUserID(userID uint) ([]model.Refund, error)
	FindAll(status *model.RefundStatus) ([]model.Refund, error)
	UpdateStatusIf(id uint, from, to model.RefundStatus) (bool, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(refund *model.Refund) error {
	logger.Debug("Creating refund in database", map[string]interface{}{
		"order_id": refund.OrderID,
		"user_id":  refund.UserID,
	})

	if err := r.db.Create(refund).Error; err != nil {
		logger.Error("Failed to create refund in database", err, map[string]interface{}{
			"order_id": refund.OrderID,
		})
		return err
	}
	return nil
}

func (r *refundRepository) FindByID(id uint) (*model.Refund, error) {
	var refund model.Refund
	if err := r.db.Preload("Order").First(&refund, id).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) ExistsForOrder(orderID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Refund{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *refundRepository) FindByUserID(userID uint) ([]model.Refund, error) {
	var refunds []model.Refund
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&refunds).Error
	return refunds, err
}

func (r *refundRepository) FindAll(status *model.RefundStatus) ([]model.Refund, error) {
	query := r.db.Preload("Order").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var refunds []model.Refund
	err := query.Find(&refunds).Error
	return refunds, err
}

func (r *refundRepository) UpdateStatusIf(id uint, from, to model.RefundStatus) (bool, error) {
	result := r.db.Model(&model.Refund{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update refund status", result.Error, map[string]interface{}{
			"refund_id": id,
			"to":        to,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
