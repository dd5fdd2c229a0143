package repository

import (
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CouponRepository interface {
	Create(coupon *model.Coupon) error
	FindByID(id uint) (*model.Coupon, error)
	FindByIDForUpdate(id uint) (*model.Coupon, error)
	FindByCode(code string) (*model.Coupon, error)
	FindAll() ([]model.Coupon, error)
	Update(coupon *model.Coupon) error
	Consume(id uint) (bool, error)
	Release(id uint) error
	WithTx(tx *gorm.DB) CouponRepository
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepository{db: tx}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	logger.Debug("Creating coupon in database", map[string]interface{}{
		"code": coupon.Code,
	})

	if err := r.db.Create(coupon).Error; err != nil {
		logger.Error("Failed to create coupon in database", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}
	return nil
}

func (r *couponRepository) FindByID(id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindByIDForUpdate(id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByCode matches case-insensitively; codes are stored upper-cased.
func (r *couponRepository) FindByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindAll() ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := r.db.Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *couponRepository) Update(coupon *model.Coupon) error {
	err := r.db.Model(coupon).
		Select("description", "discount", "is_flat", "expiry_date", "usage_limit", "min_total").
		Updates(coupon).Error
	if err != nil {
		logger.Error("Failed to update coupon in database", err, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return err
	}
	return nil
}

// Consume takes one usage slot. It reports false when the limit is already
// reached; the check and the increment are one statement so concurrent
// callers can never overshoot the limit.
func (r *couponRepository) Consume(id uint) (bool, error) {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		logger.Error("Failed to consume coupon usage", result.Error, map[string]interface{}{
			"coupon_id": id,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Release gives back one usage slot, never dropping below zero.
func (r *couponRepository) Release(id uint) error {
	return r.db.Model(&model.Coupon{}).
		Where("id = ? AND usage_count > 0", id).
		Update("usage_count", gorm.Expr("usage_count - 1")).Error
}
