package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/metrics"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound        = apperrors.NotFoundError(apperrors.CouponNotFound, "coupon not found")
	ErrCouponExpired         = apperrors.InvalidError(apperrors.CouponExpired, "coupon has expired")
	ErrCouponUsageExceeded   = apperrors.ConflictError(apperrors.CouponUsageExceeded, "coupon usage limit reached")
	ErrCouponBelowMinimum    = apperrors.InvalidError(apperrors.CouponBelowMinimum, "cart total is below the coupon minimum")
	ErrCouponInvalidDiscount = apperrors.InvalidError(apperrors.CouponInvalidDiscount, "discount must be positive and a percentage may not exceed 100")
	ErrCouponCodeExists      = apperrors.ConflictError(apperrors.CouponCodeExists, "coupon code is already in use")
)

// CouponQuote is the outcome of a successful dry run.
type CouponQuote struct {
	CouponID       uint            `json:"coupon_id"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
}

type CouponInput struct {
	Code        string
	Description string
	Discount    decimal.Decimal
	IsFlat      bool
	ExpiryDate  time.Time
	UsageLimit  *int
	MinTotal    *decimal.Decimal
}

type CouponService interface {
	Apply(code string, cartTotal decimal.Decimal) (*CouponQuote, error)
	CreateCoupon(input CouponInput) (*model.Coupon, error)
	UpdateCoupon(id uint, input CouponInput) (*model.Coupon, error)
	GetCoupon(id uint) (*model.Coupon, error)
	ListCoupons() ([]model.Coupon, error)
}

type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo, now: time.Now}
}

// Apply validates code against cartTotal without touching the usage counter.
// Checks run in order and the first failure wins.
func (s *couponService) Apply(code string, cartTotal decimal.Decimal) (*CouponQuote, error) {
	logger.Debug("Applying coupon", map[string]interface{}{
		"code":       code,
		"cart_total": cartTotal.String(),
	})

	if cartTotal.IsNegative() {
		return nil, apperrors.InvalidError(apperrors.ValidationInvalidInput, "cart total must not be negative")
	}

	coupon, err := s.couponRepo.FindByCode(normalizeCouponCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.CouponRejections.WithLabelValues(apperrors.CouponNotFound).Inc()
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if err := checkCoupon(coupon, cartTotal, s.now()); err != nil {
		logger.Debug("Coupon rejected", map[string]interface{}{
			"code":   coupon.Code,
			"reason": err.Error(),
		})
		return nil, err
	}

	discount := CouponDiscount(coupon, cartTotal)
	return &CouponQuote{
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountAmount: discount,
		FinalTotal:     FinalTotal(cartTotal, discount),
	}, nil
}

// checkCoupon runs expiry, usage and minimum checks in that order.
func checkCoupon(coupon *model.Coupon, total decimal.Decimal, now time.Time) error {
	var err error
	switch {
	case now.After(coupon.ExpiryDate):
		err = ErrCouponExpired
	case coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit:
		err = ErrCouponUsageExceeded
	case coupon.MinTotal.Valid && total.LessThan(coupon.MinTotal.Decimal):
		err = ErrCouponBelowMinimum
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			metrics.CouponRejections.WithLabelValues(appErr.Code).Inc()
		}
	}
	return err
}

func (s *couponService) CreateCoupon(input CouponInput) (*model.Coupon, error) {
	coupon := &model.Coupon{}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Create(coupon); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCouponCodeExists
		}
		return nil, err
	}

	logger.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	return coupon, nil
}

// UpdateCoupon replaces everything but the code and the usage counter.
func (s *couponService) UpdateCoupon(id uint, input CouponInput) (*model.Coupon, error) {
	coupon, err := s.GetCoupon(id)
	if err != nil {
		return nil, err
	}

	code := coupon.Code
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	coupon.Code = code

	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}
	return s.GetCoupon(id)
}

func (s *couponService) GetCoupon(id uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) ListCoupons() ([]model.Coupon, error) {
	return s.couponRepo.FindAll()
}

func applyCouponInput(coupon *model.Coupon, input CouponInput) error {
	if !input.Discount.IsPositive() || (!input.IsFlat && input.Discount.GreaterThan(hundred)) {
		return ErrCouponInvalidDiscount
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return apperrors.InvalidError(apperrors.ValidationInvalidInput, "usage limit must not be negative")
	}
	if input.MinTotal != nil && input.MinTotal.IsNegative() {
		return apperrors.InvalidError(apperrors.ValidationInvalidInput, "minimum total must not be negative")
	}

	coupon.Code = normalizeCouponCode(input.Code)
	coupon.Description = input.Description
	coupon.Discount = input.Discount
	coupon.IsFlat = input.IsFlat
	coupon.ExpiryDate = input.ExpiryDate
	coupon.UsageLimit = input.UsageLimit
	coupon.MinTotal = decimal.NullDecimal{}
	if input.MinTotal != nil {
		coupon.MinTotal = decimal.NewNullDecimal(*input.MinTotal)
	}
	return nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
