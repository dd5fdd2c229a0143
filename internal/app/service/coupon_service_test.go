package service

import (
	"testing"
	"time"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestCouponService_Apply(t *testing.T) {
	env := setupServices(t)
	coupon := env.createCoupon(t, &model.Coupon{
		Code:       "SAVE10",
		Discount:   dec("10"),
		IsFlat:     true,
		UsageLimit: intPtr(5),
		MinTotal:   decimal.NewNullDecimal(dec("50")),
	})

	t.Run("minimum is inclusive", func(t *testing.T) {
		_, err := env.coupons.Apply("SAVE10", dec("49.99"))
		assert.ErrorIs(t, err, ErrCouponBelowMinimum)

		quote, err := env.coupons.Apply("SAVE10", dec("50.00"))
		require.NoError(t, err)
		assert.Equal(t, coupon.ID, quote.CouponID)
		assert.True(t, quote.DiscountAmount.Equal(dec("10")))
		assert.True(t, quote.FinalTotal.Equal(dec("40")))
	})

	t.Run("code lookup ignores case", func(t *testing.T) {
		quote, err := env.coupons.Apply(" save10 ", dec("80"))
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", quote.Code)
	})

	t.Run("preview never consumes", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			_, err := env.coupons.Apply("SAVE10", dec("60"))
			require.NoError(t, err)
		}
		stored, err := env.coupons.GetCoupon(coupon.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.UsageCount)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.coupons.Apply("NOPE", dec("60"))
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("negative total", func(t *testing.T) {
		_, err := env.coupons.Apply("SAVE10", dec("-1"))
		assert.Error(t, err)
	})
}

func TestCouponService_CheckOrder(t *testing.T) {
	env := setupServices(t)
	svc := env.coupons.(*couponService)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	env.createCoupon(t, &model.Coupon{
		Code:       "ALLBAD",
		Discount:   dec("10"),
		ExpiryDate: now.Add(-time.Hour),
		UsageLimit: intPtr(1),
		UsageCount: 1,
		MinTotal:   decimal.NewNullDecimal(dec("100")),
	})
	env.createCoupon(t, &model.Coupon{
		Code:       "USEDUP",
		Discount:   dec("10"),
		ExpiryDate: now.Add(time.Hour),
		UsageLimit: intPtr(1),
		UsageCount: 1,
		MinTotal:   decimal.NewNullDecimal(dec("100")),
	})
	env.createCoupon(t, &model.Coupon{
		Code:       "LASTDAY",
		Discount:   dec("10"),
		ExpiryDate: now,
	})

	_, err := env.coupons.Apply("ALLBAD", dec("1"))
	assert.ErrorIs(t, err, ErrCouponExpired, "expiry is checked first")

	_, err = env.coupons.Apply("USEDUP", dec("1"))
	assert.ErrorIs(t, err, ErrCouponUsageExceeded, "usage is checked before the minimum")

	_, err = env.coupons.Apply("LASTDAY", dec("10"))
	assert.NoError(t, err, "a coupon is valid up to its expiry instant")

	now = now.Add(time.Second)
	_, err = env.coupons.Apply("LASTDAY", dec("10"))
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestCouponService_Admin(t *testing.T) {
	env := setupServices(t)
	expiry := time.Now().Add(48 * time.Hour)

	minTotal := dec("20")
	created, err := env.coupons.CreateCoupon(CouponInput{
		Code:       "spring",
		Discount:   dec("15"),
		ExpiryDate: expiry,
		UsageLimit: intPtr(3),
		MinTotal:   &minTotal,
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", created.Code)
	assert.True(t, created.MinTotal.Valid)

	t.Run("duplicate code", func(t *testing.T) {
		_, err := env.coupons.CreateCoupon(CouponInput{Code: "SPRING", Discount: dec("5"), ExpiryDate: expiry})
		assert.ErrorIs(t, err, ErrCouponCodeExists)
	})

	t.Run("discount bounds", func(t *testing.T) {
		_, err := env.coupons.CreateCoupon(CouponInput{Code: "BIG", Discount: dec("101"), ExpiryDate: expiry})
		assert.ErrorIs(t, err, ErrCouponInvalidDiscount)
		_, err = env.coupons.CreateCoupon(CouponInput{Code: "ZERO", Discount: decimal.Zero, IsFlat: true, ExpiryDate: expiry})
		assert.ErrorIs(t, err, ErrCouponInvalidDiscount)

		flat, err := env.coupons.CreateCoupon(CouponInput{Code: "FLAT500", Discount: dec("500"), IsFlat: true, ExpiryDate: expiry})
		require.NoError(t, err)
		assert.True(t, flat.IsFlat)
	})

	t.Run("update keeps the code", func(t *testing.T) {
		updated, err := env.coupons.UpdateCoupon(created.ID, CouponInput{
			Code:       "RENAMED",
			Discount:   dec("25"),
			ExpiryDate: expiry,
		})
		require.NoError(t, err)
		assert.Equal(t, "SPRING", updated.Code)
		assert.True(t, updated.Discount.Equal(dec("25")))
		assert.Nil(t, updated.UsageLimit)
		assert.False(t, updated.MinTotal.Valid)
	})

	t.Run("missing coupon", func(t *testing.T) {
		_, err := env.coupons.GetCoupon(9999)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	coupons, err := env.coupons.ListCoupons()
	require.NoError(t, err)
	assert.Len(t, coupons, 2)
}
