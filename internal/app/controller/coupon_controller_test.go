package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponController_Admin(t *testing.T) {
	env := setupControllers(t)
	admin := env.router.Group("/admin", as(1000, model.RoleAdmin))
	admin.GET("/coupons", env.coupons.ListCoupons)
	admin.GET("/coupons/:id", env.coupons.GetCoupon)
	admin.POST("/coupons", env.coupons.CreateCoupon)
	admin.PUT("/coupons/:id", env.coupons.UpdateCoupon)

	expiry := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	w := env.do(t, http.MethodPost, "/admin/coupons", gin.H{
		"code": "spring-10", "discount": "10", "expiry_date": expiry, "usage_limit": 3, "min_total": "25",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Coupon model.Coupon `json:"coupon"`
	}
	decodeBody(t, w, &created)
	assert.Equal(t, "SPRING-10", created.Coupon.Code)
	assert.Equal(t, 0, created.Coupon.UsageCount)

	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"duplicate code", gin.H{"code": "Spring-10", "discount": "5", "expiry_date": expiry}, http.StatusConflict, apperrors.CouponCodeExists},
		{"zero discount", gin.H{"code": "NOTHING", "discount": "0", "expiry_date": expiry}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"percent over 100", gin.H{"code": "TOOMUCH", "discount": "150", "expiry_date": expiry}, http.StatusBadRequest, apperrors.CouponInvalidDiscount},
		{"bad code", gin.H{"code": "no spaces", "discount": "5", "expiry_date": expiry}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"missing expiry", gin.H{"code": "NOEXP", "discount": "5"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/admin/coupons", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCodeOf(t, w))
		})
	}

	w = env.do(t, http.MethodPut, fmt.Sprintf("/admin/coupons/%d", created.Coupon.ID), gin.H{
		"code": "SPRING-10", "discount": "7.5", "is_flat": true, "expiry_date": expiry,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Coupon model.Coupon `json:"coupon"`
	}
	decodeBody(t, w, &updated)
	assert.True(t, updated.Coupon.IsFlat)
	assert.True(t, updated.Coupon.Discount.Equal(dec("7.5")))

	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/admin/coupons", nil), &list)
	assert.Equal(t, 1, list.Count)

	w = env.do(t, http.MethodGet, "/admin/coupons/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CouponNotFound, errorCodeOf(t, w))
}

func TestCouponController_ApplyBoundary(t *testing.T) {
	env := setupControllers(t)
	user := env.createUser(t, "shopper@example.com")
	require.NoError(t, env.db.Create(&model.Coupon{
		Code: "MIN50", Discount: dec("10"), IsFlat: true, ExpiryDate: time.Now().Add(time.Hour), MinTotal: nullDec("50"),
	}).Error)
	env.router.POST("/coupons/apply", as(user.ID, model.RoleUser), env.coupons.ApplyCoupon)

	w := env.do(t, http.MethodPost, "/coupons/apply", gin.H{"code": "MIN50", "cart_total": "49.99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CouponBelowMinimum, errorCodeOf(t, w))

	w = env.do(t, http.MethodPost, "/coupons/apply", gin.H{"code": "MIN50", "cart_total": "50.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Without an explicit total the empty cart is used.
	w = env.do(t, http.MethodPost, "/coupons/apply", gin.H{"code": "MIN50"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CouponBelowMinimum, errorCodeOf(t, w))

	w = env.do(t, http.MethodPost, "/coupons/apply", gin.H{"code": "MIN50", "cart_total": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidInput, errorCodeOf(t, w))
}
