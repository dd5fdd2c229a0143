package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type CouponController struct {
	couponService service.CouponService
	cartService   service.CartService
}

func NewCouponController(couponService service.CouponService, cartService service.CartService) *CouponController {
	return &CouponController{
		couponService: couponService,
		cartService:   cartService,
	}
}

// ApplyCouponRequest previews a coupon. Without cart_total the caller's
// current cart total is used.
type ApplyCouponRequest struct {
	Code      string           `json:"code" binding:"required,couponcode"`
	CartTotal *decimal.Decimal `json:"cart_total" binding:"omitempty,dgte0"`
}

type CouponRequest struct {
	Code        string           `json:"code" binding:"required,couponcode"`
	Description string           `json:"description" binding:"max=255"`
	Discount    decimal.Decimal  `json:"discount" binding:"dgt0"`
	IsFlat      bool             `json:"is_flat"`
	ExpiryDate  time.Time        `json:"expiry_date" binding:"required"`
	UsageLimit  *int             `json:"usage_limit" binding:"omitempty,gte=0"`
	MinTotal    *decimal.Decimal `json:"min_total" binding:"omitempty,dgte0"`
}

func (r CouponRequest) toInput() service.CouponInput {
	return service.CouponInput{
		Code:        r.Code,
		Description: r.Description,
		Discount:    r.Discount,
		IsFlat:      r.IsFlat,
		ExpiryDate:  r.ExpiryDate,
		UsageLimit:  r.UsageLimit,
		MinTotal:    r.MinTotal,
	}
}

// ApplyCoupon is a dry run; usage is only consumed when an order is placed
// POST /api/v1/coupons/apply
func (ctrl *CouponController) ApplyCoupon(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var total decimal.Decimal
	if req.CartTotal != nil {
		total = *req.CartTotal
	} else {
		cart, err := ctrl.cartService.GetOrCreateCart(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, "fetch cart", map[string]interface{}{"user_id": userID})
			return
		}
		total = cart.Total
	}

	quote, err := ctrl.couponService.Apply(req.Code, total)
	if err != nil {
		respondError(c, err, "apply coupon", map[string]interface{}{
			"user_id": userID,
			"code":    req.Code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// ListCoupons GET /api/v1/admin/coupons
func (ctrl *CouponController) ListCoupons(c *gin.Context) {
	coupons, err := ctrl.couponService.ListCoupons()
	if err != nil {
		respondError(c, err, "list coupons", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons, "count": len(coupons)})
}

// GetCoupon GET /api/v1/admin/coupons/:id
func (ctrl *CouponController) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := ctrl.couponService.GetCoupon(id)
	if err != nil {
		respondError(c, err, "fetch coupon", map[string]interface{}{"coupon_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// CreateCoupon POST /api/v1/admin/coupons
func (ctrl *CouponController) CreateCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	coupon, err := ctrl.couponService.CreateCoupon(req.toInput())
	if err != nil {
		respondError(c, err, "create coupon", map[string]interface{}{"code": req.Code})
		return
	}

	log.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

// UpdateCoupon PUT /api/v1/admin/coupons/:id
func (ctrl *CouponController) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	coupon, err := ctrl.couponService.UpdateCoupon(id, req.toInput())
	if err != nil {
		respondError(c, err, "update coupon", map[string]interface{}{"coupon_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}
