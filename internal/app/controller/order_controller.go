package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type OrderItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Recipient  string `json:"recipient" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=30"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// CreateOrderRequest places an order from Items, or from the cart when Items is empty.
type CreateOrderRequest struct {
	Items      []OrderItemRequest      `json:"items" binding:"omitempty,dive"`
	AddressID  *uint                   `json:"address_id"`
	Address    *ShippingAddressRequest `json:"shipping_address"`
	CouponID   *uint                   `json:"coupon_id"`
	CouponCode string                  `json:"coupon_code" binding:"omitempty,couponcode"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r CreateOrderRequest) toInput() service.CreateOrderInput {
	input := service.CreateOrderInput{
		AddressID:  r.AddressID,
		CouponID:   r.CouponID,
		CouponCode: r.CouponCode,
	}
	for _, item := range r.Items {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	if r.Address != nil {
		input.Address = &model.ShippingAddress{
			Recipient:  r.Address.Recipient,
			Phone:      r.Address.Phone,
			Line1:      r.Address.Line1,
			Line2:      r.Address.Line2,
			City:       r.Address.City,
			PostalCode: r.Address.PostalCode,
			Country:    strings.ToUpper(r.Address.Country),
		}
	}
	return input
}

// CreateOrder commits an order with a price snapshot
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondError(c, err, "create order", map[string]interface{}{
			"user_id":    userID,
			"item_count": len(req.Items),
		})
		return
	}

	log.Info("Order created", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"total_amount": order.TotalAmount.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListOrders GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrdersForUser(userID)
	if err != nil {
		respondError(c, err, "list orders", map[string]interface{}{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder returns one of the caller's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		respondError(c, err, "fetch order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListAllOrders lists every order, optionally filtered by status (admin)
// GET /api/v1/admin/orders?status=
func (ctrl *OrderController) ListAllOrders(c *gin.Context) {
	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(strings.ToUpper(raw))
		if !s.Valid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "unknown order status")
			return
		}
		status = &s
	}

	orders, err := ctrl.orderService.ListAllOrders(status)
	if err != nil {
		respondError(c, err, "list orders", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateOrderStatus moves an order along the state machine (admin)
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	status := model.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err, "update order status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   order.Status,
	})
	c.JSON(http.StatusOK, gin.H{"order": order})
}
