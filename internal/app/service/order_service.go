package service

import (
	"context"
	"errors"
	"fmt"
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
	ErrOrderNotFound      = apperrors.NotFoundError(apperrors.OrderNotFound, "order not found")
	ErrEmptyCart          = apperrors.InvalidError(apperrors.CartEmpty, "cart is empty")
	ErrAddressRequired    = apperrors.InvalidError(apperrors.OrderAddressRequired, "a saved address or a complete shipping address is required")
	ErrInvalidOrderStatus = apperrors.InvalidError(apperrors.OrderInvalidStatus, "unknown order status")
	ErrInvalidTransition  = apperrors.ConflictError(apperrors.OrderInvalidTransition, "order status transition is not allowed")
)

type OrderItemInput struct {
	ProductID uint
	VariantID *uint
	Quantity  int
}

// CreateOrderInput builds an order from Items, or from the caller's cart when
// Items is empty. AddressID wins over Address.
type CreateOrderInput struct {
	Items      []OrderItemInput
	AddressID  *uint
	Address    *model.ShippingAddress
	CouponID   *uint
	CouponCode string
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	ListOrdersForUser(userID uint) ([]model.Order, error)
	ListAllOrders(status *model.OrderStatus) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error)
	ExpireStalePendingOrders(ctx context.Context, olderThan time.Duration) (int, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	couponRepo  repository.CouponRepository
	addressRepo repository.AddressRepository
	settings    SettingsService
	now         func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	couponRepo repository.CouponRepository,
	addressRepo repository.AddressRepository,
	settings SettingsService,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		couponRepo:  couponRepo,
		addressRepo: addressRepo,
		settings:    settings,
		now:         time.Now,
	}
}

// CreateOrder prices every line against the live catalog, reserves stock,
// consumes the coupon and persists the snapshot in a single transaction.
func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":    userID,
		"items":      len(input.Items),
		"address_id": input.AddressID,
		"coupon_id":  input.CouponID,
	})

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	shipTo, err := s.resolveAddress(userID, input)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
			panic(r)
		}
	}()

	order, err := s.buildOrder(tx, userID, input, settings)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	order.ShippingAddress = *shipTo

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      userID,
		"subtotal":     order.Subtotal.String(),
		"discount":     order.DiscountAmount.String(),
		"total_amount": order.TotalAmount.String(),
	})
	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) buildOrder(tx *gorm.DB, userID uint, input CreateOrderInput, settings *model.StoreSettings) (*model.Order, error) {
	lines := input.Items
	var cart *model.Cart
	if len(lines) == 0 {
		var err error
		cart, err = s.cartRepo.WithTx(tx).FindByUserID(userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if cart == nil || len(cart.Items) == 0 {
			logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		for _, item := range cart.Items {
			lines = append(lines, OrderItemInput{ProductID: item.ProductID, VariantID: item.VariantID, Quantity: item.Quantity})
		}
	}

	items := make([]model.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		item, err := s.reserveLine(tx, line, settings)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(item.LineTotal)
		items = append(items, *item)
	}

	order := &model.Order{
		UserID:     userID,
		Status:     model.OrderStatusPending,
		Currency:   settings.Currency,
		AddressID:  input.AddressID,
		OrderItems: items,
	}

	discount := decimal.Zero
	if input.CouponID != nil || strings.TrimSpace(input.CouponCode) != "" {
		coupon, err := s.consumeCoupon(tx, input, subtotal)
		if err != nil {
			return nil, err
		}
		discount = CouponDiscount(coupon, subtotal)
		order.CouponID = &coupon.ID
		order.CouponCode = coupon.Code
	}

	totals := ComputeOrderTotals(subtotal, discount, settings)
	order.Subtotal = totals.Subtotal
	order.DiscountAmount = totals.Discount
	order.TaxAmount = totals.Tax
	order.ShippingAmount = totals.Shipping
	order.TotalAmount = totals.Total

	if cart != nil {
		carts := s.cartRepo.WithTx(tx)
		if err := carts.DeleteItems(cart.ID); err != nil {
			return nil, err
		}
		if err := carts.UpdateTotal(cart.ID, decimal.Zero); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// reserveLine captures the authoritative unit price and takes the stock.
func (s *orderService) reserveLine(tx *gorm.DB, line OrderItemInput, settings *model.StoreSettings) (*model.OrderItem, error) {
	if line.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if settings.IsSingleProduct() && *settings.SingleProductID != line.ProductID {
		return nil, ErrProductNotFound
	}

	products := s.productRepo.WithTx(tx)
	product, err := products.FindByIDForUpdate(line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found during order creation", map[string]interface{}{
				"product_id": line.ProductID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var variant *model.Variant
	if line.VariantID != nil {
		variant, err = s.variantRepo.WithTx(tx).FindByIDAndProduct(*line.VariantID, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
	}

	var reserved bool
	if variant != nil {
		reserved, err = s.variantRepo.WithTx(tx).DecrementStock(variant.ID, line.Quantity)
	} else {
		reserved, err = products.DecrementStock(product.ID, line.Quantity)
	}
	if err != nil {
		return nil, err
	}
	if !reserved {
		logger.Warn("Order creation failed: insufficient stock", map[string]interface{}{
			"product_id": line.ProductID,
			"variant_id": line.VariantID,
			"requested":  line.Quantity,
		})
		return nil, ErrInsufficientStock
	}

	unit := UnitPrice(product, variant)
	item := &model.OrderItem{
		ProductID: product.ID,
		VariantID: line.VariantID,
		Title:     product.Title,
		Quantity:  line.Quantity,
		UnitPrice: unit,
		LineTotal: LineTotal(unit, line.Quantity),
	}
	if variant != nil {
		item.VariantLabel = variant.Label()
	}
	return item, nil
}

// consumeCoupon re-validates against the server-side subtotal and takes one
// usage slot with a conditional update.
func (s *orderService) consumeCoupon(tx *gorm.DB, input CreateOrderInput, subtotal decimal.Decimal) (*model.Coupon, error) {
	coupons := s.couponRepo.WithTx(tx)

	var (
		coupon *model.Coupon
		err    error
	)
	if input.CouponID != nil {
		coupon, err = coupons.FindByIDForUpdate(*input.CouponID)
	} else {
		coupon, err = coupons.FindByCode(normalizeCouponCode(input.CouponCode))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if err := checkCoupon(coupon, subtotal, s.now()); err != nil {
		logger.Warn("Coupon rejected at checkout", map[string]interface{}{
			"coupon_id": coupon.ID,
			"reason":    err.Error(),
		})
		return nil, err
	}

	consumed, err := coupons.Consume(coupon.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		metrics.CouponRejections.WithLabelValues(apperrors.CouponUsageExceeded).Inc()
		return nil, ErrCouponUsageExceeded
	}
	return coupon, nil
}

func (s *orderService) resolveAddress(userID uint, input CreateOrderInput) (*model.ShippingAddress, error) {
	if input.AddressID != nil {
		address, err := s.addressRepo.FindByIDAndUser(*input.AddressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, err
		}
		snapshot := address.Snapshot()
		return &snapshot, nil
	}

	a := input.Address
	if a == nil || strings.TrimSpace(a.Recipient) == "" || strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.Country) == "" {
		return nil, ErrAddressRequired
	}
	snapshot := *a
	snapshot.Country = strings.ToUpper(snapshot.Country)
	return &snapshot, nil
}

// GetOrder is owner-scoped; another user's order reads as missing.
func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order requested by non-owner", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrdersForUser(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListAllOrders(status *model.OrderStatus) ([]model.Order, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}
	return s.orderRepo.FindAll(status)
}

// UpdateStatus moves an order along the state machine. Cancelling returns the
// reserved stock and the coupon slot.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransitionTo(status) {
			logger.Warn("Rejected order status transition", map[string]interface{}{
				"order_id": orderID,
				"from":     order.Status,
				"to":       status,
			})
			return ErrInvalidTransition
		}

		if status == model.OrderStatusCancelled {
			return s.cancelInTx(tx, order, order.Status)
		}

		moved, err := orders.UpdateStatusIf(orderID, order.Status, status)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == model.OrderStatusCancelled {
		metrics.OrdersCancelled.WithLabelValues("admin").Inc()
	}
	return s.orderRepo.FindByID(orderID)
}

var errCheckoutOpen = errors.New("order has an open payment checkout")

// ExpireStalePendingOrders cancels unpaid orders created more than olderThan
// ago. An order whose provider checkout opened within the same window is left
// alone until that window passes too.
func (s *orderService) ExpireStalePendingOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	stale, err := s.orderRepo.FindStalePending(cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		orderID := stale[i].ID
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			order, err := s.orderRepo.WithTx(tx).FindByIDForUpdate(orderID)
			if err != nil {
				return err
			}
			if order.CheckoutAt != nil && !order.CheckoutAt.Before(cutoff) {
				return errCheckoutOpen
			}
			return s.cancelInTx(tx, order, model.OrderStatusPending)
		})
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, errCheckoutOpen) {
			// paid, cancelled or sent to checkout since the scan
			continue
		}
		if err != nil {
			logger.Error("Failed to expire pending order", err, map[string]interface{}{
				"order_id": orderID,
			})
			return expired, err
		}

		expired++
		metrics.OrdersCancelled.WithLabelValues("expiry").Inc()
	}

	if expired > 0 {
		logger.Info("Expired stale pending orders", map[string]interface{}{
			"count":  expired,
			"cutoff": cutoff,
		})
	}
	return expired, nil
}

// cancelInTx flips from -> CANCELLED and releases what the order reserved.
func (s *orderService) cancelInTx(tx *gorm.DB, order *model.Order, from model.OrderStatus) error {
	moved, err := s.orderRepo.WithTx(tx).UpdateStatusIf(order.ID, from, model.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if !moved {
		return ErrInvalidTransition
	}

	products := s.productRepo.WithTx(tx)
	variants := s.variantRepo.WithTx(tx)
	for _, item := range order.OrderItems {
		if item.VariantID != nil {
			err = variants.IncrementStock(*item.VariantID, item.Quantity)
		} else {
			err = products.IncrementStock(item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
	}

	if order.CouponID != nil {
		if err := s.couponRepo.WithTx(tx).Release(*order.CouponID); err != nil {
			return err
		}
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": order.ID,
		"from":     from,
	})
	return nil
}
