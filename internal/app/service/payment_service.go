package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/metrics"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"gorm.io/gorm"
)

var (
	ErrPaymentAlreadyCompleted = apperrors.ConflictError(apperrors.PaymentAlreadyCompleted, "order already has a completed payment")
	ErrTransactionReused       = apperrors.ConflictError(apperrors.PaymentAlreadyCompleted, "transaction id is already recorded for another payment")
	ErrTransactionIDRequired   = apperrors.InvalidError(apperrors.ValidationRequired, "transaction id is required")
	ErrPaymentGatewayFailed    = apperrors.New(apperrors.KindInternal, apperrors.PaymentGatewayFailed, "payment provider is unavailable, try again later")
	ErrPaymentNotConfigured    = apperrors.New(apperrors.KindInternal, apperrors.PaymentGatewayFailed, "online payment is not configured")
	ErrPaymentUnsupported      = apperrors.InvalidError(apperrors.PaymentUnsupported, "the payment provider cannot charge this order in its currency or amount")
	ErrPaidAfterCancellation   = apperrors.ConflictError(apperrors.PaymentOrderCancelled, "order was cancelled before the payment arrived; the payment is recorded for refund")
)

const referencePrefix = "ORD-"

type PaymentService interface {
	BeginPayment(ctx context.Context, userID, orderID uint) (*payment.Checkout, error)
	VerifyPayment(ctx context.Context, orderID uint, transactionID, method string) (*model.Payment, error)
	RecordPaymentFailure(ctx context.Context, orderID uint, transactionID, method string) (*model.Payment, error)
	HandleNotification(ctx context.Context, notification *payment.Notification) error
}

type paymentService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	gateway     payment.Gateway
	now         func() time.Time
}

// NewPaymentService accepts a nil gateway; BeginPayment then fails while
// manual verification keeps working.
func NewPaymentService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	gateway payment.Gateway,
) PaymentService {
	return &paymentService{
		db:          db,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		now:         time.Now,
	}
}

// BeginPayment asks the provider for a checkout for the order total and keeps
// the reference so notifications can find the order again. While the order
// stays PENDING the open checkout is handed out again instead of replaced.
func (s *paymentService) BeginPayment(ctx context.Context, userID, orderID uint) (*payment.Checkout, error) {
	if s.gateway == nil {
		return nil, ErrPaymentNotConfigured
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrInvalidTransition
	}

	if order.PaymentRef != "" && order.PaymentURL != "" {
		logger.Debug("Reusing open payment checkout", map[string]interface{}{
			"order_id":  orderID,
			"reference": order.PaymentRef,
		})
		return &payment.Checkout{Reference: order.PaymentRef, RedirectURL: order.PaymentURL}, nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("%s%d-%s", referencePrefix, order.ID, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	checkout, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		Reference:     reference,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		logger.Error("Payment provider rejected checkout", err, map[string]interface{}{
			"order_id":  orderID,
			"reference": reference,
		})
		if errors.Is(err, payment.ErrUnsupportedCheckout) {
			return nil, ErrPaymentUnsupported
		}
		return nil, ErrPaymentGatewayFailed
	}

	if err := s.orderRepo.SetPaymentCheckout(order.ID, checkout.Reference, checkout.RedirectURL, s.now()); err != nil {
		return nil, err
	}

	logger.Info("Payment checkout started", map[string]interface{}{
		"order_id":  orderID,
		"reference": checkout.Reference,
		"amount":    order.TotalAmount.String(),
	})
	return checkout, nil
}

// VerifyPayment records a completed payment and moves the order to
// PROCESSING. Repeating it with the same transaction id returns the first
// payment without writing anything. Money captured for a cancelled order is
// still recorded, flagged RefundDue, and ErrPaidAfterCancellation is returned.
func (s *paymentService) VerifyPayment(ctx context.Context, orderID uint, transactionID, method string) (*model.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionIDRequired
	}

	logger.Info("Verifying payment", map[string]interface{}{
		"order_id":       orderID,
		"transaction_id": transactionID,
		"method":         method,
	})

	var recorded *model.Payment
	replayed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)

		existing, err := s.findTransaction(payments, orderID, transactionID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status != model.PaymentStatusCompleted {
				return ErrTransactionReused
			}
			recorded = existing
			replayed = true
			return nil
		}

		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		cancelled := order.Status == model.OrderStatusCancelled
		if !cancelled {
			if _, err := payments.FindCompletedByOrderID(orderID); err == nil {
				return ErrPaymentAlreadyCompleted
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if order.Status != model.OrderStatusPending && !cancelled {
			logger.Warn("Payment verified for non-pending order", map[string]interface{}{
				"order_id": orderID,
				"status":   order.Status,
			})
			return ErrInvalidTransition
		}

		p := &model.Payment{
			OrderID:       orderID,
			Amount:        order.TotalAmount,
			Method:        method,
			Status:        model.PaymentStatusCompleted,
			TransactionID: transactionID,
			RefundDue:     cancelled,
		}
		if err := payments.Create(p); err != nil {
			return err
		}
		if p.RefundDue {
			recorded = p
			return nil
		}

		moved, err := orders.UpdateStatusIf(orderID, model.OrderStatusPending, model.OrderStatusProcessing)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}
		recorded = p
		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			// lost a race against a duplicate callback
			return s.replayTransaction(orderID, transactionID)
		}
		return nil, err
	}

	if !replayed {
		metrics.PaymentsRecorded.WithLabelValues(string(model.PaymentStatusCompleted)).Inc()
	}
	if recorded.RefundDue {
		logger.Warn("Payment captured for cancelled order, refund due", map[string]interface{}{
			"order_id":       orderID,
			"transaction_id": transactionID,
			"payment_id":     recorded.ID,
			"amount":         recorded.Amount.String(),
		})
		return recorded, ErrPaidAfterCancellation
	}
	logger.Info("Payment verified", map[string]interface{}{
		"order_id":       orderID,
		"transaction_id": transactionID,
		"payment_id":     recorded.ID,
	})
	return recorded, nil
}

// RecordPaymentFailure stores a FAILED payment; the order stays PENDING so
// the customer can retry.
func (s *paymentService) RecordPaymentFailure(ctx context.Context, orderID uint, transactionID, method string) (*model.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrTransactionIDRequired
	}

	var recorded *model.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payments := s.paymentRepo.WithTx(tx)

		existing, err := s.findTransaction(payments, orderID, transactionID)
		if err != nil {
			return err
		}
		if existing != nil {
			recorded = existing
			return nil
		}

		order, err := s.orderRepo.WithTx(tx).FindByID(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		p := &model.Payment{
			OrderID:       orderID,
			Amount:        order.TotalAmount,
			Method:        method,
			Status:        model.PaymentStatusFailed,
			TransactionID: transactionID,
		}
		if err := payments.Create(p); err != nil {
			return err
		}
		recorded = p
		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return s.replayTransaction(orderID, transactionID)
		}
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(recorded.Status)).Inc()
	logger.Warn("Payment failure recorded", map[string]interface{}{
		"order_id":       orderID,
		"transaction_id": transactionID,
	})
	return recorded, nil
}

// HandleNotification routes a verified provider notification by its outcome.
func (s *paymentService) HandleNotification(ctx context.Context, n *payment.Notification) error {
	order, err := s.findByReference(n.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Notification for unknown payment reference", map[string]interface{}{
				"reference": n.Reference,
			})
			return ErrOrderNotFound
		}
		return err
	}

	logger.Info("Payment notification received", map[string]interface{}{
		"order_id":       order.ID,
		"transaction_id": n.TransactionID,
		"outcome":        n.Outcome,
	})

	switch n.Outcome {
	case payment.OutcomePaid:
		_, err = s.VerifyPayment(ctx, order.ID, n.TransactionID, n.Method)
		if errors.Is(err, ErrPaidAfterCancellation) {
			// recorded; the provider must not keep redelivering
			return nil
		}
	case payment.OutcomeFailed:
		_, err = s.RecordPaymentFailure(ctx, order.ID, n.TransactionID, n.Method)
	}
	return err
}

// findByReference resolves the order of a checkout reference. References
// embed the order id, so a checkout that is no longer the order's current one
// still finds its order.
func (s *paymentService) findByReference(reference string) (*model.Order, error) {
	if reference == "" {
		return nil, gorm.ErrRecordNotFound
	}
	order, err := s.orderRepo.FindByPaymentRef(reference)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return order, err
	}

	orderID, ok := orderIDFromReference(reference)
	if !ok {
		return nil, err
	}
	return s.orderRepo.FindByID(orderID)
}

func orderIDFromReference(reference string) (uint, bool) {
	rest, ok := strings.CutPrefix(reference, referencePrefix)
	if !ok {
		return 0, false
	}
	idPart, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// findTransaction returns the payment already stored under transactionID, or
// nil. A transaction id belonging to another order is a conflict.
func (s *paymentService) findTransaction(payments repository.PaymentRepository, orderID uint, transactionID string) (*model.Payment, error) {
	existing, err := payments.FindByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.OrderID != orderID {
		logger.Warn("Transaction id reused across orders", map[string]interface{}{
			"transaction_id": transactionID,
			"order_id":       orderID,
			"owner_order_id": existing.OrderID,
		})
		return nil, ErrTransactionReused
	}
	logger.Debug("Duplicate payment callback ignored", map[string]interface{}{
		"order_id":       orderID,
		"transaction_id": transactionID,
	})
	return existing, nil
}

func (s *paymentService) replayTransaction(orderID uint, transactionID string) (*model.Payment, error) {
	existing, err := s.findTransaction(s.paymentRepo, orderID, transactionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTransactionReused
	}
	if existing.RefundDue {
		return existing, ErrPaidAfterCancellation
	}
	return existing, nil
}
