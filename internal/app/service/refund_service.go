package service

import (
	"errors"
	"strings"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/repository"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRefundNotFound          = apperrors.NotFoundError(apperrors.RefundNotFound, "refund not found")
	ErrRefundAlreadyRequested  = apperrors.ConflictError(apperrors.RefundAlreadyRequested, "a refund already exists for this order")
	ErrRefundNotAllowed        = apperrors.InvalidError(apperrors.RefundNotAllowed, "only paid orders can be refunded")
	ErrRefundInvalidTransition = apperrors.ConflictError(apperrors.RefundInvalidTransition, "refund status transition is not allowed")
	ErrRefundForbidden         = apperrors.ForbiddenError(apperrors.AuthzOwnerOnly, "only the order owner may request a refund")
	ErrInvalidRefundStatus     = apperrors.InvalidError(apperrors.ValidationInvalidInput, "unknown refund status")
)

type RefundService interface {
	RequestRefund(userID, orderID uint, reason string) (*model.Refund, error)
	UpdateRefundStatus(refundID uint, status model.RefundStatus) (*model.Refund, error)
	ListRefundsForUser(userID uint) ([]model.Refund, error)
	ListAllRefunds(status *model.RefundStatus) ([]model.Refund, error)
}

type refundService struct {
	refundRepo repository.RefundRepository
	orderRepo  repository.OrderRepository
}

func NewRefundService(refundRepo repository.RefundRepository, orderRepo repository.OrderRepository) RefundService {
	return &refundService{
		refundRepo: refundRepo,
		orderRepo:  orderRepo,
	}
}

// RequestRefund opens a refund for a paid order. One refund per order; the
// unique index on order_id settles concurrent requests.
func (s *refundService) RequestRefund(userID, orderID uint, reason string) (*model.Refund, error) {
	logger.Info("Refund requested", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Refund requested by non-owner", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrRefundForbidden
	}
	if !order.Status.IsPaid() {
		return nil, ErrRefundNotAllowed
	}

	exists, err := s.refundRepo.ExistsForOrder(orderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRefundAlreadyRequested
	}

	refund := &model.Refund{
		OrderID: orderID,
		UserID:  userID,
		Status:  model.RefundStatusRequested,
		Reason:  strings.TrimSpace(reason),
		Amount:  order.TotalAmount,
	}
	if err := s.refundRepo.Create(refund); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrRefundAlreadyRequested
		}
		return nil, err
	}
	return refund, nil
}

func (s *refundService) UpdateRefundStatus(refundID uint, status model.RefundStatus) (*model.Refund, error) {
	if !status.Valid() {
		return nil, ErrInvalidRefundStatus
	}

	refund, err := s.refundRepo.FindByID(refundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}

	if !refund.Status.CanTransitionTo(status) {
		logger.Warn("Rejected refund status transition", map[string]interface{}{
			"refund_id": refundID,
			"from":      refund.Status,
			"to":        status,
		})
		return nil, ErrRefundInvalidTransition
	}

	moved, err := s.refundRepo.UpdateStatusIf(refundID, refund.Status, status)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrRefundInvalidTransition
	}

	logger.Info("Refund status updated", map[string]interface{}{
		"refund_id": refundID,
		"from":      refund.Status,
		"to":        status,
	})
	return s.refundRepo.FindByID(refundID)
}

func (s *refundService) ListRefundsForUser(userID uint) ([]model.Refund, error) {
	return s.refundRepo.FindByUserID(userID)
}

func (s *refundService) ListAllRefunds(status *model.RefundStatus) ([]model.Refund, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidRefundStatus
	}
	return s.refundRepo.FindAll(status)
}
