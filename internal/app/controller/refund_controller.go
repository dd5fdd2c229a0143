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

type RefundController struct {
	refundService service.RefundService
}

func NewRefundController(refundService service.RefundService) *RefundController {
	return &RefundController{refundService: refundService}
}

type RequestRefundRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

type UpdateRefundStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RequestRefund opens a refund for one of the caller's paid orders
// POST /api/v1/orders/:id/refund
func (ctrl *RefundController) RequestRefund(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RequestRefundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	refund, err := ctrl.refundService.RequestRefund(userID, orderID, req.Reason)
	if err != nil {
		respondError(c, err, "request refund", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}

	log.Info("Refund requested", map[string]interface{}{
		"refund_id": refund.ID,
		"order_id":  orderID,
	})
	c.JSON(http.StatusCreated, gin.H{"refund": refund})
}

// ListRefunds GET /api/v1/refunds
func (ctrl *RefundController) ListRefunds(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	refunds, err := ctrl.refundService.ListRefundsForUser(userID)
	if err != nil {
		respondError(c, err, "list refunds", map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}

// ListAllRefunds GET /api/v1/admin/refunds?status=
func (ctrl *RefundController) ListAllRefunds(c *gin.Context) {
	var status *model.RefundStatus
	if raw := c.Query("status"); raw != "" {
		s := model.RefundStatus(strings.ToUpper(raw))
		if !s.Valid() {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unknown refund status")
			return
		}
		status = &s
	}

	refunds, err := ctrl.refundService.ListAllRefunds(status)
	if err != nil {
		respondError(c, err, "list refunds", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}

// UpdateRefundStatus PUT /api/v1/admin/refunds/:id/status
func (ctrl *RefundController) UpdateRefundStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	refundID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	status := model.RefundStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	refund, err := ctrl.refundService.UpdateRefundStatus(refundID, status)
	if err != nil {
		respondError(c, err, "update refund status", map[string]interface{}{
			"refund_id": refundID,
			"status":    status,
		})
		return
	}

	log.Info("Refund status updated", map[string]interface{}{
		"refund_id": refundID,
		"status":    refund.Status,
	})
	c.JSON(http.StatusOK, gin.H{"refund": refund})
}
