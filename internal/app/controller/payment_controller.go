package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/service"
	apperrors "github.com/shhiivvaam/ecommerce-backend/internal/errors"
	"github.com/shhiivvaam/ecommerce-backend/internal/middleware"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment/midtrans"
)

// NotificationVerifier authenticates a provider notification body.
type NotificationVerifier interface {
	Verify(payload midtrans.NotificationPayload) (*payment.Notification, error)
}

type PaymentController struct {
	paymentService service.PaymentService
	verifier       NotificationVerifier
}

// NewPaymentController accepts a nil verifier; notifications are then refused.
func NewPaymentController(paymentService service.PaymentService, verifier NotificationVerifier) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		verifier:       verifier,
	}
}

type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,max=100"`
	Method        string `json:"method" binding:"max=50"`
}

// BeginPayment creates a provider checkout for the caller's pending order
// POST /api/v1/orders/:id/payment
func (ctrl *PaymentController) BeginPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	checkout, err := ctrl.paymentService.BeginPayment(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err, "begin payment", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}

	log.Info("Payment checkout created", map[string]interface{}{
		"order_id":  orderID,
		"reference": checkout.Reference,
	})
	c.JSON(http.StatusOK, gin.H{"checkout": checkout})
}

// VerifyPayment records a completed payment by transaction id. Repeating the
// call with the same transaction id returns the original payment.
// POST /api/v1/admin/orders/:id/payment/verify
func (ctrl *PaymentController) VerifyPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recorded, err := ctrl.paymentService.VerifyPayment(c.Request.Context(), orderID, req.TransactionID, req.Method)
	if err != nil {
		respondError(c, err, "verify payment", map[string]interface{}{
			"order_id":       orderID,
			"transaction_id": req.TransactionID,
		})
		return
	}

	log.Info("Payment verified", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": recorded.ID,
	})
	c.JSON(http.StatusOK, gin.H{"payment": recorded})
}

// HandleNotification receives provider status callbacks
// POST /api/v1/payments/notifications
func (ctrl *PaymentController) HandleNotification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.verifier == nil {
		respondError(c, service.ErrPaymentNotConfigured, "handle payment notification", nil)
		return
	}

	var payload midtrans.NotificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	notification, err := ctrl.verifier.Verify(payload)
	if err != nil {
		if errors.Is(err, midtrans.ErrInvalidSignature) {
			log.Warn("Rejected payment notification with bad signature", map[string]interface{}{
				"reference": payload.OrderID,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.PaymentInvalidSignature, "invalid notification signature")
			return
		}
		respondError(c, err, "verify payment notification", nil)
		return
	}

	if err := ctrl.paymentService.HandleNotification(c.Request.Context(), notification); err != nil {
		respondError(c, err, "handle payment notification", map[string]interface{}{
			"reference":      notification.Reference,
			"transaction_id": notification.TransactionID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
