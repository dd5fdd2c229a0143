package midtrans

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
)

var ErrInvalidSignature = errors.New("midtrans: notification signature mismatch")

// NotificationPayload is the HTTP notification body Midtrans posts after a status change.
type NotificationPayload struct {
	OrderID           string `json:"order_id" binding:"required"`
	TransactionID     string `json:"transaction_id" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
}

// Signature computes SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify checks the signature and maps the provider status to a payment.Notification.
func (c *Client) Verify(p NotificationPayload) (*payment.Notification, error) {
	expected := Signature(p.OrderID, p.StatusCode, p.GrossAmount, c.config.ServerKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(p.SignatureKey)) != 1 {
		return nil, ErrInvalidSignature
	}

	return &payment.Notification{
		Reference:     p.OrderID,
		TransactionID: p.TransactionID,
		Method:        p.PaymentType,
		Outcome:       outcomeOf(p.TransactionStatus, p.FraudStatus),
	}, nil
}

func outcomeOf(status, fraud string) payment.Outcome {
	switch status {
	case "settlement":
		return payment.OutcomePaid
	case "capture":
		if fraud == "" || fraud == "accept" {
			return payment.OutcomePaid
		}
		return payment.OutcomePending
	case "deny", "cancel", "expire", "failure":
		return payment.OutcomeFailed
	default:
		return payment.OutcomePending
	}
}
