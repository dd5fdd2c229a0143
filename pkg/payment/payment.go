// Package payment describes the payment provider collaborator: begin a
// checkout and receive a redirect handle, later learn the outcome.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrGatewayFailed = errors.New("payment gateway request failed")
	// ErrUnsupportedCheckout marks a request the provider can never accept,
	// such as a currency it does not settle in.
	ErrUnsupportedCheckout = errors.New("checkout not supported by payment provider")
)

type CheckoutRequest struct {
	Reference     string // unique per attempt, echoed back in notifications
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
}

type Checkout struct {
	Reference   string `json:"reference"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Outcome is the provider-neutral result carried by a notification.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomePaid    Outcome = "paid"
	OutcomeFailed  Outcome = "failed"
)

type Notification struct {
	Reference     string
	TransactionID string
	Method        string
	Outcome       Outcome
}

// Gateway begins checkouts with an external provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}
