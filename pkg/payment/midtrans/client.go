package midtrans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
)

var ErrInvalidConfig = errors.New("midtrans: server key is required")

// Currency is the only currency Snap transactions settle in.
const Currency = "IDR"

type Config struct {
	ServerKey   string
	Environment string // sandbox, production
}

func (c Config) environment() midtrans.EnvironmentType {
	if c.Environment == "production" {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

// snapAPI is the subset of snap.Client the gateway calls.
type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// Client is a payment.Gateway backed by Midtrans Snap.
type Client struct {
	config Config
	snap   snapAPI
}

func NewClient(config Config) (*Client, error) {
	if config.ServerKey == "" {
		return nil, ErrInvalidConfig
	}

	var sc snap.Client
	sc.New(config.ServerKey, config.environment())

	return &Client{config: config, snap: &sc}, nil
}

// CreateCheckout opens a Snap transaction. Snap settles in whole rupiah only;
// other currencies and fractional amounts are refused rather than converted.
func (c *Client) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(req.Currency, Currency) {
		return nil, fmt.Errorf("%w: currency %q, midtrans settles in %s", payment.ErrUnsupportedCheckout, req.Currency, Currency)
	}
	if !req.Amount.IsInteger() {
		return nil, fmt.Errorf("%w: amount %s has a fractional part", payment.ErrUnsupportedCheckout, req.Amount)
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: req.Amount.IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, mErr := c.snap.CreateTransaction(snapReq)
	if mErr != nil {
		logger.Error("Midtrans CreateTransaction failed", mErr, map[string]interface{}{
			"reference":   req.Reference,
			"status_code": mErr.StatusCode,
		})
		return nil, fmt.Errorf("%w: %s", payment.ErrGatewayFailed, mErr.Message)
	}
	if resp == nil || resp.Token == "" || resp.RedirectURL == "" {
		return nil, fmt.Errorf("%w: empty snap response", payment.ErrGatewayFailed)
	}

	logger.Info("Midtrans transaction created", map[string]interface{}{
		"reference": req.Reference,
	})

	return &payment.Checkout{
		Reference:   req.Reference,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
