package midtrans

import (
	"context"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shhiivvaam/ecommerce-backend/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnap struct {
	lastReq *snap.Request
	resp    *snap.Response
	err     *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.lastReq = req
	return f.resp, f.err
}

func newTestClient(fake *fakeSnap) *Client {
	return &Client{config: Config{ServerKey: "server-key"}, snap: fake}
}

func TestNewClientRequiresServerKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	c, err := NewClient(Config{ServerKey: "k", Environment: "production"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCreateCheckout(t *testing.T) {
	fake := &fakeSnap{resp: &snap.Response{Token: "tok", RedirectURL: "https://pay.example/tok"}}
	c := newTestClient(fake)

	checkout, err := c.CreateCheckout(context.Background(), payment.CheckoutRequest{
		Reference:     "ORD-1-abc",
		Amount:        decimal.RequireFromString("60500.00"),
		Currency:      "idr",
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "tok", checkout.Token)
	assert.Equal(t, "https://pay.example/tok", checkout.RedirectURL)
	assert.Equal(t, "ORD-1-abc", fake.lastReq.TransactionDetails.OrderID)
	assert.Equal(t, int64(60500), fake.lastReq.TransactionDetails.GrossAmt)
}

func TestCreateCheckoutRejectsUnsettleableRequests(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
	}{
		{"fractional rupiah", "60.50", "IDR"},
		{"foreign currency", "60", "USD"},
		{"missing currency", "60", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSnap{resp: &snap.Response{Token: "tok", RedirectURL: "https://pay.example/tok"}}
			c := newTestClient(fake)

			_, err := c.CreateCheckout(context.Background(), payment.CheckoutRequest{
				Reference: "ORD-1-abc",
				Amount:    decimal.RequireFromString(tt.amount),
				Currency:  tt.currency,
			})
			assert.ErrorIs(t, err, payment.ErrUnsupportedCheckout)
			assert.Nil(t, fake.lastReq, "nothing is sent to the provider")
		})
	}
}

func TestCreateCheckoutGatewayError(t *testing.T) {
	fake := &fakeSnap{err: &midtrans.Error{Message: "unauthorized", StatusCode: 401}}
	c := newTestClient(fake)

	_, err := c.CreateCheckout(context.Background(), payment.CheckoutRequest{Reference: "r", Amount: decimal.NewFromInt(1), Currency: Currency})
	assert.ErrorIs(t, err, payment.ErrGatewayFailed)
}

func TestCreateCheckoutEmptyResponse(t *testing.T) {
	c := newTestClient(&fakeSnap{resp: &snap.Response{}})

	_, err := c.CreateCheckout(context.Background(), payment.CheckoutRequest{Reference: "r", Amount: decimal.NewFromInt(1), Currency: Currency})
	assert.ErrorIs(t, err, payment.ErrGatewayFailed)
}

func TestVerifyNotification(t *testing.T) {
	c := newTestClient(&fakeSnap{})
	payload := NotificationPayload{
		OrderID:           "ORD-1-abc",
		TransactionID:     "txn-1",
		TransactionStatus: "settlement",
		PaymentType:       "bank_transfer",
		StatusCode:        "200",
		GrossAmount:       "61.00",
	}
	payload.SignatureKey = Signature(payload.OrderID, payload.StatusCode, payload.GrossAmount, "server-key")

	n, err := c.Verify(payload)
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomePaid, n.Outcome)
	assert.Equal(t, "txn-1", n.TransactionID)
	assert.Equal(t, "bank_transfer", n.Method)

	payload.SignatureKey = "forged"
	_, err = c.Verify(payload)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, payment.OutcomePaid, outcomeOf("capture", "accept"))
	assert.Equal(t, payment.OutcomePending, outcomeOf("capture", "challenge"))
	assert.Equal(t, payment.OutcomeFailed, outcomeOf("expire", ""))
	assert.Equal(t, payment.OutcomePending, outcomeOf("pending", ""))
}
