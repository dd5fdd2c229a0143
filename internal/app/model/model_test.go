package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestRefundStatusTransitions(t *testing.T) {
	assert.True(t, RefundStatusRequested.CanTransitionTo(RefundStatusApproved))
	assert.True(t, RefundStatusRequested.CanTransitionTo(RefundStatusRejected))
	assert.True(t, RefundStatusApproved.CanTransitionTo(RefundStatusCompleted))
	assert.False(t, RefundStatusRequested.CanTransitionTo(RefundStatusCompleted))
	assert.False(t, RefundStatusRejected.CanTransitionTo(RefundStatusApproved))
	assert.False(t, RefundStatusCompleted.CanTransitionTo(RefundStatusRequested))
}

func TestProductBasePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(20)}
	assert.True(t, p.BasePrice().Equal(decimal.NewFromInt(20)))

	p.DiscountedPrice = decimal.NewNullDecimal(decimal.NewFromInt(15))
	assert.True(t, p.BasePrice().Equal(decimal.NewFromInt(15)))
}

func TestVariantLabel(t *testing.T) {
	size, color := "M", "Red"

	assert.Equal(t, "M / Red", (&Variant{Size: &size, Color: &color}).Label())
	assert.Equal(t, "Red", (&Variant{Color: &color}).Label())
	assert.Equal(t, "", (&Variant{}).Label())
}

func TestStoreSettingsIsSingleProduct(t *testing.T) {
	s := DefaultStoreSettings()
	assert.False(t, s.IsSingleProduct())

	s.StoreMode = StoreModeSingle
	assert.False(t, s.IsSingleProduct())

	id := uint(3)
	s.SingleProductID = &id
	assert.True(t, s.IsSingleProduct())
}
