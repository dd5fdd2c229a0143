package service

import (
	"context"
	"testing"

	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundService_RequestRefund(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	product := env.createProduct(t, "Kettle", "60", 5)
	order := placeOrder(t, env, owner, product, 1)

	t.Run("unpaid order", func(t *testing.T) {
		_, err := env.refunds.RequestRefund(owner.ID, order.ID, "changed my mind")
		assert.ErrorIs(t, err, ErrRefundNotAllowed)
	})

	_, err := env.payments.VerifyPayment(ctx, order.ID, "TX-R", "card")
	require.NoError(t, err)

	t.Run("not the owner", func(t *testing.T) {
		_, err := env.refunds.RequestRefund(stranger.ID, order.ID, "mine now")
		assert.ErrorIs(t, err, ErrRefundForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := env.refunds.RequestRefund(owner.ID, 9999, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	refund, err := env.refunds.RequestRefund(owner.ID, order.ID, "  arrived broken  ")
	require.NoError(t, err)
	assert.Equal(t, model.RefundStatusRequested, refund.Status)
	assert.Equal(t, "arrived broken", refund.Reason)
	assert.True(t, refund.Amount.Equal(dec("60")))

	t.Run("one refund per order", func(t *testing.T) {
		_, err := env.refunds.RequestRefund(owner.ID, order.ID, "again")
		assert.ErrorIs(t, err, ErrRefundAlreadyRequested)
	})

	mine, err := env.refunds.ListRefundsForUser(owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := env.refunds.ListRefundsForUser(stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestRefundService_UpdateRefundStatus(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	product := env.createProduct(t, "Kettle", "60", 5)
	order := placeOrder(t, env, owner, product, 1)
	_, err := env.payments.VerifyPayment(ctx, order.ID, "TX-R", "card")
	require.NoError(t, err)
	refund, err := env.refunds.RequestRefund(owner.ID, order.ID, "")
	require.NoError(t, err)

	tests := []struct {
		to      model.RefundStatus
		wantErr error
	}{
		{model.RefundStatus("LOST"), ErrInvalidRefundStatus},
		{model.RefundStatusCompleted, ErrRefundInvalidTransition},
		{model.RefundStatusApproved, nil},
		{model.RefundStatusRejected, ErrRefundInvalidTransition},
		{model.RefundStatusCompleted, nil},
		{model.RefundStatusApproved, ErrRefundInvalidTransition},
	}
	for _, tt := range tests {
		updated, err := env.refunds.UpdateRefundStatus(refund.ID, tt.to)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "to %s", tt.to)
			continue
		}
		require.NoError(t, err, "to %s", tt.to)
		assert.Equal(t, tt.to, updated.Status)
	}

	_, err = env.refunds.UpdateRefundStatus(9999, model.RefundStatusApproved)
	assert.ErrorIs(t, err, ErrRefundNotFound)

	completed := model.RefundStatusCompleted
	all, err := env.refunds.ListAllRefunds(&completed)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Order)
	assert.Equal(t, order.ID, all[0].Order.ID)

	requested := model.RefundStatusRequested
	none, err := env.refunds.ListAllRefunds(&requested)
	require.NoError(t, err)
	assert.Empty(t, none)
}
