package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

func TestSettleOnlyFromPending(t *testing.T) {
	r := NewRepositories()
	ctx := context.Background()
	p := &entity.Payment{UserID: "u1", Amount: 100, Currency: "KES", Method: entity.MethodMpesa}
	require.NoError(t, r.Payments.Create(ctx, p))

	first, second := *p, *p
	first.Status, first.TransactionID = entity.PaymentCompleted, "QKL1"
	second.Status = entity.PaymentFailed

	require.NoError(t, r.Payments.Settle(ctx, &first))
	assert.ErrorIs(t, r.Payments.Settle(ctx, &second), repository.ErrConditionFailed)

	got, err := r.Payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, got.Status)
	assert.Equal(t, "QKL1", got.TransactionID)

	missing := entity.Payment{ID: "nope", Status: entity.PaymentCompleted}
	assert.ErrorIs(t, r.Payments.Settle(ctx, &missing), repository.ErrNotFound)
}
