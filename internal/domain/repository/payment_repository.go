package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByStripeIntent(ctx context.Context, intentID string) (*entity.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*entity.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Payment, error)
	Update(ctx context.Context, p *entity.Payment) error
	// Settle writes p only while the stored payment is still pending and
	// returns ErrConditionFailed once it has been settled.
	Settle(ctx context.Context, p *entity.Payment) error
}
