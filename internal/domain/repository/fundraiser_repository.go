package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

// FundraiserFilter narrows the public fundraiser listing. An empty Status
// lists every status.
type FundraiserFilter struct {
	Status       entity.FundraiserStatus
	VerifiedOnly bool
	Page         Page
}

type FundraiserRepository interface {
	Create(ctx context.Context, f *entity.Fundraiser) error
	GetByID(ctx context.Context, id string) (*entity.Fundraiser, error)
	GetForUser(ctx context.Context, id, userID string) (*entity.Fundraiser, error)
	List(ctx context.Context, f FundraiserFilter) ([]entity.Fundraiser, int, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Fundraiser, error)
	Update(ctx context.Context, f *entity.Fundraiser) error
	SetVerified(ctx context.Context, id string, verified bool) (*entity.Fundraiser, error)

	// Donate stores the donation and its pending payment and adds the amount
	// to the fundraiser in one transaction. The increment and the
	// active->completed transition happen in a single guarded statement, so
	// concurrent donations cannot overwrite each other's totals. It returns
	// ErrConditionFailed when the fundraiser is no longer active.
	Donate(ctx context.Context, d *entity.Donation, p *entity.Payment) (*entity.Fundraiser, error)
	ListDonations(ctx context.Context, fundraiserID string, page Page) ([]entity.Donation, int, error)
	RecentDonations(ctx context.Context, fundraiserID string, limit int) ([]entity.Donation, error)
}
