package memory

import (
	"context"
	"maps"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type FundraiserRepository struct{ s *Store }

var _ repository.FundraiserRepository = (*FundraiserRepository)(nil)

func (r *FundraiserRepository) Create(_ context.Context, f *entity.Fundraiser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.Status == "" {
		f.Status = entity.FundraiserActive
	}
	r.s.stamp(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	r.s.fundraisers[f.ID] = *f
	return nil
}

func (r *FundraiserRepository) GetByID(_ context.Context, id string) (*entity.Fundraiser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fundraisers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r *FundraiserRepository) GetForUser(ctx context.Context, id, userID string) (*entity.Fundraiser, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil || f.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return f, nil
}

func (r *FundraiserRepository) filter(match func(entity.Fundraiser) bool) []entity.Fundraiser {
	out := []entity.Fundraiser{}
	for _, f := range r.s.fundraisers {
		if match(f) {
			out = append(out, f)
		}
	}
	return newestFirst(r.s, out, func(f entity.Fundraiser) string { return f.ID })
}

func (r *FundraiserRepository) List(_ context.Context, flt repository.FundraiserFilter) ([]entity.Fundraiser, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(func(f entity.Fundraiser) bool {
		return (flt.Status == "" || f.Status == flt.Status) && (!flt.VerifiedOnly || f.IsVerified)
	})
	return paginate(all, flt.Page), len(all), nil
}

func (r *FundraiserRepository) ListByUser(_ context.Context, userID string) ([]entity.Fundraiser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(f entity.Fundraiser) bool { return f.UserID == userID }), nil
}

// Update leaves the donation total and verification flag alone.
func (r *FundraiserRepository) Update(_ context.Context, f *entity.Fundraiser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.fundraisers[f.ID]
	if !ok || cur.UserID != f.UserID {
		return repository.ErrNotFound
	}
	f.CurrentAmount = cur.CurrentAmount
	f.IsVerified = cur.IsVerified
	f.CreatedAt = cur.CreatedAt
	f.UpdatedAt = r.s.now().UTC()
	r.s.fundraisers[f.ID] = *f
	return nil
}

func (r *FundraiserRepository) SetVerified(_ context.Context, id string, verified bool) (*entity.Fundraiser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fundraisers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	f.IsVerified = verified
	f.UpdatedAt = r.s.now().UTC()
	r.s.fundraisers[id] = f
	return &f, nil
}

func (r *FundraiserRepository) Donate(_ context.Context, d *entity.Donation, p *entity.Payment) (*entity.Fundraiser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fundraisers[d.FundraiserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if f.Status != entity.FundraiserActive {
		return nil, repository.ErrConditionFailed
	}
	for _, o := range r.s.donations {
		if o.TransactionID == d.TransactionID {
			return nil, repository.ErrConflict
		}
	}
	f.CurrentAmount += d.Amount
	if f.CurrentAmount >= f.TargetAmount {
		f.Status = entity.FundraiserCompleted
	}
	f.UpdatedAt = r.s.now().UTC()

	r.s.stampCreated(&d.ID, &d.CreatedAt)
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	p.Metadata["donation_id"] = d.ID
	if p.Status == "" {
		p.Status = entity.PaymentPending
	}
	r.s.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	r.s.fundraisers[f.ID] = f
	r.s.donations[d.ID] = *d
	stored := *p
	stored.Metadata = maps.Clone(p.Metadata)
	r.s.payments[p.ID] = stored
	return &f, nil
}

func (r *FundraiserRepository) donationsFor(fundraiserID string) []entity.Donation {
	out := []entity.Donation{}
	for _, d := range r.s.donations {
		if d.FundraiserID == fundraiserID {
			out = append(out, d)
		}
	}
	return newestFirst(r.s, out, func(d entity.Donation) string { return d.ID })
}

func (r *FundraiserRepository) ListDonations(_ context.Context, fundraiserID string, page repository.Page) ([]entity.Donation, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.donationsFor(fundraiserID)
	return paginate(all, page), len(all), nil
}

func (r *FundraiserRepository) RecentDonations(_ context.Context, fundraiserID string, limit int) ([]entity.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.donationsFor(fundraiserID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
