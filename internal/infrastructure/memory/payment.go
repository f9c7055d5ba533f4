package memory

import (
	"context"
	"maps"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type PaymentRepository struct{ s *Store }

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

// clone copies the metadata map so callers never share it with the store.
func clone(p entity.Payment) *entity.Payment {
	p.Metadata = maps.Clone(p.Metadata)
	return &p
}

func (r *PaymentRepository) txTaken(p *entity.Payment) bool {
	if p.TransactionID == "" {
		return false
	}
	for _, o := range r.s.payments {
		if o.ID != p.ID && o.TransactionID == p.TransactionID {
			return true
		}
	}
	return false
}

func (r *PaymentRepository) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.txTaken(p) {
		return repository.ErrConflict
	}
	if p.Status == "" {
		p.Status = entity.PaymentPending
	}
	r.s.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	r.s.payments[p.ID] = *clone(*p)
	return nil
}

func (r *PaymentRepository) find(match func(entity.Payment) bool) (*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if match(p) {
			return clone(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PaymentRepository) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool { return p.ID == id })
}

func (r *PaymentRepository) GetByStripeIntent(_ context.Context, intentID string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool { return p.StripePaymentIntent != "" && p.StripePaymentIntent == intentID })
}

func (r *PaymentRepository) GetByCheckoutRequestID(_ context.Context, checkoutRequestID string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool {
		return checkoutRequestID != "" && p.MetadataString("checkout_request_id") == checkoutRequestID
	})
}

func (r *PaymentRepository) ListByUser(_ context.Context, userID string) ([]entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Payment{}
	for _, p := range r.s.payments {
		if p.UserID == userID {
			out = append(out, *clone(p))
		}
	}
	return newestFirst(r.s, out, func(p entity.Payment) string { return p.ID }), nil
}

func (r *PaymentRepository) Update(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.payments[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.txTaken(p) {
		return repository.ErrConflict
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.now().UTC()
	r.s.payments[p.ID] = *clone(*p)
	return nil
}

func (r *PaymentRepository) Settle(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.payments[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != entity.PaymentPending {
		return repository.ErrConditionFailed
	}
	if r.txTaken(p) {
		return repository.ErrConflict
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.now().UTC()
	r.s.payments[p.ID] = *clone(*p)
	return nil
}
