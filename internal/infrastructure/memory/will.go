package memory

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type WillRepository struct{ s *Store }

var _ repository.WillRepository = (*WillRepository)(nil)

func (r *WillRepository) Create(_ context.Context, w *entity.Will) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w.Status == "" {
		w.Status = entity.WillDraft
	}
	r.s.stamp(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	r.s.wills[w.ID] = *w
	return nil
}

func (r *WillRepository) GetForUser(_ context.Context, id, userID string) (*entity.Will, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wills[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *WillRepository) ListByUser(_ context.Context, userID string) ([]entity.Will, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Will{}
	for _, w := range r.s.wills {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return newestFirst(r.s, out, func(w entity.Will) string { return w.ID }), nil
}

func (r *WillRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ws, err := r.ListByUser(ctx, userID)
	return len(ws), err
}

func (r *WillRepository) Update(_ context.Context, w *entity.Will) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.wills[w.ID]
	if !ok || cur.UserID != w.UserID {
		return repository.ErrNotFound
	}
	w.CreatedAt = cur.CreatedAt
	w.UpdatedAt = r.s.now().UTC()
	r.s.wills[w.ID] = *w
	return nil
}

func (r *WillRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wills[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.wills, id)
	return nil
}
