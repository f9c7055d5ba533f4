package memory

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type MemorialRepository struct{ s *Store }

var _ repository.MemorialRepository = (*MemorialRepository)(nil)

func (r *MemorialRepository) Create(_ context.Context, m *entity.Memorial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.Visibility == "" {
		m.Visibility = entity.VisibilityPublic
	}
	r.s.stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	r.s.memorials[m.ID] = *m
	return nil
}

func (r *MemorialRepository) GetByID(_ context.Context, id string) (*entity.Memorial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memorials[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MemorialRepository) GetForUser(ctx context.Context, id, userID string) (*entity.Memorial, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (r *MemorialRepository) filter(match func(entity.Memorial) bool) []entity.Memorial {
	out := []entity.Memorial{}
	for _, m := range r.s.memorials {
		if match(m) {
			out = append(out, m)
		}
	}
	return newestFirst(r.s, out, func(m entity.Memorial) string { return m.ID })
}

func (r *MemorialRepository) ListPublic(_ context.Context, f repository.MemorialFilter) ([]entity.Memorial, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(func(m entity.Memorial) bool {
		if m.Visibility != entity.VisibilityPublic {
			return false
		}
		return f.Query == "" || containsFold(m.DeceasedName, f.Query) || containsFold(m.Biography, f.Query) || containsFold(m.Location, f.Query)
	})
	return paginate(all, f.Page), len(all), nil
}

func (r *MemorialRepository) ListByIDs(_ context.Context, ids []string) ([]entity.Memorial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Memorial{}
	for _, id := range ids {
		if m, ok := r.s.memorials[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemorialRepository) ListByUser(_ context.Context, userID string) ([]entity.Memorial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(m entity.Memorial) bool { return m.UserID == userID }), nil
}

func (r *MemorialRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ms, err := r.ListByUser(ctx, userID)
	return len(ms), err
}

func (r *MemorialRepository) Update(_ context.Context, m *entity.Memorial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.memorials[m.ID]
	if !ok || cur.UserID != m.UserID {
		return repository.ErrNotFound
	}
	m.CreatedAt = cur.CreatedAt
	m.UpdatedAt = r.s.now().UTC()
	r.s.memorials[m.ID] = *m
	return nil
}

// Delete cascades to tributes and media and detaches fundraisers.
func (r *MemorialRepository) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memorials[id]
	if !ok || m.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.memorials, id)
	for k, t := range r.s.tributes {
		if t.MemorialID == id {
			delete(r.s.tributes, k)
		}
	}
	for k, md := range r.s.media {
		if md.MemorialID == id {
			delete(r.s.media, k)
		}
	}
	for k, f := range r.s.fundraisers {
		if f.MemorialID == id {
			f.MemorialID = ""
			r.s.fundraisers[k] = f
		}
	}
	return nil
}

func (r *MemorialRepository) CreateTribute(_ context.Context, t *entity.Tribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memorials[t.MemorialID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stampCreated(&t.ID, &t.CreatedAt)
	r.s.tributes[t.ID] = *t
	return nil
}

func (r *MemorialRepository) ListTributes(_ context.Context, memorialID string) ([]entity.Tribute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Tribute{}
	for _, t := range r.s.tributes {
		if t.MemorialID == memorialID {
			out = append(out, t)
		}
	}
	return newestFirst(r.s, out, func(t entity.Tribute) string { return t.ID }), nil
}

func (r *MemorialRepository) AddMedia(_ context.Context, md *entity.MemorialMedia) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memorials[md.MemorialID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stampCreated(&md.ID, &md.CreatedAt)
	r.s.media[md.ID] = *md
	return nil
}

func (r *MemorialRepository) ListMedia(_ context.Context, memorialID string, kind entity.MediaKind) ([]entity.MemorialMedia, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.MemorialMedia{}
	for _, md := range r.s.media {
		if md.MemorialID == memorialID && (kind == "" || md.Kind == kind) {
			out = append(out, md)
		}
	}
	return newestFirst(r.s, out, func(md entity.MemorialMedia) string { return md.ID }), nil
}

func (r *MemorialRepository) GetMedia(_ context.Context, memorialID string, kind entity.MediaKind, id string) (*entity.MemorialMedia, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	md, ok := r.s.media[id]
	if !ok || md.MemorialID != memorialID || md.Kind != kind {
		return nil, repository.ErrNotFound
	}
	return &md, nil
}

func (r *MemorialRepository) DeleteMedia(ctx context.Context, memorialID string, kind entity.MediaKind, id string) error {
	if _, err := r.GetMedia(ctx, memorialID, kind, id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.media, id)
	return nil
}
