package memory

import (
	"context"
	"strings"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) taken(u *entity.User) bool {
	for _, o := range r.s.users {
		if o.ID != u.ID && (strings.EqualFold(o.Email, u.Email) || o.Phone == u.Phone) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.taken(u) {
		return repository.ErrConflict
	}
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = entity.PlanFree
	}
	r.s.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) find(match func(entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Phone == phone })
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.taken(u) {
		return repository.ErrConflict
	}
	u.PasswordHash = cur.PasswordHash
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = r.s.now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.s.now().UTC()
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) List(_ context.Context, page repository.Page) ([]entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	all = newestFirst(r.s, all, func(u entity.User) string { return u.ID })
	return paginate(all, page), len(all), nil
}
