package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const userColumns = `id, email, phone, first_name, last_name, password_hash, role,
	subscription_plan, subscription_expiry, is_verified, is_active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(s scanner) (*entity.User, error) {
	u := &entity.User{}
	var role, plan string
	if err := s.Scan(&u.ID, &u.Email, &u.Phone, &u.FirstName, &u.LastName, &u.PasswordHash, &role,
		&plan, &u.SubscriptionExpiry, &u.IsVerified, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	u.SubscriptionPlan = entity.Plan(plan)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = entity.PlanFree
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, phone, first_name, last_name, password_hash, role,
			subscription_plan, subscription_expiry, is_verified, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Phone, u.FirstName, u.LastName, u.PasswordHash, string(u.Role),
		string(u.SubscriptionPlan), u.SubscriptionExpiry, u.IsVerified, u.IsActive)
	return mapErr(row.Scan(&u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, phone = $2, first_name = $3, last_name = $4, role = $5,
			subscription_plan = $6, subscription_expiry = $7, is_verified = $8, is_active = $9,
			updated_at = $10
		WHERE id = $11
	`, u.Email, u.Phone, u.FirstName, u.LastName, string(u.Role),
		string(u.SubscriptionPlan), u.SubscriptionExpiry, u.IsVerified, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page repository.Page) ([]entity.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	users, err := collect(rows, scanUser)
	return users, total, err
}

var _ repository.UserRepository = (*UserRepository)(nil)
