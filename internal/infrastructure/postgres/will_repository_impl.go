package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const willColumns = `id, user_id, title, content, status, witnesses, beneficiaries, assets,
	pdf_url, is_digital_signature, signed_at, created_at, updated_at`

type WillRepository struct {
	pool *pgxpool.Pool
}

func NewWillRepository(pool *pgxpool.Pool) *WillRepository {
	return &WillRepository{pool: pool}
}

func scanWill(s scanner) (*entity.Will, error) {
	w := &entity.Will{}
	var status string
	var witnesses, beneficiaries, assets []byte
	if err := s.Scan(&w.ID, &w.UserID, &w.Title, &w.Content, &status, &witnesses, &beneficiaries, &assets,
		&w.PDFURL, &w.IsDigitalSignature, &w.SignedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	w.Status = entity.WillStatus(status)
	w.Witnesses, w.Beneficiaries, w.Assets = witnesses, beneficiaries, assets
	return w, nil
}

func (r *WillRepository) Create(ctx context.Context, w *entity.Will) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Status == "" {
		w.Status = entity.WillDraft
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO wills (id, user_id, title, content, status, witnesses, beneficiaries, assets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, w.ID, w.UserID, w.Title, w.Content, string(w.Status),
		jsonParam(w.Witnesses), jsonParam(w.Beneficiaries), jsonParam(w.Assets))
	return mapErr(row.Scan(&w.CreatedAt, &w.UpdatedAt))
}

func (r *WillRepository) GetForUser(ctx context.Context, id, userID string) (*entity.Will, error) {
	return scanWill(r.pool.QueryRow(ctx, `SELECT `+willColumns+` FROM wills WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *WillRepository) ListByUser(ctx context.Context, userID string) ([]entity.Will, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+willColumns+` FROM wills WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWill)
}

func (r *WillRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wills WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *WillRepository) Update(ctx context.Context, w *entity.Will) error {
	w.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE wills
		SET title = $1, content = $2, status = $3, witnesses = $4, beneficiaries = $5, assets = $6,
			pdf_url = $7, is_digital_signature = $8, signed_at = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
	`, w.Title, w.Content, string(w.Status), jsonParam(w.Witnesses), jsonParam(w.Beneficiaries), jsonParam(w.Assets),
		w.PDFURL, w.IsDigitalSignature, w.SignedAt, w.UpdatedAt, w.ID, w.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WillRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM wills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.WillRepository = (*WillRepository)(nil)
