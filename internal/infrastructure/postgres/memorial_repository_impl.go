package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const memorialColumns = `id, user_id, deceased_name, date_of_birth, date_of_passing, biography, photo_url,
	visibility, location, obituary, funeral_details, is_featured, created_at, updated_at`

type MemorialRepository struct {
	pool *pgxpool.Pool
}

func NewMemorialRepository(pool *pgxpool.Pool) *MemorialRepository {
	return &MemorialRepository{pool: pool}
}

func scanMemorial(s scanner) (*entity.Memorial, error) {
	m := &entity.Memorial{}
	var visibility string
	var funeral []byte
	if err := s.Scan(&m.ID, &m.UserID, &m.DeceasedName, &m.DateOfBirth, &m.DateOfPassing, &m.Biography, &m.PhotoURL,
		&visibility, &m.Location, &m.Obituary, &funeral, &m.IsFeatured, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	m.Visibility = entity.Visibility(visibility)
	m.FuneralDetails = funeral
	return m, nil
}

func (r *MemorialRepository) Create(ctx context.Context, m *entity.Memorial) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Visibility == "" {
		m.Visibility = entity.VisibilityPublic
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO memorials (id, user_id, deceased_name, date_of_birth, date_of_passing, biography, photo_url,
			visibility, location, obituary, funeral_details, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, m.ID, m.UserID, m.DeceasedName, m.DateOfBirth, m.DateOfPassing, m.Biography, m.PhotoURL,
		string(m.Visibility), m.Location, m.Obituary, jsonParam(m.FuneralDetails), m.IsFeatured)
	return mapErr(row.Scan(&m.CreatedAt, &m.UpdatedAt))
}

func (r *MemorialRepository) GetByID(ctx context.Context, id string) (*entity.Memorial, error) {
	return scanMemorial(r.pool.QueryRow(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE id = $1`, id))
}

func (r *MemorialRepository) GetForUser(ctx context.Context, id, userID string) (*entity.Memorial, error) {
	return scanMemorial(r.pool.QueryRow(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE id = $1 AND user_id = $2`, id, userID))
}

// ListPublic only ever returns public memorials. Query is a plain substring
// match used when the search index is unavailable.
func (r *MemorialRepository) ListPublic(ctx context.Context, f repository.MemorialFilter) ([]entity.Memorial, int, error) {
	where := `visibility = 'public'`
	args := []any{}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where += ` AND (deceased_name ILIKE $1 OR biography ILIKE $1 OR location ILIKE $1)`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM memorials WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	args = append(args, f.Page.Limit(), f.Page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE `+where+
		` ORDER BY created_at DESC LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows, scanMemorial)
	return items, total, err
}

// ListByIDs returns public memorials for the given ids, preserving the order of ids.
func (r *MemorialRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.Memorial, error) {
	if len(ids) == 0 {
		return []entity.Memorial{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE id::text = ANY($1::text[]) AND visibility = 'public'`, ids)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanMemorial)
	if err != nil {
		return nil, err
	}
	return orderByIDs(items, ids, func(m entity.Memorial) string { return m.ID }), nil
}

func (r *MemorialRepository) ListByUser(ctx context.Context, userID string) ([]entity.Memorial, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMemorial)
}

func (r *MemorialRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM memorials WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *MemorialRepository) Update(ctx context.Context, m *entity.Memorial) error {
	m.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE memorials
		SET deceased_name = $1, date_of_birth = $2, date_of_passing = $3, biography = $4, photo_url = $5,
			visibility = $6, location = $7, obituary = $8, funeral_details = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
	`, m.DeceasedName, m.DateOfBirth, m.DateOfPassing, m.Biography, m.PhotoURL,
		string(m.Visibility), m.Location, m.Obituary, jsonParam(m.FuneralDetails), m.UpdatedAt, m.ID, m.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemorialRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM memorials WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemorialRepository) CreateTribute(ctx context.Context, t *entity.Tribute) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tributes (id, memorial_id, user_id, message, author_name, relationship, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, t.ID, t.MemorialID, nullable(t.UserID), t.Message, t.AuthorName, t.Relationship, t.IsAnonymous)
	return mapErr(row.Scan(&t.CreatedAt))
}

func (r *MemorialRepository) ListTributes(ctx context.Context, memorialID string) ([]entity.Tribute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, memorial_id, user_id, message, author_name, relationship, is_anonymous, created_at
		FROM tributes WHERE memorial_id = $1 ORDER BY created_at DESC
	`, memorialID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (*entity.Tribute, error) {
		t := &entity.Tribute{}
		var userID *string
		if err := s.Scan(&t.ID, &t.MemorialID, &userID, &t.Message, &t.AuthorName, &t.Relationship, &t.IsAnonymous, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.UserID = deref(userID)
		return t, nil
	})
}

func scanMedia(s scanner) (*entity.MemorialMedia, error) {
	m := &entity.MemorialMedia{}
	var kind string
	var uploadedBy *string
	if err := s.Scan(&m.ID, &m.MemorialID, &kind, &m.URL, &m.Caption, &uploadedBy, &m.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	m.Kind = entity.MediaKind(kind)
	m.UploadedBy = deref(uploadedBy)
	return m, nil
}

func (r *MemorialRepository) AddMedia(ctx context.Context, m *entity.MemorialMedia) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO memorial_media (id, memorial_id, kind, url, caption, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.MemorialID, string(m.Kind), m.URL, m.Caption, nullable(m.UploadedBy))
	return mapErr(row.Scan(&m.CreatedAt))
}

// ListMedia lists media of one kind, or all media when kind is empty.
func (r *MemorialRepository) ListMedia(ctx context.Context, memorialID string, kind entity.MediaKind) ([]entity.MemorialMedia, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, memorial_id, kind, url, caption, uploaded_by, created_at
		FROM memorial_media
		WHERE memorial_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC
	`, memorialID, string(kind))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMedia)
}

func (r *MemorialRepository) GetMedia(ctx context.Context, memorialID string, kind entity.MediaKind, id string) (*entity.MemorialMedia, error) {
	return scanMedia(r.pool.QueryRow(ctx, `
		SELECT id, memorial_id, kind, url, caption, uploaded_by, created_at
		FROM memorial_media WHERE id = $1 AND memorial_id = $2 AND kind = $3
	`, id, memorialID, string(kind)))
}

func (r *MemorialRepository) DeleteMedia(ctx context.Context, memorialID string, kind entity.MediaKind, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM memorial_media WHERE id = $1 AND memorial_id = $2 AND kind = $3`, id, memorialID, string(kind))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.MemorialRepository = (*MemorialRepository)(nil)
