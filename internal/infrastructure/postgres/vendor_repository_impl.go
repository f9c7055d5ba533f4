package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const vendorColumns = `id, user_id, business_name, business_registration, category, description, years_in_operation,
	county, town, address, phone, email, website, logo_url, cover_image, status, is_featured, rating, review_count,
	commission_rate, created_at, updated_at`

const serviceColumns = `id, vendor_id, name, description, price, currency, duration, is_available, created_at, updated_at`

const bookingColumns = `id, vendor_id, user_id, service_id, booking_date, amount, commission, status, notes,
	created_at, updated_at`

type VendorRepository struct {
	pool *pgxpool.Pool
}

func NewVendorRepository(pool *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{pool: pool}
}

func scanVendor(s scanner) (*entity.VendorProfile, error) {
	v := &entity.VendorProfile{}
	var category, status string
	if err := s.Scan(&v.ID, &v.UserID, &v.BusinessName, &v.BusinessRegistration, &category, &v.Description, &v.YearsInOperation,
		&v.County, &v.Town, &v.Address, &v.Phone, &v.Email, &v.Website, &v.LogoURL, &v.CoverImage, &status, &v.IsFeatured,
		&v.Rating, &v.ReviewCount, &v.CommissionRate, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	v.Category = entity.VendorCategory(category)
	v.Status = entity.VendorStatus(status)
	return v, nil
}

func scanService(s scanner) (*entity.VendorService, error) {
	v := &entity.VendorService{}
	if err := s.Scan(&v.ID, &v.VendorID, &v.Name, &v.Description, &v.Price, &v.Currency, &v.Duration, &v.IsAvailable,
		&v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func scanBooking(s scanner) (*entity.VendorBooking, error) {
	b := &entity.VendorBooking{}
	var status string
	if err := s.Scan(&b.ID, &b.VendorID, &b.UserID, &b.ServiceID, &b.BookingDate, &b.Amount, &b.Commission, &status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	b.Status = entity.BookingStatus(status)
	return b, nil
}

func (r *VendorRepository) CreateProfile(ctx context.Context, v *entity.VendorProfile) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = entity.VendorPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vendor_profiles (id, user_id, business_name, business_registration, category, description,
			years_in_operation, county, town, address, phone, email, website, logo_url, cover_image, status,
			is_featured, commission_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, v.ID, v.UserID, v.BusinessName, v.BusinessRegistration, string(v.Category), v.Description,
		v.YearsInOperation, v.County, v.Town, v.Address, v.Phone, v.Email, v.Website, v.LogoURL, v.CoverImage, string(v.Status),
		v.IsFeatured, v.CommissionRate)
	return mapErr(row.Scan(&v.CreatedAt, &v.UpdatedAt))
}

func (r *VendorRepository) GetProfile(ctx context.Context, id string) (*entity.VendorProfile, error) {
	return scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE id = $1`, id))
}

func (r *VendorRepository) GetProfileByUser(ctx context.Context, userID string) (*entity.VendorProfile, error) {
	return scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE user_id = $1`, userID))
}

func (r *VendorRepository) UpdateProfile(ctx context.Context, v *entity.VendorProfile) error {
	v.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE vendor_profiles
		SET business_name = $1, category = $2, description = $3, years_in_operation = $4, county = $5, town = $6,
			address = $7, phone = $8, email = $9, website = $10, logo_url = $11, cover_image = $12, updated_at = $13
		WHERE id = $14
	`, v.BusinessName, string(v.Category), v.Description, v.YearsInOperation, v.County, v.Town,
		v.Address, v.Phone, v.Email, v.Website, v.LogoURL, v.CoverImage, v.UpdatedAt, v.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VendorRepository) SetStatus(ctx context.Context, id string, status entity.VendorStatus) (*entity.VendorProfile, error) {
	return scanVendor(r.pool.QueryRow(ctx, `
		UPDATE vendor_profiles SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+vendorColumns, string(status), id))
}

func (r *VendorRepository) ListMarketplace(ctx context.Context, f repository.VendorFilter) ([]entity.VendorProfile, int, error) {
	const where = `status = 'verified'
		AND ($1 = '' OR category = $1)
		AND ($2 = '' OR county ILIKE $2)
		AND ($3 = '' OR business_name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%' OR town ILIKE '%' || $3 || '%')`
	args := []any{string(f.Category), f.County, f.Query}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_profiles WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE `+where+
		` ORDER BY is_featured DESC, rating DESC, created_at DESC LIMIT $4 OFFSET $5`,
		append(args, f.Page.Limit(), f.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows, scanVendor)
	return items, total, err
}

// ListByIDs returns verified vendors in the order of ids.
func (r *VendorRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.VendorProfile, error) {
	if len(ids) == 0 {
		return []entity.VendorProfile{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE id::text = ANY($1::text[]) AND status = 'verified'`, ids)
	if err != nil {
		return nil, err
	}
	items, err := collect(rows, scanVendor)
	if err != nil {
		return nil, err
	}
	return orderByIDs(items, ids, func(v entity.VendorProfile) string { return v.ID }), nil
}

func (r *VendorRepository) CreateService(ctx context.Context, s *entity.VendorService) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vendor_services (id, vendor_id, name, description, price, currency, duration, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, s.ID, s.VendorID, s.Name, s.Description, s.Price, s.Currency, s.Duration, s.IsAvailable)
	return mapErr(row.Scan(&s.CreatedAt, &s.UpdatedAt))
}

func (r *VendorRepository) GetService(ctx context.Context, id string) (*entity.VendorService, error) {
	return scanService(r.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM vendor_services WHERE id = $1`, id))
}

func (r *VendorRepository) ListServices(ctx context.Context, vendorID string, availableOnly bool) ([]entity.VendorService, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM vendor_services
		WHERE vendor_id = $1 AND (NOT $2 OR is_available) ORDER BY created_at`, vendorID, availableOnly)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

func (r *VendorRepository) UpdateService(ctx context.Context, s *entity.VendorService) error {
	s.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE vendor_services
		SET name = $1, description = $2, price = $3, currency = $4, duration = $5, is_available = $6, updated_at = $7
		WHERE id = $8 AND vendor_id = $9
	`, s.Name, s.Description, s.Price, s.Currency, s.Duration, s.IsAvailable, s.UpdatedAt, s.ID, s.VendorID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VendorRepository) DeleteService(ctx context.Context, id, vendorID string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM vendor_services WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VendorRepository) CreateBooking(ctx context.Context, b *entity.VendorBooking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = entity.BookingPending
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vendor_bookings (id, vendor_id, user_id, service_id, booking_date, amount, commission, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, b.ID, b.VendorID, b.UserID, b.ServiceID, b.BookingDate, b.Amount, b.Commission, string(b.Status), b.Notes)
	return mapErr(row.Scan(&b.CreatedAt, &b.UpdatedAt))
}

func (r *VendorRepository) GetBooking(ctx context.Context, id string) (*entity.VendorBooking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM vendor_bookings WHERE id = $1`, id))
}

func (r *VendorRepository) ListBookingsByUser(ctx context.Context, userID string) ([]entity.VendorBooking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM vendor_bookings WHERE user_id = $1 ORDER BY booking_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (r *VendorRepository) ListBookingsByVendor(ctx context.Context, vendorID string) ([]entity.VendorBooking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM vendor_bookings WHERE vendor_id = $1 ORDER BY booking_date DESC`, vendorID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (r *VendorRepository) UpdateBookingStatus(ctx context.Context, id string, from, to entity.BookingStatus) (*entity.VendorBooking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `
		UPDATE vendor_bookings SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+bookingColumns, string(to), id, string(from)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrConditionFailed
	}
	return b, err
}

func (r *VendorRepository) CreateReview(ctx context.Context, rv *entity.VendorReview) (*entity.VendorProfile, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	var profile *entity.VendorProfile
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO vendor_reviews (id, vendor_id, user_id, rating, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, rv.ID, rv.VendorID, rv.UserID, rv.Rating, rv.Comment)
		if err := row.Scan(&rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return mapErr(err)
		}
		p, err := scanVendor(tx.QueryRow(ctx, `
			UPDATE vendor_profiles v
			SET rating = s.avg_rating, review_count = s.cnt, updated_at = NOW()
			FROM (SELECT COALESCE(AVG(rating), 0)::numeric(3,2) AS avg_rating, COUNT(*) AS cnt
				FROM vendor_reviews WHERE vendor_id = $1) s
			WHERE v.id = $1
			RETURNING `+prefixed("v.", vendorColumns), rv.VendorID))
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *VendorRepository) ListReviews(ctx context.Context, vendorID string) ([]entity.VendorReview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vendor_id, user_id, rating, comment, created_at, updated_at
		FROM vendor_reviews WHERE vendor_id = $1 ORDER BY created_at DESC
	`, vendorID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(s scanner) (*entity.VendorReview, error) {
		rv := &entity.VendorReview{}
		if err := s.Scan(&rv.ID, &rv.VendorID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		return rv, nil
	})
}

var _ repository.VendorRepository = (*VendorRepository)(nil)
