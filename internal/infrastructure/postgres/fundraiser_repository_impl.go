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

const fundraiserColumns = `id, user_id, memorial_id, title, description, target_amount, current_amount, currency,
	status, cover_image, end_date, is_verified, created_at, updated_at`

const donationColumns = `id, fundraiser_id, donor_id, amount, currency, payment_method, transaction_id,
	donor_name, donor_email, donor_phone, message, is_anonymous, created_at`

type FundraiserRepository struct {
	pool *pgxpool.Pool
}

func NewFundraiserRepository(pool *pgxpool.Pool) *FundraiserRepository {
	return &FundraiserRepository{pool: pool}
}

func scanFundraiser(s scanner) (*entity.Fundraiser, error) {
	f := &entity.Fundraiser{}
	var memorialID *string
	var status string
	if err := s.Scan(&f.ID, &f.UserID, &memorialID, &f.Title, &f.Description, &f.TargetAmount, &f.CurrentAmount, &f.Currency,
		&status, &f.CoverImage, &f.EndDate, &f.IsVerified, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	f.MemorialID = deref(memorialID)
	f.Status = entity.FundraiserStatus(status)
	return f, nil
}

func scanDonation(s scanner) (*entity.Donation, error) {
	d := &entity.Donation{}
	var donorID *string
	var method string
	if err := s.Scan(&d.ID, &d.FundraiserID, &donorID, &d.Amount, &d.Currency, &method, &d.TransactionID,
		&d.DonorName, &d.DonorEmail, &d.DonorPhone, &d.Message, &d.IsAnonymous, &d.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	d.DonorID = deref(donorID)
	d.PaymentMethod = entity.PaymentMethod(method)
	return d, nil
}

func (r *FundraiserRepository) Create(ctx context.Context, f *entity.Fundraiser) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = entity.FundraiserActive
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO fundraisers (id, user_id, memorial_id, title, description, target_amount, current_amount,
			currency, status, cover_image, end_date, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, f.ID, f.UserID, nullable(f.MemorialID), f.Title, f.Description, f.TargetAmount, f.CurrentAmount,
		f.Currency, string(f.Status), f.CoverImage, f.EndDate, f.IsVerified)
	return mapErr(row.Scan(&f.CreatedAt, &f.UpdatedAt))
}

func (r *FundraiserRepository) GetByID(ctx context.Context, id string) (*entity.Fundraiser, error) {
	return scanFundraiser(r.pool.QueryRow(ctx, `SELECT `+fundraiserColumns+` FROM fundraisers WHERE id = $1`, id))
}

func (r *FundraiserRepository) GetForUser(ctx context.Context, id, userID string) (*entity.Fundraiser, error) {
	return scanFundraiser(r.pool.QueryRow(ctx, `SELECT `+fundraiserColumns+` FROM fundraisers WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *FundraiserRepository) List(ctx context.Context, f repository.FundraiserFilter) ([]entity.Fundraiser, int, error) {
	const where = `($1 = '' OR status = $1) AND (NOT $2 OR is_verified)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fundraisers WHERE `+where,
		string(f.Status), f.VerifiedOnly).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+fundraiserColumns+` FROM fundraisers WHERE `+where+
		` ORDER BY created_at DESC LIMIT $3 OFFSET $4`, string(f.Status), f.VerifiedOnly, f.Page.Limit(), f.Page.Offset())
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows, scanFundraiser)
	return items, total, err
}

func (r *FundraiserRepository) ListByUser(ctx context.Context, userID string) ([]entity.Fundraiser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fundraiserColumns+` FROM fundraisers WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFundraiser)
}

// Update writes owner-editable fields. current_amount is left alone so it can
// only change through Donate.
func (r *FundraiserRepository) Update(ctx context.Context, f *entity.Fundraiser) error {
	f.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE fundraisers
		SET title = $1, description = $2, target_amount = $3, status = $4, cover_image = $5, end_date = $6,
			memorial_id = $7, currency = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`, f.Title, f.Description, f.TargetAmount, string(f.Status), f.CoverImage, f.EndDate,
		nullable(f.MemorialID), f.Currency, f.UpdatedAt, f.ID, f.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FundraiserRepository) SetVerified(ctx context.Context, id string, verified bool) (*entity.Fundraiser, error) {
	return scanFundraiser(r.pool.QueryRow(ctx, `
		UPDATE fundraisers SET is_verified = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+fundraiserColumns, verified, id))
}

func (r *FundraiserRepository) Donate(ctx context.Context, d *entity.Donation, p *entity.Payment) (*entity.Fundraiser, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	var updated *entity.Fundraiser
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		f, err := scanFundraiser(tx.QueryRow(ctx, `
			UPDATE fundraisers
			SET current_amount = current_amount + $1,
				status = CASE WHEN current_amount + $1 >= target_amount THEN 'completed' ELSE status END,
				updated_at = NOW()
			WHERE id = $2 AND status = 'active'
			RETURNING `+fundraiserColumns, d.Amount, d.FundraiserID))
		if errors.Is(err, repository.ErrNotFound) {
			var exists bool
			if qErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM fundraisers WHERE id = $1)`, d.FundraiserID).Scan(&exists); qErr != nil {
				return qErr
			}
			if exists {
				return repository.ErrConditionFailed
			}
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO donations (id, fundraiser_id, donor_id, amount, currency, payment_method, transaction_id,
				donor_name, donor_email, donor_phone, message, is_anonymous)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at
		`, d.ID, d.FundraiserID, nullable(d.DonorID), d.Amount, d.Currency, string(d.PaymentMethod), d.TransactionID,
			d.DonorName, d.DonorEmail, d.DonorPhone, d.Message, d.IsAnonymous)
		if err := row.Scan(&d.CreatedAt); err != nil {
			return mapErr(err)
		}
		if p.Metadata == nil {
			p.Metadata = map[string]any{}
		}
		p.Metadata["donation_id"] = d.ID
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *FundraiserRepository) ListDonations(ctx context.Context, fundraiserID string, page repository.Page) ([]entity.Donation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE fundraiser_id = $1`, fundraiserID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+donationColumns+` FROM donations WHERE fundraiser_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, fundraiserID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows, scanDonation)
	return items, total, err
}

func (r *FundraiserRepository) RecentDonations(ctx context.Context, fundraiserID string, limit int) ([]entity.Donation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+donationColumns+` FROM donations WHERE fundraiser_id = $1
		ORDER BY created_at DESC LIMIT $2`, fundraiserID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

var _ repository.FundraiserRepository = (*FundraiserRepository)(nil)
