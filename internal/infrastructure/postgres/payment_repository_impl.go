package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

const paymentColumns = `id, user_id, amount, currency, payment_method, status, transaction_id, mpesa_receipt,
	stripe_payment_intent, description, payment_metadata, created_at, updated_at`

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func scanPayment(s scanner) (*entity.Payment, error) {
	p := &entity.Payment{}
	var userID, txnID *string
	var method, status string
	if err := s.Scan(&p.ID, &userID, &p.Amount, &p.Currency, &method, &status, &txnID, &p.MpesaReceipt,
		&p.StripePaymentIntent, &p.Description, &p.Metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	p.UserID = deref(userID)
	p.TransactionID = deref(txnID)
	p.Method = entity.PaymentMethod(method)
	p.Status = entity.PaymentStatus(status)
	return p, nil
}

func metadataParam(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// insertPayment is shared with the donation transaction.
func insertPayment(ctx context.Context, q querier, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = entity.PaymentPending
	}
	row := q.QueryRow(ctx, `
		INSERT INTO payments (id, user_id, amount, currency, payment_method, status, transaction_id, mpesa_receipt,
			stripe_payment_intent, description, payment_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, p.ID, nullable(p.UserID), p.Amount, p.Currency, string(p.Method), string(p.Status), nullable(p.TransactionID),
		p.MpesaReceipt, p.StripePaymentIntent, p.Description, metadataParam(p.Metadata))
	return mapErr(row.Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	return insertPayment(ctx, r.pool, p)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *PaymentRepository) GetByStripeIntent(ctx context.Context, intentID string) (*entity.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE stripe_payment_intent = $1`, intentID))
}

func (r *PaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*entity.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE payment_metadata->>'checkout_request_id' = $1`, checkoutRequestID))
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]entity.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *PaymentRepository) Update(ctx context.Context, p *entity.Payment) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = $1, transaction_id = $2, mpesa_receipt = $3, stripe_payment_intent = $4,
			description = $5, payment_metadata = $6, updated_at = $7
		WHERE id = $8
	`, string(p.Status), nullable(p.TransactionID), p.MpesaReceipt, p.StripePaymentIntent,
		p.Description, metadataParam(p.Metadata), p.UpdatedAt, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) Settle(ctx context.Context, p *entity.Payment) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = $1, transaction_id = $2, mpesa_receipt = $3, payment_metadata = $4, updated_at = $5
		WHERE id = $6 AND status = 'pending'
	`, string(p.Status), nullable(p.TransactionID), p.MpesaReceipt, metadataParam(p.Metadata), p.UpdatedAt, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrConditionFailed
	}
	return nil
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)
