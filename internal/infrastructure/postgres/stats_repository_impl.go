package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) groupCount(ctx context.Context, table, column string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+column+`, COUNT(*) FROM `+table+` GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*entity.DashboardStats, error) {
	s := &entity.DashboardStats{}
	var err error
	if s.UsersByRole, err = r.groupCount(ctx, "users", "role"); err != nil {
		return nil, err
	}
	if s.FundraisersByStatus, err = r.groupCount(ctx, "fundraisers", "status"); err != nil {
		return nil, err
	}
	if s.VendorsByStatus, err = r.groupCount(ctx, "vendor_profiles", "status"); err != nil {
		return nil, err
	}
	if s.PaymentsByStatus, err = r.groupCount(ctx, "payments", "status"); err != nil {
		return nil, err
	}
	if s.BookingsByStatus, err = r.groupCount(ctx, "vendor_bookings", "status"); err != nil {
		return nil, err
	}
	err = r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM wills),
			(SELECT COUNT(*) FROM memorials),
			(SELECT COALESCE(SUM(amount), 0)::float8 FROM donations),
			(SELECT COUNT(*) FROM donations)
	`).Scan(&s.Wills, &s.Memorials, &s.DonationsTotal, &s.DonationsCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ repository.StatsRepository = (*StatsRepository)(nil)
