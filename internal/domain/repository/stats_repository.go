package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

// StatsRepository aggregates counts for the admin dashboard.
type StatsRepository interface {
	Dashboard(ctx context.Context) (*entity.DashboardStats, error)
}
