package application

import (
	"context"
	"errors"
	"time"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

// currentPlan resolves the caller's plan, treating a lapsed subscription as
// free.
func currentPlan(ctx context.Context, users repo.UserRepository, userID string, now time.Time) (entity.Plan, error) {
	u, err := users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return u.EffectivePlan(now), nil
}

// checkQuota fails with a forbidden error once count reaches limit.
func checkQuota(plan entity.Plan, limit, count int, what string) error {
	if limit == entity.Unlimited || count < limit {
		return nil
	}
	if limit == 1 {
		return newErr(ErrForbidden, "your %s plan allows only one %s; upgrade to create more", plan, what)
	}
	return newErr(ErrForbidden, "your %s plan allows up to %d %ss; upgrade to create more", plan, limit, what)
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
