package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = time.Minute
)

type AdminService struct {
	Users       repo.UserRepository
	Vendors     repo.VendorRepository
	Fundraisers repo.FundraiserRepository
	Stats       repo.StatsRepository
	Sessions    *SessionStore
	Search      *SearchIndex
	Cache       redis.Cmdable
	Logger      *logrus.Logger
}

func NewAdminService(users repo.UserRepository, vendors repo.VendorRepository, fundraisers repo.FundraiserRepository, stats repo.StatsRepository, sessions *SessionStore, search *SearchIndex, cache redis.Cmdable, logger *logrus.Logger) *AdminService {
	return &AdminService{
		Users:       users,
		Vendors:     vendors,
		Fundraisers: fundraisers,
		Stats:       stats,
		Sessions:    sessions,
		Search:      search,
		Cache:       cache,
		Logger:      logger,
	}
}

// Dashboard returns platform counts, cached briefly in Redis.
func (s *AdminService) Dashboard(ctx context.Context) (*entity.DashboardStats, error) {
	if s.Cache != nil {
		var cached entity.DashboardStats
		ok, err := helpers.RedisGetJSON(ctx, s.Cache, dashboardCacheKey, &cached)
		if err != nil {
			helpers.LogWarn(s.Logger, "read dashboard cache failed", err, nil)
		}
		if ok {
			return &cached, nil
		}
	}
	stats, err := s.Stats.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := helpers.RedisSetJSON(ctx, s.Cache, dashboardCacheKey, stats, dashboardCacheTTL); err != nil {
			helpers.LogWarn(s.Logger, "write dashboard cache failed", err, nil)
		}
	}
	return stats, nil
}

func (s *AdminService) invalidateDashboard(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Cache, dashboardCacheKey); err != nil {
		helpers.LogWarn(s.Logger, "drop dashboard cache failed", err, nil)
	}
}

func (s *AdminService) ListUsers(ctx context.Context, page repo.Page) ([]entity.User, int, error) {
	return s.Users.List(ctx, page)
}

func (s *AdminService) user(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SetUserActive enables or disables an account. Disabling also ends the
// user's session.
func (s *AdminService) SetUserActive(ctx context.Context, adminID, id string, active bool) (*entity.User, error) {
	if id == adminID && !active {
		return nil, newErr(ErrForbidden, "you cannot deactivate your own account")
	}
	u, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = active
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	if !active {
		if err := s.Sessions.Revoke(ctx, u.ID); err != nil {
			helpers.LogWarn(s.Logger, "revoke session failed", err, logrus.Fields{"user_id": u.ID})
		}
	}
	helpers.LogInfo(s.Logger, "user status changed", logrus.Fields{"user_id": u.ID, "is_active": active, "by": adminID})
	return u, nil
}

func (s *AdminService) SetSubscription(ctx context.Context, id string, plan entity.Plan, expiry *time.Time) (*entity.User, error) {
	if !plan.Valid() {
		return nil, invalid("plan must be one of free, standard, premium")
	}
	u, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	u.SubscriptionPlan = plan
	u.SubscriptionExpiry = expiry
	if plan == entity.PlanFree {
		u.SubscriptionExpiry = nil
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetVendorStatus moderates a vendor and keeps the search index in step.
func (s *AdminService) SetVendorStatus(ctx context.Context, id string, status entity.VendorStatus) (*entity.VendorProfile, error) {
	if !status.Valid() {
		return nil, invalid("status must be one of pending, verified, suspended, rejected")
	}
	v, err := s.Vendors.SetStatus(ctx, id, status)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Search.SyncVendor(ctx, v)
	s.invalidateDashboard(ctx)
	return v, nil
}

func (s *AdminService) VerifyFundraiser(ctx context.Context, id string, verified bool) (*entity.Fundraiser, error) {
	f, err := s.Fundraisers.SetVerified(ctx, id, verified)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrFundraiserNotFound
	}
	return f, err
}
