package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

func TestDashboardIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a@example.com", entity.RoleFamily, entity.PlanFree)
	f.user(t, "b@example.com", entity.RoleVendor, entity.PlanFree)

	stats, err := f.admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"family": 1, "vendor": 1}, stats.UsersByRole)
	assert.True(t, f.redis.Exists(dashboardCacheKey))

	f.user(t, "c@example.com", entity.RoleFamily, entity.PlanFree)
	cached, err := f.admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.UsersByRole["family"], "served from cache")

	f.redis.FastForward(dashboardCacheTTL + time.Second)
	fresh, err := f.admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.UsersByRole["family"])
}

func TestDeactivateUserEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin@example.com", entity.RoleAdmin, entity.PlanFree)
	u, tp, err := f.auth.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = f.admin.SetUserActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.admin.SetUserActive(ctx, admin.ID, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, _, err = f.auth.Refresh(ctx, tp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, _, err = f.auth.Login(ctx, u.Email, "secret123")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, err = f.admin.SetUserActive(ctx, admin.ID, "missing", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com", entity.RoleFamily, entity.PlanFree)
	expiry := fixedNow.AddDate(1, 0, 0)

	_, err := f.admin.SetSubscription(ctx, u.ID, "gold", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := f.admin.SetSubscription(ctx, u.ID, entity.PlanPremium, &expiry)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanPremium, got.SubscriptionPlan)
	require.NotNil(t, got.SubscriptionExpiry)

	got, err = f.admin.SetSubscription(ctx, u.ID, entity.PlanFree, &expiry)
	require.NoError(t, err)
	assert.Nil(t, got.SubscriptionExpiry)
}

func TestModerateVendorAndFundraiser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.admin.SetVendorStatus(ctx, "missing", entity.VendorVerified)
	assert.ErrorIs(t, err, ErrVendorNotFound)
	_, err = f.admin.SetVendorStatus(ctx, "missing", "banned")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, v, _ := f.verifiedVendor(t, "v@example.com")
	_, total, err := f.vendors.Marketplace(ctx, repo.VendorFilter{Page: repo.NewPage(1, 0, 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = f.admin.SetVendorStatus(ctx, v.ID, entity.VendorSuspended)
	require.NoError(t, err)
	_, total, err = f.vendors.Marketplace(ctx, repo.VendorFilter{Page: repo.NewPage(1, 0, 10)})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = f.admin.VerifyFundraiser(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrFundraiserNotFound)
}

func TestListUsersPaginates(t *testing.T) {
	f := newFixture(t)
	for _, e := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		f.user(t, e, entity.RoleFamily, entity.PlanFree)
	}
	items, total, err := f.admin.ListUsers(context.Background(), repo.NewPage(2, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "a@x.com", items[0].Email)
}
