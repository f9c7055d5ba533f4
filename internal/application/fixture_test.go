package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/config"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/infrastructure/memory"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/mailer"
	"github.com/kenfuse/kenfuse-api/pkg/payments"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func (p *recordingPublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failing bool
}

func newMemObjectStore() *memObjectStore { return &memObjectStore{objects: map[string][]byte{}} }

func (s *memObjectStore) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if s.failing {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = b
	return "https://storage.test/" + objectPath, nil
}

func (s *memObjectStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type stubMpesa struct {
	res  *payments.STKPushResponse
	err  error
	sent []payments.STKPushRequest
}

func (m *stubMpesa) STKPush(_ context.Context, in payments.STKPushRequest) (*payments.STKPushResponse, error) {
	m.sent = append(m.sent, in)
	return m.res, m.err
}

type stubCard struct {
	intent   *payments.Intent
	err      error
	metadata map[string]string
	event    *payments.IntentEvent
}

func (c *stubCard) CreateIntent(_ context.Context, _ float64, _ string, metadata map[string]string) (*payments.Intent, error) {
	c.metadata = metadata
	return c.intent, c.err
}

func (c *stubCard) ParseWebhook(_ []byte, signature string) (*payments.IntentEvent, error) {
	if signature != "valid" {
		return nil, payments.ErrSignature
	}
	return c.event, nil
}

type fixture struct {
	repos     *memory.Repositories
	redis     *miniredis.Miniredis
	rdb       *redis.Client
	publisher *recordingPublisher
	store     *memObjectStore
	cfg       *config.Config

	auth        *AuthService
	wills       *WillService
	memorials   *MemorialService
	fundraisers *FundraiserService
	vendors     *VendorService
	payments    *PaymentService
	admin       *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		AppName:                "kenfuse",
		CompanyName:            "Kenfuse",
		MailSendEnabled:        true,
		DefaultCurrency:        "KES",
		VendorCommissionRate:   0.10,
		FundraisingPlatformFee: 0.05,
		RefreshTTL:             24 * time.Hour,
	}
	logger := helpers.NewNopLogger()
	repos := memory.NewRepositories()
	pub := &recordingPublisher{}
	store := newMemObjectStore()
	notifier := NewNotifier(pub, cfg, logger)
	sessions := NewSessionStore(rdb, cfg.RefreshTTL)
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, cfg.RefreshTTL)

	f := &fixture{repos: repos, redis: mr, rdb: rdb, publisher: pub, store: store, cfg: cfg}
	f.auth = NewAuthService(repos.Users, jwt, sessions, notifier, logger)
	f.wills = NewWillService(repos.Wills, repos.Users, store, logger)
	f.wills.Now = func() time.Time { return fixedNow }
	f.memorials = NewMemorialService(repos.Memorials, repos.Users, nil, store, logger, []string{"png", "jpg", "jpeg", "gif", "mp4"}, 1024)
	f.memorials.Now = func() time.Time { return fixedNow }
	f.fundraisers = NewFundraiserService(repos.Fundraisers, repos.Memorials, repos.Users, notifier, logger, "KES", 0.05)
	f.fundraisers.Now = func() time.Time { return fixedNow }
	f.vendors = NewVendorService(repos.Vendors, repos.Users, nil, notifier, logger, "KES", 0.10)
	f.vendors.Now = func() time.Time { return fixedNow }
	f.payments = NewPaymentService(repos.Payments, nil, nil, logger, "KES")
	f.admin = NewAdminService(repos.Users, repos.Vendors, repos.Fundraisers, repos.Stats, sessions, nil, rdb, logger)
	return f
}

// user stores an account directly, bypassing registration.
func (f *fixture) user(t *testing.T, email string, role entity.Role, plan entity.Plan) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("secret123")
	require.NoError(t, err)
	u := &entity.User{
		Email:            email,
		Phone:            "phone-" + email,
		FirstName:        "Test",
		LastName:         "User",
		PasswordHash:     hash,
		Role:             role,
		SubscriptionPlan: plan,
		IsActive:         true,
	}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

// verifiedVendor creates a vendor account with a verified profile and one
// available service.
func (f *fixture) verifiedVendor(t *testing.T, email string) (*entity.User, *entity.VendorProfile, *entity.VendorService) {
	t.Helper()
	ctx := context.Background()
	u := f.user(t, email, entity.RoleVendor, entity.PlanFree)
	cat := entity.CategoryFlorist
	name := "Petals Ltd"
	v, err := f.vendors.Register(ctx, u, VendorProfileInput{BusinessName: &name, Category: &cat})
	require.NoError(t, err)
	v, err = f.admin.SetVendorStatus(ctx, v.ID, entity.VendorVerified)
	require.NoError(t, err)
	svcName, price := "Wreath", 2500.0
	svc, err := f.vendors.CreateService(ctx, u.ID, ServiceInput{Name: &svcName, Price: &price})
	require.NoError(t, err)
	return u, v, svc
}

func ptr[T any](v T) *T { return &v }

func rawJSON(s string) json.RawMessage { return json.RawMessage(s) }
