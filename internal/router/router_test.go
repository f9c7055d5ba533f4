package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/config"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/infrastructure/memory"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	repos  *memory.Repositories
	phones int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		AppName:                "kenfuse",
		Env:                    "test",
		CompanyName:            "Kenfuse",
		AccessTTL:              time.Hour,
		RefreshTTL:             24 * time.Hour,
		DefaultCurrency:        "KES",
		VendorCommissionRate:   0.10,
		FundraisingPlatformFee: 0.05,
		MaxUploadBytes:         1 << 20,
		AllowedExtensions:      "png,jpg,mp4",
		ESMemorialsIndex:       "memorials",
		ESVendorsIndex:         "vendors",
	}
	logger := helpers.NewNopLogger()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", cfg.AccessTTL, cfg.RefreshTTL)
	mem := memory.NewRepositories()
	repos := Repositories{
		Users:       mem.Users,
		Wills:       mem.Wills,
		Memorials:   mem.Memorials,
		Fundraisers: mem.Fundraisers,
		Payments:    mem.Payments,
		Vendors:     mem.Vendors,
		Stats:       mem.Stats,
	}

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RealIP())
	reg := NewRegistry(engine)
	Mount(reg, Build(cfg, logger, jwt, repos, Infra{Redis: rdb}))
	reg.RegisterAll()
	return &testServer{t: t, engine: engine, repos: mem}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type session struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *testServer) register(email string, role entity.Role, extra map[string]any) session {
	s.t.Helper()
	s.phones++
	body := map[string]any{
		"email":      email,
		"phone":      fmt.Sprintf("07123456%02d", s.phones),
		"first_name": "Amina",
		"last_name":  "Otieno",
		"password":   "secret123",
		"role":       string(role),
	}
	for k, v := range extra {
		body[k] = v
	}
	w, env := s.do(http.MethodPost, "/api/register", "", body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session](s.t, env.Data)
}

// admin stores an admin account directly and logs it in.
func (s *testServer) admin(email string) session {
	s.t.Helper()
	hash, err := helpers.HashPassword("secret123")
	require.NoError(s.t, err)
	require.NoError(s.t, s.repos.Users.Create(context.Background(), &entity.User{
		Email:            email,
		Phone:            "0799999999",
		FirstName:        "Site",
		LastName:         "Admin",
		PasswordHash:     hash,
		Role:             entity.RoleAdmin,
		SubscriptionPlan: entity.PlanPremium,
		IsActive:         true,
	}))
	w, env := s.do(http.MethodPost, "/api/login", "", map[string]any{"email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[session](s.t, env.Data)
}

func (s *testServer) setPlan(userID string, plan entity.Plan) {
	s.t.Helper()
	ctx := context.Background()
	u, err := s.repos.Users.GetByID(ctx, userID)
	require.NoError(s.t, err)
	u.SubscriptionPlan = plan
	require.NoError(s.t, s.repos.Users.Update(ctx, u))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	reg := s.register("amina@example.com", entity.RoleFamily, nil)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "family", reg.User.Role)

	w, _ := s.do(http.MethodPost, "/api/register", "", map[string]any{
		"email": "amina@example.com", "phone": "0712000000", "first_name": "A", "last_name": "O",
		"password": "secret123", "role": "family",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, "/api/login", "", map[string]any{"email": "amina@example.com", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodPost, "/api/login", "", map[string]any{"email": "AMINA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[session](t, env.Data)

	w, env = s.do(http.MethodGet, "/api/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, env.Data)
	assert.Equal(t, "amina@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	w, _ = s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodPost, "/api/register", "", map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = s.do(http.MethodPost, "/api/register", "", map[string]any{
		"email": "boss@example.com", "phone": "0712000001", "first_name": "B", "last_name": "O",
		"password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWillLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@example.com", entity.RoleFamily, nil)
	other := s.register("other@example.com", entity.RoleFamily, nil)

	w, _ := s.do(http.MethodPost, "/api/wills", owner.AccessToken, map[string]any{"title": "My will"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPost, "/api/wills", owner.AccessToken, map[string]any{
		"title":         "My will",
		"content":       "I leave everything to my children.",
		"beneficiaries": []map[string]any{{"name": "Baraka", "share": 100}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	will := decode[map[string]any](t, env.Data)
	id := will["id"].(string)
	assert.Equal(t, "draft", will["status"])

	w, _ = s.do(http.MethodGet, "/api/wills/"+id, owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/wills/"+id, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the free plan allows one will
	w, _ = s.do(http.MethodPost, "/api/wills", owner.AccessToken, map[string]any{
		"title": "Second", "content": "x", "beneficiaries": []map[string]any{{"name": "Zawadi"}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/wills/"+id+"/export-pdf", nil)
	req.Header.Set("Authorization", "Bearer "+owner.AccessToken)
	pdf := httptest.NewRecorder()
	s.engine.ServeHTTP(pdf, req)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.Contains(t, pdf.Header().Get("Content-Disposition"), "will_"+id+".pdf")
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF")))

	w, _ = s.do(http.MethodDelete, "/api/wills/"+id, owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/wills/"+id, owner.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMemorialVisibility(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@example.com", entity.RoleFamily, nil)
	visitor := s.register("visitor@example.com", entity.RoleFamily, nil)

	w, env := s.do(http.MethodPost, "/api/memorials", owner.AccessToken, map[string]any{
		"deceased_name":   "Mzee Kamau",
		"date_of_birth":   "1940-05-01",
		"date_of_passing": "2025-12-24",
		"visibility":      "private",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	memorial := decode[map[string]any](t, env.Data)
	id := memorial["id"].(string)
	assert.Equal(t, "1940-05-01", memorial["date_of_birth"])

	w, _ = s.do(http.MethodGet, "/api/memorials/"+id, owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/memorials/"+id, visitor.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/memorials", owner.AccessToken, map[string]any{
		"deceased_name": "Another", "date_of_birth": "1950-01-01", "date_of_passing": "2026-01-01",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPut, "/api/memorials/"+id, owner.AccessToken, map[string]any{"visibility": "public"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/memorials/"+id+"/tributes", "", map[string]any{
		"message": "Rest well", "author_name": "A friend",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = s.do(http.MethodGet, "/api/memorials/"+id+"/tributes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	w, env = s.do(http.MethodGet, "/api/memorials", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	// linking an already hosted photo needs no object storage
	w, _ = s.do(http.MethodPost, "/api/memorials/"+id+"/photos", owner.AccessToken, map[string]any{
		"url": "https://cdn.example.com/p.jpg", "caption": "Graduation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/memorials/"+id+"/photos", visitor.AccessToken, map[string]any{
		"url": "https://cdn.example.com/q.jpg",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/memorials/"+id+"/media", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	media := decode[map[string][]map[string]any](t, env.Data)
	require.Len(t, media["photos"], 1)
	assert.Equal(t, "https://cdn.example.com/p.jpg", media["photos"][0]["photo_url"])
	assert.Empty(t, media["videos"])
}

func TestFundraiserDonation(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@example.com", entity.RoleFamily, nil)
	end := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	body := map[string]any{
		"title": "Funeral costs", "description": "Help us", "target_amount": 100000, "end_date": end,
	}

	w, _ := s.do(http.MethodPost, "/api/fundraisers", owner.AccessToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.setPlan(owner.User.ID, entity.PlanStandard)
	w, env := s.do(http.MethodPost, "/api/fundraisers", owner.AccessToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, env.Data)["id"].(string)

	w, _ = s.do(http.MethodPut, "/api/fundraisers/"+id, owner.AccessToken, map[string]any{"memorial_id": "memorial-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = s.do(http.MethodPut, "/api/fundraisers/"+id, owner.AccessToken, map[string]any{"memorial_id": "", "currency": "usd"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "USD", decode[map[string]any](t, env.Data)["currency"])
	w, _ = s.do(http.MethodGet, "/api/fundraisers/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/api/fundraisers/"+id+"/donate", "", map[string]any{
		"amount": 500, "donor_name": "Wanjiru", "donor_phone": "0712345678", "payment_method": "paypal",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/fundraisers/"+id+"/donate", "", map[string]any{
		"amount": 500, "donor_name": "Wanjiru", "donor_phone": "0712345678", "payment_method": "bank",
		"is_anonymous": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[map[string]map[string]any](t, env.Data)
	assert.Equal(t, "Anonymous", res["donation"]["donor_name"])
	assert.Equal(t, "pending", res["payment"]["status"])

	w, env = s.do(http.MethodGet, "/api/fundraisers/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f := decode[map[string]any](t, env.Data)
	assert.InDelta(t, 500, f["current_amount"], 0.001)
	assert.InDelta(t, 0.5, f["progress_percentage"], 0.001)
}

func TestVendorMarketplaceAndBooking(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin("admin@example.com")
	vendor := s.register("florist@example.com", entity.RoleVendor, map[string]any{
		"business_name": "Petals", "business_registration": "BN-123",
	})
	customer := s.register("family@example.com", entity.RoleFamily, nil)

	w, env := s.do(http.MethodPost, "/api/vendors/register", vendor.AccessToken, map[string]any{
		"business_name": "Petals", "category": "florist", "county": "Nairobi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vendorID := decode[map[string]any](t, env.Data)["id"].(string)

	w, _ = s.do(http.MethodPost, "/api/vendors/register", customer.AccessToken, map[string]any{
		"business_name": "Nope", "category": "florist",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(http.MethodGet, "/api/vendors/marketplace", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, env.Data))

	w, _ = s.do(http.MethodPut, "/api/admin/vendors/"+vendorID+"/status", customer.AccessToken, map[string]any{"status": "verified"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodPut, "/api/admin/vendors/"+vendorID+"/status", admin.AccessToken, map[string]any{"status": "verified"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPost, "/api/vendors/services", vendor.AccessToken, map[string]any{"name": "Wreath", "price": 2500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	serviceID := decode[map[string]any](t, env.Data)["id"].(string)

	w, env = s.do(http.MethodGet, "/api/vendors/marketplace?category=florist", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	when := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	w, _ = s.do(http.MethodPost, "/api/vendors/"+vendorID+"/bookings", customer.AccessToken, map[string]any{
		"service_id": "wreath", "booking_date": when,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/vendors/"+vendorID+"/bookings", customer.AccessToken, map[string]any{
		"service_id": serviceID, "booking_date": when,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[map[string]any](t, env.Data)
	assert.Equal(t, "pending", booking["status"])
	assert.InDelta(t, 250, booking["commission"], 0.001)

	w, _ = s.do(http.MethodPut, fmt.Sprintf("/api/vendors/bookings/%s/status", booking["id"]), vendor.AccessToken, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/bookings", customer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]map[string]any](t, env.Data)
	require.Len(t, mine, 1)
	assert.Equal(t, "confirmed", mine[0]["status"])
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin("admin@example.com")
	family := s.register("family@example.com", entity.RoleFamily, nil)

	w, _ := s.do(http.MethodGet, "/api/admin/dashboard", family.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, "/api/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/admin/dashboard", admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPut, "/api/admin/users/"+family.User.ID+"/status", admin.AccessToken, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, "/api/login", "", map[string]any{"email": "family@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/admin/email", admin.AccessToken, map[string]any{
		"to": "family@example.com", "subject": "Hello", "text": "Hi",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["enqueued"])
}

func TestPaymentsWithoutGateways(t *testing.T) {
	s := newTestServer(t)
	u := s.register("payer@example.com", entity.RoleFamily, nil)

	w, _ := s.do(http.MethodPost, "/api/payments/card", u.AccessToken, map[string]any{"amount": 1000})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w, _ = s.do(http.MethodPost, "/api/payments/mpesa", u.AccessToken, map[string]any{"phone_number": "0712345678", "amount": 10})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/mpesa/callback", bytes.NewBufferString(`{"Body":`))
	cb := httptest.NewRecorder()
	s.engine.ServeHTTP(cb, req)
	require.Equal(t, http.StatusOK, cb.Code)
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, cb.Body.String())

	w, env := s.do(http.MethodGet, "/api/payments", u.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[map[string]any](t, env.Data)
	assert.Equal(t, "healthy", h["status"])
	assert.Equal(t, map[string]any{"database": "disabled", "redis": "up"}, h["checks"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
