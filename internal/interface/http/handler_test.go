package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{app.ErrWillNotFound, http.StatusNotFound},
		{app.ErrMemorialPrivate, http.StatusForbidden},
		{app.ErrInvalidCredentials, http.StatusUnauthorized},
		{app.ErrEmailTaken, http.StatusConflict},
		{app.ErrCardDisabled, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", app.ErrPaymentDeclined), http.StatusPaymentRequired},
		{fmt.Errorf("stk: %w", app.ErrGateway), http.StatusBadGateway},
		{repo.ErrNotFound, http.StatusNotFound},
		{repo.ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}

func failWith(err error) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fail(c, helpers.NewNopLogger(), err)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestFailHidesInternalErrors(t *testing.T) {
	w, body := failWith(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body["message"])

	w, body = failWith(repo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "resource not found", body["message"])

	w, body = failWith(app.ErrFundraisingPlan)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, app.ErrFundraisingPlan.Message, body["message"])
	assert.Equal(t, false, body["success"])
}

func queryContext(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestPageFromAndMeta(t *testing.T) {
	p := pageFrom(queryContext("/?page=3&per_page=500"), 20)
	assert.Equal(t, repo.Page{Number: 3, PerPage: repo.MaxPerPage}, p)

	p = pageFrom(queryContext("/?page=100000000000000001&per_page=100"), 20)
	assert.Equal(t, repo.MaxPageNumber, p.Number)
	assert.Positive(t, p.Offset())

	meta := pageMeta(repo.Page{Number: 2, PerPage: 10}, 25)
	assert.Equal(t, 3, meta.Pages)
	assert.Equal(t, 2, meta.CurrentPage)

	assert.True(t, boolQuery(queryContext("/?verified=nope"), "verified", true))
	assert.False(t, boolQuery(queryContext("/?verified=false"), "verified", true))
}

func TestPresenters(t *testing.T) {
	m := presentMemorial(&entity.Memorial{
		ID:            "m1",
		DeceasedName:  "Mzee Kamau",
		DateOfBirth:   time.Date(1940, 5, 1, 0, 0, 0, 0, time.UTC),
		DateOfPassing: time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC),
		Visibility:    entity.VisibilityPublic,
	})
	assert.Equal(t, "1940-05-01", m["date_of_birth"])
	assert.Equal(t, "2025-12-24", m["date_of_passing"])
	assert.Nil(t, m["photo_url"])

	d := presentDonation(&entity.Donation{DonorName: "Wanjiru", DonorEmail: "w@example.com", IsAnonymous: true})
	assert.Equal(t, "Anonymous", d["donor_name"])
	assert.Nil(t, d["donor_email"])
	d = presentDonation(&entity.Donation{DonorName: "Wanjiru", DonorEmail: "w@example.com"})
	assert.Equal(t, "Wanjiru", d["donor_name"])

	f := presentFundraiser(&entity.Fundraiser{TargetAmount: 1000, CurrentAmount: 250})
	assert.InDelta(t, 25.0, f["progress_percentage"], 1e-9)

	media := presentMedia(&entity.MemorialMedia{Kind: entity.MediaVideo, URL: "https://cdn.example.com/v.mp4"})
	assert.Equal(t, "https://cdn.example.com/v.mp4", media["video_url"])
	assert.NotContains(t, media, "photo_url")

	u := presentUser(&entity.User{ID: "u1", PasswordHash: "secret"})
	for _, v := range u {
		assert.NotEqual(t, "secret", v)
	}
	admin := presentUserAdmin(&entity.User{ID: "u1", IsActive: true})
	assert.Equal(t, true, admin["is_active"])

	list := presentAll([]entity.VendorService{{ID: "s1"}, {ID: "s2"}}, presentService)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[1]["id"])
}

func TestHealthHandler(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	serve := func(h *HealthHandler) (*httptest.ResponseRecorder, map[string]any) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/health", nil)
		h.Health(c)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w, body
	}

	w, body := serve(NewHealthHandler(up, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, map[string]any{"database": "up", "redis": "disabled"}, data["checks"])

	w, body = serve(NewHealthHandler(up, down))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]any{"database": "up", "redis": "down"}, body["error"])
}
