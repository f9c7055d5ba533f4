package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

// fakeES answers just enough of the Elasticsearch REST API for the index.
type fakeES struct {
	mu       sync.Mutex
	calls    []string
	bodies   map[string]json.RawMessage
	hits     []string
	failSrch bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = body
	hits, fail := f.hits, f.failSrch
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"shard failure"}`))
			return
		}
		docs := make([]string, 0, len(hits))
		for _, id := range hits {
			docs = append(docs, fmt.Sprintf(`{"_id":%q}`, id))
		}
		_, _ = fmt.Fprintf(w, `{"hits":{"total":{"value":%d},"hits":[%s]}}`, len(hits), strings.Join(docs, ","))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

func (f *fakeES) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newSearchIndex(t *testing.T) (*SearchIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{bodies: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return NewSearchIndex(es, "memorials", "vendors", helpers.NewNopLogger()), fake
}

func TestSearchIndexSyncsByVisibility(t *testing.T) {
	idx, fake := newSearchIndex(t)
	ctx := context.Background()

	idx.SyncMemorial(ctx, &entity.Memorial{ID: "m1", DeceasedName: "Mzee Kamau", Visibility: entity.VisibilityPublic})
	idx.SyncMemorial(ctx, &entity.Memorial{ID: "m2", Visibility: entity.VisibilityPrivate})
	idx.SyncVendor(ctx, &entity.VendorProfile{ID: "v1", BusinessName: "Petals", Status: entity.VendorVerified})
	idx.SyncVendor(ctx, &entity.VendorProfile{ID: "v2", Status: entity.VendorSuspended})

	assert.Equal(t, []string{
		"PUT /memorials/_doc/m1",
		"DELETE /memorials/_doc/m2",
		"PUT /vendors/_doc/v1",
		"DELETE /vendors/_doc/v2",
	}, fake.seen())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(fake.bodies["PUT /memorials/_doc/m1"], &doc))
	assert.Equal(t, "Mzee Kamau", doc["deceased_name"])
}

func TestSearchVendorsAppliesFilters(t *testing.T) {
	idx, fake := newSearchIndex(t)
	fake.hits = []string{"v9"}

	ids, total, ok := idx.SearchVendors(context.Background(), repo.VendorFilter{
		Query:    "wreath",
		Category: entity.CategoryFlorist,
		County:   "Nairobi",
		Page:     repo.NewPage(2, 5, 10),
	})
	require.True(t, ok)
	assert.Equal(t, []string{"v9"}, ids)
	assert.Equal(t, 1, total)

	var q map[string]any
	require.NoError(t, json.Unmarshal(fake.bodies["POST /vendors/_search"], &q))
	assert.EqualValues(t, 5, q["from"])
	assert.EqualValues(t, 5, q["size"])
	assert.Contains(t, string(fake.bodies["POST /vendors/_search"]), `"category.keyword":"florist"`)
}

func TestListPublicUsesSearchAndFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idx, fake := newSearchIndex(t)
	svc := NewMemorialService(f.repos.Memorials, f.repos.Users, idx, nil, helpers.NewNopLogger(), nil, 0)

	owner := f.user(t, "o@example.com", entity.RoleFamily, entity.PlanPremium)
	a, err := svc.Create(ctx, owner.ID, memorialInput("Mzee Kamau"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, owner.ID, memorialInput("Mama Njeri"))
	require.NoError(t, err)
	hidden := memorialInput("Private One")
	hidden.Visibility = ptr(entity.VisibilityPrivate)
	c, err := svc.Create(ctx, owner.ID, hidden)
	require.NoError(t, err)

	// index order wins; a stale hit on a private memorial is filtered out
	fake.hits = []string{b.ID, c.ID, a.ID}
	got, _, err := svc.ListPublic(ctx, "kamau njeri", repo.NewPage(1, 10, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	fake.mu.Lock()
	fake.failSrch = true
	fake.mu.Unlock()
	got, total, err := svc.ListPublic(ctx, "Kamau", repo.NewPage(1, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}
