package application

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

const searchTimeout = 3 * time.Second

// SearchIndex mirrors public memorials and verified vendors into
// Elasticsearch. Every method is a no-op on a nil receiver or client, and
// write failures are only logged.
type SearchIndex struct {
	es             *elasticsearch.Client
	memorialsIndex string
	vendorsIndex   string
	logger         *logrus.Logger
}

func NewSearchIndex(es *elasticsearch.Client, memorialsIndex, vendorsIndex string, logger *logrus.Logger) *SearchIndex {
	return &SearchIndex{es: es, memorialsIndex: memorialsIndex, vendorsIndex: vendorsIndex, logger: logger}
}

func (s *SearchIndex) enabled() bool { return s != nil && s.es != nil }

// SyncMemorial indexes m when it is public and removes it otherwise.
func (s *SearchIndex) SyncMemorial(ctx context.Context, m *entity.Memorial) {
	if !s.enabled() {
		return
	}
	if m.Visibility != entity.VisibilityPublic {
		s.RemoveMemorial(ctx, m.ID)
		return
	}
	c, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	doc := map[string]any{
		"deceased_name":   m.DeceasedName,
		"biography":       m.Biography,
		"location":        m.Location,
		"date_of_passing": m.DateOfPassing.Format(entity.DateLayout),
		"created_at":      m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := helpers.ESIndexDocument(c, s.es, s.memorialsIndex, m.ID, doc); err != nil {
		helpers.LogWarn(s.logger, "index memorial failed", err, logrus.Fields{"memorial_id": m.ID})
	}
}

func (s *SearchIndex) RemoveMemorial(ctx context.Context, id string) {
	if !s.enabled() {
		return
	}
	c, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	if err := helpers.ESDeleteDocument(c, s.es, s.memorialsIndex, id); err != nil {
		helpers.LogWarn(s.logger, "remove memorial from index failed", err, logrus.Fields{"memorial_id": id})
	}
}

// SearchMemorials returns matching memorial ids for one page. ok is false
// when search is unavailable and the caller should fall back to SQL.
func (s *SearchIndex) SearchMemorials(ctx context.Context, q string, page repo.Page) (ids []string, total int, ok bool) {
	if !s.enabled() {
		return nil, 0, false
	}
	query := map[string]any{
		"from": page.Offset(),
		"size": page.Limit(),
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"deceased_name^3", "biography", "location"},
				"fuzziness": "AUTO",
			},
		},
	}
	return s.search(ctx, s.memorialsIndex, query)
}

// SyncVendor indexes v when it is verified and removes it otherwise.
func (s *SearchIndex) SyncVendor(ctx context.Context, v *entity.VendorProfile) {
	if !s.enabled() {
		return
	}
	if v.Status != entity.VendorVerified {
		s.RemoveVendor(ctx, v.ID)
		return
	}
	c, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	doc := map[string]any{
		"business_name": v.BusinessName,
		"description":   v.Description,
		"category":      string(v.Category),
		"county":        v.County,
		"town":          v.Town,
		"rating":        v.Rating,
		"is_featured":   v.IsFeatured,
	}
	if err := helpers.ESIndexDocument(c, s.es, s.vendorsIndex, v.ID, doc); err != nil {
		helpers.LogWarn(s.logger, "index vendor failed", err, logrus.Fields{"vendor_id": v.ID})
	}
}

func (s *SearchIndex) RemoveVendor(ctx context.Context, id string) {
	if !s.enabled() {
		return
	}
	c, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	if err := helpers.ESDeleteDocument(c, s.es, s.vendorsIndex, id); err != nil {
		helpers.LogWarn(s.logger, "remove vendor from index failed", err, logrus.Fields{"vendor_id": id})
	}
}

// SearchVendors runs a marketplace text query with the category and county
// filters applied as exact terms.
func (s *SearchIndex) SearchVendors(ctx context.Context, f repo.VendorFilter) (ids []string, total int, ok bool) {
	if !s.enabled() {
		return nil, 0, false
	}
	var filters []any
	if f.Category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category.keyword": string(f.Category)}})
	}
	if f.County != "" {
		filters = append(filters, map[string]any{"match": map[string]any{"county": f.County}})
	}
	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     f.Query,
				"fields":    []string{"business_name^3", "description", "town", "county"},
				"fuzziness": "AUTO",
			},
		},
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	query := map[string]any{
		"from":  f.Page.Offset(),
		"size":  f.Page.Limit(),
		"query": map[string]any{"bool": boolQuery},
	}
	return s.search(ctx, s.vendorsIndex, query)
}

func (s *SearchIndex) search(ctx context.Context, index string, query map[string]any) ([]string, int, bool) {
	c, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	ids, total, err := helpers.ESSearchIDs(c, s.es, index, query)
	if err != nil {
		helpers.LogWarn(s.logger, "search failed, falling back to database", err, logrus.Fields{"index": index})
		return nil, 0, false
	}
	return ids, total, true
}
