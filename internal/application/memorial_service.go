package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

var mediaExtensions = map[entity.MediaKind][]string{
	entity.MediaPhoto: {"png", "jpg", "jpeg", "gif"},
	entity.MediaVideo: {"mp4", "mov", "webm"},
}

type MemorialService struct {
	Memorials repo.MemorialRepository
	Users     repo.UserRepository
	Search    *SearchIndex
	Store     ObjectStore
	Logger    *logrus.Logger
	Now       func() time.Time

	// AllowedExtensions and MaxUploadBytes bound multipart media uploads.
	AllowedExtensions []string
	MaxUploadBytes    int64
}

func NewMemorialService(memorials repo.MemorialRepository, users repo.UserRepository, search *SearchIndex, store ObjectStore, logger *logrus.Logger, allowedExt []string, maxUpload int64) *MemorialService {
	return &MemorialService{
		Memorials:         memorials,
		Users:             users,
		Search:            search,
		Store:             store,
		Logger:            logger,
		Now:               time.Now,
		AllowedExtensions: allowedExt,
		MaxUploadBytes:    maxUpload,
	}
}

type MemorialInput struct {
	DeceasedName   *string
	DateOfBirth    *string
	DateOfPassing  *string
	Biography      *string
	PhotoURL       *string
	Visibility     *entity.Visibility
	Location       *string
	Obituary       *string
	FuneralDetails json.RawMessage
}

type TributeInput struct {
	Message      string
	AuthorName   string
	Relationship string
	IsAnonymous  bool
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(entity.DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, invalid("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

func isBlank(p *string) bool { return p == nil || strings.TrimSpace(*p) == "" }

// apply copies the set fields of in onto m and validates the result.
func (in MemorialInput) apply(m *entity.Memorial) error {
	if in.DeceasedName != nil {
		if strings.TrimSpace(*in.DeceasedName) == "" {
			return invalid("deceased_name cannot be empty")
		}
		m.DeceasedName = strings.TrimSpace(*in.DeceasedName)
	}
	if in.DateOfBirth != nil {
		t, err := parseDate("date_of_birth", *in.DateOfBirth)
		if err != nil {
			return err
		}
		m.DateOfBirth = t
	}
	if in.DateOfPassing != nil {
		t, err := parseDate("date_of_passing", *in.DateOfPassing)
		if err != nil {
			return err
		}
		m.DateOfPassing = t
	}
	if m.DateOfPassing.Before(m.DateOfBirth) {
		return invalid("date_of_passing cannot be before date_of_birth")
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return invalid("visibility must be one of public, private, family_only")
		}
		m.Visibility = *in.Visibility
	}
	if in.Biography != nil {
		m.Biography = *in.Biography
	}
	if in.PhotoURL != nil {
		m.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	if in.Location != nil {
		m.Location = strings.TrimSpace(*in.Location)
	}
	if in.Obituary != nil {
		m.Obituary = *in.Obituary
	}
	if in.FuneralDetails != nil {
		m.FuneralDetails = optionalJSON(in.FuneralDetails)
	}
	return nil
}

func (s *MemorialService) Create(ctx context.Context, userID string, in MemorialInput) (*entity.Memorial, error) {
	if isBlank(in.DeceasedName) || isBlank(in.DateOfBirth) || isBlank(in.DateOfPassing) {
		return nil, invalid("deceased_name, date_of_birth and date_of_passing are required")
	}
	m := &entity.Memorial{UserID: userID, Visibility: entity.VisibilityPublic}
	if err := in.apply(m); err != nil {
		return nil, err
	}

	plan, err := currentPlan(ctx, s.Users, userID, nowOr(s.Now))
	if err != nil {
		return nil, err
	}
	count, err := s.Memorials.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := checkQuota(plan, plan.MaxMemorials(), count, "memorial"); err != nil {
		return nil, err
	}

	if err := s.Memorials.Create(ctx, m); err != nil {
		return nil, err
	}
	s.Search.SyncMemorial(ctx, m)
	return m, nil
}

// ListPublic pages through public memorials, newest first. A non-empty query
// goes through the search index when it is reachable.
func (s *MemorialService) ListPublic(ctx context.Context, q string, page repo.Page) ([]entity.Memorial, int, error) {
	q = strings.TrimSpace(q)
	if q != "" {
		if ids, total, ok := s.Search.SearchMemorials(ctx, q, page); ok {
			items, err := s.Memorials.ListByIDs(ctx, ids)
			if err != nil {
				return nil, 0, err
			}
			public := items[:0]
			for _, m := range items {
				if m.Visibility == entity.VisibilityPublic {
					public = append(public, m)
				}
			}
			return public, total, nil
		}
	}
	return s.Memorials.ListPublic(ctx, repo.MemorialFilter{Query: q, Page: page})
}

func (s *MemorialService) ListMine(ctx context.Context, userID string) ([]entity.Memorial, error) {
	return s.Memorials.ListByUser(ctx, userID)
}

// Get returns a memorial the viewer may see. viewerID is empty for
// anonymous requests.
func (s *MemorialService) Get(ctx context.Context, viewerID, id string) (*entity.Memorial, error) {
	m, err := s.Memorials.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMemorialNotFound
	}
	if err != nil {
		return nil, err
	}
	switch m.Visibility {
	case entity.VisibilityPrivate:
		if viewerID != m.UserID {
			return nil, ErrMemorialPrivate
		}
	case entity.VisibilityFamilyOnly:
		if viewerID == "" {
			return nil, ErrLoginRequired
		}
	}
	return m, nil
}

func (s *MemorialService) owned(ctx context.Context, userID, id string) (*entity.Memorial, error) {
	m, err := s.Memorials.GetForUser(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMemorialNotFound
	}
	return m, err
}

func (s *MemorialService) Update(ctx context.Context, userID, id string, in MemorialInput) (*entity.Memorial, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.Memorials.Update(ctx, m); err != nil {
		return nil, err
	}
	s.Search.SyncMemorial(ctx, m)
	return m, nil
}

// Delete removes the memorial with its tributes and media. Stored media
// files are removed best-effort.
func (s *MemorialService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	media, err := s.Memorials.ListMedia(ctx, id, "")
	if err != nil {
		return err
	}
	if err := s.Memorials.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMemorialNotFound
		}
		return err
	}
	s.Search.RemoveMemorial(ctx, id)
	for _, md := range media {
		s.deleteObject(ctx, md.URL)
	}
	return nil
}

func (s *MemorialService) AddTribute(ctx context.Context, viewerID, memorialID string, in TributeInput) (*entity.Tribute, error) {
	if strings.TrimSpace(in.Message) == "" || strings.TrimSpace(in.AuthorName) == "" {
		return nil, invalid("message and author_name are required")
	}
	if _, err := s.Get(ctx, viewerID, memorialID); err != nil {
		return nil, err
	}
	t := &entity.Tribute{
		MemorialID:   memorialID,
		UserID:       viewerID,
		Message:      strings.TrimSpace(in.Message),
		AuthorName:   strings.TrimSpace(in.AuthorName),
		Relationship: strings.TrimSpace(in.Relationship),
		IsAnonymous:  in.IsAnonymous,
	}
	if err := s.Memorials.CreateTribute(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *MemorialService) ListTributes(ctx context.Context, viewerID, memorialID string) ([]entity.Tribute, error) {
	if _, err := s.Get(ctx, viewerID, memorialID); err != nil {
		return nil, err
	}
	return s.Memorials.ListTributes(ctx, memorialID)
}

// AddMediaLink attaches an externally hosted photo or video.
func (s *MemorialService) AddMediaLink(ctx context.Context, userID, memorialID string, kind entity.MediaKind, url, caption string) (*entity.MemorialMedia, error) {
	if strings.TrimSpace(url) == "" {
		return nil, invalid("url or file is required")
	}
	if _, err := s.owned(ctx, userID, memorialID); err != nil {
		return nil, err
	}
	md := &entity.MemorialMedia{
		MemorialID: memorialID,
		Kind:       kind,
		URL:        strings.TrimSpace(url),
		Caption:    strings.TrimSpace(caption),
		UploadedBy: userID,
	}
	if err := s.Memorials.AddMedia(ctx, md); err != nil {
		return nil, err
	}
	return md, nil
}

// UploadMedia stores an uploaded file and attaches it to the memorial.
func (s *MemorialService) UploadMedia(ctx context.Context, userID, memorialID string, kind entity.MediaKind, filename string, size int64, r io.Reader, caption string) (*entity.MemorialMedia, error) {
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !s.extensionAllowed(kind, ext) {
		return nil, newErr(ErrInvalidInput, "file type .%s is not allowed for %ss", ext, kind)
	}
	if s.MaxUploadBytes > 0 && size > s.MaxUploadBytes {
		return nil, invalid("file exceeds the %d byte upload limit", s.MaxUploadBytes)
	}
	if _, err := s.owned(ctx, userID, memorialID); err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("memorials/%s/%ss/%s.%s", memorialID, kind, uuid.NewString(), ext)
	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.Store.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		helpers.LogError(s.Logger, "upload memorial media failed", err, logrus.Fields{"memorial_id": memorialID})
		return nil, err
	}
	md, err := s.AddMediaLink(ctx, userID, memorialID, kind, url, caption)
	if err != nil {
		s.deleteObject(ctx, url)
		return nil, err
	}
	return md, nil
}

func (s *MemorialService) extensionAllowed(kind entity.MediaKind, ext string) bool {
	if !slices.Contains(mediaExtensions[kind], ext) {
		return false
	}
	return len(s.AllowedExtensions) == 0 || slices.Contains(s.AllowedExtensions, ext)
}

// ListMedia returns the memorial's photos and videos.
func (s *MemorialService) ListMedia(ctx context.Context, viewerID, memorialID string) (photos, videos []entity.MemorialMedia, err error) {
	if _, err := s.Get(ctx, viewerID, memorialID); err != nil {
		return nil, nil, err
	}
	all, err := s.Memorials.ListMedia(ctx, memorialID, "")
	if err != nil {
		return nil, nil, err
	}
	photos, videos = []entity.MemorialMedia{}, []entity.MemorialMedia{}
	for _, md := range all {
		if md.Kind == entity.MediaVideo {
			videos = append(videos, md)
		} else {
			photos = append(photos, md)
		}
	}
	return photos, videos, nil
}

func (s *MemorialService) DeleteMedia(ctx context.Context, userID, memorialID string, kind entity.MediaKind, mediaID string) error {
	if _, err := s.owned(ctx, userID, memorialID); err != nil {
		return err
	}
	md, err := s.Memorials.GetMedia(ctx, memorialID, kind, mediaID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrMediaNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Memorials.DeleteMedia(ctx, memorialID, kind, mediaID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMediaNotFound
		}
		return err
	}
	s.deleteObject(ctx, md.URL)
	return nil
}

func (s *MemorialService) deleteObject(ctx context.Context, url string) {
	if s.Store == nil || url == "" {
		return
	}
	if err := s.Store.Delete(ctx, url); err != nil {
		helpers.LogWarn(s.Logger, "delete stored media failed", err, logrus.Fields{"url": url})
	}
}
