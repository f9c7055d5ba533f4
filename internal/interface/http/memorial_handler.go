package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

type MemorialHandler struct {
	Svc    *app.MemorialService
	Logger *logrus.Logger
}

func NewMemorialHandler(svc *app.MemorialService, logger *logrus.Logger) *MemorialHandler {
	return &MemorialHandler{Svc: svc, Logger: logger}
}

type memorialRequest struct {
	DeceasedName   *string         `json:"deceased_name" binding:"omitempty,max=200"`
	DateOfBirth    *string         `json:"date_of_birth"`
	DateOfPassing  *string         `json:"date_of_passing"`
	Biography      *string         `json:"biography"`
	PhotoURL       *string         `json:"photo_url" binding:"omitempty,url"`
	Visibility     *string         `json:"visibility"`
	Location       *string         `json:"location" binding:"omitempty,max=200"`
	Obituary       *string         `json:"obituary"`
	FuneralDetails json.RawMessage `json:"funeral_details"`
}

func (r memorialRequest) input() app.MemorialInput {
	in := app.MemorialInput{
		DeceasedName:   r.DeceasedName,
		DateOfBirth:    r.DateOfBirth,
		DateOfPassing:  r.DateOfPassing,
		Biography:      r.Biography,
		PhotoURL:       r.PhotoURL,
		Location:       r.Location,
		Obituary:       r.Obituary,
		FuneralDetails: r.FuneralDetails,
	}
	if r.Visibility != nil {
		v := entity.Visibility(*r.Visibility)
		in.Visibility = &v
	}
	return in
}

type tributeRequest struct {
	Message      string `json:"message" binding:"required,max=2000"`
	AuthorName   string `json:"author_name" binding:"required,max=100"`
	Relationship string `json:"relationship" binding:"omitempty,max=100"`
	IsAnonymous  bool   `json:"is_anonymous"`
}

type mediaLinkRequest struct {
	URL     string `json:"url" binding:"required,url"`
	Caption string `json:"caption" binding:"omitempty,max=500"`
}

// Create POST /api/memorials
func (h *MemorialHandler) Create(c *gin.Context) {
	var req memorialRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), uid(c), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentMemorial(m), "memorial created", nil)
}

// ListPublic GET /api/memorials?q=&page=&per_page=
func (h *MemorialHandler) ListPublic(c *gin.Context) {
	page := pageFrom(c, 10)
	ms, total, err := h.Svc.ListPublic(c.Request.Context(), strings.TrimSpace(c.Query("q")), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ms, presentMemorial), "memorials", pageMeta(page, total))
}

// ListMine GET /api/memorials/user
func (h *MemorialHandler) ListMine(c *gin.Context) {
	ms, err := h.Svc.ListMine(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ms, presentMemorial), "memorials", nil)
}

// Get GET /api/memorials/:id
func (h *MemorialHandler) Get(c *gin.Context) {
	m, err := h.Svc.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentMemorial(m), "memorial", nil)
}

// Update PUT /api/memorials/:id
func (h *MemorialHandler) Update(c *gin.Context) {
	var req memorialRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), uid(c), c.Param("id"), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentMemorial(m), "memorial updated", nil)
}

// Delete DELETE /api/memorials/:id
func (h *MemorialHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "memorial deleted", nil)
}

// AddTribute POST /api/memorials/:id/tributes
func (h *MemorialHandler) AddTribute(c *gin.Context) {
	var req tributeRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Svc.AddTribute(c.Request.Context(), uid(c), c.Param("id"), app.TributeInput{
		Message:      req.Message,
		AuthorName:   req.AuthorName,
		Relationship: req.Relationship,
		IsAnonymous:  req.IsAnonymous,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentTribute(t), "tribute added", nil)
}

// ListTributes GET /api/memorials/:id/tributes
func (h *MemorialHandler) ListTributes(c *gin.Context) {
	ts, err := h.Svc.ListTributes(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ts, presentTribute), "tributes", nil)
}

// AddMedia handles POST /api/memorials/:id/photos and /videos. A multipart
// request uploads the "file" part; a JSON body links an existing URL.
func (h *MemorialHandler) AddMedia(kind entity.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			md  *entity.MemorialMedia
			err error
		)
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			fh, ferr := c.FormFile("file")
			if ferr != nil {
				response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"file": "file is required"})
				return
			}
			f, oerr := fh.Open()
			if oerr != nil {
				fail(c, h.Logger, oerr)
				return
			}
			defer f.Close()
			md, err = h.Svc.UploadMedia(ctx, uid(c), c.Param("id"), kind, fh.Filename, fh.Size, f, c.PostForm("caption"))
		} else {
			var req mediaLinkRequest
			if !bindJSON(c, &req) {
				return
			}
			md, err = h.Svc.AddMediaLink(ctx, uid(c), c.Param("id"), kind, req.URL, req.Caption)
		}
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusCreated, presentMedia(md), string(kind)+" added", nil)
	}
}

// ListMedia GET /api/memorials/:id/media
func (h *MemorialHandler) ListMedia(c *gin.Context) {
	photos, videos, err := h.Svc.ListMedia(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"photos": presentAll(photos, presentMedia),
		"videos": presentAll(videos, presentMedia),
	}, "media", nil)
}

// DeleteMedia handles DELETE /api/memorials/:id/photos/:mediaId and /videos/:mediaId.
func (h *MemorialHandler) DeleteMedia(kind entity.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.Svc.DeleteMedia(c.Request.Context(), uid(c), c.Param("id"), kind, c.Param("mediaId")); err != nil {
			fail(c, h.Logger, err)
			return
		}
		response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, string(kind)+" deleted", nil)
	}
}
