package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

type WillHandler struct {
	Svc    *app.WillService
	Logger *logrus.Logger
}

func NewWillHandler(svc *app.WillService, logger *logrus.Logger) *WillHandler {
	return &WillHandler{Svc: svc, Logger: logger}
}

type createWillRequest struct {
	Title         string          `json:"title" binding:"required,max=200"`
	Content       string          `json:"content" binding:"required"`
	Beneficiaries json.RawMessage `json:"beneficiaries" binding:"required"`
	Witnesses     json.RawMessage `json:"witnesses"`
	Assets        json.RawMessage `json:"assets"`
	Status        string          `json:"status"`
}

type updateWillRequest struct {
	Title         *string         `json:"title" binding:"omitempty,max=200"`
	Content       *string         `json:"content"`
	Beneficiaries json.RawMessage `json:"beneficiaries"`
	Witnesses     json.RawMessage `json:"witnesses"`
	Assets        json.RawMessage `json:"assets"`
	Status        *string         `json:"status"`
}

func willStatus(s *string) *entity.WillStatus {
	if s == nil || *s == "" {
		return nil
	}
	st := entity.WillStatus(*s)
	return &st
}

// Create POST /api/wills
func (h *WillHandler) Create(c *gin.Context) {
	var req createWillRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Svc.Create(c.Request.Context(), uid(c), app.WillInput{
		Title:         &req.Title,
		Content:       &req.Content,
		Status:        willStatus(&req.Status),
		Witnesses:     req.Witnesses,
		Beneficiaries: req.Beneficiaries,
		Assets:        req.Assets,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentWill(w), "will created", nil)
}

// List GET /api/wills
func (h *WillHandler) List(c *gin.Context) {
	ws, err := h.Svc.List(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ws, presentWill), "wills", nil)
}

// Get GET /api/wills/:id
func (h *WillHandler) Get(c *gin.Context) {
	w, err := h.Svc.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentWill(w), "will", nil)
}

// Update PUT /api/wills/:id
func (h *WillHandler) Update(c *gin.Context) {
	var req updateWillRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Svc.Update(c.Request.Context(), uid(c), c.Param("id"), app.WillInput{
		Title:         req.Title,
		Content:       req.Content,
		Status:        willStatus(req.Status),
		Witnesses:     req.Witnesses,
		Beneficiaries: req.Beneficiaries,
		Assets:        req.Assets,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentWill(w), "will updated", nil)
}

// Sign POST /api/wills/:id/sign
func (h *WillHandler) Sign(c *gin.Context) {
	w, err := h.Svc.Sign(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentWill(w), "will signed", nil)
}

// ExportPDF GET /api/wills/:id/export-pdf streams the rendered document.
func (h *WillHandler) ExportPDF(c *gin.Context) {
	w, pdf, err := h.Svc.ExportPDF(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=will_%s.pdf", w.ID))
	if w.PDFURL != "" {
		c.Header("X-PDF-URL", w.PDFURL)
	}
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Delete DELETE /api/wills/:id
func (h *WillHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "will deleted", nil)
}
