package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/mailer"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

type AdminHandler struct {
	Svc      *app.AdminService
	Notifier *app.Notifier
	Logger   *logrus.Logger
}

func NewAdminHandler(svc *app.AdminService, notifier *app.Notifier, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Notifier: notifier, Logger: logger}
}

type userStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type subscriptionRequest struct {
	Plan   string     `json:"subscription_plan" binding:"required"`
	Expiry *time.Time `json:"subscription_expiry"`
}

type vendorStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type verifyFundraiserRequest struct {
	IsVerified *bool `json:"is_verified"`
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
	Subject  string         `json:"subject"`
	Text     string         `json:"text"`
	HTML     string         `json:"html"`
}

// Dashboard GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	st, err := h.Svc.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentStats(st), "dashboard", nil)
}

// ListUsers GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := pageFrom(c, 20)
	us, total, err := h.Svc.ListUsers(c.Request.Context(), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(us, presentUserAdmin), "users", pageMeta(page, total))
}

// SetUserStatus PUT /api/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.SetUserActive(c.Request.Context(), uid(c), c.Param("id"), *req.IsActive)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentUserAdmin(u), "user status updated", nil)
}

// SetSubscription PUT /api/admin/users/:id/subscription
func (h *AdminHandler) SetSubscription(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.SetSubscription(c.Request.Context(), c.Param("id"), entity.Plan(req.Plan), req.Expiry)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentUserAdmin(u), "subscription updated", nil)
}

// SetVendorStatus PUT /api/admin/vendors/:id/status
func (h *AdminHandler) SetVendorStatus(c *gin.Context) {
	var req vendorStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.SetVendorStatus(c.Request.Context(), c.Param("id"), entity.VendorStatus(req.Status))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentVendor(v), "vendor status updated", nil)
}

// VerifyFundraiser PUT /api/admin/fundraisers/:id/verify. An empty body verifies.
func (h *AdminHandler) VerifyFundraiser(c *gin.Context) {
	var req verifyFundraiserRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	verified := req.IsVerified == nil || *req.IsVerified
	f, err := h.Svc.VerifyFundraiser(c.Request.Context(), c.Param("id"), verified)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentFundraiser(f), "fundraiser verification updated", nil)
}

// SendEmail POST /api/admin/email enqueues an ad-hoc email job.
func (h *AdminHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Template == "" && (req.Subject == "" || (req.Text == "" && req.HTML == "")) {
		response.Error[any](c, http.StatusBadRequest, "either template or subject with text/html is required", nil)
		return
	}
	job := mailer.EmailJob{To: req.To, Template: req.Template, Data: req.Data}
	if req.Template == "" {
		job.Subject, job.Text, job.HTML = req.Subject, req.Text, req.HTML
	}
	ok, err := h.Notifier.Send(c.Request.Context(), job)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to publish email job")
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to enqueue", nil)
		return
	}
	if !ok {
		response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": false, "disabled": true}, "email sending disabled", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"enqueued": true}, "email enqueued", nil)
}
