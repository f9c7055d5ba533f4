package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

type FundraiserHandler struct {
	Svc    *app.FundraiserService
	Logger *logrus.Logger
}

func NewFundraiserHandler(svc *app.FundraiserService, logger *logrus.Logger) *FundraiserHandler {
	return &FundraiserHandler{Svc: svc, Logger: logger}
}

type createFundraiserRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description" binding:"required"`
	TargetAmount *float64   `json:"target_amount" binding:"required,gt=0"`
	EndDate      *time.Time `json:"end_date" binding:"required"`
	MemorialID   *string    `json:"memorial_id" binding:"omitempty,uuid"`
	Currency     *string    `json:"currency" binding:"omitempty,len=3"`
	CoverImage   *string    `json:"cover_image" binding:"omitempty,url"`
	Status       *string    `json:"status"`
}

type updateFundraiserRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	Description  *string    `json:"description"`
	TargetAmount *float64   `json:"target_amount" binding:"omitempty,gt=0"`
	EndDate      *time.Time `json:"end_date"`
	MemorialID   *string    `json:"memorial_id" binding:"omitempty,uuid"`
	Currency     *string    `json:"currency" binding:"omitempty,len=3"`
	CoverImage   *string    `json:"cover_image" binding:"omitempty,url"`
	Status       *string    `json:"status"`
}

type donateRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	DonorName     string  `json:"donor_name" binding:"required,max=100"`
	DonorEmail    string  `json:"donor_email" binding:"omitempty,email"`
	DonorPhone    string  `json:"donor_phone" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required,paymethod"`
	Message       string  `json:"message" binding:"omitempty,max=1000"`
	IsAnonymous   bool    `json:"is_anonymous"`
}

func fundraiserStatus(s *string) *entity.FundraiserStatus {
	if s == nil || *s == "" {
		return nil
	}
	st := entity.FundraiserStatus(*s)
	return &st
}

// Create POST /api/fundraisers
func (h *FundraiserHandler) Create(c *gin.Context) {
	var req createFundraiserRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.Svc.Create(c.Request.Context(), uid(c), app.FundraiserInput{
		Title:        &req.Title,
		Description:  &req.Description,
		TargetAmount: req.TargetAmount,
		EndDate:      req.EndDate,
		MemorialID:   req.MemorialID,
		Currency:     req.Currency,
		CoverImage:   req.CoverImage,
		Status:       fundraiserStatus(req.Status),
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentFundraiser(f), "fundraiser created", nil)
}

// List GET /api/fundraisers?status=&verified=&page=&per_page=
func (h *FundraiserHandler) List(c *gin.Context) {
	page := pageFrom(c, 10)
	fs, total, err := h.Svc.List(c.Request.Context(), strings.TrimSpace(c.Query("status")), boolQuery(c, "verified", true), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(fs, presentFundraiser), "fundraisers", pageMeta(page, total))
}

// ListMine GET /api/fundraisers/user
func (h *FundraiserHandler) ListMine(c *gin.Context) {
	fs, err := h.Svc.ListMine(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(fs, presentFundraiser), "fundraisers", nil)
}

// Get GET /api/fundraisers/:id
func (h *FundraiserHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	body := presentFundraiser(d.Fundraiser)
	body["recent_donations"] = presentAll(d.RecentDonations, presentDonation)
	response.Success(c, http.StatusOK, body, "fundraiser", nil)
}

// Update PUT /api/fundraisers/:id
func (h *FundraiserHandler) Update(c *gin.Context) {
	var req updateFundraiserRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.Svc.Update(c.Request.Context(), uid(c), c.Param("id"), app.FundraiserInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		EndDate:      req.EndDate,
		MemorialID:   req.MemorialID,
		Currency:     req.Currency,
		CoverImage:   req.CoverImage,
		Status:       fundraiserStatus(req.Status),
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentFundraiser(f), "fundraiser updated", nil)
}

// Donate POST /api/fundraisers/:id/donate
func (h *FundraiserHandler) Donate(c *gin.Context) {
	var req donateRequest
	if !bindJSON(c, &req) {
		return
	}
	d, p, err := h.Svc.Donate(c.Request.Context(), uid(c), c.Param("id"), app.DonationInput{
		Amount:        req.Amount,
		DonorName:     req.DonorName,
		DonorEmail:    req.DonorEmail,
		DonorPhone:    req.DonorPhone,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
		Message:       req.Message,
		IsAnonymous:   req.IsAnonymous,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"donation": presentDonation(d),
		"payment":  presentPayment(p),
	}, "donation recorded", nil)
}

// ListDonations GET /api/fundraisers/:id/donations
func (h *FundraiserHandler) ListDonations(c *gin.Context) {
	page := pageFrom(c, 20)
	ds, total, err := h.Svc.ListDonations(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ds, presentDonation), "donations", pageMeta(page, total))
}
