package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

// VendorHandler serves the marketplace and the booking flow on both sides.
type VendorHandler struct {
	Svc      *app.VendorService
	Accounts *app.AuthService
	Logger   *logrus.Logger
}

func NewVendorHandler(svc *app.VendorService, accounts *app.AuthService, logger *logrus.Logger) *VendorHandler {
	return &VendorHandler{Svc: svc, Accounts: accounts, Logger: logger}
}

type vendorProfileRequest struct {
	BusinessName         *string `json:"business_name" binding:"omitempty,max=200"`
	BusinessRegistration *string `json:"business_registration" binding:"omitempty,max=100"`
	Category             *string `json:"category" binding:"omitempty,vendorcat"`
	Description          *string `json:"description"`
	YearsInOperation     *int    `json:"years_in_operation" binding:"omitempty,gte=0"`
	County               *string `json:"county" binding:"omitempty,max=100"`
	Town                 *string `json:"town" binding:"omitempty,max=100"`
	Address              *string `json:"address"`
	Phone                *string `json:"phone" binding:"omitempty,phone"`
	Email                *string `json:"email" binding:"omitempty,email"`
	Website              *string `json:"website" binding:"omitempty,url"`
	LogoURL              *string `json:"logo_url" binding:"omitempty,url"`
	CoverImage           *string `json:"cover_image" binding:"omitempty,url"`
}

func (r vendorProfileRequest) input() app.VendorProfileInput {
	in := app.VendorProfileInput{
		BusinessName:         r.BusinessName,
		BusinessRegistration: r.BusinessRegistration,
		Description:          r.Description,
		YearsInOperation:     r.YearsInOperation,
		County:               r.County,
		Town:                 r.Town,
		Address:              r.Address,
		Phone:                r.Phone,
		Email:                r.Email,
		Website:              r.Website,
		LogoURL:              r.LogoURL,
		CoverImage:           r.CoverImage,
	}
	if r.Category != nil {
		cat := entity.VendorCategory(*r.Category)
		in.Category = &cat
	}
	return in
}

type serviceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=200"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	Duration    *string  `json:"duration" binding:"omitempty,max=50"`
	IsAvailable *bool    `json:"is_available"`
}

func (r serviceRequest) input() app.ServiceInput {
	return app.ServiceInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Duration:    r.Duration,
		IsAvailable: r.IsAvailable,
	}
}

type bookingRequest struct {
	ServiceID   string     `json:"service_id" binding:"required,uuid"`
	BookingDate *time.Time `json:"booking_date" binding:"required"`
	Notes       string     `json:"notes" binding:"omitempty,max=1000"`
}

type bookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

func viewer(c *gin.Context) (string, entity.Role) {
	return middleware.UserID(c), middleware.Role(c)
}

// Register POST /api/vendors/register
func (h *VendorHandler) Register(c *gin.Context) {
	var req vendorProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Accounts.Me(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	v, err := h.Svc.Register(c.Request.Context(), u, req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentVendor(v), "vendor profile created", nil)
}

// Profile GET /api/vendors/profile
func (h *VendorHandler) Profile(c *gin.Context) {
	v, err := h.Svc.Profile(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentVendor(v), "vendor profile", nil)
}

// UpdateProfile PUT /api/vendors/profile
func (h *VendorHandler) UpdateProfile(c *gin.Context) {
	var req vendorProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.UpdateProfile(c.Request.Context(), uid(c), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentVendor(v), "vendor profile updated", nil)
}

// Marketplace GET /api/vendors/marketplace?category=&county=&q=
func (h *VendorHandler) Marketplace(c *gin.Context) {
	f := repo.VendorFilter{
		Category: entity.VendorCategory(strings.TrimSpace(c.Query("category"))),
		County:   strings.TrimSpace(c.Query("county")),
		Query:    c.Query("q"),
		Page:     pageFrom(c, 10),
	}
	vs, total, err := h.Svc.Marketplace(c.Request.Context(), f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(vs, presentVendor), "vendors", pageMeta(f.Page, total))
}

// Get GET /api/vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	id, role := viewer(c)
	d, err := h.Svc.Get(c.Request.Context(), id, role, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	body := presentVendor(d.Profile)
	body["services"] = presentAll(d.Services, presentService)
	response.Success(c, http.StatusOK, body, "vendor", nil)
}

// ListServices GET /api/vendors/:id/services
func (h *VendorHandler) ListServices(c *gin.Context) {
	id, role := viewer(c)
	ss, err := h.Svc.ListServices(c.Request.Context(), id, role, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ss, presentService), "services", nil)
}

// CreateService POST /api/vendors/services
func (h *VendorHandler) CreateService(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Svc.CreateService(c.Request.Context(), uid(c), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentService(s), "service created", nil)
}

// UpdateService PUT /api/vendors/services/:serviceId
func (h *VendorHandler) UpdateService(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.Svc.UpdateService(c.Request.Context(), uid(c), c.Param("serviceId"), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentService(s), "service updated", nil)
}

// DeleteService DELETE /api/vendors/services/:serviceId
func (h *VendorHandler) DeleteService(c *gin.Context) {
	if err := h.Svc.DeleteService(c.Request.Context(), uid(c), c.Param("serviceId")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "service deleted", nil)
}

// Book POST /api/vendors/:id/bookings
func (h *VendorHandler) Book(c *gin.Context) {
	var req bookingRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Accounts.Me(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	b, err := h.Svc.Book(c.Request.Context(), u, c.Param("id"), app.BookingInput{
		ServiceID:   req.ServiceID,
		BookingDate: *req.BookingDate,
		Notes:       req.Notes,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentBooking(b), "booking created", nil)
}

// MyBookings GET /api/bookings
func (h *VendorHandler) MyBookings(c *gin.Context) {
	bs, err := h.Svc.CustomerBookings(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(bs, presentBooking), "bookings", nil)
}

// VendorBookings GET /api/vendors/bookings
func (h *VendorHandler) VendorBookings(c *gin.Context) {
	bs, err := h.Svc.VendorBookings(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(bs, presentBooking), "bookings", nil)
}

// SetBookingStatus PUT /api/vendors/bookings/:bookingId/status
func (h *VendorHandler) SetBookingStatus(c *gin.Context) {
	var req bookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.SetBookingStatus(c.Request.Context(), uid(c), c.Param("bookingId"), entity.BookingStatus(req.Status))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentBooking(b), "booking updated", nil)
}

// CancelBooking POST /api/bookings/:bookingId/cancel
func (h *VendorHandler) CancelBooking(c *gin.Context) {
	b, err := h.Svc.CancelBooking(c.Request.Context(), uid(c), c.Param("bookingId"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentBooking(b), "booking cancelled", nil)
}

// Review POST /api/vendors/:id/reviews
func (h *VendorHandler) Review(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, v, err := h.Svc.Review(c.Request.Context(), uid(c), c.Param("id"), app.ReviewInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"review":       presentReview(r),
		"rating":       v.Rating,
		"review_count": v.ReviewCount,
	}, "review added", nil)
}

// Reviews GET /api/vendors/:id/reviews
func (h *VendorHandler) Reviews(c *gin.Context) {
	id, role := viewer(c)
	rs, err := h.Svc.Reviews(c.Request.Context(), id, role, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(rs, presentReview), "reviews", nil)
}
