package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

const maxWebhookBytes = 64 << 10

type PaymentHandler struct {
	Svc            *app.PaymentService
	Logger         *logrus.Logger
	PublishableKey string
}

func NewPaymentHandler(svc *app.PaymentService, logger *logrus.Logger, publishableKey string) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger, PublishableKey: publishableKey}
}

type mpesaRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required,phone"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"omitempty,max=200"`
}

type cardRequest struct {
	Amount      float64           `json:"amount" binding:"required,gt=0"`
	Description string            `json:"description" binding:"omitempty,max=200"`
	Metadata    map[string]string `json:"metadata"`
}

// InitiateMpesa POST /api/payments/mpesa
func (h *PaymentHandler) InitiateMpesa(c *gin.Context) {
	var req mpesaRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.InitiateMpesa(c.Request.Context(), uid(c), app.MpesaInput{
		Phone:       req.PhoneNumber,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"payment":             presentPayment(p),
		"checkout_request_id": p.MetadataString("checkout_request_id"),
		"merchant_request_id": p.MetadataString("merchant_request_id"),
		"customer_message":    p.MetadataString("customer_message"),
	}, "STK push sent", nil)
}

// InitiateCard POST /api/payments/card
func (h *PaymentHandler) InitiateCard(c *gin.Context) {
	var req cardRequest
	if !bindJSON(c, &req) {
		return
	}
	co, err := h.Svc.InitiateCard(c.Request.Context(), uid(c), app.CardInput{
		Amount:      req.Amount,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"payment":           presentPayment(co.Payment),
		"client_secret":     co.Intent.ClientSecret,
		"payment_intent_id": co.Intent.ID,
		"publishable_key":   h.PublishableKey,
	}, "payment intent created", nil)
}

// MpesaCallback POST /api/payments/mpesa/callback. Daraja only needs an
// acknowledgement, so processing failures are logged and never surfaced.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err == nil {
		err = h.Svc.HandleMpesaCallback(c.Request.Context(), body)
	}
	if err != nil {
		helpers.LogError(h.Logger, "mpesa callback not applied", err, logrus.Fields{"request_id": c.GetString("request_id")})
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// StripeWebhook POST /api/payments/stripe/webhook
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable payload", nil)
		return
	}
	if err := h.Svc.HandleStripeWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"received": true}, "event processed", nil)
}

// VerifyMpesa GET /api/payments/mpesa/verify/:checkoutRequestId
func (h *PaymentHandler) VerifyMpesa(c *gin.Context) {
	p, err := h.Svc.VerifyMpesa(c.Request.Context(), uid(c), c.Param("checkoutRequestId"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentPayment(p), "payment status", nil)
}

// List GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	ps, err := h.Svc.List(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentAll(ps, presentPayment), "payments", nil)
}

// Get GET /api/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentPayment(p), "payment", nil)
}
