package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

// PaymentModule: gateway callbacks are public and verified by the service;
// everything else is scoped to the caller.
type PaymentModule struct {
	Handler *handlers.PaymentHandler
	Guard   Guard
}

func NewPaymentModule(h *handlers.PaymentHandler, g Guard) *PaymentModule {
	return &PaymentModule{Handler: h, Guard: g}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	g, h := m.Guard, m.Handler
	initiate := g.Limit(10, time.Minute, middleware.KeyByUserID())

	rg.POST("/payments/mpesa/callback", h.MpesaCallback)
	rg.POST("/payments/stripe/webhook", h.StripeWebhook)

	rg.POST("/payments/mpesa", g.Authed(initiate, h.InitiateMpesa)...)
	rg.POST("/payments/card", g.Authed(initiate, h.InitiateCard)...)
	rg.GET("/payments/mpesa/verify/:checkoutRequestId", g.Authed(h.VerifyMpesa)...)
	rg.GET("/payments", g.Authed(h.List)...)
	rg.GET("/payments/:id", g.Authed(h.Get)...)
}
