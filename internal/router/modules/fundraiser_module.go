package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

type FundraiserModule struct {
	Handler *handlers.FundraiserHandler
	Guard   Guard
}

func NewFundraiserModule(h *handlers.FundraiserHandler, g Guard) *FundraiserModule {
	return &FundraiserModule{Handler: h, Guard: g}
}

func (m *FundraiserModule) Register(rg *gin.RouterGroup) {
	g, h := m.Guard, m.Handler

	rg.GET("/fundraisers", h.List)
	rg.GET("/fundraisers/:id", h.Get)
	rg.GET("/fundraisers/:id/donations", h.ListDonations)
	// Guests may donate; signed-in donors are linked to the donation.
	rg.POST("/fundraisers/:id/donate", g.Optional(), g.Limit(20, time.Minute, middleware.KeyByUserID()), h.Donate)

	rg.POST("/fundraisers", g.Authed(h.Create)...)
	rg.GET("/fundraisers/user", g.Authed(h.ListMine)...)
	rg.PUT("/fundraisers/:id", g.Authed(h.Update)...)
}
