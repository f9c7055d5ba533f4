package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	Guard   Guard
}

func NewAdminModule(h *handlers.AdminHandler, g Guard) *AdminModule {
	return &AdminModule{Handler: h, Guard: g}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := m.Guard
	admin := rg.Group("/admin")
	admin.Use(g.Auth(), g.Role(entity.RoleAdmin), g.PerUser())
	{
		admin.GET("/dashboard", m.Handler.Dashboard)
		admin.GET("/users", m.Handler.ListUsers)
		admin.PUT("/users/:id/status", m.Handler.SetUserStatus)
		admin.PUT("/users/:id/subscription", m.Handler.SetSubscription)
		admin.PUT("/vendors/:id/status", m.Handler.SetVendorStatus)
		admin.PUT("/fundraisers/:id/verify", m.Handler.VerifyFundraiser)
		admin.POST("/email", g.Limit(60, time.Minute, middleware.KeyByUserID()), m.Handler.SendEmail)
	}
}
