package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

// AuthModule serves account routes directly under /api:
// POST /register, /login, /refresh, /logout, /change-password,
// GET /me and PUT /update-profile.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
}

func NewAuthModule(h *handlers.AuthHandler, g Guard) *AuthModule {
	return &AuthModule{Handler: h, Guard: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := m.Guard
	signIn := g.Limit(10, time.Minute, middleware.KeyByIPAndPath()) // 10 req/min per IP
	refresh := g.Limit(60, time.Minute, middleware.KeyByIP())

	rg.POST("/register", signIn, m.Handler.Register)
	rg.POST("/login", signIn, m.Handler.Login)
	rg.POST("/refresh", refresh, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(g.Auth(), g.PerUser())
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/update-profile", m.Handler.UpdateProfile)
		auth.POST("/change-password", g.Limit(5, time.Minute, middleware.KeyByUserID()), m.Handler.ChangePassword)
	}
}
