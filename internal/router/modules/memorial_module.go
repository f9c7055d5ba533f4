package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

type MemorialModule struct {
	Handler *handlers.MemorialHandler
	Guard   Guard
}

func NewMemorialModule(h *handlers.MemorialHandler, g Guard) *MemorialModule {
	return &MemorialModule{Handler: h, Guard: g}
}

func (m *MemorialModule) Register(rg *gin.RouterGroup) {
	g, h := m.Guard, m.Handler
	// Public, with the caller identified when a token is sent.
	rg.GET("/memorials", h.ListPublic)
	rg.GET("/memorials/:id", g.Optional(), h.Get)
	rg.GET("/memorials/:id/tributes", g.Optional(), h.ListTributes)
	rg.GET("/memorials/:id/media", g.Optional(), h.ListMedia)
	rg.POST("/memorials/:id/tributes", g.Optional(), g.Limit(30, time.Minute, middleware.KeyByIPAndPath()), h.AddTribute)

	rg.POST("/memorials", g.Authed(h.Create)...)
	rg.GET("/memorials/user", g.Authed(h.ListMine)...)
	rg.PUT("/memorials/:id", g.Authed(h.Update)...)
	rg.DELETE("/memorials/:id", g.Authed(h.Delete)...)
	rg.POST("/memorials/:id/photos", g.Authed(h.AddMedia(entity.MediaPhoto))...)
	rg.POST("/memorials/:id/videos", g.Authed(h.AddMedia(entity.MediaVideo))...)
	rg.DELETE("/memorials/:id/photos/:mediaId", g.Authed(h.DeleteMedia(entity.MediaPhoto))...)
	rg.DELETE("/memorials/:id/videos/:mediaId", g.Authed(h.DeleteMedia(entity.MediaVideo))...)
}
