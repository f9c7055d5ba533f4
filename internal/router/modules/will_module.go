package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
)

// WillModule: every route is authenticated and scoped to the caller.
type WillModule struct {
	Handler *handlers.WillHandler
	Guard   Guard
}

func NewWillModule(h *handlers.WillHandler, g Guard) *WillModule {
	return &WillModule{Handler: h, Guard: g}
}

func (m *WillModule) Register(rg *gin.RouterGroup) {
	wills := rg.Group("/wills")
	wills.Use(m.Guard.Auth(), m.Guard.PerUser())
	{
		wills.POST("", m.Handler.Create)
		wills.GET("", m.Handler.List)
		wills.GET("/:id", m.Handler.Get)
		wills.PUT("/:id", m.Handler.Update)
		wills.DELETE("/:id", m.Handler.Delete)
		wills.POST("/:id/sign", m.Handler.Sign)
		wills.GET("/:id/export-pdf", m.Handler.ExportPDF)
	}
}
