package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
)

// DebugModule exposes expvar at /api/debug/vars.
type DebugModule struct {
	Guard Guard
}

func NewDebugModule(g Guard) *DebugModule { return &DebugModule{Guard: g} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := m.Guard.Limit(120, time.Minute, middleware.KeyByIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
