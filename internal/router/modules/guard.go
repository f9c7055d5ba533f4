package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

// Guard bundles what route-level middleware needs. A nil Redis disables rate
// limiting; nil Sessions accepts any token whose signature verifies.
type Guard struct {
	JWT      *helpers.JWTManager
	Sessions middleware.SessionValidator
	Redis    redis.Scripter
}

func (g Guard) Auth() gin.HandlerFunc { return middleware.Auth(g.JWT, g.Sessions) }

func (g Guard) Optional() gin.HandlerFunc { return middleware.OptionalAuth(g.JWT, g.Sessions) }

func (g Guard) Role(roles ...entity.Role) gin.HandlerFunc { return middleware.RequireRole(roles...) }

// Limit is a route-scoped budget: the same key counts separately per route.
func (g Guard) Limit(max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, max, window, func(c *gin.Context) string {
		return key(c) + ":route:" + c.Request.Method + c.FullPath()
	}, nil)
}

// PerUser is the budget shared by every authenticated route.
func (g Guard) PerUser() gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)
}

// Authed prefixes handlers with authentication and the per-user limit, for
// routes that share a path prefix with public ones.
func (g Guard) Authed(h ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{g.Auth(), g.PerUser()}, h...)
}
