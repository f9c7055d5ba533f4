package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

// Context keys set by Auth and OptionalAuth.
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxSessionID = "sessionID"
)

// SessionValidator reports whether sid is the user's live session.
type SessionValidator interface {
	Valid(ctx context.Context, userID, sid string) (bool, error)
}

// accessToken reads a bearer token, falling back to the access_token cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if v, err := c.Cookie(helpers.AccessCookie); err == nil {
		return v
	}
	return ""
}

// authenticate resolves the caller. msg is empty on success.
func authenticate(c *gin.Context, jwt *helpers.JWTManager, sessions SessionValidator) (*helpers.Claims, string) {
	token := accessToken(c)
	if token == "" {
		return nil, "missing access token"
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, "invalid access token"
	}
	if sessions != nil {
		ok, err := sessions.Valid(c.Request.Context(), claims.UserID, claims.SessionID)
		if err != nil || !ok {
			return nil, "session expired or revoked"
		}
	}
	return claims, ""
}

func setCaller(c *gin.Context, claims *helpers.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUserRole, claims.Role)
	c.Set(CtxSessionID, claims.SessionID)
}

// Auth requires a valid access token bound to a live session.
func Auth(jwt *helpers.JWTManager, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := authenticate(c, jwt, sessions)
		if msg != "" {
			response.Abort(c, http.StatusUnauthorized, msg, nil)
			return
		}
		setCaller(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(jwt *helpers.JWTManager, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, msg := authenticate(c, jwt, sessions); msg == "" {
			setCaller(c, claims)
		}
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, Role(c)) {
			response.Abort(c, http.StatusForbidden, "insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string { return c.GetString(CtxUserID) }

func Role(c *gin.Context) entity.Role { return entity.Role(c.GetString(CtxUserRole)) }
