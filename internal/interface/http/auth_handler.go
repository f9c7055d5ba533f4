package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
	"github.com/kenfuse/kenfuse-api/pkg/response"
)

type AuthHandler struct {
	Svc     *app.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *app.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email                string `json:"email" binding:"required,email"`
	Phone                string `json:"phone" binding:"required,phone"`
	FirstName            string `json:"first_name" binding:"required,max=50"`
	LastName             string `json:"last_name" binding:"required,max=50"`
	Password             string `json:"password" binding:"required"`
	Role                 string `json:"role" binding:"required"`
	BusinessName         string `json:"business_name"`
	BusinessRegistration string `json:"business_registration"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// session writes the token pair as cookies and as the response body.
func (h *AuthHandler) session(c *gin.Context, status int, u *entity.User, tp app.TokenPair, msg string) {
	h.Cookies.SetPair(c, tp.AccessToken, tp.AccessTokenExpiry, tp.RefreshToken, tp.RefreshTokenExpiry)
	response.Success(c, status, gin.H{
		"user":          presentUser(u),
		"access_token":  tp.AccessToken,
		"refresh_token": tp.RefreshToken,
	}, msg, gin.H{"access_expires_at": tp.AccessTokenExpiry, "refresh_expires_at": tp.RefreshTokenExpiry})
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, tp, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Email:                req.Email,
		Phone:                req.Phone,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Password:             req.Password,
		Role:                 entity.Role(req.Role),
		BusinessName:         req.BusinessName,
		BusinessRegistration: req.BusinessRegistration,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, http.StatusCreated, u, tp, "registration successful")
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, tp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, http.StatusOK, u, tp, "login successful")
}

// refreshToken looks in the body, then the bearer header, then the cookie.
func refreshToken(c *gin.Context) string {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if scheme, tok, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	v, _ := c.Cookie(helpers.RefreshCookie)
	return v
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	tok := refreshToken(c)
	if tok == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	u, tp, err := h.Svc.Refresh(c.Request.Context(), tok)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.session(c, http.StatusOK, u, tp, "token refreshed")
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), uid(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentUser(u), "profile", nil)
}

// UpdateProfile PUT /api/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid(c), app.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentUser(u), "profile updated", nil)
}

// ChangePassword POST /api/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}
