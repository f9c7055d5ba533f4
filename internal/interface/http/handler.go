package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/kenfuse/kenfuse-api/internal/application"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/internal/interface/middleware"
	"github.com/kenfuse/kenfuse-api/pkg/response"
	"github.com/kenfuse/kenfuse-api/pkg/validation"
)

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, app.ErrNotFound), errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrConflict), errors.Is(err, repo.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, app.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, app.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, app.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope. Only *app.Error messages reach the client;
// anything unclassified is logged and reported as a 500.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status := errorStatus(err)
	var ae *app.Error
	msg := http.StatusText(status)
	if errors.As(err, &ae) {
		msg = ae.Message
	} else if status == http.StatusNotFound {
		msg = "resource not found"
	} else if status == http.StatusConflict {
		msg = "resource already exists"
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
		if ae == nil {
			msg = "internal server error"
		}
	}
	response.Error[any](c, status, msg, nil)
}

// bindJSON binds the body into req and answers 400 with per-field details
// when it does not validate.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// pageFrom reads page and per_page query parameters.
func pageFrom(c *gin.Context, def int) repo.Page {
	n, _ := strconv.Atoi(c.Query("page"))
	per, _ := strconv.Atoi(c.Query("per_page"))
	return repo.NewPage(n, per, def)
}

func pageMeta(p repo.Page, total int) response.PageMeta {
	return response.PageMeta{
		Total:       total,
		Pages:       p.Pages(total),
		CurrentPage: p.Number,
		PerPage:     p.PerPage,
	}
}

func boolQuery(c *gin.Context, key string, def bool) bool {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func uid(c *gin.Context) string { return middleware.UserID(c) }
