package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// CustomErrorHandler maps service errors onto HTTP statuses. Every failure
// in the reconciliation flow is recoverable and scoped to one open form, so
// nothing here is treated as fatal to the process.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := ErrorResponse{Message: "Something went wrong. Please try again later."}

	var he *echo.HTTPError
	var apiErr *services.APIError
	var verr services.ValidationError

	switch {
	case errors.As(err, &he):
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			resp.Message = msg
		} else {
			resp.Message = http.StatusText(code)
		}
	case errors.As(err, &verr):
		code = http.StatusUnprocessableEntity
		resp.Message = verr.Error()
		resp.Code = "validation_failed"
	case errors.Is(err, services.ErrAmountMismatch):
		code = http.StatusUnprocessableEntity
		resp.Message = err.Error()
		resp.Code = "amount_mismatch"
	case errors.Is(err, services.ErrCatalogStale):
		code = http.StatusConflict
		resp.Message = err.Error()
		resp.Code = "catalog_stale"
	case errors.Is(err, services.ErrDraftClosed):
		code = http.StatusGone
		resp.Message = err.Error()
		resp.Code = "draft_closed"
	case errors.Is(err, services.ErrQuotaNotInCatalog):
		code = http.StatusUnprocessableEntity
		resp.Message = err.Error()
		resp.Code = "quota_not_in_catalog"
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
		resp.Message = "not found"
	case errors.As(err, &apiErr):
		// Pass the core API's verdict through. 5xx from it is a bad
		// gateway from our point of view.
		code = apiErr.Status
		if code >= 500 {
			code = http.StatusBadGateway
		}
		resp.Message = apiErr.Error()
		resp.Code = "core_api_error"
	}

	if code >= 500 {
		logger.Get().Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
	} else {
		logger.Get().Debug("request rejected", zap.String("path", c.Request().URL.Path), zap.Error(err))
	}

	if writeErr := c.JSON(code, resp); writeErr != nil {
		logger.Get().Error("failed to write error response", zap.Error(writeErr))
	}
}
