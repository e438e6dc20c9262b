package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/pkg/apperrors"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		respondError(c, http.StatusUnprocessableEntity,
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.Message(err, "validation failed")).
				WithSeverity(dto.ErrorSeverityWarning))
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict,
			dto.NewErrorDetail(dto.ErrorCodeConflict, apperrors.Message(err, "conflict")).
				WithField("email_id").
				WithSeverity(dto.ErrorSeverityWarning))
	case errors.Is(err, apperrors.ErrPayloadTooLarge), errors.As(err, &maxBytesErr):
		respondError(c, http.StatusRequestEntityTooLarge,
			dto.NewErrorDetail(dto.ErrorCodePayloadTooLarge, "request body too large").
				WithSeverity(dto.ErrorSeverityWarning))
	case errors.Is(err, apperrors.ErrMethodNotAllowed):
		respondError(c, http.StatusMethodNotAllowed,
			dto.NewErrorDetail(dto.ErrorCodeMethodNotAllowed, "method not allowed").
				WithSeverity(dto.ErrorSeverityInfo))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound,
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "resource not found").
				WithSeverity(dto.ErrorSeverityInfo))
	case errors.Is(err, apperrors.ErrProcessingFailed):
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeImageProcessingFail, apperrors.Message(err, "failed to process image")))
	case errors.Is(err, apperrors.ErrStorage):
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "database error").
				WithSeverity(dto.ErrorSeverityCritical))
	default:
		logServerError(c, err)
		respondError(c, http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "internal server error").
				WithSeverity(dto.ErrorSeverityCritical))
	}
}

func respondError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func logServerError(c *gin.Context, err error) {
	logger.Error().
		Err(err).
		Str("request_id", GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
}

// MethodNotAllowed answers requests whose path exists under another method.
// allowed maps a route path to its methods and fills the Allow header.
func MethodNotAllowed(allowed map[string][]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		routePath := strings.TrimSuffix(c.Request.URL.Path, "/")
		if methods, ok := allowed[routePath]; ok {
			c.Header("Allow", strings.Join(methods, ", "))
		}
		HandleAPIError(c, apperrors.ErrMethodNotAllowed)
	}
}

// NotFound answers requests for unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleAPIError(c, apperrors.ErrResourceNotFound)
	}
}
