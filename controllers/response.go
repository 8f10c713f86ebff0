package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/checklist"
	"github.com/roadcheck/inspection-api/middleware"
	"github.com/roadcheck/inspection-api/services"
	"github.com/roadcheck/inspection-api/utils"
)

func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondServiceError maps a service error onto the JSON envelope.
// notFoundCode names the missing resource, e.g. INSPECTION_NOT_FOUND.
func respondServiceError(c *gin.Context, op string, err error, notFoundCode string) {
	var imageErr *utils.ImageValidationError
	var schemaErr *checklist.SchemaError

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundCode, "Resource not found", nil)
	case errors.Is(err, services.ErrForbidden):
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required", nil)
	case errors.Is(err, services.ErrSelfDemotion):
		respondError(c, http.StatusBadRequest, "SELF_DEMOTION", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrMissingUserID):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, services.ErrBootstrapDisabled):
		respondError(c, http.StatusServiceUnavailable, "BOOTSTRAP_DISABLED", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidSecret):
		respondError(c, http.StatusForbidden, "INVALID_SECRET", err.Error(), nil)
	case errors.Is(err, services.ErrStorageDisabled):
		respondError(c, http.StatusServiceUnavailable, "STORAGE_DISABLED", err.Error(), nil)
	case errors.As(err, &imageErr):
		respondError(c, http.StatusBadRequest, imageErr.Code, imageErr.Message, nil)
	case errors.As(err, &schemaErr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+schemaErr.Field, schemaErr.Problems)
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Database operation failed", err.Error())
	}
}

func respondValidationError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// parseID reads a numeric path parameter, answering 400 INVALID_ID when it is not one.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

// actingUser resolves who is making the request. With a verified token the
// claimed id must match the token subject (and defaults to it); without one
// the claimed id is taken as given and must be present.
func actingUser(c *gin.Context, claimed string) (string, bool) {
	subject, err := middleware.GetUserID(c)
	if err != nil {
		if claimed == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "User id is required", nil)
			return "", false
		}
		return claimed, true
	}

	if claimed != "" && claimed != subject {
		respondError(c, http.StatusForbidden, "IDENTITY_MISMATCH", "User id does not match the signed-in user", nil)
		return "", false
	}
	return subject, true
}

// requestEmail prefers the email sent with the request, then the token's email claim.
func requestEmail(c *gin.Context, supplied string) string {
	if supplied != "" {
		return supplied
	}
	return middleware.GetUserEmail(c)
}
