package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
	"github.com/oksasatya/library-management/pkg/response"
	"github.com/oksasatya/library-management/pkg/validation"
)

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrTokenExpired),
		errors.Is(err, app.ErrTokenMalformed):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrUserDisabled):
		return http.StatusForbidden
	case errors.Is(err, app.ErrValidation), errors.Is(err, app.ErrUserExists):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNoCopiesAvailable):
		return http.StatusConflict
	case errors.Is(err, app.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope. Store failures are logged and
// reported without their details.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
		msg = "internal server error"
	}
	response.Error[any](c, status, msg, gin.H{"error": msg})
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
