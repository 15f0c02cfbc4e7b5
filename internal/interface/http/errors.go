package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/internal/application"
	"github.com/oksasatya/go-ddd-filevault/pkg/response"
	"github.com/oksasatya/go-ddd-filevault/pkg/validation"
)

func statusOf(kind application.Kind) int {
	switch kind {
	case application.KindBadRequest:
		return http.StatusBadRequest
	case application.KindUnauthorized:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": ...}. Causes of internal errors are logged, never returned.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	kind := application.KindOf(err)
	if kind == application.KindInternal {
		if logger != nil {
			cause := err
			var ae *application.Error
			if errors.As(err, &ae) && ae.Err != nil {
				cause = ae.Err
			}
			logger.WithError(cause).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, application.Internal(nil).Error())
		return
	}
	response.Error(c, statusOf(kind), err.Error())
}

// bindJSON decodes the body or writes a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, http.StatusBadRequest, application.BadRequest(validation.Message(err)).Error())
		return false
	}
	return true
}
