package api

import (
	"errors"
	"net/http"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const genericFailureMessage = "internal error, try again later"

func writeSuccess(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// writeError renders err in the uniform failure shape. Business errors use
// HTTP 200; storage failures use 500 and never expose their cause.
func writeError(c *gin.Context, action Action, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("action", string(action)).Error("api: action failed")
	}
	c.JSON(status, body)
}

func errorBody(err error) (int, gin.H) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindStorage {
		return http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   genericFailureMessage,
			"message": genericFailureMessage,
			"code":    "storage_error",
		}
	}
	body := gin.H{
		"success": false,
		"error":   appErr.Message,
		"message": appErr.Message,
		"code":    appErr.Code,
	}
	if appErr.Kind == apperr.KindRateLimited {
		body["rate_limited"] = true
	}
	return http.StatusOK, body
}
