package middleware

import (
	"errors"
	"net/http"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := LoggerFromContext(c, logger.Log)

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
			if appErr.Kind == apperror.KindUpstream {
				log.Warn("Upstream dependency failed", "error", appErr.Error())
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		// Internal details stay in the server log.
		log.Error("Internal server error", "error", err.Error())
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
