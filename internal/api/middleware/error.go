package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energyplan/internal/api/models"
)

// ErrorHandler recovers from panics in handlers and turns them into a
// uniform JSON error response.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "an unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		} else if err, ok := recovered.(error); ok {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, models.Error("INTERNAL_ERROR", msg))
		c.Abort()
	})
}
