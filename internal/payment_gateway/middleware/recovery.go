package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const panicResponderKey = "panic_responder"

// PanicResponder writes the response for a request whose handler panicked.
type PanicResponder func(c *gin.Context)

// OnPanic replaces the default 500 envelope for the current request. VNPay callbacks
// register one so a crash still answers in the gateway's own format.
func OnPanic(c *gin.Context, respond PanicResponder) {
	c.Set(panicResponderKey, respond)
}

// Recovery catches panics and logs them with the stack. The query string is left out
// of the log because callback queries carry the merchant signature.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			correlationID := GetCorrelationID(c)
			logger.Error("Panic recovered",
				"error", r,
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"correlation_id", correlationID,
			)

			if v, ok := c.Get(panicResponderKey); ok {
				if respond, ok := v.(PanicResponder); ok {
					respond(c)
					c.Abort()
					return
				}
			}

			response := gin.H{
				"error": gin.H{
					"code":    "INTERNAL_SERVER_ERROR",
					"message": "An internal server error occurred",
				},
			}
			if correlationID != "" {
				response["correlation_id"] = correlationID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response)
		}()

		c.Next()
	}
}
