package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest"
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into a 500 response instead of killing the
// connection.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(
					"panic recovered",
					"panic", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				rest.WriteError(c, application.NewInternalError(fmt.Errorf("panic: %v", rec)), logger)
			}
		}()

		c.Next()
	}
}
