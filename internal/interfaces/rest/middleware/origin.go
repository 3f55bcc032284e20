package middleware

import (
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/gin-gonic/gin"
)

// RequestOrigin records the caller's address and user agent on the request
// context so audit entries written downstream carry the request origin.
func RequestOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := application.WithRequestOrigin(c.Request.Context(), application.RequestOrigin{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
