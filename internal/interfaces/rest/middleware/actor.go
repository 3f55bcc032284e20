package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/interfaces/rest"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// StaffAuth extracts the authenticated staff identity from the headers set
// by the auth proxy in front of this service. Requests without a valid
// identity never reach the staff handlers; fine-grained role checks live in
// the services.
func StaffAuth(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := c.GetHeader("X-Staff-Id")
		rawRole := c.GetHeader("X-Staff-Role")
		if rawID == "" || rawRole == "" {
			unauthorized(c, "missing staff identity")
			return
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			logger.Warn("rejected request with malformed staff id", "staff_id", rawID)
			unauthorized(c, "malformed staff identity")
			return
		}

		role := domain.Role(rawRole)
		switch role {
		case domain.RoleAdmin, domain.RoleFinance, domain.RoleOperator:
		default:
			logger.Warn("rejected request with unknown staff role", "role", rawRole)
			unauthorized(c, "unknown staff role")
			return
		}

		c.Set(actorKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

// Actor returns the staff identity stored by StaffAuth.
func Actor(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{Role: domain.RoleCustomer}
	}
	return v.(domain.Actor)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, rest.ErrorResponse{
		Success: false,
		Error: rest.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
