package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/orders/MS100/claim", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	req.Header.Set("User-Agent", "staff-panel/2.1")
	c.Request = req

	RequestOrigin()(c)

	origin, ok := application.OriginFromContext(c.Request.Context())
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", origin.IP)
	assert.Equal(t, "staff-panel/2.1", origin.UserAgent)
}
