package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serveCorrelated(t *testing.T, header string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var fromGin, fromCtx string
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/wallets", func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/wallets", nil)
	if header != "" {
		req.Header.Set(CorrelationIDHeader, header)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr, fromGin, fromCtx
}

func TestCorrelationID(t *testing.T) {
	t.Run("GeneratesWhenMissing", func(t *testing.T) {
		rr, fromGin, fromCtx := serveCorrelated(t, "")

		id := rr.Header().Get(CorrelationIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, fromGin)
		assert.Equal(t, id, fromCtx)
	})

	t.Run("KeepsCallerID", func(t *testing.T) {
		rr, fromGin, fromCtx := serveCorrelated(t, "batch-42")

		assert.Equal(t, "batch-42", rr.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "batch-42", fromGin)
		assert.Equal(t, "batch-42", fromCtx)
	})

	t.Run("ReplacesOversizedID", func(t *testing.T) {
		long := strings.Repeat("x", maxCorrelationIDLength+1)
		rr, fromGin, _ := serveCorrelated(t, long)

		assert.NotEqual(t, long, fromGin)
		assert.Equal(t, fromGin, rr.Header().Get(CorrelationIDHeader))
	})
}

func TestGetCorrelationID_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, GetCorrelationID(c))
	assert.Empty(t, CorrelationIDFromContext(c.Request.Context()))

	c.Set(CorrelationIDKey, 12345)
	assert.Empty(t, GetCorrelationID(c))
}
