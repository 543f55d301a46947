package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("DefaultEnvelope", func(t *testing.T) {
		var logBuffer bytes.Buffer
		testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

		router := gin.New()
		router.Use(Recovery(testLogger))
		router.Use(CorrelationID())
		router.GET("/api/v1/transactions/:reference", func(c *gin.Context) {
			panic("nil transaction")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/ref42?vnp_SecureHash=abc", nil)
		req.Header.Set(CorrelationIDHeader, "corr-1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		errorField, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", errorField["code"])
		assert.Equal(t, "corr-1", body["correlation_id"])

		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"msg":"Panic recovered"`)
		assert.Contains(t, logOutput, `"error":"nil transaction"`)
		assert.Contains(t, logOutput, `"stack":`)
		assert.Contains(t, logOutput, `"path":"/api/v1/transactions/ref42"`)
		assert.Contains(t, logOutput, `"correlation_id":"corr-1"`)
		assert.NotContains(t, logOutput, "vnp_SecureHash")
	})

	t.Run("RegisteredResponder", func(t *testing.T) {
		testLogger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

		router := gin.New()
		router.Use(Recovery(testLogger))
		router.GET("/api/v1/payments/vnpay/ipn", func(c *gin.Context) {
			OnPanic(c, func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"RspCode": "99", "Message": "Unknown error"})
			})
			panic("reconciler exploded")
		})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/payments/vnpay/ipn", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"RspCode":"99","Message":"Unknown error"}`, rr.Body.String())
	})

	t.Run("NoPanicNoEffect", func(t *testing.T) {
		var logBuffer bytes.Buffer
		testLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

		router := gin.New()
		router.Use(Recovery(testLogger))
		router.GET("/health", func(c *gin.Context) {
			OnPanic(c, func(c *gin.Context) { c.Status(http.StatusTeapot) })
			c.String(http.StatusOK, "OK")
		})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, logBuffer.String())
	})
}
