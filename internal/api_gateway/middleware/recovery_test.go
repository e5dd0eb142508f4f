package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
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

	tests := []struct {
		name      string
		panicWith interface{}
		wantInLog string
	}{
		{"StringPanic", "ledger writer exploded", `"error":"ledger writer exploded"`},
		{"ErrorPanic", errors.New("nil invoice"), `"error":"nil invoice"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuffer bytes.Buffer
			router := gin.New()
			router.Use(CorrelationID())
			router.Use(Recovery(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
			router.POST("/api/v1/invoices/:id/reconcile", func(c *gin.Context) {
				panic(tt.panicWith)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/abc/reconcile", nil)
			req.Header.Set(CorrelationIDHeader, "corr-panic")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
				CorrelationID string `json:"correlation_id"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
			assert.Equal(t, "An internal server error occurred", body.Error.Message)
			assert.Equal(t, "corr-panic", body.CorrelationID)

			logOutput := logBuffer.String()
			assert.Contains(t, logOutput, `"msg":"Panic recovered"`)
			assert.Contains(t, logOutput, tt.wantInLog)
			assert.Contains(t, logOutput, `"stack":`)
			assert.Contains(t, logOutput, `"path":"/api/v1/invoices/abc/reconcile"`)
		})
	}

	t.Run("WithoutCorrelationMiddleware", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))))
		router.GET("/boom", func(c *gin.Context) { panic("boom") })

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "correlation_id")
	})

	t.Run("HandlerWithoutPanicIsUntouched", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.GET("/api/v1/staging", func(c *gin.Context) { c.Status(http.StatusOK) })

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/staging", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, logBuffer.String())
	})
}
