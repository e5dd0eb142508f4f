package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	return line
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("AuthenticatedRequestCarriesUser", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(CorrelationID())
		router.Use(Logger(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.POST("/api/v1/staging/:id/lock", func(c *gin.Context) {
			ctx := shared.WithCaller(c.Request.Context(), shared.Caller{TenantID: uuid.New(), UserID: "bob"})
			c.Request = c.Request.WithContext(ctx)
			c.Status(http.StatusOK)
		})

		rowID := uuid.New().String()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/staging/"+rowID+"/lock?dry=1", nil)
		req.Header.Set(CorrelationIDHeader, "corr-42")
		req.Header.Set("User-Agent", "import-ui")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		line := decodeLogLine(t, &logBuffer)
		assert.Equal(t, "INFO", line["level"])
		assert.Equal(t, "HTTP request", line["msg"])
		assert.Equal(t, "POST", line["method"])
		assert.Equal(t, "/api/v1/staging/"+rowID+"/lock?dry=1", line["path"])
		assert.EqualValues(t, 200, line["status"])
		assert.Equal(t, "corr-42", line["correlation_id"])
		assert.Equal(t, "bob", line["user_id"])
		assert.Equal(t, "import-ui", line["user_agent"])
		assert.Contains(t, line, "latency")
		assert.Contains(t, line, "client_ip")
	})

	t.Run("AnonymousRequestHasNoUser", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(CorrelationID())
		router.Use(Logger(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		line := decodeLogLine(t, &logBuffer)
		assert.NotContains(t, line, "user_id")
		assert.NotEmpty(t, line["correlation_id"])
	})

	t.Run("ServerErrorLogsAtErrorLevel", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(Logger(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.POST("/api/v1/transfers", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil))

		line := decodeLogLine(t, &logBuffer)
		assert.Equal(t, "ERROR", line["level"])
		assert.EqualValues(t, 500, line["status"])
		assert.NotContains(t, line, "correlation_id")
	})

	t.Run("ClientErrorStaysInfo", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(Logger(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.POST("/api/v1/staging/:id/approve", func(c *gin.Context) { c.Status(http.StatusConflict) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/staging/x/approve", nil))

		assert.Equal(t, "INFO", decodeLogLine(t, &logBuffer)["level"])
	})
}
