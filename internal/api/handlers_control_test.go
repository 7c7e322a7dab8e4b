// handlers_control_test.go - Tests for server lifecycle handlers
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serve-folder/backend/internal/operation"
	"github.com/serve-folder/backend/internal/zipstream"
)

func postStop(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/stop", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleStop(t *testing.T) {
	stopped := make(chan struct{})
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	handlers := NewHandlers(&Dependencies{
		Root:     t.TempDir(),
		Registry: operation.NewRegistry(),
		Encoder:  zipstream.NewEncoder(0, 0),
		Shutdown: func() { close(stopped) },
		Version:  "test",
	})
	RegisterRoutes(e, handlers)

	t.Run("unconfirmed request refused", func(t *testing.T) {
		rec := postStop(e, `{"confirm": false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])

		select {
		case <-stopped:
			t.Fatal("shutdown triggered without confirmation")
		case <-time.After(700 * time.Millisecond):
		}
	})

	t.Run("confirmed request shuts down", func(t *testing.T) {
		rec := postStop(e, `{"confirm": true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])

		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Fatal("shutdown not triggered after confirmed stop")
		}
	})
}

func TestHandleHealth(t *testing.T) {
	e, _ := newTestServer(t, t.TempDir())

	rec := doRequest(e, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["version"])
}
