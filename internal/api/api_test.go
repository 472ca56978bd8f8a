package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camstreamd/camstreamd/internal/app"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	Response(w, []byte("OK"), MimeText)
}

func TestHandlerAuth(t *testing.T) {
	h := newHandler(Config{Username: "admin", Password: "secret"}, http.HandlerFunc(okHandler))

	r := httptest.NewRequest("GET", "/api/mavlink", nil)
	r.RemoteAddr = "192.168.1.10:50000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("Www-Authenticate"), "camstreamd")

	r.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	r.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	// loopback without credentials
	r = httptest.NewRequest("GET", "/api/mavlink", nil)
	r.RemoteAddr = "[::1]:50000"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerCORS(t *testing.T) {
	h := newHandler(Config{Origin: "*"}, http.HandlerFunc(okHandler))

	r := httptest.NewRequest("OPTIONS", "/api/cameras", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	h = newHandler(Config{}, http.HandlerFunc(okHandler))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/cameras", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsLoopback(t *testing.T) {
	require.True(t, isLoopback("127.0.0.1:1984"))
	require.True(t, isLoopback("[::1]:1984"))
	require.False(t, isLoopback("10.0.0.2:1984"))
	require.False(t, isLoopback("@"))
}

func TestAPIHandler(t *testing.T) {
	w := httptest.NewRecorder()
	apiHandler(w, httptest.NewRequest("GET", "http://camera.local/api", nil))

	require.Equal(t, MimeJSON, w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), `"host":"camera.local"`)
	require.Contains(t, w.Body.String(), `"version":"`+app.Version+`"`)
	_, ok := app.Info["host"]
	require.False(t, ok)
}

func TestLogHandler(t *testing.T) {
	app.MemoryLog.Reset()
	_, _ = app.MemoryLog.Write([]byte(`{"level":"info","message":"[mavlink] listen"}` + "\n"))

	w := httptest.NewRecorder()
	logHandler(w, httptest.NewRequest("GET", "/api/log", nil))
	require.Equal(t, "application/jsonlines", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "[mavlink] listen")

	w = httptest.NewRecorder()
	logHandler(w, httptest.NewRequest("DELETE", "/api/log", nil))
	require.Equal(t, "OK", w.Body.String())
	require.Empty(t, app.MemoryLog.Bytes())
}
