package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesCategoryAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf)

	l.Info("register", "registration created")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "[REGISTER  ]")
	assert.Contains(t, out, "registration created")
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf)
	l.minLevel = WARN

	l.Debug("TEST", "debug line")
	l.Info("TEST", "info line")
	l.Warn("TEST", "warn line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestComponentHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf)

	l.LogRegistration("CREATE", "WDA-1", "ok")
	l.LogWebhook("FAILED", "https://hooks.example", "timeout")
	l.LogSecurity("AUTH", "missing token")

	out := buf.String()
	assert.Contains(t, out, "[CREATE] WDA-1 - ok")
	assert.Contains(t, out, "[WEBHOOK   ]")
	assert.Contains(t, out, "WARN")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("TEST", "nothing") })
}

func TestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf)

	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "GET /api/events - 418")
}
