package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/calassist/internal/profile"
)

type stubAssistant struct {
	reply    string
	err      error
	sessions []string
	messages []string
}

func (s *stubAssistant) Handle(_ context.Context, sessionID, message string) (string, error) {
	s.sessions = append(s.sessions, sessionID)
	s.messages = append(s.messages, message)
	return s.reply, s.err
}

func newTestEcho(t *testing.T, a *stubAssistant, prof *profile.Profile) *echo.Echo {
	t.Helper()
	if prof == nil {
		prof = &profile.Profile{Version: "test", RateLimit: 100, RateBurst: 100}
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "calassist_test_total", Help: "test"}))

	e := echo.New()
	NewAPIV1Service(prof, a, reg).RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChat(t *testing.T) {
	a := &stubAssistant{reply: "📭 No appointments found for tomorrow."}
	e := newTestEcho(t, a, nil)

	rec := post(e, "/chat/", `{"message":"show my appointments","session_id":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "📭 No appointments found for tomorrow.", resp["response"])
	assert.Equal(t, []string{"abc"}, a.sessions)
	assert.Equal(t, []string{"show my appointments"}, a.messages)
}

func TestChatDefaultsSession(t *testing.T) {
	a := &stubAssistant{reply: "hi"}
	e := newTestEcho(t, a, nil)

	rec := post(e, "/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"default"}, a.sessions)
}

func TestChatBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"missing message", `{"session_id":"abc"}`},
		{"blank message", `{"message":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAssistant{}
			rec := post(newTestEcho(t, a, nil), "/chat/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Empty(t, a.messages)
		})
	}
}

func TestChatRateLimited(t *testing.T) {
	a := &stubAssistant{reply: "ok"}
	e := newTestEcho(t, a, &profile.Profile{RateLimit: 1, RateBurst: 1})

	assert.Equal(t, http.StatusOK, post(e, "/chat/", `{"message":"hi","session_id":"abc"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(e, "/chat/", `{"message":"hi","session_id":"abc"}`).Code)
	assert.Equal(t, http.StatusOK, post(e, "/chat/", `{"message":"hi","session_id":"xyz"}`).Code)
}

func TestChatRateLimitedPerClientIP(t *testing.T) {
	a := &stubAssistant{reply: "ok"}
	e := newTestEcho(t, a, &profile.Profile{RateLimit: 100, RateBurst: 100, IPRateLimit: 1, IPRateBurst: 1})

	postFrom := func(remoteAddr, sessionID string) int {
		req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(`{"message":"hi","session_id":"`+sessionID+`"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, postFrom("203.0.113.7:4000", "s1"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom("203.0.113.7:4001", "s2"), "fresh session id from the same client")
	assert.Equal(t, http.StatusOK, postFrom("198.51.100.9:4000", "s3"))
	assert.Len(t, a.messages, 2)
}

func TestChatHandlerError(t *testing.T) {
	a := &stubAssistant{err: errors.New("store closed")}
	rec := post(newTestEcho(t, a, nil), "/chat/", `{"message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEcho(t, &stubAssistant{}, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "calassist_test_total")
}
