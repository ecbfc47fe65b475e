package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContextLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rc := NewRequestContextWithID(logger, "req-1", "abc")
	rc.Info("received")
	rc.SetIntent("book_event")
	rc.Error("dispatch failed", errors.New("boom"), slog.String(LogFieldErrorCode, "INTERNAL"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "req-1", first[LogFieldRequestID])
	assert.Equal(t, "abc", first[LogFieldSessionID])
	assert.NotContains(t, first, LogFieldIntent)

	assert.Equal(t, "book_event", second[LogFieldIntent])
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, "INTERNAL", second[LogFieldErrorCode])
}

func TestRequestContextRoundTrip(t *testing.T) {
	rc := NewRequestContext(nil, "default")
	assert.NotEmpty(t, rc.RequestID)
	assert.NotNil(t, rc.Logger)

	ctx := WithRequestContext(context.Background(), rc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.IncMessage("general_chat")
	m.IncMessage("general_chat")
	m.IncGatewayFailure(GatewayCalendar, "list")
	m.IncListing(ListOutcomeFailed)
	m.IncListing(ListOutcomeEmpty)
	m.IncBookingsInFlight()
	m.IncBookingsInFlight()
	m.DecBookingsInFlight()
	m.SetSessions(3)
	m.ObserveDispatch("general_chat", "ok", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.messages.WithLabelValues("general_chat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayFailures.WithLabelValues(GatewayCalendar, "list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listings.WithLabelValues(ListOutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listings.WithLabelValues(ListOutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsInFlight))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.dispatchDuration))
}

func TestMustNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	second := MustNewMetrics(reg)

	first.IncMessage("book_event")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.messages.WithLabelValues("book_event")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncMessage("x")
		m.ObserveDispatch("x", "ok", time.Second)
		m.IncGatewayFailure("x", "y")
		m.IncListing(ListOutcomeFound)
		m.IncBookingsInFlight()
		m.DecBookingsInFlight()
		m.SetSessions(1)
	})
}
