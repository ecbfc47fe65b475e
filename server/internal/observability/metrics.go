package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Listing outcomes. A failed listing is reported to the user the same way
// as an empty one, so the label is the only place the two differ.
const (
	ListOutcomeFound  = "found"
	ListOutcomeEmpty  = "empty"
	ListOutcomeFailed = "failed"
)

// Gateway names used as metric labels.
const (
	GatewayCalendar = "calendar"
	GatewayChat     = "chat"
)

// Metrics exposes Prometheus collectors that report assistant activity.
type Metrics struct {
	messages         *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	gatewayFailures  *prometheus.CounterVec
	listings         *prometheus.CounterVec
	bookingsInFlight prometheus.Gauge
	sessions         prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Tests pass a fresh registry. Registration errors other than
// AlreadyRegistered panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "calassist",
				Subsystem: "assistant",
				Name:      "messages_total",
				Help:      "Chat messages handled, by classified intent.",
			},
			[]string{"intent"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "calassist",
				Subsystem: "assistant",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent producing a reply, by intent and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"intent", "status"},
		),
		gatewayFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "calassist",
				Subsystem: "gateway",
				Name:      "failures_total",
				Help:      "Failed calls to external collaborators.",
			},
			[]string{"gateway", "op"},
		),
		listings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "calassist",
				Subsystem: "assistant",
				Name:      "listings_total",
				Help:      "Appointment listings, by outcome.",
			},
			[]string{"outcome"},
		),
		bookingsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "calassist",
				Subsystem: "assistant",
				Name:      "bookings_in_flight",
				Help:      "Calendar inserts currently holding a worker slot.",
			},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "calassist",
				Subsystem: "session",
				Name:      "active",
				Help:      "Sessions held by the memory store.",
			},
		),
	}

	collectors := []prometheus.Collector{m.messages, m.dispatchDuration, m.gatewayFailures, m.listings, m.bookingsInFlight, m.sessions}
	for i, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			m.adopt(i, already.ExistingCollector)
		}
	}
	return m
}

// adopt reuses a collector that was registered earlier under the same name.
func (m *Metrics) adopt(i int, existing prometheus.Collector) {
	switch i {
	case 0:
		m.messages = existing.(*prometheus.CounterVec)
	case 1:
		m.dispatchDuration = existing.(*prometheus.HistogramVec)
	case 2:
		m.gatewayFailures = existing.(*prometheus.CounterVec)
	case 3:
		m.listings = existing.(*prometheus.CounterVec)
	case 4:
		m.bookingsInFlight = existing.(prometheus.Gauge)
	case 5:
		m.sessions = existing.(prometheus.Gauge)
	}
}

// IncMessage counts a handled message under its intent.
func (m *Metrics) IncMessage(intent string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(intent).Inc()
}

// ObserveDispatch records the time spent replying with the given status label.
func (m *Metrics) ObserveDispatch(intent, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.WithLabelValues(intent, status).Observe(duration.Seconds())
}

// IncGatewayFailure counts a failed call to gateway for op.
func (m *Metrics) IncGatewayFailure(gateway, op string) {
	if m == nil {
		return
	}
	m.gatewayFailures.WithLabelValues(gateway, op).Inc()
}

// IncListing counts a listing with one of the ListOutcome values.
func (m *Metrics) IncListing(outcome string) {
	if m == nil {
		return
	}
	m.listings.WithLabelValues(outcome).Inc()
}

// IncBookingsInFlight marks a calendar insert as started.
func (m *Metrics) IncBookingsInFlight() {
	if m == nil {
		return
	}
	m.bookingsInFlight.Inc()
}

// DecBookingsInFlight marks a calendar insert as finished.
func (m *Metrics) DecBookingsInFlight() {
	if m == nil {
		return
	}
	m.bookingsInFlight.Dec()
}

// SetSessions reports the number of sessions held by the store.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
