package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roomrelay"

// Metrics holds the relay collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Sessions       prometheus.Gauge
	Identified     prometheus.Gauge
	Rooms          prometheus.Gauge
	Inbound        *prometheus.CounterVec
	DecodeErrors   prometheus.Counter
	Rejected       *prometheus.CounterVec
	OutboxOverflow prometheus.Counter
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "number of connected sessions",
		}),
		Identified: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "identified_sessions",
			Help:      "number of sessions that completed connect",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "number of open rooms",
		}),
		Inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "decoded inbound messages by type",
		}, []string{"type"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "inbound frames dropped because they could not be decoded",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "operations answered with an error reply, by type and code",
		}, []string{"type", "code"}),
		OutboxOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_overflows_total",
			Help:      "sessions disconnected because their outbound queue overflowed",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Sessions,
			m.Identified,
			m.Rooms,
			m.Inbound,
			m.DecodeErrors,
			m.Rejected,
			m.OutboxOverflow,
		)
	}
	return m
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}

func (m *Metrics) SetIdentified(n int) {
	if m == nil {
		return
	}
	m.Identified.Set(float64(n))
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.Rooms.Set(float64(n))
}

func (m *Metrics) ObserveInbound(typ string) {
	if m == nil {
		return
	}
	m.Inbound.WithLabelValues(typ).Inc()
}

func (m *Metrics) ObserveDecodeError() {
	if m == nil {
		return
	}
	m.DecodeErrors.Inc()
}

func (m *Metrics) ObserveRejected(typ, code string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(typ, code).Inc()
}

func (m *Metrics) ObserveOverflow() {
	if m == nil {
		return
	}
	m.OutboxOverflow.Inc()
}
