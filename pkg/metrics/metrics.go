package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "llm_relay"

const (
	OutcomeIgnored    = "ignored"
	OutcomeEmptyInput = "empty_input"
	OutcomeReplied    = "replied"
	OutcomeFailed     = "failed"
	OutcomeCancelled  = "cancelled"
	OutcomeSendFailed = "send_failed"
)

type Metrics struct {
	turns         *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	deltas        prometheus.Counter
	replyUpdates  *prometheus.CounterVec
	conversations prometheus.GaugeFunc
}

// New registers the relay collectors on reg. conversations, when set, reports
// how many conversations currently hold history.
func New(reg prometheus.Registerer, conversations func() int) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Inbound messages by how the turn ended.",
		}, []string{"outcome"}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time from receiving a message to the end of its turn.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"outcome"}),
		deltas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_deltas_total",
			Help:      "Text deltas received from the model.",
		}),
		replyUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_updates_total",
			Help:      "Edits of live replies sent to the chat transport.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.turns, m.turnDuration, m.deltas, m.replyUpdates)

	if conversations != nil {
		m.conversations = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations",
			Help:      "Conversations with in-memory history.",
		}, func() float64 { return float64(conversations()) })
		reg.MustRegister(m.conversations)
	}

	return m
}

func (m *Metrics) ObserveTurn(outcome string, d time.Duration) {
	m.turns.WithLabelValues(outcome).Inc()
	m.turnDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) AddDeltas(n int) {
	m.deltas.Add(float64(n))
}

func (m *Metrics) ObserveReplyUpdate(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.replyUpdates.WithLabelValues(result).Inc()
}
