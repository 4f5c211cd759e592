package shell

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gokatarajesh/subject-quiz/internal/quiz"
	"github.com/gokatarajesh/subject-quiz/internal/quiz/scoring"
)

const metricsNamespace = "quiz"

// Metrics holds the session counters exported on /metrics. A nil *Metrics records nothing.
type Metrics struct {
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	answers  prometheus.Counter
	active   prometheus.Gauge
	accuracy prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_started_total",
			Help:      "Sessions started, by subject.",
		}, []string{"subject"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_finished_total",
			Help:      "Sessions finished, by reason (submitted, timeout).",
		}, []string{"reason"}),
		answers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "answers_selected_total",
			Help:      "Answer selections recorded on active sessions.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Sessions currently accepting answers.",
		}),
		accuracy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "session_accuracy_ratio",
			Help:      "Fraction of questions answered correctly per finished session.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
	reg.MustRegister(m.started, m.finished, m.answers, m.active, m.accuracy)
	return m
}

func (m *Metrics) sessionStarted(subject string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(subject).Inc()
	m.active.Inc()
}

func (m *Metrics) sessionFinished(reason quiz.FinishReason, res *scoring.Result) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(string(reason)).Inc()
	m.active.Dec()
	if res != nil && res.Total > 0 {
		m.accuracy.Observe(res.Accuracy)
	}
}

func (m *Metrics) sessionAbandoned() {
	if m == nil {
		return
	}
	m.active.Dec()
}

func (m *Metrics) answerSelected() {
	if m == nil {
		return
	}
	m.answers.Inc()
}
