package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the settlement counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sweepTransitions *prometheus.CounterVec
	jobRuns          *prometheus.CounterVec
	winnersSelected  prometheus.Counter
	txnTransitions   *prometheus.CounterVec
	payouts          *prometheus.CounterVec
	gatewayLatency   *prometheus.HistogramVec
	quizSubmissions  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sweepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Giveaway status transitions applied by sweeps.",
		}, []string{"to"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "worker",
			Name:      "runs_total",
			Help:      "Background job invocations segmented by job and outcome.",
		}, []string{"job", "outcome"}),
		winnersSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "winners",
			Name:      "selected_total",
			Help:      "Participants marked as winners.",
		}),
		txnTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "payments",
			Name:      "transaction_transitions_total",
			Help:      "Transaction status transitions segmented by narration kind and target status.",
		}, []string{"kind", "to"}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "payments",
			Name:      "payout_transfers_total",
			Help:      "Payout transfers segmented by outcome.",
		}, []string{"outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "giveaway",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of payment gateway calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "giveaway",
			Subsystem: "quiz",
			Name:      "submissions_total",
			Help:      "Quiz submissions segmented by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.sweepTransitions,
			m.jobRuns,
			m.winnersSelected,
			m.txnTransitions,
			m.payouts,
			m.gatewayLatency,
			m.quizSubmissions,
		)
	}
	return m
}

func (m *Metrics) GiveawaysTransitioned(to string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepTransitions.WithLabelValues(to).Add(float64(n))
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *Metrics) WinnersSelected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.winnersSelected.Add(float64(n))
}

func (m *Metrics) TransactionTransitioned(kind, to string) {
	if m == nil {
		return
	}
	m.txnTransitions.WithLabelValues(kind, to).Inc()
}

func (m *Metrics) Payout(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.payouts.WithLabelValues(outcome).Add(float64(n))
}

// ObserveGateway records the latency of one gateway call started at start.
func (m *Metrics) ObserveGateway(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.gatewayLatency.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) QuizSubmitted(result string) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues(result).Inc()
}
