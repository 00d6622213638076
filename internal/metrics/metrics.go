// Package metrics exposes Prometheus collectors for analyses and decisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

// Analysis outcomes
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// Metrics holds the service collectors
type Metrics struct {
	Analyses   *prometheus.CounterVec
	Decisions  *prometheus.CounterVec
	FinalScore prometheus.Histogram
	Emails     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_analyses_total",
			Help: "Transaction analyses by outcome.",
		}, []string{"outcome"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_decisions_total",
			Help: "Credit limit decisions by score band.",
		}, []string{"band"}),
		FinalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "credit_final_score",
			Help:    "Distribution of composite credit scores.",
			Buckets: []float64{40, 65, 80, 90, 100},
		}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_decision_emails_total",
			Help: "Decision emails by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Analyses, m.Decisions, m.FinalScore, m.Emails)
	return m
}

// ObserveAnalysis records an analysis result
func (m *Metrics) ObserveAnalysis(report *models.ScoreReport, err error) {
	if err != nil {
		m.Analyses.WithLabelValues(OutcomeRejected).Inc()
		return
	}
	m.Analyses.WithLabelValues(OutcomeOK).Inc()
	m.FinalScore.Observe(report.FinalScore)
}

// ObserveDecision records the band of a decision
func (m *Metrics) ObserveDecision(d models.Decision) {
	m.Decisions.WithLabelValues(string(d.Band)).Inc()
}

// ObserveEmail records a notification attempt
func (m *Metrics) ObserveEmail(err error) {
	if err != nil {
		m.Emails.WithLabelValues(OutcomeRejected).Inc()
		return
	}
	m.Emails.WithLabelValues(OutcomeOK).Inc()
}
