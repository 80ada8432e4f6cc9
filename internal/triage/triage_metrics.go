package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	TriagesTotal      *prometheus.CounterVec
	TriageDuration    *prometheus.HistogramVec
	TriageConfidence  prometheus.Histogram
	ReplyTruncations  prometheus.Counter
	AssigneesDropped  *prometheus.CounterVec
	LLMCallsTotal     prometheus.Counter
	LLMTokensIn       prometheus.Counter
	LLMTokensOut      prometheus.Counter
	LLMDuration       prometheus.Histogram
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhive_triages_total",
			Help: "Total triage runs by outcome.",
		}, []string{"outcome"}),
		TriageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deskhive_triage_duration_seconds",
			Help:    "Duration of triage runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}, []string{"outcome", "model"}),
		TriageConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deskhive_triage_confidence",
			Help:    "Priority confidence of successful triage runs.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 .. 1.0
		}),
		ReplyTruncations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deskhive_reply_truncations_total",
			Help: "Reply drafts shortened to the word limit.",
		}),
		AssigneesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskhive_assignees_dropped_total",
			Help: "Assignee suggestions dropped during normalization, by reason.",
		}, []string{"reason"}),
		LLMCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deskhive_llm_calls_total",
			Help: "Total LLM provider calls.",
		}),
		LLMTokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deskhive_llm_tokens_input_total",
			Help: "Total LLM input tokens consumed.",
		}),
		LLMTokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deskhive_llm_tokens_output_total",
			Help: "Total LLM output tokens consumed.",
		}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deskhive_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.TriageConfidence,
		m.ReplyTruncations,
		m.AssigneesDropped,
		m.LLMCallsTotal,
		m.LLMTokensIn,
		m.LLMTokensOut,
		m.LLMDuration,
	)

	return m
}

// Hooks returns engine Hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnLLMCall: func(inputTokens, outputTokens int, duration float64) {
			m.LLMCallsTotal.Inc()
			m.LLMTokensIn.Add(float64(inputTokens))
			m.LLMTokensOut.Add(float64(outputTokens))
			m.LLMDuration.Observe(duration)
		},
		OnComplete: func(e *CompleteEvent) {
			m.TriagesTotal.WithLabelValues(e.Outcome).Inc()
			m.TriageDuration.WithLabelValues(e.Outcome, e.Model).Observe(e.Duration)
			if e.Outcome == "success" {
				m.TriageConfidence.Observe(e.Confidence)
			}
			if e.ReplyTruncated {
				m.ReplyTruncations.Inc()
			}
			if e.AssigneeDropped != "" {
				m.AssigneesDropped.WithLabelValues(e.AssigneeDropped).Inc()
			}
		},
	}
}
