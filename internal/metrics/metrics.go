package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PackagesBuilt   prometheus.Counter
	AttemptsScored  prometheus.Counter
	AttemptScores   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		),
		PackagesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tryout_packages_built_total",
			Help: "Try-out packages created",
		}),
		AttemptsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tryout_attempts_scored_total",
			Help: "Attempts scored and recorded",
		}),
		AttemptScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tryout_attempt_score",
			Help:    "Distribution of attempt scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	reg.MustRegister(m.RequestCounter, m.RequestDuration, m.PackagesBuilt, m.AttemptsScored, m.AttemptScores)
	return m
}

func (m *Metrics) PackageBuilt() {
	if m == nil {
		return
	}
	m.PackagesBuilt.Inc()
}

func (m *Metrics) AttemptScored(score float64) {
	if m == nil {
		return
	}
	m.AttemptsScored.Inc()
	m.AttemptScores.Observe(score)
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	if status == 0 {
		status = 200
	}
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}
