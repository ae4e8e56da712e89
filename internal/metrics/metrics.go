// Package metrics содержит метрики Prometheus для листа ожидания.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы обработки заявки, значения метки outcome.
const (
	OutcomeSuccess       = "success"
	OutcomeDuplicate     = "duplicate"
	OutcomeUpstreamError = "upstream_error"
	OutcomeConfigError   = "config_error"
	OutcomeServerError   = "server_error"
)

// Metrics набор счётчиков сервиса.
type Metrics struct {
	signups         *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

// New регистрирует метрики в reg. Для тестов удобно передавать prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waitlist",
			Name:      "signups_total",
			Help:      "Signup submissions by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waitlist",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of outbound provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	reg.MustRegister(m.signups, m.providerLatency)
	return m
}

// Signup учитывает одну обработанную заявку. Безопасен для nil.
func (m *Metrics) Signup(provider, outcome string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(provider, outcome).Inc()
}

// ProviderCall учитывает длительность обращения к провайдеру. Безопасен для nil.
func (m *Metrics) ProviderCall(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}
