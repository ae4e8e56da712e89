package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Signup(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Signup("airtable", OutcomeSuccess)
	m.Signup("airtable", OutcomeSuccess)
	m.Signup("airtable", OutcomeDuplicate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.signups.WithLabelValues("airtable", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues("airtable", OutcomeDuplicate)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.signups.WithLabelValues("mailchimp", OutcomeSuccess)))
}

func TestMetrics_ProviderCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ProviderCall("mailchimp", 150*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.providerLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Signup("airtable", OutcomeSuccess)
		m.ProviderCall("airtable", time.Second)
	})
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
