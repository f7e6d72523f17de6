// Package metrics exposes authentication counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes recorded by the gateway.
const (
	OutcomeSuccess       = "success"
	OutcomeFailed        = "failed"
	OutcomeInvalid       = "invalid"
	OutcomeInactive      = "inactive"
	OutcomeForbidden     = "forbidden"
	OutcomeThrottled     = "throttled"
	OutcomeInternalError = "error"
)

// Recorder is what the service layer depends on.
type Recorder interface {
	RecordLogin(channel, outcome string)
	RecordLogout(channel string)
}

type Collector struct {
	loginAttempts *prometheus.CounterVec
	logouts       *prometheus.CounterVec
}

// NewCollector registers the authentication counters with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_login_attempts_total",
			Help: "Login attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_logouts_total",
			Help: "Logouts by channel.",
		}, []string{"channel"}),
	}

	reg.MustRegister(c.loginAttempts, c.logouts)

	return c
}

func (c *Collector) RecordLogin(channel, outcome string) {
	c.loginAttempts.WithLabelValues(channel, outcome).Inc()
}

func (c *Collector) RecordLogout(channel string) {
	c.logouts.WithLabelValues(channel).Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are not wired.
type Nop struct{}

func (Nop) RecordLogin(string, string) {}
func (Nop) RecordLogout(string)        {}
