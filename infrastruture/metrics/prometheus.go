// Package metrics exports session server counters to Prometheus.
package metrics

import (
	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "duo_platformer"

var _ i.Metrics = &Prometheus{}

// Prometheus implements i.Metrics.
type Prometheus struct {
	openConnections prometheus.Gauge
	disconnects     prometheus.Counter
	requests        *prometheus.CounterVec
	protocolErrors  prometheus.Counter
}

// New registers the session metrics on reg. An empty namespace uses "duo_platformer".
func New(reg prometheus.Registerer, namespace string) *Prometheus {
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Prometheus{
		openConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_connections",
			Help:      "Number of connected players",
		}),
		disconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Total number of closed player connections",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of applied requests by message type",
		}, []string{"type"}),
		protocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of rejected messages",
		}),
	}
}

func (p *Prometheus) ConnectionOpened() {
	p.openConnections.Inc()
}

func (p *Prometheus) ConnectionClosed() {
	p.openConnections.Dec()
	p.disconnects.Inc()
}

func (p *Prometheus) RequestHandled(msgType string) {
	p.requests.WithLabelValues(msgType).Inc()
}

func (p *Prometheus) ProtocolError() {
	p.protocolErrors.Inc()
}
