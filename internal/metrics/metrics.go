/**
 * Copyright 2025 Dhiego Cassiano Fogaça Barbosa
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Connection outcome labels.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Relay direction labels.
const (
	DirectionClientToUpstream = "client_to_upstream"
	DirectionUpstreamToClient = "upstream_to_client"
)

// Error type labels.
const (
	ErrorProtocol        = "protocol"
	ErrorAuthRejected    = "auth_rejected"
	ErrorUpstreamConnect = "upstream_connect"
	ErrorUpstreamAuth    = "upstream_auth"
	ErrorRelayIO         = "relay_io"
)

// Collector owns every proxy metric and the private registry they are
// registered in.
type Collector struct {
	registry *prometheus.Registry

	connectionsTotal   *prometheus.CounterVec
	activeConnections  prometheus.Gauge
	bytesTransferred   *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	connectionDuration prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		connectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_proxy_connections_total",
				Help: "Client connections by final status.",
			},
			[]string{"status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "redis_proxy_active_connections",
				Help: "Client connections currently open.",
			},
		),
		bytesTransferred: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_proxy_bytes_transferred_total",
				Help: "Bytes relayed between clients and the upstream.",
			},
			[]string{"direction"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_proxy_errors_total",
				Help: "Errors by type.",
			},
			[]string{"type"},
		),
		connectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "redis_proxy_connection_duration_seconds",
				Help: "Client connection lifetime.",
				// 10ms up to ~45min; sessions are long-lived.
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
	}

	c.registry.MustRegister(
		c.connectionsTotal,
		c.activeConnections,
		c.bytesTransferred,
		c.errorsTotal,
		c.connectionDuration,
	)

	return c
}

// Handler serves the Prometheus exposition for this collector only.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ConnectionOpened() {
	c.activeConnections.Inc()
}

func (c *Collector) ConnectionClosed(status string, duration time.Duration) {
	c.activeConnections.Dec()
	c.connectionsTotal.WithLabelValues(status).Inc()
	c.connectionDuration.Observe(duration.Seconds())
}

func (c *Collector) BytesTransferred(direction string, count int64) {
	if count > 0 {
		c.bytesTransferred.WithLabelValues(direction).Add(float64(count))
	}
}

func (c *Collector) ErrorOccurred(errorType string) {
	c.errorsTotal.WithLabelValues(errorType).Inc()
}
