package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register adds the engine state collector to the default registry.
func Register(c *StateCollector) error {
	return prometheus.Register(c)
}

// Handler returns the Prometheus metrics HTTP handler.
// It serves every promauto metric plus registered collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
