package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the recorder's registry in the
// Prometheus exposition format (OpenMetrics when negotiated). Mount it at
// MetricsConfig.Path.
//
// A disabled recorder answers 404.
func (r *Recorder) Handler() http.Handler {
	if r == nil || !r.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(
		r.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// HandlerWithOptions returns a metrics handler with custom options.
//
// Example:
//
//	handler := rec.HandlerWithOptions(promhttp.HandlerOpts{
//		Timeout:             10 * time.Second,
//		MaxRequestsInFlight: 5,
//	})
func (r *Recorder) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(r.registry, opts)
}
