// Package middleware provides net/http middleware for bardfile servers.
//
// This package includes:
//   - OpenTelemetry request tracing
//   - Prometheus request metrics
//
// Both label requests with the chi route pattern that served them, so
// mount them with Use on a chi router:
//
//	reg := prometheus.NewRegistry()
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("preview"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/metrics"
//	    }),
//	)
//
// # Context Propagation
//
// The tracing middleware stores its span in the request context, so blob
// store calls made with r.Context() inherit the trace:
//
//	info, err := store.Info(r.Context(), signedID)
package middleware
