package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRouter(mw func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/files/{index}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/files", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// metricValue finds the sample of name whose labels include want.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue next
				}
			}
			return m
		}
	}
	return nil
}

func TestPrometheusRecordsRoutePatterns(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(WithRegistry(reg)))

	serve(h, http.MethodGet, "/files/0")
	serve(h, http.MethodGet, "/files/1")
	serve(h, http.MethodPost, "/files")
	serve(h, http.MethodGet, "/missing")

	tests := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"route": "/files/{index}", "method": "GET", "status": "200"}, 2},
		{map[string]string{"route": "/files", "method": "POST", "status": "422"}, 1},
		{map[string]string{"route": unmatchedRoute, "method": "GET", "status": "404"}, 1},
	}
	for _, tt := range tests {
		m := metricValue(t, reg, "bardfile_http_requests_total", tt.labels)
		if m == nil {
			t.Errorf("no requests_total sample for %v", tt.labels)
			continue
		}
		if got := m.GetCounter().GetValue(); got != tt.want {
			t.Errorf("requests_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}

	m := metricValue(t, reg, "bardfile_http_request_duration_seconds", map[string]string{"route": "/files/{index}"})
	if m == nil || m.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("request_duration_seconds = %v, want 2 samples", m)
	}
	if m := metricValue(t, reg, "bardfile_http_requests_in_flight", nil); m == nil || m.GetGauge().GetValue() != 0 {
		t.Errorf("requests_in_flight = %v, want 0", m)
	}
}

func TestPrometheusOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(
		WithRegistry(reg),
		WithNamespace("preview"),
		WithSubsystem(""),
		WithConstLabels(prometheus.Labels{"instance": "a"}),
		WithBuckets([]float64{0.1, 1}),
	))
	serve(h, http.MethodGet, "/files/3")

	if m := metricValue(t, reg, "preview_requests_total", map[string]string{"instance": "a"}); m == nil {
		t.Error("namespace, subsystem and const labels not applied")
	}
	m := metricValue(t, reg, "preview_request_duration_seconds", nil)
	if m == nil || len(m.GetHistogram().GetBucket()) != 2 {
		t.Errorf("buckets not applied: %v", m)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(0); got != "200" {
		t.Errorf("statusLabel(0) = %q, want 200", got)
	}
	if got := statusLabel(404); got != "404" {
		t.Errorf("statusLabel(404) = %q, want 404", got)
	}
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span
	name  string
	kind  trace.SpanKind
	attrs map[attribute.Key]attribute.Value
	code  codes.Code
	ended bool
}

func (s *recordingSpan) SetName(name string) { s.name = name }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.code = code }

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func TestOpenTelemetrySpans(t *testing.T) {
	tests := []struct {
		method, path string
		name         string
		route        string
		status       int64
		code         codes.Code
	}{
		{"GET", "/files/2", "GET /files/{index}", "/files/{index}", 200, codes.Ok},
		{"POST", "/files", "POST /files", "/files", 422, codes.Ok},
		{"GET", "/boom", "GET /boom", "/boom", 503, codes.Error},
		{"GET", "/nope", "GET " + unmatchedRoute, unmatchedRoute, 404, codes.Ok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := &recordingTracer{}
			h := newRouter(OpenTelemetry(WithTracer(tracer)))
			serve(h, tt.method, tt.path)

			if len(tracer.spans) != 1 {
				t.Fatalf("spans = %d, want 1", len(tracer.spans))
			}
			s := tracer.spans[0]
			if s.name != tt.name {
				t.Errorf("name = %q, want %q", s.name, tt.name)
			}
			if s.kind != trace.SpanKindServer {
				t.Errorf("kind = %v, want server", s.kind)
			}
			if got := s.attrs["http.route"].AsString(); got != tt.route {
				t.Errorf("http.route = %q, want %q", got, tt.route)
			}
			if got := s.attrs["http.target"].AsString(); got != tt.path {
				t.Errorf("http.target = %q, want %q", got, tt.path)
			}
			if got := s.attrs["http.status_code"].AsInt64(); got != tt.status {
				t.Errorf("http.status_code = %d, want %d", got, tt.status)
			}
			if s.code != tt.code {
				t.Errorf("status code = %v, want %v", s.code, tt.code)
			}
			if !s.ended {
				t.Error("span not ended")
			}
		})
	}
}

func TestOpenTelemetryFilterAndExtractor(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(OpenTelemetry(
		WithTracer(tracer),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
		WithAttributeExtractor(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("bardfile.field", "avatar")}
		}),
	))

	if rec := serve(h, http.MethodGet, "/boom"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("filtered request status = %d, want 503", rec.Code)
	}
	if len(tracer.spans) != 0 {
		t.Fatalf("filtered request traced: %d spans", len(tracer.spans))
	}

	serve(h, http.MethodGet, "/files/0")
	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
	if got := tracer.spans[0].attrs["bardfile.field"].AsString(); got != "avatar" {
		t.Errorf("extracted attribute = %q, want avatar", got)
	}
}

func TestOpenTelemetrySpanInHandlerContext(t *testing.T) {
	tracer := &recordingTracer{}
	r := chi.NewRouter()
	r.Use(OpenTelemetry(WithTracer(tracer)))
	var inHandler trace.Span
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		inHandler = trace.SpanFromContext(r.Context())
	})
	serve(r, http.MethodGet, "/")

	if len(tracer.spans) != 1 || inHandler != trace.Span(tracer.spans[0]) {
		t.Error("handler context does not carry the request span")
	}
}
