package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_extractions_total",
			Help: "Total number of CV text extractions by method and status",
		},
		[]string{"method", "status"},
	)

	LettersGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letters_generated_total",
			Help: "Total number of cover letters generated by mode",
		},
		[]string{"mode"},
	)

	PromptTokensHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prompt_tokens",
			Help:    "Distribution of estimated prompt token counts",
			Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000},
		},
	)
)

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(ExtractionsTotal)
	prometheus.MustRegister(LettersGeneratedTotal)
	prometheus.MustRegister(PromptTokensHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveExtraction records the outcome of one CV text extraction.
func ObserveExtraction(method, status string) {
	ExtractionsTotal.WithLabelValues(method, status).Inc()
}

// ObserveLetter records one generated letter by mode (first or regenerate).
func ObserveLetter(regenerate bool) {
	mode := "first"
	if regenerate {
		mode = "regenerate"
	}
	LettersGeneratedTotal.WithLabelValues(mode).Inc()
}

// ObservePromptTokens records the estimated token count of an assembled prompt.
func ObservePromptTokens(n int) {
	if n > 0 {
		PromptTokensHistogram.Observe(float64(n))
	}
}
