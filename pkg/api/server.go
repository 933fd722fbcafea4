package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vjranagit/tempmon/pkg/storage"
)

// DefaultWindowHours is the query window when the request carries no hours
// parameter.
const DefaultWindowHours = 3

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tempmon",
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests served.",
		},
		[]string{"handler", "code"},
	)
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempmon",
		Name:      "http_request_duration_seconds",
		Help:      "Latency of the temps query handler.",
	})
)

// Server implements the HTTP query adapter over the sample store.
type Server struct {
	store  *storage.Store
	cache  *storage.ResultCache
	server *http.Server
	now    func() time.Time
}

// NewServer creates a new API server. cache may be nil to disable result
// caching.
func NewServer(addr string, store *storage.Store, cache *storage.ResultCache, timeout time.Duration) *Server {
	s := &Server{
		store: store,
		cache: cache,
		now:   time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/temps", s.handleTemps)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      gzhttp.GzipHandler(mux),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return s
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the routing stack, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleTemps serves minute-averaged temperatures for the window
// [now - hours*3600s, now]. A window with no data is a 200 with count 0,
// never an error.
func (s *Server) handleTemps(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		requestsTotal.WithLabelValues("temps", "405").Inc()
		return
	}

	hours := DefaultWindowHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, fmt.Sprintf("invalid hours parameter %q: must be a positive integer", raw), http.StatusBadRequest)
			requestsTotal.WithLabelValues("temps", "400").Inc()
			return
		}
		hours = parsed
	}

	key := fmt.Sprintf("hours=%d", hours)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			writeJSON(w, cached)
			requestsTotal.WithLabelValues("temps", "200").Inc()
			requestDuration.Observe(time.Since(start).Seconds())
			return
		}
	}

	now := s.now()
	result, err := s.store.PerMinuteAverage(now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		http.Error(w, fmt.Sprintf("query failed: %v", err), http.StatusInternalServerError)
		requestsTotal.WithLabelValues("temps", "500").Inc()
		return
	}

	if s.cache != nil {
		s.cache.Put(key, result)
	}
	writeJSON(w, result)
	requestsTotal.WithLabelValues("temps", "200").Inc()
	requestDuration.Observe(time.Since(start).Seconds())
	log.WithFields(log.Fields{
		"hours": hours,
		"count": result.Count,
	}).Debug("temps query served")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}
