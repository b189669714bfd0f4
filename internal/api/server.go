// Package api exposes the availability calendar and the public request
// workflow over HTTP. Staff booking edits go through the service layer
// directly; this surface is intentionally small.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"penzion/internal/service"
)

// Site bundles the services of one configured location.
type Site struct {
	Name     string
	Booking  *service.BookingService
	Requests *service.RequestService
}

// HTTPServer serves the booking API for all configured sites.
type HTTPServer struct {
	sites  map[string]*Site
	cache  *availabilityCache
	logger *zerolog.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	rateLimit rate.Limit
	rateBurst int
}

// NewHTTPServer wires the handler set. rdb may be nil (no caching).
func NewHTTPServer(sites []*Site, rdb *redis.Client, cacheTTL time.Duration, perMinute, burst int, logger *zerolog.Logger) *HTTPServer {
	byName := make(map[string]*Site, len(sites))
	for _, s := range sites {
		byName[s.Name] = s
	}
	srv := &HTTPServer{
		sites:     byName,
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(float64(perMinute) / 60.0),
		rateBurst: burst,
	}
	if rdb != nil && cacheTTL > 0 {
		srv.cache = newAvailabilityCache(rdb, cacheTTL)
	}
	return srv
}

// Handler returns the route mux.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/requests", s.handleRequests)
	mux.HandleFunc("/api/requests/promote", s.handlePromote)
	mux.HandleFunc("/api/overview", s.handleOverview)
	return mux
}

// Start runs the API server until the context is cancelled.
func (s *HTTPServer) Start(ctx context.Context, port int) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) site(name string) (*Site, bool) {
	site, ok := s.sites[name]
	return site, ok
}

// allow applies the per-client submission rate limit.
func (s *HTTPServer) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(s.rateLimit, s.rateBurst)
		s.limiters[host] = limiter
	}
	return limiter.Allow()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
