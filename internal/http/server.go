// Package http exposes the projection planner over a JSON API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tomcoffee/kimono-sim/internal/cache"
	"github.com/tomcoffee/kimono-sim/internal/log"
	"github.com/tomcoffee/kimono-sim/internal/planner"
)

type Server struct {
	http.Server
	planner     *planner.Planner
	logger      *log.Logger
	rateLimiter *rateLimiter

	// Derived views are cached per state version; any edit bumps the
	// version, so stale entries age out instead of being invalidated.
	viewCache    *cache.LRUCache[planner.View]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, pl *planner.Planner, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		planner:      pl,
		logger:       logger,
		rateLimiter:  newRateLimiter(),
		viewCache:    cache.NewLRUCache[planner.View](16, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.viewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/plan", s.withMiddleware(s.handleGetPlan))
	mux.HandleFunc("/plan/edits", s.withMiddleware(s.handleEdit))
	mux.HandleFunc("/plan/save", s.withMiddleware(s.handleSave))
	mux.HandleFunc("/plan/reload", s.withMiddleware(s.handleReload))
	mux.HandleFunc("/notices/dismiss", s.withMiddleware(s.handleDismissNotice))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		logger := log.FromContext(ctx)
		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Mutating endpoints are all POST; GETs stay unthrottled.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// currentView returns the derived view for the planner's current
// version, consulting the per-version cache first. Status and notices
// change without a version bump, so they are overlaid fresh on every
// call; only the derived records and summary are cached.
func (s *Server) currentView() planner.View {
	key := strconv.FormatUint(s.planner.Version(), 10)
	if v, found := s.viewCache.Get(key); found {
		v.Status = s.planner.Status()
		v.Notices = s.planner.Notices()
		return v
	}

	v := s.planner.View()
	s.viewCache.Set(strconv.FormatUint(v.Version, 10), v)
	return v
}
