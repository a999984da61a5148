// Package server exposes the JSON API consumed by the client core:
// authentication, budgets and the habits placeholder.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dru/internal/auth"
	"dru/internal/cache"
	"dru/internal/services"
	"dru/internal/storage"
)

type Server struct {
	http.Server
	repo         storage.Repository
	auth         *auth.Manager
	transactions *services.TransactionService
	rateLimiter  *rateLimiter

	// Month reports are expensive to recompute on every dashboard
	// refresh; cached per user+period and dropped on writes.
	reportCache *cache.LRUCache[storage.MonthReport]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, repo storage.Repository, authManager *auth.Manager, txService *services.TransactionService, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:             repo,
		auth:             authManager,
		transactions:     txService,
		rateLimiter:      newRateLimiter(),
		reportCache:      cache.NewLRUCache[storage.MonthReport](cacheSize, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /auth/register", s.withRequestLog(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withRequestLog(s.handleLogin))

	// Public probe endpoint, no token required.
	mux.HandleFunc("GET /habits/", s.withRequestLog(s.handleHabitsWelcome))

	mux.HandleFunc("GET /budgets/categories", s.withRequestLog(s.requireAuth(s.handleListCategories)))
	mux.HandleFunc("POST /budgets/categories", s.withRequestLog(s.requireAuth(s.handleCreateCategory)))
	mux.HandleFunc("GET /budgets/transactions", s.withRequestLog(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /budgets/transactions", s.withRequestLog(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /budgets/reports/month", s.withRequestLog(s.requireAuth(s.handleMonthReport)))

	return s
}

// startCacheCleanup runs periodic cleanup for the report cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.reportCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Report cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
