// Package web exposes the task list over a small JSON HTTP API.
package web

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"task-list/internal/api"
	"task-list/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server serves the JSON API. Every API call runs under one mutex, so the
// task list sees one operation at a time no matter how many requests arrive.
type Server struct {
	api    api.BusinessAPI
	logger *zap.Logger
	router chi.Router
	mu     sync.Mutex
}

// NewServer creates a server over the given API
func NewServer(businessAPI api.BusinessAPI, logger *zap.Logger) *Server {
	s := &Server{
		api:    businessAPI,
		logger: logging.OrNop(logger),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.serialize)

		r.Get("/progress", s.getProgress)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Post("/clear-completed", s.clearCompleted)
			r.Get("/{id}", s.getTask)
			r.Delete("/{id}", s.deleteTask)
			r.Post("/{id}/toggle", s.toggleTask)
			r.Post("/{id}/done", s.completeTask)
			r.Post("/{id}/reopen", s.reopenTask)
		})
	})

	return r
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A client that left while waiting for the lock must not change the list.
		if err := r.Context().Err(); err != nil {
			s.logger.Warn("request abandoned before it ran",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Error(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and retries any unsaved write.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.api.HasUnsavedChanges() {
		if err := s.api.Flush(shutdownCtx); err != nil {
			s.logger.Error("unsaved changes lost on shutdown", zap.Error(err))
			return err
		}
	}
	s.logger.Info("http server stopped")
	return nil
}
