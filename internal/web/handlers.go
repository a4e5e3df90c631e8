package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"task-list/internal/domain"
	"task-list/internal/errors"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
}

// ClearCompletedResponse is the body of POST /api/tasks/clear-completed
type ClearCompletedResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	view, err := s.api.GetView(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, view)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.api.GetProgress(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, progress)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var request CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.fail(w, r, errors.NewInvalidInputError("body", nil, "request body must be a JSON object"))
		return
	}

	task, err := s.api.AddTask(r.Context(), request.Name, request.Priority)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.respondTask(w, r, s.api.GetTask)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	s.respondTask(w, r, s.api.ToggleTask)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	s.respondTask(w, r, s.api.CompleteTask)
}

func (s *Server) reopenTask(w http.ResponseWriter, r *http.Request) {
	s.respondTask(w, r, s.api.ReopenTask)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if _, err := s.api.RemoveTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := s.api.ClearCompleted(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, ClearCompletedResponse{Removed: removed})
}

type taskAction func(ctx context.Context, ref string) (*domain.Task, error)

func (s *Server) respondTask(w http.ResponseWriter, r *http.Request, action taskAction) {
	task, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, task)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.ShouldLogError(err) {
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		}
		if appErr, ok := errors.AsAppError(err); ok {
			for _, key := range []string{"operation", "path"} {
				if value, ok := appErr.GetContext(key); ok {
					fields = append(fields, zap.Any(key, value))
				}
			}
		}
		s.logger.Error("request failed", fields...)
	}
	responseWithError(w, r, err)
}
