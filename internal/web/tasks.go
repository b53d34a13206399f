package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/colonyops/taskboard/internal/taskboard"
)

// page is the data passed to every template. The layout reads Title and
// Flashes, the individual pages read the rest.
type page struct {
	Title      string
	Flashes    []Flash
	Tasks      []task.Task
	Task       task.Task
	Priorities []task.Priority
	Status     int
	Message    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "index.html", page{
		Title:   "Tasks",
		Flashes: s.flash.Pop(w, r),
		Tasks:   tasks,
	})
}

// handleAddTask creates a task, or toggles one when task_id is posted.
func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := s.tasks.Submit(r.Context(), r.PostForm.Get("task_id"), r.PostForm.Get("description"))
	if err != nil {
		s.handleTaskError(w, r, err, "/")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEditTaskForm(w http.ResponseWriter, r *http.Request) {
	id, err := taskboard.ParseID(r.PathValue("id"))
	if err != nil {
		s.notFound(w, r)
		return
	}

	t, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.handleTaskError(w, r, err, "/")
		return
	}

	s.render(w, r, http.StatusOK, "edit_task.html", page{
		Title:      "Edit task",
		Flashes:    s.flash.Pop(w, r),
		Task:       t,
		Priorities: task.Priorities(),
	})
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskboard.ParseID(r.PathValue("id"))
	if err != nil {
		s.notFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := task.EditForm{
		Description: r.PostForm.Get("description"),
		Priority:    r.PostForm.Get("priority"),
		Progress:    r.PostForm.Get("progress"),
		Completed:   r.PostForm.Get("completed") == "on",
	}

	if _, err := s.tasks.Edit(r.Context(), id, form); err != nil {
		s.handleTaskError(w, r, err, "/edit_task/"+strconv.FormatInt(id, 10))
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskboard.ParseID(r.PathValue("id"))
	if err != nil {
		s.notFound(w, r)
		return
	}

	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.handleTaskError(w, r, err, "/")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.tasks.Count(r.Context())
	if err != nil {
		s.log.Error().Ctx(r.Context()).Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tasks": count})
}

// handleTaskError maps service errors onto responses. Validation failures
// become a flash message and a redirect to back, unknown tasks a 404.
func (s *Server) handleTaskError(w http.ResponseWriter, r *http.Request, err error, back string) {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		if ferr := s.flash.Add(w, r, FlashError, verr.Message); ferr != nil {
			s.serverError(w, r, ferr)
			return
		}
		http.Redirect(w, r, back, http.StatusFound)
	case errors.Is(err, task.ErrNotFound):
		s.notFound(w, r)
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", page{
		Title:   "Not Found",
		Status:  http.StatusNotFound,
		Message: "The requested task does not exist.",
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Ctx(r.Context()).Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, name, data); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
