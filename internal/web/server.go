// Package web serves the taskboard HTML interface.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/core/task"
	"github.com/colonyops/taskboard/internal/taskboard"
	"github.com/colonyops/taskboard/pkg/tmpl"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Server is the HTTP front end over a TaskService.
type Server struct {
	tasks   *taskboard.TaskService
	pages   *tmpl.Renderer
	flash   *FlashStore
	cfg     config.ServerConfig
	log     zerolog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server. Templates are parsed eagerly so a broken template
// fails at startup rather than on first request.
func New(tasks *taskboard.TaskService, cfg config.ServerConfig, log zerolog.Logger) (*Server, error) {
	templates, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, err
	}

	pages, err := tmpl.New(tmpl.Config{
		FS:    templates,
		Funcs: map[string]any{"titlecase": titlecase},
	})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Server{
		tasks: tasks,
		pages: pages,
		flash: NewFlashStore([]byte(cfg.SecretKey)),
		cfg:   cfg,
		log:   log,
		mux:   http.NewServeMux(),
	}
	s.routes()
	s.handler = chain(s.mux, requestID(), accessLog(s.log), recoverer(s.log))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /add_task", s.handleAddTask)
	s.mux.HandleFunc("GET /edit_task/{id}", s.handleEditTaskForm)
	s.mux.HandleFunc("POST /edit_task/{id}", s.handleEditTask)
	s.mux.HandleFunc("GET /delete_task/{id}", s.handleDeleteTask)

	// System
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	static, _ := fs.Sub(assets, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting at most ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("web server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// titlecase accepts any value so templates can pass a task.Priority directly.
func titlecase(v any) string {
	return task.TitleCase(fmt.Sprint(v))
}
