// Package server provides the HTTP server for the AirFrame studio.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/airframe/internal/app"
	"github.com/ayusman/airframe/internal/logger"
	"github.com/ayusman/airframe/internal/metrics"
	"github.com/ayusman/airframe/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// StreamQuality is the JPEG quality of the MJPEG stream.
	StreamQuality int
}

// Server represents the HTTP server for the AirFrame studio.
type Server struct {
	config Config
	router chi.Router
	events *EventsHandler
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		if config.App != nil {
			config.Metrics = config.App.Metrics()
		} else {
			config.Metrics = metrics.New()
		}
	}

	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(s.config.Logger))
	r.Use(metrics.RequestMiddleware(s.config.Metrics))

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", s.config.Metrics.Handler(s.updateGauges))

	if a := s.config.App; a != nil {
		studio := api.NewStudioHandler(a, s.config.Logger)
		s.events = NewEventsHandler(a, s.config.Logger)

		r.Get("/api/state", studio.State)
		r.Post("/api/frames", studio.SubmitFrame)
		r.Put("/api/filter", studio.SetFilter)
		r.Post("/api/actions/{action}", studio.Trigger)
		r.Get("/api/stream", NewStreamHandler(a.Frames(), s.config.StreamQuality).ServeHTTP)
		r.Get("/api/events", s.events.ServeHTTP)

		if st := a.Store(); st != nil {
			photos := api.NewPhotoHandler(st, s.config.Logger)
			actions := api.NewActionHandler(st, s.config.Logger)

			r.Get("/api/actions", actions.List)
			r.Route("/api/photos", func(r chi.Router) {
				r.Get("/", photos.List)
				r.Get("/{id}", photos.Get)
				r.Delete("/{id}", photos.Delete)
			})
		}
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// updateGauges refreshes gauges before a metrics scrape.
func (s *Server) updateGauges() {
	if s.config.App == nil || s.config.App.Store() == nil {
		return
	}
	if n, err := s.config.App.Store().Photos().Count(); err == nil {
		s.config.Metrics.SetGalleryItems(n)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if s.events != nil {
		response["event_clients"] = s.events.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on addr and blocks until it stops.
// It returns nil after a graceful Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.config.Logger.Info("listening", slog.String("addr", addr))

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes websocket clients and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.events != nil {
		s.events.Close()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
