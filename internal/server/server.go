// Package server serves the dashboard views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KaramelBytes/bikedash/internal/config"
	"github.com/KaramelBytes/bikedash/internal/views"
)

// Server is the HTTP dashboard.
type Server struct {
	cfg     *config.Global
	log     *zap.Logger
	load    views.Loader
	metrics *metrics
	router  chi.Router
}

// New wires routes and middleware. load is called per data view request;
// pass a memoizing loader such as dataset.Default.
func New(cfg *config.Global, load views.Loader, log *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log.With(zap.String("component", "server")),
		load:    load,
		metrics: newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log, s.metrics))
	r.Use(recoverer(s.log))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	h := &viewsHandler{s: s}
	r.Group(func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst, s.log))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/views/"+views.About.Slug(), http.StatusFound)
		})
		r.Mount("/views", h.Routes())
		r.Mount("/api/views", h.APIRoutes())
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSec) * time.Second,
	}
	s.warmUp()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// warmUp loads the dataset once so the first page view does not pay for it.
// A failure is logged; data views report it per request.
func (s *Server) warmUp() {
	start := time.Now()
	ds, err := s.load()
	if err != nil {
		s.log.Warn("dataset not loaded", zap.Error(err))
		return
	}
	s.log.Info("dataset loaded",
		zap.String("path", ds.Path),
		zap.Int("rows", ds.Len()),
		zap.Duration("took", time.Since(start)),
	)
}

type healthStatus struct {
	Status        string     `json:"status"`
	DatasetLoaded bool       `json:"dataset_loaded"`
	Rows          int        `json:"rows,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	st := healthStatus{Status: "ok"}
	ds, err := s.load()
	if err != nil {
		st.Status = "degraded"
		st.Error = err.Error()
	} else {
		st.DatasetLoaded = true
		st.Rows = ds.Len()
		st.LoadedAt = &ds.LoadedAt
	}
	renderJSON(w, r, st)
}
