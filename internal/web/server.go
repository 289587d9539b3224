// Package web provides the dashboard REST API.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/user/homepulse/internal/alert"
	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/monitor"
	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
)

// Server is the API server.
type Server struct {
	db     *storage.DB
	config *util.Config
	port   int
	srv    *http.Server
}

// NewServer creates a new API server.
func NewServer(db *storage.DB, cfg *util.Config, port int) *Server {
	return &Server{
		db:     db,
		config: cfg,
		port:   port,
	}
}

// newRouter builds the API router for the given handlers.
func newRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/pages", h.ListPages)
		r.Post("/pages", h.CreatePage)
		r.Put("/pages/{id}", h.UpdatePage)
		r.Delete("/pages/{id}", h.DeletePage)

		r.Get("/groups", h.ListGroups)
		r.Post("/groups", h.CreateGroup)
		r.Put("/groups/{id}", h.UpdateGroup)
		r.Delete("/groups/{id}", h.DeleteGroup)

		r.Get("/services", h.ListServices)
		r.Post("/services", h.CreateService)
		r.Put("/services/{id}", h.UpdateService)
		r.Delete("/services/{id}", h.DeleteService)
		r.Get("/services/{id}/alert-config", h.GetServiceAlertConfig)
		r.Put("/services/{id}/alert-config", h.UpdateServiceAlertConfig)
		r.Delete("/services/{id}/alert-config", h.DeleteServiceAlertConfig)

		r.Get("/icons", h.ListIcons)
		r.Post("/icons", h.CreateIcon)
		r.Put("/icons/{id}", h.UpdateIcon)
		r.Delete("/icons/{id}", h.DeleteIcon)

		r.Get("/widgets", h.ListWidgets)
		r.Post("/widgets", h.CreateWidget)
		r.Put("/widgets/{id}", h.UpdateWidget)
		r.Delete("/widgets/{id}", h.DeleteWidget)

		r.Post("/ping", h.Ping)
		r.Post("/test-webhook", h.TestWebhook)

		r.Get("/alert-settings", h.GetAlertSettings)
		r.Put("/alert-settings", h.UpdateAlertSettings)
		r.Get("/alert-history", h.GetAlertHistory)
		r.Delete("/alert-history", h.ClearAlertHistory)
	})

	return r
}

// Start starts the API server and blocks until shutdown.
func (s *Server) Start() error {
	pipeline := alert.NewPipeline(s.db, s.config)
	h := NewHandlers(s.db, s.config, pipeline)
	r := newRouter(h)

	// Server-side poll loop so alerting works without an open dashboard.
	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	defer monitorCancel()
	if s.config.MonitorEnabled {
		dashboards := storage.NewDashboardStorage(s.db)
		monitor.Run(monitorCtx, s.config.MonitorInterval, func() ([]model.ServiceDescriptor, error) {
			services, err := dashboards.ListServices()
			if err != nil {
				return nil, err
			}
			descriptors := make([]model.ServiceDescriptor, len(services))
			for i, svc := range services {
				descriptors[i] = model.ServiceDescriptor{
					ID:   svc.ID,
					Name: svc.Name,
					URL:  svc.URL,
					IP:   svc.IP,
					Port: svc.Port,
				}
			}
			return descriptors, nil
		}, pipeline)
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.srv.Shutdown(ctx)
	}()

	util.Info("API server starting on port %d", s.port)

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops the API server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
