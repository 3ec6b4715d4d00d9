package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/paperdeck/paperdeck/internal/api/handlers"
	"github.com/paperdeck/paperdeck/internal/api/middlewares"
	"github.com/paperdeck/paperdeck/internal/config"
	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/services/analyzer"
	"github.com/paperdeck/paperdeck/internal/services/chat"
	"github.com/paperdeck/paperdeck/internal/services/documents"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, docSvc *documents.Service, chatSvc *chat.Service, analyzerSvc *analyzer.Analyzer) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(docSvc, analyzerSvc)
	chatHandler := handlers.NewChatHandler(db, chatSvc)
	sessionHandler := handlers.NewSessionHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(middlewares.JWT(cfg.JWTSecret))

			protected.Post("/documents/upload", docHandler.Upload)
			protected.Get("/documents", docHandler.List)
			protected.Post("/documents/{id}/analyze", docHandler.Analyze)
			protected.Delete("/documents/{id}", docHandler.Delete)

			protected.Post("/chat", chatHandler.Chat)

			protected.Post("/sessions", sessionHandler.Create)
			protected.Get("/sessions", sessionHandler.List)
			protected.Put("/sessions/{id}", sessionHandler.Rename)
			protected.Delete("/sessions/{id}", sessionHandler.Delete)
			protected.Get("/sessions/{id}/messages", sessionHandler.Messages)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
