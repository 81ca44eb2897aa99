package api

import (
	"context"
	"fmt"
	"net/http"

	"lista-zakupow/internal/config"
	"lista-zakupow/internal/database"
	"lista-zakupow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jaevor/go-nanoid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	listIDLength  = 21
	shareIDLength = 8
)

type Server struct {
	config *config.Config
	store  database.ListStore
	wsHub  *websocket.Hub
}

// NewServer accepts a nil hub when live updates are not wanted.
func NewServer(cfg *config.Config, store database.ListStore, wsHub *websocket.Hub) *Server {
	return &Server{
		config: cfg,
		store:  store,
		wsHub:  wsHub,
	}
}

// Routes builds the full HTTP surface of the list server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Serwer list zakupów działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/lists", s.CreateListHandler)
	r.Get("/lists/{listId}", s.GetListHandler)
	r.Patch("/lists/{listId}", s.UpdateListHandler)

	r.Route("/api/lists/share", func(r chi.Router) {
		r.Post("/", s.CreateShareHandler)
		r.Get("/{shareId}", s.GetShareHandler)
		r.Patch("/{shareId}", s.UpdateShareHandler)
		r.Get("/{shareId}/ws", s.ServeWsHandler)
	})

	return r
}

// generateUniqueID draws nanoids until exists reports a free one.
func generateUniqueID(ctx context.Context, length int, exists func(context.Context, string) (bool, error)) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(length)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check id uniqueness: %w", err)
		}
		if !taken {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique id after %d attempts", maxRetries)
}
