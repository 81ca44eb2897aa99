// @title           Shopping List API
// @version         1.0
// @description     Owned and shared recipe shopping lists.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"lista-zakupow/internal/api"
	"lista-zakupow/internal/config"
	"lista-zakupow/internal/database"
	"lista-zakupow/internal/logger"
	"lista-zakupow/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "lista-zakupow/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Nie można wczytać konfiguracji", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("Nie można zainicjować magazynu list", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	go purgeExpired(ctx, store, cfg.Store.PurgeInterval, log)

	server := api.NewServer(cfg, store, wsHub)
	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Błąd podczas zamykania serwera", "error", err)
		}
	}()

	log.Info("Uruchamianie serwera", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Nie można uruchomić serwera", "error", err)
		os.Exit(1)
	}
	log.Info("Serwer zatrzymany")
}

// openStore picks PostgreSQL when a connection string is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (database.ListStore, func(), error) {
	if cfg.DB.Source == "" {
		log.Info("Brak konfiguracji bazy danych, listy przechowywane w pamięci", "ttl", cfg.Store.TTL)
		return database.NewMemoryStore(cfg.Store.MaxEntries, cfg.Store.TTL, nil), func() {}, nil
	}

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, nil, err
	}
	log.Info("Pomyślnie połączono z bazą danych")

	if err := database.Migrate(dbpool); err != nil {
		dbpool.Close()
		return nil, nil, err
	}

	return database.NewPostgresStore(dbpool, cfg.Store.TTL, nil), dbpool.Close, nil
}

func purgeExpired(ctx context.Context, store database.ListStore, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Error("Nie można usunąć wygasłych list", "error", err)
				continue
			}
			if purged > 0 {
				log.Info("Usunięto wygasłe listy", "count", purged)
			}
		}
	}
}
