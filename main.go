package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/emojitapper/backend/internal/httpserver"
	"github.com/emojitapper/backend/internal/storage"
	"github.com/emojitapper/backend/internal/ws"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open score store")
	}

	hub := ws.NewHub(log.Logger)
	srv := httpserver.New(store, hub)

	port := getEnv("PORT", "8080")
	log.Info().Str("port", port).Msg("starting leaderboard server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore selects Postgres when DATABASE_URL is set, SQLite otherwise.
func openStore() (storage.Store, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		st := storage.NewPostgresStore(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Info().Msg("using postgres store")
		return st, nil
	}

	db, err := openDB(getEnv("DB_PATH", "./data/leaderboard.db"))
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("using sqlite store")
	return storage.NewSQLiteStore(db), nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
