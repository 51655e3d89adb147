package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stockroom/internal/analytics"
	"stockroom/internal/archive"
	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/httpserver"
	"stockroom/internal/importer"
	"stockroom/internal/logger"
	"stockroom/internal/store"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	cfg, err := config.Load()
	if err != nil {
		lg.Fatalw("config load failed", "error", err)
	}

	db, err := store.Open(cfg.Database, lg)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	st := store.New(db, lg, store.Options{
		AdminRecipient:         cfg.AdminRecipient,
		ManagerRecipient:       cfg.ManagerRecipient,
		StrictOrderTransitions: cfg.StrictOrderTransitions,
	})
	if seeded, err := st.Seed(context.Background(), cfg.SeedDemo); err != nil {
		lg.Fatalw("seed failed", "error", err)
	} else if seeded {
		lg.Infow("seeded default users", "demo", cfg.SeedDemo)
	}

	kw, err := importer.LoadKeywords(cfg.ImportKeywordsFile)
	if err != nil {
		lg.Fatalw("keyword table", "error", err)
	}
	archiver, err := archive.New(cfg.Archive, lg)
	if err != nil {
		lg.Fatalw("archive setup failed", "error", err)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		lg.Warnw("JWT_SECRET is empty; using a random secret, tokens will not survive a restart")
	}
	router := httpserver.NewRouter(httpserver.Deps{
		Store:      st,
		Analytics:  analytics.New(st, lg),
		Importer:   importer.New(kw, st, lg),
		Archiver:   archiver,
		Tokens:     auth.NewTokens(secret),
		Sessions:   sessionStore(cfg, st, lg),
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     lg,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	lg.Infow("listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func sessionStore(cfg config.Config, st *store.Store, lg *zap.SugaredLogger) auth.SessionStore {
	if cfg.Auth.SessionBackend != "redis" {
		return auth.NewDBSessions(st.DB())
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Fatalw("redis connect failed", "addr", cfg.Redis.Addr, "error", err)
	}
	lg.Infow("sessions stored in redis", "addr", cfg.Redis.Addr)
	return auth.NewRedisSessions(rdb)
}
