package main

import (
	"context"
	"log"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/inklinehq/roi-backend/config"
	"github.com/inklinehq/roi-backend/internal/admin"
	"github.com/inklinehq/roi-backend/internal/auth"
	"github.com/inklinehq/roi-backend/internal/bootstrap"
	"github.com/inklinehq/roi-backend/internal/mail"
	"github.com/inklinehq/roi-backend/internal/notify"
	"github.com/inklinehq/roi-backend/internal/observability"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()
	deps := bootstrap.RouterDeps{
		ServiceName:    "roi-backend",
		Version:        cfg.App.Version,
		AllowedOrigins: strings.Split(getOrigins(cfg), ","),
		InviteURL:      cfg.Mail.InviteURL,
	}

	var store domain.Store
	switch cfg.Database.Driver {
	case "sqlite":
		s, err := repository.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite open: %v", err)
		}
		store = s
		log.Printf("scenario store: sqlite (%s)", cfg.Database.SQLitePath)
	default:
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		deps.DB = pool
		store = repository.NewPG(pool)

		statsDB, err := admin.OpenStatsDB(cfg.Database.DSN())
		if err != nil {
			log.Fatalf("stats db: %v", err)
		}
		defer statsDB.Close()
		deps.StatsDB = statsDB

		log.Printf("scenario store: postgres (%s:%d/%s)", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}
	deps.Store = store

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("redis unavailable, save events disabled: %v", err)
	} else {
		defer rdb.Close()
		deps.Redis = rdb
		deps.Notifier = notify.New(rdb)
	}

	var authClient *fbauth.Client
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(ctx, cfg.Firebase.CredentialsPath)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		log.Println("auth: firebase token verification")
	} else {
		log.Println("auth: dev headers (FIREBASE_CREDENTIALS not set)")
	}
	deps.Auth = authClient

	if deps.StatsDB != nil {
		mailer, err := mail.New(ctx, cfg.Mail.Region, cfg.Mail.Sender)
		if err != nil {
			log.Printf("ses unavailable, invitations disabled: %v", err)
		} else {
			deps.Mailer = mailer
		}
	}

	deps.Metrics = observability.NewCollector(nil)

	r := bootstrap.BuildRouter(deps)
	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func getOrigins(cfg *config.Config) string {
	if cfg.App.Environment == "production" {
		return "https://app.inkline.io"
	}
	return "http://localhost:3000,http://localhost:5173"
}
