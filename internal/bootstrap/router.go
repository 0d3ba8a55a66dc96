package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/inklinehq/roi-backend/internal/admin"
	httpapi "github.com/inklinehq/roi-backend/internal/api/http"
	"github.com/inklinehq/roi-backend/internal/api/http/middleware"
	"github.com/inklinehq/roi-backend/internal/auth"
	"github.com/inklinehq/roi-backend/internal/observability"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	scenarioshttp "github.com/inklinehq/roi-backend/internal/scenarios/http"
	"github.com/inklinehq/roi-backend/internal/scenarios/repository"
	"github.com/inklinehq/roi-backend/internal/scenarios/session"
	"github.com/inklinehq/roi-backend/internal/users"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	// DB is the Postgres pool. Nil when the SQLite store is active, which
	// also disables the admin surface (it queries across owners in SQL).
	DB    *pgxpool.Pool
	Redis *redis.Client

	// Auth is the Firebase client. Nil falls back to header-trusting
	// DevAuth for local development.
	Auth *fbauth.Client

	Store    domain.Store
	Notifier scenarioshttp.Notifier
	Metrics  *observability.Collector

	StatsDB *sql.DB
	Mailer  admin.Mailer

	InviteURL string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Role"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	if dep.Metrics != nil {
		r.GET("/metrics", dep.Metrics.Handler())
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	if dep.Auth != nil {
		api.Use(auth.FirebaseAuth(dep.Auth))
	} else {
		api.Use(auth.DevAuth())
	}
	if dep.DB != nil {
		api.Use(auth.WithUser(users.NewRepo(dep.DB)))
	} else {
		api.Use(auth.WithStaticUser())
	}

	limiter := middleware.NewRateLimiter(rate.Limit(10), 30)
	api.Use(limiter.Middleware(func(c *gin.Context) string {
		return c.GetString(auth.CtxUserDBID)
	}))

	sessions := session.NewManager(dep.Store)
	scenarioHandler := scenarioshttp.New(dep.Store, sessions, dep.Notifier, dep.Metrics)
	scenarioHandler.Register(api)

	if dep.DB != nil && dep.StatsDB != nil {
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.RequireAdmin())

		pg := repository.NewPG(dep.DB)
		adminHandler := admin.NewHandler(pg, admin.NewStatsRepo(dep.StatsDB), dep.Mailer, users.NewRepo(dep.DB), dep.InviteURL)
		adminHandler.Register(adminGroup)
	}

	return r
}
