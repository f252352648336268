package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/stockhubapp/stockhub/internal/auth"
	"github.com/stockhubapp/stockhub/internal/config"
	"github.com/stockhubapp/stockhub/internal/http/handlers"
	"github.com/stockhubapp/stockhub/internal/http/middlewares"
	"github.com/stockhubapp/stockhub/internal/observability"
	"github.com/stockhubapp/stockhub/internal/redisclient"
	"github.com/stockhubapp/stockhub/internal/repo/postgres"
	"github.com/stockhubapp/stockhub/internal/resource"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, redisCli *redisclient.Client, prom *observability.Prom, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("stockhub-api"))
	r.Use(prom.GinHandleMiddleware())

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// rate limiting: shared windows through redis when configured
	var authLimiter, apiLimiter *middlewares.RateLimiter

	if redisCli != nil {
		authLimiter = middlewares.NewRedisRateLimiter(redisCli.Raw(), cfg.RateLimit/10+1, cfg.RateWindow)
		apiLimiter = middlewares.NewRedisRateLimiter(redisCli.Raw(), cfg.RateLimit, cfg.RateWindow)
	} else {
		authLimiter = middlewares.NewRateLimiter(cfg.RateLimit/10+1, cfg.RateWindow)
		apiLimiter = middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	// wire up repositories and the token manager
	usersRepo := postgres.NewUsersRepo(pool)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	authHandler := handlers.NewAuthHandler(usersRepo, refreshRepo, jwtManager, cfg)

	authGrp := r.Group("/auth")
	authGrp.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGrp.POST("", authHandler.Login)
	authGrp.POST("/refresh", authHandler.Refresh)
	authGrp.POST("/register", authHandler.Register)
	authGrp.HEAD("/verify", authMW.RequireAuth(), authHandler.Verify)

	// everything else sits behind token verification
	api := r.Group("/",
		authMW.RequireAuth(),
		apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
	)

	gw := resource.NewGateway(resource.NewPgxRunner(pool, prom))

	MountResources(api, gw, authMW)

	return r
}
