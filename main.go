package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"remotedb/internal/config"
	"remotedb/internal/executor"
	"remotedb/internal/http/handlers"
	appmw "remotedb/internal/http/middleware"
	"remotedb/internal/logging"
	"remotedb/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	store, err := ratelimit.Open(cfg.RateLimitDBPath)
	if err != nil {
		log.Fatalf("failed to open rate limit store: %v", err)
	}
	defer store.Close()

	lg := logging.New(cfg)
	if cfg.AutoCleanupLogs {
		logging.StartCleanupWorker(lg)
	}

	handlers.InitPrometheusMetrics()

	exec := executor.NewMySQL(cfg)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	query := appmw.APIKeyAuth(cfg)(appmw.RateLimit(store, cfg, lg)(handlers.Query(cfg, exec, lg)))
	r.GET("/query", query)
	r.POST("/query", query)

	// Single-endpoint deployments point clients at the root path.
	r.GET("/", query)
	r.POST("/", query)

	handler := appmw.RequestLogger(r.Handler)

	log.Printf("remotedb listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
