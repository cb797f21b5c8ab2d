package middleware

import (
	"log"

	"github.com/valyala/fasthttp"

	"remotedb/internal/config"
	httpctx "remotedb/internal/http/ctx"
	"remotedb/internal/http/respond"
	"remotedb/internal/logging"
	"remotedb/internal/ratelimit"
)

// RateLimit enforces the per-client-IP sliding window and sets the client
// IP on the context for downstream logging. A failing store lets the
// request through: limiter state is disposable and must never cause
// incorrect denial of legitimate traffic.
func RateLimit(store *ratelimit.Store, cfg *config.Config, lg *logging.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ip := ctx.RemoteIP().String()

			allowed, err := store.Allow(ip, cfg.MaxRequestsPerHour)
			if err != nil {
				log.Printf("rate limit check failed for %s: %v", ip, err)
				allowed = true
			}
			if !allowed {
				lg.Warning("Rate limit exceeded for IP: " + ip)
				respond.Error(ctx, fasthttp.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
				return
			}

			httpctx.SetClientIP(ctx, ip)
			next(ctx)
		}
	}
}
