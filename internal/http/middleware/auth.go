package middleware

import (
	"errors"

	"github.com/valyala/fasthttp"

	"remotedb/internal/auth"
	"remotedb/internal/config"
	httpctx "remotedb/internal/http/ctx"
	"remotedb/internal/http/respond"
)

// APIKeyAuth validates the apikey request parameter and sets the derived
// access tier on the context.
func APIKeyAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tier, err := auth.CheckKey(requestParam(ctx, "apikey"), cfg)
			if err != nil {
				if errors.Is(err, auth.ErrMissingKey) {
					respond.Error(ctx, fasthttp.StatusUnauthorized, "API key required.")
				} else {
					respond.Error(ctx, fasthttp.StatusUnauthorized, "Invalid API key.")
				}
				return
			}

			httpctx.SetTier(ctx, tier)
			next(ctx)
		}
	}
}

// requestParam reads a parameter from the query string or, failing that,
// the POST form body.
func requestParam(ctx *fasthttp.RequestCtx, name string) string {
	if v := ctx.QueryArgs().Peek(name); len(v) > 0 {
		return string(v)
	}
	return string(ctx.PostArgs().Peek(name))
}
