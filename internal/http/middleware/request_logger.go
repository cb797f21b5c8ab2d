package middleware

import (
	"log"
	"time"

	"github.com/valyala/fasthttp"
)

// RequestLogger writes one process-log line per request with method, path,
// status, duration and remote address.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		log.Printf("%s %s -> %d (%s) ip=%s", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.RemoteAddr())
	}
}
