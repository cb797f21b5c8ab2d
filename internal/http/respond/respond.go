// Package respond writes the gateway's JSON response envelope. Every
// response, success or failure, carries a query_status field so clients
// never have to parse an empty or non-JSON body.
package respond

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// Error writes the uniform error envelope with the given status code and a
// short human-readable message.
func Error(ctx *fasthttp.RequestCtx, status int, msg string) {
	ctx.SetStatusCode(status)
	JSON(ctx, map[string]any{
		"query_status": "ERROR",
		"response":     msg,
	})
}

// JSON serializes data as the response body.
func JSON(ctx *fasthttp.RequestCtx, data map[string]any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}
