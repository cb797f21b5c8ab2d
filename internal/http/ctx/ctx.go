package ctx

import (
	"github.com/valyala/fasthttp"

	"remotedb/internal/auth"
)

const (
	TierKey     = "tier"
	ClientIPKey = "clientIP"
)

func SetTier(ctx *fasthttp.RequestCtx, tier auth.Tier) {
	ctx.SetUserValue(TierKey, tier)
}

func TierFromCtx(ctx *fasthttp.RequestCtx) (auth.Tier, bool) {
	v := ctx.UserValue(TierKey)
	if v == nil {
		return "", false
	}
	t, ok := v.(auth.Tier)
	return t, ok
}

func SetClientIP(ctx *fasthttp.RequestCtx, ip string) {
	ctx.SetUserValue(ClientIPKey, ip)
}

func ClientIPFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(ClientIPKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
