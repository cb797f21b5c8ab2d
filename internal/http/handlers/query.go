package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"remotedb/internal/auth"
	"remotedb/internal/config"
	"remotedb/internal/executor"
	httpctx "remotedb/internal/http/ctx"
	"remotedb/internal/http/respond"
	"remotedb/internal/logging"
	"remotedb/internal/validate"
)

var (
	requestsTotal *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
)

func InitPrometheusMetrics() {
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remotedb",
			Name:      "requests_total",
			Help:      "Total number of query requests by tier and response status.",
		},
		[]string{"tier", "status"},
	)
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "remotedb",
			Name:      "query_duration_seconds",
			Help:      "Histogram of successful query execution durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"tier"},
	)
	prometheus.MustRegister(requestsTotal, queryDuration)
}

// Executor runs one statement against the keyspace-scoped database.
type Executor interface {
	Execute(ctx context.Context, keyspace, query string) (executor.Result, error)
}

// Query returns the main gateway handler. Authentication and rate limiting
// have already run in middleware; this handler collects parameters,
// validates standard-tier queries, executes and shapes the response.
func Query(cfg *config.Config, exec Executor, lg *logging.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		// Occasionally piggyback the log retention sweep on a request
		// (1% chance). It runs async and never blocks the response.
		if cfg.AutoCleanupLogs && rand.IntN(100) == 0 {
			go lg.CleanupOldLogs()
		}

		tier, ok := httpctx.TierFromCtx(ctx)
		if !ok {
			respond.Error(ctx, fasthttp.StatusUnauthorized, "API key required.")
			return
		}
		clientIP, ok := httpctx.ClientIPFromCtx(ctx)
		if !ok {
			clientIP = ctx.RemoteIP().String()
		}

		keyspace := param(ctx, "keyspace")
		if keyspace == "" {
			count(tier, fasthttp.StatusBadRequest)
			respond.Error(ctx, fasthttp.StatusBadRequest, "You must set a keyspace (database name)!")
			return
		}
		query := param(ctx, "query")
		if query == "" {
			count(tier, fasthttp.StatusBadRequest)
			respond.Error(ctx, fasthttp.StatusBadRequest, "You must set a query!")
			return
		}

		// The privileged tier bypasses validation: full access is intentional.
		if tier == auth.TierStandard {
			if err := validate.Query(query, cfg.MaxQueryLength); err != nil {
				lg.Warning(fmt.Sprintf("Invalid query attempt from %s: %s", clientIP, truncate(query, 100)))
				count(tier, fasthttp.StatusBadRequest)
				respond.Error(ctx, fasthttp.StatusBadRequest, "Invalid or unsafe query.")
				return
			}
		}

		res, err := exec.Execute(ctx, keyspace, query)
		if err != nil {
			if errors.Is(err, executor.ErrConnect) {
				// Full driver detail stays in the log; the client gets a
				// generic message.
				lg.Error(fmt.Sprintf("Database connection failed for keyspace '%s': %v", keyspace, err))
				count(tier, fasthttp.StatusInternalServerError)
				respond.Error(ctx, fasthttp.StatusInternalServerError, "Database connection failed.")
				return
			}
			lg.Error(fmt.Sprintf("Query execution failed from %s on '%s': %s (%v)", clientIP, keyspace, truncate(query, 100), err))
			count(tier, fasthttp.StatusBadRequest)
			respond.Error(ctx, fasthttp.StatusBadRequest, "Query execution failed.")
			return
		}

		payload, err := json.Marshal(res.Payload())
		if err != nil {
			lg.Error(fmt.Sprintf("Response serialization failed on '%s': %v", keyspace, err))
			count(tier, fasthttp.StatusInternalServerError)
			respond.Error(ctx, fasthttp.StatusInternalServerError, "Query execution failed.")
			return
		}
		elapsed := time.Since(start)

		lg.Info(fmt.Sprintf("%s (%s) executed query on '%s': %s", clientIP, tier, keyspace, truncate(query, 100)))

		count(tier, fasthttp.StatusOK)
		observe(tier, elapsed)

		respond.JSON(ctx, map[string]any{
			"query_status":    "OK",
			"query_time":      elapsed.Seconds(),
			"response_length": len(payload),
			"response":        json.RawMessage(payload),
		})
	}
}

func param(ctx *fasthttp.RequestCtx, name string) string {
	if v := ctx.QueryArgs().Peek(name); len(v) > 0 {
		return string(v)
	}
	return string(ctx.PostArgs().Peek(name))
}

// truncate caps s at n bytes for log lines.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func count(tier auth.Tier, status int) {
	if requestsTotal == nil {
		return
	}
	requestsTotal.WithLabelValues(string(tier), strconv.Itoa(status)).Inc()
}

func observe(tier auth.Tier, d time.Duration) {
	if queryDuration == nil {
		return
	}
	queryDuration.WithLabelValues(string(tier)).Observe(d.Seconds())
}
