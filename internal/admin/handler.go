// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/promo"
)

type PromoCatalog interface {
	List(ctx context.Context) ([]promo.Code, error)
	Upsert(ctx context.Context, c *promo.Code) (bool, error)
}

type Handler struct {
	dbPing        func(ctx context.Context) error
	dbSessions    func() int
	redisPing     func(ctx context.Context) error
	redisStats    func() *redis.PoolStats
	rateLimitKeys func(ctx context.Context) (int64, error)
	promos        PromoCatalog
	validator     *validator.Validate
}

type HandlerConfig struct {
	DBPing        func(ctx context.Context) error
	DBSessions    func() int
	RedisPing     func(ctx context.Context) error
	RedisStats    func() *redis.PoolStats
	RateLimitKeys func(ctx context.Context) (int64, error)
	Promos        PromoCatalog
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbPing:        cfg.DBPing,
		dbSessions:    cfg.DBSessions,
		redisPing:     cfg.RedisPing,
		redisStats:    cfg.RedisStats,
		rateLimitKeys: cfg.RateLimitKeys,
		promos:        cfg.Promos,
		validator:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/promos", h.ListPromos)
		r.Post("/promos", h.UpsertPromo)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := SystemStatsResponse{
		Database: DatabaseStatus{Healthy: ping(ctx, h.dbPing)},
		Redis: RedisStatus{
			Healthy: ping(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
	}

	if h.dbSessions != nil {
		response.Database.SessionsInProgress = h.dbSessions()
	}

	if h.rateLimitKeys != nil {
		if n, err := h.rateLimitKeys(ctx); err == nil {
			response.Redis.RateLimitKeys = &n
		}
	}

	core.OK(w, response)
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	if fn == nil {
		return false
	}
	return fn(ctx) == nil
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats())
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func (h *Handler) ListPromos(w http.ResponseWriter, r *http.Request) {
	codes, err := h.promos.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp := PromoListResponse{Codes: codes}
	for _, c := range codes {
		resp.TotalRedemptions += c.UsedCount
		if c.Active {
			resp.Active++
		}
	}

	core.OK(w, resp)
}

func (h *Handler) UpsertPromo(w http.ResponseWriter, r *http.Request) {
	var req UpsertPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.RequestBodyError(w, err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	code := req.toCode()
	if err := code.Validate(); err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	created, err := h.promos.Upsert(r.Context(), &code)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if created {
		core.Created(w, code)
		return
	}
	core.OK(w, code)
}
