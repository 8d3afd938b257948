// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/ascend-api/internal/promo"
)

type memoryPromos struct {
	codes   map[string]promo.Code
	listErr error
}

func (m *memoryPromos) List(context.Context) ([]promo.Code, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]promo.Code, 0, len(m.codes))
	for _, c := range m.codes {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryPromos) Upsert(_ context.Context, c *promo.Code) (bool, error) {
	_, exists := m.codes[c.Code]
	m.codes[c.Code] = *c
	return !exists, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(cfg HandlerConfig) http.Handler {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, passthrough, passthrough)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestSystemStats(t *testing.T) {
	h := newTestRouter(HandlerConfig{
		DBPing:        func(context.Context) error { return nil },
		DBSessions:    func() int { return 3 },
		RedisPing:     func(context.Context) error { return errors.New("refused") },
		RedisStats:    func() *redis.PoolStats { return &redis.PoolStats{Hits: 9, TotalConns: 2} },
		RateLimitKeys: func(context.Context) (int64, error) { return 12, nil },
	})

	rec := do(h, http.MethodGet, "/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got SystemStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Database.Healthy)
	assert.Equal(t, 3, got.Database.SessionsInProgress)
	assert.False(t, got.Redis.Healthy)
	require.NotNil(t, got.Redis.Stats)
	assert.Equal(t, uint32(9), got.Redis.Stats.Hits)
	require.NotNil(t, got.Redis.RateLimitKeys)
	assert.Equal(t, int64(12), *got.Redis.RateLimitKeys)
	assert.NotEmpty(t, got.Runtime.GoVersion)
}

func TestRuntimeStats(t *testing.T) {
	rec := do(newTestRouter(HandlerConfig{}), http.MethodGet, "/admin/stats/runtime", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got RuntimeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Positive(t, got.NumCPU)
}

func TestListPromos(t *testing.T) {
	promos := &memoryPromos{codes: map[string]promo.Code{
		"A": {Code: "A", Active: true, UsedCount: 4},
		"B": {Code: "B", Active: false, UsedCount: 1},
	}}
	h := newTestRouter(HandlerConfig{Promos: promos})

	rec := do(h, http.MethodGet, "/admin/promos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got PromoListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Codes, 2)
	assert.Equal(t, 1, got.Active)
	assert.Equal(t, 5, got.TotalRedemptions)

	promos.listErr = errors.New("timeout")
	assert.Equal(t, http.StatusInternalServerError, do(h, http.MethodGet, "/admin/promos", "").Code)
}

func TestUpsertPromo(t *testing.T) {
	promos := &memoryPromos{codes: map[string]promo.Code{}}
	h := newTestRouter(HandlerConfig{Promos: promos})

	rec := do(h, http.MethodPost, "/admin/promos",
		`{"code": "spring10", "reward_kind": "xp", "amount": 10, "max_uses": 5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	stored := promos.codes["SPRING10"]
	assert.Equal(t, promo.RewardExperience, stored.Kind())
	assert.True(t, stored.Active)
	assert.Equal(t, 5, *stored.MaxUses)

	rec = do(h, http.MethodPost, "/admin/promos",
		`{"code": "SPRING10", "reward_kind": "experience", "amount": 20, "active": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, promos.codes["SPRING10"].Active)

	failures := []struct {
		name string
		body string
	}{
		{"malformed", `{"code":`},
		{"missing code", `{"reward_kind": "xp", "amount": 1}`},
		{"unknown kind", `{"code": "X", "reward_kind": "gems", "amount": 1}`},
		{"negative amount", `{"code": "X", "reward_kind": "xp", "amount": -1}`},
		{"experience without amount", `{"code": "X", "reward_kind": "experience"}`},
		{"item without id", `{"code": "X", "reward_kind": "item"}`},
	}

	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/admin/promos", tc.body).Code)
		})
	}
}
