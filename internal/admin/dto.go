// AngelaMos | 2026
// dto.go

package admin

import (
	"github.com/carterperez-dev/ascend-api/internal/profile"
	"github.com/carterperez-dev/ascend-api/internal/promo"
)

type UpsertPromoRequest struct {
	Code       string `json:"code"        validate:"required,max=64"`
	RewardKind string `json:"reward_kind" validate:"required,oneof=experience currency item xp coins"`
	Amount     *int   `json:"amount"      validate:"omitempty,gte=0"`
	ItemID     string `json:"item_id"     validate:"max=128"`
	Active     *bool  `json:"active"`
	MaxUses    *int   `json:"max_uses"    validate:"omitempty,gte=0"`
}

func (r UpsertPromoRequest) toCode() promo.Code {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return promo.Code{
		Code:       profile.NormalizeCode(r.Code),
		RewardKind: promo.ParseRewardKind(r.RewardKind),
		Amount:     r.Amount,
		ItemID:     r.ItemID,
		Active:     active,
		MaxUses:    r.MaxUses,
	}
}

type PromoListResponse struct {
	Codes            []promo.Code `json:"codes"`
	Active           int          `json:"active"`
	TotalRedemptions int          `json:"total_redemptions"`
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy            bool `json:"healthy"`
	SessionsInProgress int  `json:"sessions_in_progress"`
}

type RedisStatus struct {
	Healthy       bool            `json:"healthy"`
	RateLimitKeys *int64          `json:"rate_limit_keys,omitempty"`
	Stats         *RedisPoolStats `json:"stats,omitempty"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
