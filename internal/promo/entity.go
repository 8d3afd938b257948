// AngelaMos | 2026
// entity.go

package promo

import (
	"fmt"
	"strings"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/profile"
)

type RewardKind string

const (
	RewardExperience RewardKind = "experience"
	RewardCurrency   RewardKind = "currency"
	RewardItem       RewardKind = "item"
)

// ParseRewardKind maps stored kind names, including the older "xp" and
// "coins" spellings, onto RewardKind. Unknown names pass through as-is.
func ParseRewardKind(s string) RewardKind {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "xp", "experience":
		return RewardExperience
	case "coins", "currency":
		return RewardCurrency
	case "item":
		return RewardItem
	default:
		return RewardKind(k)
	}
}

// LegacyName is the kind as older clients expect it in reward_type.
func (k RewardKind) LegacyName() string {
	switch k {
	case RewardExperience:
		return "xp"
	case RewardCurrency:
		return "coins"
	default:
		return string(k)
	}
}

// Code is a catalog entry. Catalog entries are global, not per user.
type Code struct {
	Code       string     `bson:"code"                  json:"code"`
	RewardKind RewardKind `bson:"reward_kind,omitempty" json:"reward_kind"`
	LegacyType string     `bson:"type,omitempty"        json:"-"`
	Amount     *int       `bson:"amount,omitempty"      json:"amount,omitempty"`
	ItemID     string     `bson:"item_id,omitempty"     json:"item_id,omitempty"`
	Active     bool       `bson:"active"                json:"active"`
	MaxUses    *int       `bson:"max_uses"              json:"max_uses"`
	UsedCount  int        `bson:"used_count"            json:"used_count"`
}

// Kind resolves the reward kind, falling back to the legacy type field.
func (c *Code) Kind() RewardKind {
	if c.RewardKind != "" {
		return ParseRewardKind(string(c.RewardKind))
	}
	return ParseRewardKind(c.LegacyType)
}

// LimitReached reports whether a capped code has been used up. A nil or
// zero max_uses means unlimited.
func (c *Code) LimitReached() bool {
	return c.MaxUses != nil && *c.MaxUses > 0 && c.UsedCount >= *c.MaxUses
}

// Validate checks that the entry carries what its kind needs.
func (c *Code) Validate() error {
	if profile.NormalizeCode(c.Code) == "" {
		return fmt.Errorf("code is required: %w", core.ErrInvalidInput)
	}

	switch c.Kind() {
	case RewardExperience, RewardCurrency:
		if c.Amount == nil || *c.Amount < 0 {
			return fmt.Errorf("%s: amount must be set and non-negative: %w", c.Code, core.ErrInvalidInput)
		}
	case RewardItem:
		if strings.TrimSpace(c.ItemID) == "" {
			return fmt.Errorf("%s: item_id is required: %w", c.Code, core.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%s: unknown reward kind %q: %w", c.Code, c.Kind(), core.ErrInvalidInput)
	}

	if c.MaxUses != nil && *c.MaxUses < 0 {
		return fmt.Errorf("%s: max_uses must not be negative: %w", c.Code, core.ErrInvalidInput)
	}

	return nil
}

func IntPtr(v int) *int {
	return &v
}
