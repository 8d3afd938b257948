// AngelaMos | 2026
// engine.go

package promo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/profile"
)

var ErrInvalidCatalogEntry = errors.New("invalid promo catalog entry")

type Reason string

const (
	ReasonAlreadyUsed        Reason = "already_used"
	ReasonNotFoundOrInactive Reason = "not_found_or_inactive"
	ReasonUsageLimitReached  Reason = "usage_limit_reached"
)

const (
	msgAlreadyUsed  = "You've already used this promo code!"
	msgNotFound     = "Invalid or expired promo code"
	msgLimitReached = "This promo code has reached its usage limit"
)

// RedemptionResult is returned for every redemption attempt. Soft failures
// carry Success false and a Reason rather than an error.
type RedemptionResult struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	Reason       Reason     `json:"reason,omitempty"`
	RewardKind   RewardKind `json:"reward_kind,omitempty"`
	RewardType   string     `json:"reward_type,omitempty"`
	RewardAmount *int       `json:"reward_amount,omitempty"`
	ItemID       string     `json:"item_id,omitempty"`
}

func rejected(reason Reason, message string) *RedemptionResult {
	return &RedemptionResult{Success: false, Reason: reason, Message: message}
}

type ProfileStore interface {
	Find(ctx context.Context, subjectID string) (*profile.Profile, error)
	RecordRedemption(
		ctx context.Context,
		subjectID, code string,
		fields profile.Fields,
	) error
}

var _ ProfileStore = (*profile.Service)(nil)

type Catalog interface {
	FindActive(ctx context.Context, code string) (*Code, error)
	IncrementUsage(ctx context.Context, code string) error
}

type Engine struct {
	profiles ProfileStore
	catalog  Catalog
	now      func() time.Time
}

func NewEngine(profiles ProfileStore, catalog Catalog) *Engine {
	return &Engine{
		profiles: profiles,
		catalog:  catalog,
		now:      time.Now,
	}
}

// Redeem applies rawCode for subjectID. The checks run in order and stop
// at the first that fails: already used, unknown or inactive, usage cap.
// The catalog counter is incremented only after the profile write lands.
func (e *Engine) Redeem(
	ctx context.Context,
	subjectID, rawCode string,
) (*RedemptionResult, error) {
	code := profile.NormalizeCode(rawCode)

	p, err := e.profiles.Find(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if p.HasUsedCode(code) {
		return rejected(ReasonAlreadyUsed, msgAlreadyUsed), nil
	}

	entry, err := e.catalog.FindActive(ctx, code)
	if errors.Is(err, core.ErrNotFound) {
		return rejected(ReasonNotFoundOrInactive, msgNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup promo code: %w", err)
	}

	if entry.LimitReached() {
		return rejected(ReasonUsageLimitReached, msgLimitReached), nil
	}

	reward, err := ComputeReward(p, entry, e.now())
	if err != nil {
		return nil, err
	}

	err = e.profiles.RecordRedemption(ctx, subjectID, code, reward.Fields)
	if errors.Is(err, profile.ErrAlreadyRecorded) {
		return rejected(ReasonAlreadyUsed, msgAlreadyUsed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("record redemption: %w", err)
	}

	if err := e.catalog.IncrementUsage(ctx, code); err != nil {
		slog.Warn("promo usage counter not incremented",
			"code", code,
			"error", err,
		)
	}

	core.AddSpanEvent(ctx, "promo.redeemed",
		attribute.String("promo.code", code),
		attribute.String("promo.reward_kind", string(reward.Kind)),
	)

	slog.Info("promo redeemed",
		"subject_id", subjectID,
		"code", code,
		"reward_kind", reward.Kind,
	)

	return &RedemptionResult{
		Success:      true,
		Message:      reward.Message,
		RewardKind:   reward.Kind,
		RewardType:   reward.Kind.LegacyName(),
		RewardAmount: IntPtr(reward.Amount),
		ItemID:       reward.ItemID,
	}, nil
}

type Reward struct {
	Kind    RewardKind
	Amount  int
	ItemID  string
	Message string
	Fields  profile.Fields
}

// ComputeReward derives the profile fields a successful redemption of c
// writes for p: the reward itself and updated_at. The code is added to
// used_promo_codes by the guarded write that records the redemption.
func ComputeReward(p *profile.Profile, c *Code, now time.Time) (*Reward, error) {
	code := profile.NormalizeCode(c.Code)
	fields := profile.Fields{}
	r := &Reward{Kind: c.Kind(), Fields: fields}

	switch r.Kind {
	case RewardExperience, RewardCurrency:
		if c.Amount == nil || *c.Amount < 0 {
			return nil, fmt.Errorf("%s has no usable amount: %w", code, ErrInvalidCatalogEntry)
		}
		r.Amount = *c.Amount

		if r.Kind == RewardExperience {
			fields["experience"] = p.Experience + r.Amount
			r.Message = fmt.Sprintf("Redeemed! +%d XP", r.Amount)
		} else {
			fields["currency"] = p.Currency + r.Amount
			r.Message = fmt.Sprintf("Redeemed! +%d Coins", r.Amount)
		}
	case RewardItem:
		if c.ItemID == "" {
			return nil, fmt.Errorf("%s has no item_id: %w", code, ErrInvalidCatalogEntry)
		}
		fields["inventory"] = p.Inventory.With(c.ItemID)
		r.Amount = 1
		r.ItemID = c.ItemID
		r.Message = "Redeemed! Item added to inventory"
	default:
		return nil, fmt.Errorf("%s has reward kind %q: %w", code, r.Kind, ErrInvalidCatalogEntry)
	}

	fields["updated_at"] = profile.Timestamp{Time: now}

	return r, nil
}
