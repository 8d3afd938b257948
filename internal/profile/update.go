// AngelaMos | 2026
// update.go

package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

var ErrNoFieldsProvided = errors.New("no update data provided")

// Fields is a partial document: only the keys present are written.
type Fields map[string]any

// Appended is a Fields value merged into the stored set instead of
// replacing it. Members already present are kept once.
type Appended []string

// UpdateRequest lists every client-mutable profile field. Identity fields,
// timestamps and the subject id are not settable.
type UpdateRequest struct {
	Experience Optional[int] `json:"experience"`
	Level      Optional[int] `json:"level"`
	Currency   Optional[int] `json:"currency"`

	Quests       Optional[Quests]         `json:"quests"`
	Streaks      Optional[map[string]any] `json:"streaks"`
	QuestStreaks Optional[map[string]any] `json:"quest_streaks"`

	Inventory     Optional[Inventory]      `json:"inventory"`
	ActiveEffects Optional[[]Record]       `json:"active_effects"`
	Settings      Optional[map[string]any] `json:"settings"`

	UsedPromoCodes             Optional[[]string] `json:"used_promo_codes"`
	UsedInspirationSuggestions Optional[[]string] `json:"used_inspiration_suggestions"`

	DailyQuestCreationCount  Optional[int]    `json:"daily_quest_creation_count"`
	DailyQuestCreationDate   Optional[string] `json:"daily_quest_creation_date"`
	WeeklyQuestCreationCount Optional[int]    `json:"weekly_quest_creation_count"`
	WeeklyQuestCreationDate  Optional[string] `json:"weekly_quest_creation_date"`

	MainQuestCooldown Optional[string] `json:"main_quest_cooldown"`
	DailyCheckInDate  Optional[string] `json:"daily_check_in_date"`

	MainQuestHistory Optional[[]Record] `json:"main_quest_history"`
	Achievements     Optional[[]Record] `json:"achievements"`
}

// IsEmpty reports whether no field was provided.
func (r UpdateRequest) IsEmpty() bool {
	return len(r.fields()) == 0
}

func (r UpdateRequest) fields() Fields {
	f := Fields{}

	setIf(f, "experience", r.Experience)
	setIf(f, "level", r.Level)
	setIf(f, "currency", r.Currency)
	setIf(f, "quests", r.Quests)
	setIf(f, "streaks", r.Streaks)
	setIf(f, "quest_streaks", r.QuestStreaks)
	setIf(f, "inventory", r.Inventory)
	setIf(f, "active_effects", r.ActiveEffects)
	setIf(f, "settings", r.Settings)
	setIf(f, "used_promo_codes", r.UsedPromoCodes)
	setIf(f, "used_inspiration_suggestions", r.UsedInspirationSuggestions)
	setIf(f, "daily_quest_creation_count", r.DailyQuestCreationCount)
	setIf(f, "daily_quest_creation_date", r.DailyQuestCreationDate)
	setIf(f, "weekly_quest_creation_count", r.WeeklyQuestCreationCount)
	setIf(f, "weekly_quest_creation_date", r.WeeklyQuestCreationDate)
	setIf(f, "main_quest_cooldown", r.MainQuestCooldown)
	setIf(f, "daily_check_in_date", r.DailyCheckInDate)
	setIf(f, "main_quest_history", r.MainQuestHistory)
	setIf(f, "achievements", r.Achievements)

	return f
}

func setIf[T any](f Fields, key string, o Optional[T]) {
	if o.Set {
		f[key] = o.Value
	}
}

var nonNegativeFields = []string{
	"experience",
	"level",
	"currency",
	"daily_quest_creation_count",
	"weekly_quest_creation_count",
}

// ApplyUpdate turns req into the fields to persist for current. Provided
// fields replace the stored value wholesale, except the used-code and
// inspiration sets: their members not already in current are sent as
// Appended so the store only ever adds to them. updated_at is always
// stamped.
func ApplyUpdate(current *Profile, req UpdateRequest, now time.Time) (Fields, error) {
	fields := req.fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsProvided
	}

	for _, key := range nonNegativeFields {
		if v, ok := fields[key].(int); ok && v < 0 {
			return nil, fmt.Errorf("%s must not be negative: %w", key, core.ErrInvalidInput)
		}
	}

	if req.UsedPromoCodes.Set {
		codes := make([]string, 0, len(req.UsedPromoCodes.Value))
		for _, c := range req.UsedPromoCodes.Value {
			codes = append(codes, NormalizeCode(c))
		}
		setAppended(fields, "used_promo_codes", current.UsedPromoCodes, codes)
	}

	if req.UsedInspirationSuggestions.Set {
		setAppended(
			fields,
			"used_inspiration_suggestions",
			current.UsedInspirationSuggestions,
			req.UsedInspirationSuggestions.Value,
		)
	}

	if req.Inventory.Set && req.Inventory.Value == nil {
		fields["inventory"] = Inventory{}
	}

	fields["updated_at"] = Timestamp{now}

	return fields, nil
}

// Keys lists the field names in f, for logging.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}

// setAppended stores the distinct non-blank members of added that are not
// in existing under key, or drops key when nothing is left to add.
func setAppended(f Fields, key string, existing, added []string) {
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	out := make(Appended, 0, len(added))

	for _, v := range added {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	if len(out) == 0 {
		delete(f, key)
		return
	}
	f[key] = out
}
