// AngelaMos | 2026
// entity.go

package profile

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/carterperez-dev/ascend-api/internal/identity"
)

// Record is an open-ended structured value such as a quest, effect or
// achievement entry. Only its presence is validated.
type Record map[string]any

type Quests struct {
	Daily  []Record `bson:"daily"  json:"daily"`
	Weekly []Record `bson:"weekly" json:"weekly"`
	Main   Record   `bson:"main"   json:"main"`
	Side   []Record `bson:"side"   json:"side"`
}

type Profile struct {
	ID          string `bson:"id"           json:"id"`
	SubjectID   string `bson:"subject_id"   json:"subject_id"`
	Email       string `bson:"email"        json:"email"`
	DisplayName string `bson:"display_name" json:"display_name"`
	AvatarURL   string `bson:"avatar_url"   json:"avatar_url"`

	Experience int `bson:"experience" json:"experience"`
	Level      int `bson:"level"      json:"level"`
	Currency   int `bson:"currency"   json:"currency"`

	Quests       Quests         `bson:"quests"        json:"quests"`
	Streaks      map[string]any `bson:"streaks"       json:"streaks"`
	QuestStreaks map[string]any `bson:"quest_streaks" json:"quest_streaks"`

	Inventory     Inventory      `bson:"inventory"      json:"inventory"`
	ActiveEffects []Record       `bson:"active_effects" json:"active_effects"`
	Settings      map[string]any `bson:"settings"       json:"settings"`

	UsedPromoCodes             []string `bson:"used_promo_codes"             json:"used_promo_codes"`
	UsedInspirationSuggestions []string `bson:"used_inspiration_suggestions" json:"used_inspiration_suggestions"`

	DailyQuestCreationCount  int     `bson:"daily_quest_creation_count"  json:"daily_quest_creation_count"`
	DailyQuestCreationDate   *string `bson:"daily_quest_creation_date"   json:"daily_quest_creation_date"`
	WeeklyQuestCreationCount int     `bson:"weekly_quest_creation_count" json:"weekly_quest_creation_count"`
	WeeklyQuestCreationDate  *string `bson:"weekly_quest_creation_date"  json:"weekly_quest_creation_date"`

	MainQuestCooldown *string `bson:"main_quest_cooldown" json:"main_quest_cooldown"`
	DailyCheckInDate  *string `bson:"daily_check_in_date" json:"daily_check_in_date"`

	MainQuestHistory []Record `bson:"main_quest_history" json:"main_quest_history"`
	Achievements     []Record `bson:"achievements"       json:"achievements"`

	CreatedAt Timestamp `bson:"created_at" json:"created_at"`
	UpdatedAt Timestamp `bson:"updated_at" json:"updated_at"`
}

// New builds the initial profile for a first login.
func New(id string, ident identity.Identity, now time.Time) *Profile {
	p := &Profile{
		ID:          id,
		SubjectID:   ident.SubjectID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		AvatarURL:   ident.AvatarURL,
		Level:       1,
		CreatedAt:   Timestamp{now},
		UpdatedAt:   Timestamp{now},
	}
	p.normalize()
	return p
}

// normalize replaces absent containers with empty ones so responses never
// carry null where a list or object is expected.
func (p *Profile) normalize() {
	if p.Quests.Daily == nil {
		p.Quests.Daily = []Record{}
	}
	if p.Quests.Weekly == nil {
		p.Quests.Weekly = []Record{}
	}
	if p.Quests.Side == nil {
		p.Quests.Side = []Record{}
	}
	if p.Streaks == nil {
		p.Streaks = map[string]any{}
	}
	if p.QuestStreaks == nil {
		p.QuestStreaks = map[string]any{}
	}
	if p.Inventory == nil {
		p.Inventory = Inventory{}
	}
	if p.ActiveEffects == nil {
		p.ActiveEffects = []Record{}
	}
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	if p.UsedPromoCodes == nil {
		p.UsedPromoCodes = []string{}
	}
	if p.UsedInspirationSuggestions == nil {
		p.UsedInspirationSuggestions = []string{}
	}
	if p.MainQuestHistory == nil {
		p.MainQuestHistory = []Record{}
	}
	if p.Achievements == nil {
		p.Achievements = []Record{}
	}
}

// HasUsedCode reports whether code, compared upper-case, was redeemed.
func (p *Profile) HasUsedCode(code string) bool {
	code = NormalizeCode(code)
	for _, used := range p.UsedPromoCodes {
		if strings.ToUpper(used) == code {
			return true
		}
	}
	return false
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Timestamp is persisted as an ISO-8601 string and held as time.Time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parse timestamp %q", s)
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

func (t *Timestamp) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bson.TypeString:
		parsed, err := ParseTimestamp(rv.StringValue())
		if err != nil {
			return err
		}
		*t = parsed
	case bson.TypeDateTime:
		t.Time = rv.Time().UTC()
	case bson.TypeNull, bson.TypeUndefined:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("cannot decode %s into timestamp", typ)
	}

	return nil
}
