// AngelaMos | 2026
// catalog.go

package promo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/carterperez-dev/ascend-api/internal/profile"
)

// CatalogEntry is the file form of a promo code.
type CatalogEntry struct {
	Code       string `koanf:"code"`
	RewardKind string `koanf:"reward_kind"`
	Amount     *int   `koanf:"amount"`
	ItemID     string `koanf:"item_id"`
	Active     *bool  `koanf:"active"`
	MaxUses    *int   `koanf:"max_uses"`
}

func (e CatalogEntry) toCode() Code {
	active := true
	if e.Active != nil {
		active = *e.Active
	}

	return Code{
		Code:       profile.NormalizeCode(e.Code),
		RewardKind: ParseRewardKind(e.RewardKind),
		Amount:     e.Amount,
		ItemID:     e.ItemID,
		Active:     active,
		MaxUses:    e.MaxUses,
	}
}

func DefaultCatalog() []Code {
	return []Code{
		{Code: "WELCOME100", RewardKind: RewardExperience, Amount: IntPtr(100), Active: true},
		{Code: "ASCEND500", RewardKind: RewardExperience, Amount: IntPtr(500), Active: true, MaxUses: IntPtr(100)},
		{Code: "COINS50", RewardKind: RewardCurrency, Amount: IntPtr(50), Active: true},
		{Code: "BOOST2024", RewardKind: RewardExperience, Amount: IntPtr(250), Active: true, MaxUses: IntPtr(50)},
	}
}

// LoadCatalogFile reads promo codes from a YAML file with a top level
// promo_codes list. Every entry is validated before any is returned.
func LoadCatalogFile(path string) ([]Code, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load catalog file: %w", err)
	}

	var entries []CatalogEntry
	if err := k.Unmarshal("promo_codes", &entries); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	codes := make([]Code, 0, len(entries))
	for _, e := range entries {
		c := e.toCode()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}

	return codes, nil
}

type SeedResult struct {
	Created int
	Updated int
	Deleted int64
}

// Seed upserts codes into repo, optionally clearing the collection first.
func Seed(
	ctx context.Context,
	repo Repository,
	codes []Code,
	reset bool,
) (SeedResult, error) {
	var res SeedResult

	if reset {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			return res, err
		}
		res.Deleted = n
	}

	for i := range codes {
		c := codes[i]
		c.Code = profile.NormalizeCode(c.Code)
		if err := c.Validate(); err != nil {
			return res, err
		}

		created, err := repo.Upsert(ctx, &c)
		if err != nil {
			return res, err
		}

		if created {
			res.Created++
		} else {
			res.Updated++
		}

		slog.Debug("seeded promo code", "code", c.Code, "created", created)
	}

	return res, nil
}
