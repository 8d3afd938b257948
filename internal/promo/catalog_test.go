// AngelaMos | 2026
// catalog_test.go

package promo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultCatalogIsValid(t *testing.T) {
	for _, c := range DefaultCatalog() {
		assert.NoError(t, c.Validate(), c.Code)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := writeCatalog(t, `
promo_codes:
  - code: summer25
    reward_kind: xp
    amount: 25
    max_uses: 10
  - code: GOLDEN
    reward_kind: item
    item_id: golden_quill
    active: false
`)

	codes, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	assert.Equal(t, "SUMMER25", codes[0].Code)
	assert.Equal(t, RewardExperience, codes[0].Kind())
	assert.Equal(t, 25, *codes[0].Amount)
	assert.Equal(t, 10, *codes[0].MaxUses)
	assert.True(t, codes[0].Active)

	assert.Equal(t, RewardItem, codes[1].Kind())
	assert.Equal(t, "golden_quill", codes[1].ItemID)
	assert.False(t, codes[1].Active)
}

func TestLoadCatalogFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing amount", "promo_codes:\n  - code: A\n    reward_kind: experience\n"},
		{"item without id", "promo_codes:\n  - code: B\n    reward_kind: item\n"},
		{"unknown kind", "promo_codes:\n  - code: C\n    reward_kind: gems\n    amount: 1\n"},
		{"negative max uses", "promo_codes:\n  - code: D\n    reward_kind: coins\n    amount: 1\n    max_uses: -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCatalogFile(writeCatalog(t, tc.body))
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

type memoryCatalog struct {
	*fakeCatalog
	deleted int64
}

func (m *memoryCatalog) Upsert(_ context.Context, c *Code) (bool, error) {
	_, exists := m.codes[c.Code]
	cp := *c
	m.codes[c.Code] = &cp
	return !exists, nil
}

func (m *memoryCatalog) List(context.Context) ([]Code, error) {
	out := make([]Code, 0, len(m.codes))
	for _, c := range m.codes {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memoryCatalog) DeleteAll(context.Context) (int64, error) {
	n := int64(len(m.codes))
	m.deleted += n
	m.codes = map[string]*Code{}
	return n, nil
}

func (m *memoryCatalog) EnsureIndexes(context.Context) error { return nil }

func TestSeed(t *testing.T) {
	repo := &memoryCatalog{fakeCatalog: newFakeCatalog(Code{
		Code: "WELCOME100", RewardKind: RewardExperience, Amount: IntPtr(10), Active: true,
	})}

	res, err := Seed(context.Background(), repo, DefaultCatalog(), false)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 3, Updated: 1}, res)
	assert.Equal(t, 100, *repo.codes["WELCOME100"].Amount)

	res, err = Seed(context.Background(), repo, DefaultCatalog()[:1], true)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 1, Deleted: 4}, res)
	assert.Len(t, repo.codes, 1)

	_, err = Seed(context.Background(), repo, []Code{{Code: "BAD", RewardKind: "gems"}}, false)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
