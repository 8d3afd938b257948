// AngelaMos | 2026
// migration_test.go

package profile

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

func TestMigrateInventoryLegacyObject(t *testing.T) {
	inv, changed, err := MigrateInventory(map[string]any{"sword": 2, "shield": 1})
	require.NoError(t, err)

	require.True(t, changed)
	require.Len(t, inv, 3)
	assert.Equal(t, 2, inv.CountOf("sword"))
	assert.Equal(t, 1, inv.CountOf("shield"))
	for _, item := range inv {
		assert.Equal(t, 1, item.Count)
	}
}

func TestMigrateInventoryIsIdempotent(t *testing.T) {
	legacy := bson.M{"potion": int32(3), "map": int64(1)}

	once, changed, err := MigrateInventory(legacy)
	require.NoError(t, err)
	require.True(t, changed)

	twice, changedAgain, err := MigrateInventory(once)
	require.NoError(t, err)
	assert.False(t, changedAgain)
	assert.Equal(t, once, twice)
}

func TestMigrateInventoryCases(t *testing.T) {
	tests := []struct {
		name        string
		raw         any
		wantNames   []string
		wantChanged bool
	}{
		{
			name:        "absent",
			raw:         nil,
			wantNames:   []string{},
			wantChanged: true,
		},
		{
			name: "skips non-positive and non-integer counts",
			raw: map[string]any{
				"gem":     0,
				"rock":    -2,
				"feather": 1.5,
				"key":     float64(2),
				"note":    "three",
			},
			wantNames:   []string{"key", "key"},
			wantChanged: true,
		},
		{
			name:        "ordered bson document",
			raw:         bson.D{{Key: "b", Value: 1}, {Key: "a", Value: 1}},
			wantNames:   []string{"a", "b"},
			wantChanged: true,
		},
		{
			name: "already a sequence",
			raw: bson.A{
				bson.M{"name": "sword", "count": int32(1)},
				bson.M{"name": "shield", "count": int32(1)},
			},
			wantNames:   []string{"sword", "shield"},
			wantChanged: false,
		},
		{
			name:        "scalar garbage",
			raw:         "sword",
			wantNames:   []string{},
			wantChanged: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, changed, err := MigrateInventory(tc.raw)
			require.NoError(t, err)

			names := make([]string, 0, len(inv))
			for _, item := range inv {
				names = append(names, item.Name)
			}

			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, tc.wantChanged, changed)
		})
	}
}

func TestMigrateInventoryRejectsOversizedCounts(t *testing.T) {
	tests := []struct {
		name   string
		legacy map[string]any
	}{
		{
			name:   "single count over the item cap",
			legacy: map[string]any{"gem": MaxLegacyItemCount + 1},
		},
		{
			name:   "huge float count",
			legacy: map[string]any{"gem": 1e10},
		},
		{
			name:   "huge json number",
			legacy: map[string]any{"gem": json.Number("20000000")},
		},
		{
			name: "total over the entry cap",
			legacy: func() map[string]any {
				m := map[string]any{}
				for i := range MaxInventoryEntries/MaxLegacyItemCount + 1 {
					m[fmt.Sprintf("item-%02d", i)] = MaxLegacyItemCount
				}
				return m
			}(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, _, err := MigrateInventory(tc.legacy)

			assert.ErrorIs(t, err, ErrInventoryTooLarge)
			assert.Nil(t, inv)
		})
	}
}

func TestMigrateInventoryAcceptsCountAtCap(t *testing.T) {
	inv, _, err := MigrateInventory(map[string]any{"gem": MaxLegacyItemCount})
	require.NoError(t, err)

	assert.Len(t, inv, MaxLegacyItemCount)
}

func TestInventoryRejectsLegacyJSON(t *testing.T) {
	for _, body := range []string{`{"sword": 2}`, `{"gem": 20000000}`, `"sword"`} {
		t.Run(body, func(t *testing.T) {
			var inv Inventory
			err := json.Unmarshal([]byte(body), &inv)

			assert.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Empty(t, inv)
		})
	}
}

func TestInventoryDecodesSequenceJSON(t *testing.T) {
	var inv Inventory
	require.NoError(t, json.Unmarshal([]byte(`[{"name": "sword", "count": 1}]`), &inv))

	assert.Equal(t, Inventory{{Name: "sword", Count: 1}}, inv)
}

func TestInventoryDecodesLegacyBSON(t *testing.T) {
	doc, err := bson.Marshal(bson.D{
		{Key: "inventory", Value: bson.D{{Key: "shield", Value: int32(2)}}},
	})
	require.NoError(t, err)

	var out struct {
		Inventory Inventory `bson:"inventory"`
	}
	require.NoError(t, bson.Unmarshal(doc, &out))

	assert.Equal(t, 2, out.Inventory.CountOf("shield"))
	assert.Len(t, out.Inventory, 2)
}

func TestInventoryRejectsOversizedLegacyBSON(t *testing.T) {
	doc, err := bson.Marshal(bson.D{
		{Key: "inventory", Value: bson.D{{Key: "gem", Value: int64(20000000)}}},
	})
	require.NoError(t, err)

	var out struct {
		Inventory Inventory `bson:"inventory"`
	}
	assert.ErrorIs(t, bson.Unmarshal(doc, &out), ErrInventoryTooLarge)
}
