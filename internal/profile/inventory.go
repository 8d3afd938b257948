// AngelaMos | 2026
// inventory.go

package profile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

type InventoryItem struct {
	Name  string `bson:"name"  json:"name"`
	Count int    `bson:"count" json:"count"`
}

// Inventory is the ordered sequence of item instances. Stored documents may
// still hold the legacy name-to-count object, which BSON decoding converts.
// Request bodies must use the sequence form.
type Inventory []InventoryItem

// With returns a copy of inv with one instance of name appended.
func (inv Inventory) With(name string) Inventory {
	out := make(Inventory, 0, len(inv)+1)
	out = append(out, inv...)
	return append(out, InventoryItem{Name: name, Count: 1})
}

// CountOf sums the counts of every entry named name.
func (inv Inventory) CountOf(name string) int {
	total := 0
	for _, item := range inv {
		if item.Name == name {
			total += item.Count
		}
	}
	return total
}

func (inv *Inventory) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bson.TypeArray:
		var items []InventoryItem
		if err := rv.Unmarshal(&items); err != nil {
			return fmt.Errorf("decode inventory: %w", err)
		}
		*inv = items
	case bson.TypeEmbeddedDocument:
		var legacy bson.M
		if err := rv.Unmarshal(&legacy); err != nil {
			return fmt.Errorf("decode legacy inventory: %w", err)
		}
		migrated, _, err := MigrateInventory(map[string]any(legacy))
		if err != nil {
			return fmt.Errorf("migrate legacy inventory: %w", err)
		}
		*inv = migrated
	default:
		*inv = Inventory{}
	}

	return nil
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*inv = Inventory{}
	case trimmed[0] == '[':
		var items []InventoryItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode inventory: %w", err)
		}
		*inv = items
	default:
		return fmt.Errorf("inventory must be a list of items: %w", core.ErrInvalidInput)
	}

	return nil
}
