// AngelaMos | 2026
// migration.go

package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Limits on what a legacy inventory may expand into.
const (
	MaxLegacyItemCount  = 1000
	MaxInventoryEntries = 10000
)

var ErrInventoryTooLarge = errors.New("inventory too large")

// MigrateInventory converts a stored inventory value to the sequence form.
// The boolean reports whether the stored value must be rewritten: true for
// an absent, null, legacy object or otherwise malformed value, false when
// raw is already a sequence. Converting the result again is a no-op.
//
// A legacy object {name: count} expands to count entries {name, 1}, names
// in sorted order. Non-positive and non-integer counts are skipped. A count
// above MaxLegacyItemCount, or an expansion past MaxInventoryEntries, fails
// with ErrInventoryTooLarge.
func MigrateInventory(raw any) (Inventory, bool, error) {
	switch v := raw.(type) {
	case nil:
		return Inventory{}, true, nil
	case Inventory:
		return v, false, nil
	case []InventoryItem:
		return Inventory(v), false, nil
	case []any:
		return sequenceFromValues(v), false, nil
	case bson.A:
		return sequenceFromValues(v), false, nil
	case map[string]any:
		inv, err := expandLegacy(v)
		return inv, true, err
	case bson.M:
		inv, err := expandLegacy(v)
		return inv, true, err
	case bson.D:
		inv, err := expandLegacy(v.Map())
		return inv, true, err
	default:
		return Inventory{}, true, nil
	}
}

func expandLegacy(legacy map[string]any) (Inventory, error) {
	names := make([]string, 0, len(legacy))
	counts := make(map[string]int, len(legacy))
	total := 0

	for name, raw := range legacy {
		n, ok := integerCount(raw)
		if !ok || n <= 0 {
			continue
		}
		if n > MaxLegacyItemCount {
			return nil, fmt.Errorf("%w: %d of %q", ErrInventoryTooLarge, n, name)
		}
		total += n
		if total > MaxInventoryEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrInventoryTooLarge, MaxInventoryEntries)
		}
		names = append(names, name)
		counts[name] = n
	}
	sort.Strings(names)

	out := make(Inventory, 0, total)
	for _, name := range names {
		for range counts[name] {
			out = append(out, InventoryItem{Name: name, Count: 1})
		}
	}

	return out, nil
}

func sequenceFromValues(values []any) Inventory {
	out := make(Inventory, 0, len(values))

	for _, v := range values {
		var fields map[string]any
		switch entry := v.(type) {
		case map[string]any:
			fields = entry
		case bson.M:
			fields = entry
		case bson.D:
			fields = entry.Map()
		default:
			continue
		}

		name, _ := fields["name"].(string)
		count, ok := integerCount(fields["count"])
		if !ok {
			count = 1
		}
		out = append(out, InventoryItem{Name: name, Count: count})
	}

	return out
}

func integerCount(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return integralFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	default:
		return 0, false
	}
}

func integralFloat(f float64) (int, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int(f), true
}
