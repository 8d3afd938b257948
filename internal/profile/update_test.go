// AngelaMos | 2026
// update_test.go

package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/ascend-api/internal/core"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func decodeUpdate(t *testing.T, body string) UpdateRequest {
	t.Helper()

	var req UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestApplyUpdateRejectsEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"experience": null, "settings": null}`} {
		t.Run(body, func(t *testing.T) {
			req := decodeUpdate(t, body)

			assert.True(t, req.IsEmpty())

			_, err := ApplyUpdate(&Profile{}, req, fixedNow)
			assert.ErrorIs(t, err, ErrNoFieldsProvided)
		})
	}
}

func TestApplyUpdateSingleField(t *testing.T) {
	current := New("id-1", testIdentity("sub-1"), fixedNow.Add(-time.Hour))
	current.Experience = 40

	fields, err := ApplyUpdate(current, decodeUpdate(t, `{"currency": 10}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, Fields{
		"currency":   10,
		"updated_at": Timestamp{fixedNow},
	}, fields)
}

func TestApplyUpdateOverwritesWholesale(t *testing.T) {
	current := &Profile{Settings: map[string]any{"theme": "dark", "sound": true}}

	fields, err := ApplyUpdate(current, decodeUpdate(t, `{"settings": {"sound": false}}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"sound": false}, fields["settings"])
}

func TestApplyUpdatePresentButEmpty(t *testing.T) {
	fields, err := ApplyUpdate(&Profile{}, decodeUpdate(t, `{"achievements": []}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []Record{}, fields["achievements"])
}

func TestApplyUpdateRejectsNegativeCounters(t *testing.T) {
	for _, body := range []string{
		`{"experience": -1}`,
		`{"currency": -5}`,
		`{"daily_quest_creation_count": -1}`,
	} {
		t.Run(body, func(t *testing.T) {
			_, err := ApplyUpdate(&Profile{}, decodeUpdate(t, body), fixedNow)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestApplyUpdateSetsOnlyGrow(t *testing.T) {
	current := &Profile{
		UsedPromoCodes:             []string{"WELCOME100"},
		UsedInspirationSuggestions: []string{"walk"},
	}

	fields, err := ApplyUpdate(current, decodeUpdate(t, `{
		"used_promo_codes": ["coins50"],
		"used_inspiration_suggestions": ["read", "walk"]
	}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, Appended{"COINS50"}, fields["used_promo_codes"])
	assert.Equal(t, Appended{"read"}, fields["used_inspiration_suggestions"])
}

func TestApplyUpdateSetsNeverShrink(t *testing.T) {
	current := &Profile{UsedPromoCodes: []string{"WELCOME100", "COINS50"}}

	tests := []struct {
		name string
		body string
		want Fields
	}{
		{
			name: "empty list leaves the set alone",
			body: `{"used_promo_codes": []}`,
			want: Fields{"updated_at": Timestamp{fixedNow}},
		},
		{
			name: "subset leaves the set alone",
			body: `{"used_promo_codes": ["welcome100"]}`,
			want: Fields{"updated_at": Timestamp{fixedNow}},
		},
		{
			name: "blanks and duplicates collapse",
			body: `{"used_promo_codes": [" ", "boost2024", "BOOST2024"]}`,
			want: Fields{
				"used_promo_codes": Appended{"BOOST2024"},
				"updated_at":       Timestamp{fixedNow},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := ApplyUpdate(current, decodeUpdate(t, tc.body), fixedNow)
			require.NoError(t, err)

			assert.Equal(t, tc.want, fields)
		})
	}
}

func TestUpdateRequestRejectsLegacyInventory(t *testing.T) {
	var req UpdateRequest
	err := json.Unmarshal([]byte(`{"inventory": {"gem": 20000000}}`), &req)

	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.False(t, req.Inventory.Set)
}

func TestUpdateRequestRejectsWrongTypes(t *testing.T) {
	var req UpdateRequest
	err := json.Unmarshal([]byte(`{"experience": "lots"}`), &req)
	assert.Error(t, err)
}
