// AngelaMos | 2026
// optional.go

package profile

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field left out of a request from one that was
// sent. An explicit JSON null counts as left out.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Set = false
		return nil
	}

	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}
