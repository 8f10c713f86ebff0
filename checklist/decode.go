package checklist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Items is a decoded checklist: item key to the stored value, normally a bool.
type Items map[string]any

// ErrNotObject is returned when a stored checklist is valid JSON but not an object.
var ErrNotObject = errors.New("checklist is not a JSON object")

// maxNesting bounds how many times a string-encoded object is unwrapped.
const maxNesting = 2

// Decode parses a stored checklist. NULL, empty input and JSON null decode
// to an empty checklist. A JSON string holding an encoded object (written by
// older clients that stringified before posting) is unwrapped.
func Decode(raw []byte) (Items, error) {
	return decode(raw, 0)
}

// DecodeValue accepts whatever a database driver hands back for a checklist
// column: nil, string, []byte or an already decoded map.
func DecodeValue(v any) (Items, error) {
	switch t := v.(type) {
	case nil:
		return Items{}, nil
	case []byte:
		return Decode(t)
	case string:
		return Decode([]byte(t))
	case map[string]any:
		return Items(t), nil
	case Items:
		return t, nil
	default:
		return Items{}, fmt.Errorf("unsupported checklist type %T", v)
	}
}

func decode(raw []byte, depth int) (Items, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Items{}, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Items{}, fmt.Errorf("decode checklist: %w", err)
	}

	switch t := v.(type) {
	case map[string]any:
		return Items(t), nil
	case nil:
		return Items{}, nil
	case string:
		if depth >= maxNesting {
			return Items{}, ErrNotObject
		}
		return decode([]byte(t), depth+1)
	default:
		return Items{}, ErrNotObject
	}
}

// IsChecked reports whether a stored value marks the item as defective.
// Only true, "true" and the number 1 count.
func IsChecked(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	case float64:
		return t == 1
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	}
	return false
}
