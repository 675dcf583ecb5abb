package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a free-form key/value bag persisted as jsonb. The engine passes
// it through untouched; callers attach completion percentages, manual-issue
// flags and similar annotations.
type JSONMap map[string]any

// Value marshals the map into a jsonb literal.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("jsonmap: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes a jsonb column into the map.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonmap: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}
