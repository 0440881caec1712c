package entities

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is an unstructured JSON object stored in a text column.
type Metadata map[string]any

// Value implements driver.Valuer. A nil map is stored as an empty object.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}

	out := Metadata{}
	if len(raw) > 0 {
		decoded, err := DecodeMetadata(raw)
		if err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		if decoded != nil {
			out = decoded
		}
	}
	*m = out
	return nil
}

// DecodeMetadata parses a JSON object keeping numbers as json.Number, so
// integers beyond float64 precision survive a round trip.
func DecodeMetadata(raw []byte) (Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Metadata
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after metadata object")
	}
	return out, nil
}
