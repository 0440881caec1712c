package serializers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tphakala/graphing-app/internal/errors"
)

// Ref is a write-side relationship: either a bare id (1, "1") or an object
// carrying one ({"id": 1, ...}). Only the id is used.
type Ref struct {
	ID uint
}

// RefError describes why a relationship value could not be read.
type RefError struct {
	Reason string
}

func (e *RefError) Error() string { return e.Reason }

func incorrectType(kind string) *RefError {
	return &RefError{Reason: fmt.Sprintf("Incorrect type. Expected pk value, received %s.", kind)}
}

func doesNotExist(pk string) *RefError {
	return &RefError{Reason: fmt.Sprintf("Invalid pk %q - object does not exist.", pk)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return incorrectType("dict")
		}
		id, ok := obj["id"]
		if !ok || isNull(id) {
			return &RefError{Reason: "Related object must include an id."}
		}
		return r.scalar(id)
	}
	return r.scalar(data)
}

// MarshalJSON renders the bare id.
func (r Ref) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(r.ID), 10)), nil
}

func (r *Ref) scalar(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return incorrectType("invalid JSON")
	}

	var pk, kind string
	switch x := v.(type) {
	case json.Number:
		pk, kind = x.String(), "float"
	case string:
		pk, kind = x, "str"
	case nil:
		return &RefError{Reason: msgNull}
	case bool:
		return incorrectType("bool")
	case []any:
		return incorrectType("list")
	case map[string]any:
		return incorrectType("dict")
	default:
		return incorrectType(fmt.Sprintf("%T", v))
	}

	id, err := strconv.ParseUint(pk, 10, strconv.IntSize)
	if err == nil {
		r.ID = uint(id)
		return nil
	}
	if _, intErr := strconv.ParseInt(pk, 10, 64); intErr == nil || errors.Is(err, strconv.ErrRange) {
		return doesNotExist(pk)
	}
	return incorrectType(kind)
}
