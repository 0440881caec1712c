package serializers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
)

// Mode selects which fields a write body must carry.
type Mode int

const (
	// ModeCreate requires every required field.
	ModeCreate Mode = iota
	// ModeReplace is a full update and requires every required field.
	ModeReplace
	// ModePartial validates only the fields present.
	ModePartial
)

// MaxCharLength is the column width of every text field.
const MaxCharLength = 255

// Field messages returned to clients.
const (
	msgRequired  = "This field is required."
	msgNull      = "This field may not be null."
	msgBlank     = "This field may not be blank."
	msgNotString = "Not a valid string."
	msgNotNumber = "A valid number is required."
	msgNotObject = "Value must be valid JSON object."
	msgUnknown   = "Unknown field."

	msgInvalidUTF8 = "JSON parse error - body is not valid UTF-8."
)

// nonFieldErrors is the key for problems not tied to one field.
const nonFieldErrors = "non_field_errors"

// object reads the top-level fields of one write body.
type object struct {
	fields map[string]json.RawMessage
	mode   Mode
	errs   errors.FieldErrors
}

// parseObject decodes body as a JSON object. Keys other than allowed and "id"
// are reported as unknown; "id" is accepted and ignored.
func parseObject(body []byte, mode Mode, allowed ...string) (*object, error) {
	o := &object{mode: mode, errs: errors.FieldErrors{}}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		o.fields = map[string]json.RawMessage{}
		return o, nil
	}

	if !utf8.Valid(trimmed) {
		return nil, errors.ValidationFields(errors.FieldErrors{
			nonFieldErrors: msgInvalidUTF8,
		})
	}

	if trimmed[0] != '{' {
		return nil, errors.ValidationFields(errors.FieldErrors{
			nonFieldErrors: fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", jsonKind(trimmed)),
		})
	}

	if err := json.Unmarshal(trimmed, &o.fields); err != nil {
		return nil, errors.ValidationError("JSON parse error - " + err.Error())
	}

	for key := range o.fields {
		if key != "id" && !slices.Contains(allowed, key) {
			o.errs.Add(key, msgUnknown)
		}
	}
	return o, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonKind names the JSON type starting at data for error messages.
func jsonKind(data []byte) string {
	switch data[0] {
	case '[':
		return "list"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// lookup returns the raw value of name, recording missing and null values.
func (o *object) lookup(name string, required bool) (json.RawMessage, bool) {
	raw, ok := o.fields[name]
	if !ok {
		if required && o.mode != ModePartial {
			o.errs.Add(name, msgRequired)
		}
		return nil, false
	}
	if isNull(raw) {
		o.errs.Add(name, msgNull)
		return nil, false
	}
	return raw, true
}

// text reads a required non-blank string of at most MaxCharLength runes.
func (o *object) text(name string) *string {
	raw, ok := o.lookup(name, true)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		o.errs.Add(name, msgNotString)
		return nil
	}
	if strings.TrimSpace(s) == "" {
		o.errs.Add(name, msgBlank)
		return nil
	}
	if utf8.RuneCountInString(s) > MaxCharLength {
		o.errs.Add(name, fmt.Sprintf("Ensure this field has no more than %d characters.", MaxCharLength))
		return nil
	}
	return &s
}

// number reads a required JSON number.
func (o *object) number(name string) *float64 {
	raw, ok := o.lookup(name, true)
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		o.errs.Add(name, msgNotNumber)
		return nil
	}
	return &f
}

// dict reads an optional JSON object.
func (o *object) dict(name string) map[string]any {
	raw, ok := o.lookup(name, false)
	if !ok {
		return nil
	}
	m, err := entities.DecodeMetadata(raw)
	if err != nil || m == nil {
		o.errs.Add(name, msgNotObject)
		return nil
	}
	return map[string]any(m)
}

// ref reads a required relationship.
func (o *object) ref(name string) *Ref {
	raw, ok := o.lookup(name, true)
	if !ok {
		return nil
	}
	var r Ref
	if err := json.Unmarshal(raw, &r); err != nil {
		var refErr *RefError
		if errors.As(err, &refErr) {
			o.errs.Add(name, refErr.Reason)
		} else {
			o.errs.Add(name, incorrectType("invalid JSON").Reason)
		}
		return nil
	}
	return &r
}

// err returns the collected field errors, or nil.
func (o *object) err() error {
	return o.errs.Err()
}
