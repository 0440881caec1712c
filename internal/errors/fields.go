package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// contextKeyFields is the context key holding field-level validation detail.
const contextKeyFields = "fields"

// FieldErrors collects per-field validation failures for one request body.
type FieldErrors map[string]string

// Add records reason for field. The first reason recorded for a field wins.
func (fe FieldErrors) Add(field, reason string) {
	if _, exists := fe[field]; !exists {
		fe[field] = reason
	}
}

// Err returns nil when no field failed, otherwise a validation error carrying the detail.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return ValidationFields(fe)
}

// ValidationFields builds a validation error with field-level detail.
func ValidationFields(fields FieldErrors) *EnhancedError {
	keys := slices.Sorted(maps.Keys(fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fields[k]))
	}

	return Newf("invalid input: %s", strings.Join(parts, "; ")).
		Category(CategoryValidation).
		Context(contextKeyFields, maps.Clone(fields)).
		Build()
}

// ValidationError creates a validation error without field detail
func ValidationError(message string) *EnhancedError {
	return New(NewStd(message)).
		Category(CategoryValidation).
		Build()
}

// Fields extracts the field-level detail from a validation error, or nil.
func Fields(err error) map[string]string {
	var ee *EnhancedError
	if !As(err, &ee) {
		return nil
	}
	fields, ok := ee.GetContext()[contextKeyFields].(FieldErrors)
	if !ok {
		return nil
	}
	return fields
}

// Field attaches a field-level reason and marks the error as a validation failure.
func (eb *ErrorBuilder) Field(field, reason string) *ErrorBuilder {
	fields, _ := eb.context[contextKeyFields].(FieldErrors)
	if fields == nil {
		fields = FieldErrors{}
		eb.Context(contextKeyFields, fields)
	}
	fields.Add(field, reason)
	eb.category = CategoryValidation
	return eb
}
