// Package inertiavalidationerrors adapts external validation output to the
// inertia error-prop contract: a flat map of field name to message.
package inertiavalidationerrors

import (
	"encoding/gob"
	"fmt"

	"github.com/pagefold/inertia"
)

var (
	_ error                     = (*MapError)(nil)
	_ inertia.ValidationErrorer = (*MapError)(nil)
)

//nolint:gochecknoinits
func init() {
	gob.Register(&MapError{})
}

// MapError is a map of key-value pairs that can be used as validation errors.
// Key is the field name and value is the error message.
type MapError map[string]string

// FromAny converts the output of an external error adapter into a MapError.
//
// Accepted shapes are map[string]string and map[string]any with string
// values. Anything else is a caller contract violation and returns an error
// rather than being coerced.
func FromAny(v any) (MapError, error) {
	switch m := v.(type) {
	case MapError:
		return m, nil
	case map[string]string:
		return MapError(m), nil
	case map[string]any:
		out := make(MapError, len(m))

		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("inertia: validation error %q is not a string message", k)
			}

			out[k] = s
		}

		return out, nil
	default:
		return nil, fmt.Errorf("inertia: validation errors must be a map, got %T", v)
	}
}

func (m MapError) ValidationErrors() []inertia.ValidationError {
	errors := make([]inertia.ValidationError, 0, len(m))
	for k, v := range m {
		errors = append(errors, inertia.NewValidationError(k, v))
	}

	return errors
}

func (m MapError) Error() string    { return "validation errors" }
func (m MapError) Len() int         { return len(m) }
func (m MapError) ErrorBag() string { return inertia.DefaultErrorBag }
