package ipc

import (
	"math"

	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Argument extraction helpers. JSON numbers decode as float64; id and
// coordinate fields must hold integral values. Required fields missing
// or any present field with the wrong shape yield a validation error
// before the handler touches state.

func idFromValue(v any) (uint32, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, false
	}
	return uint32(f), true
}

func intFromValue(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// RequiredID extracts a required non-negative integer id field.
func RequiredID(data wire.Object, key string) (uint32, error) {
	v, ok := data[key]
	if !ok {
		return 0, Validationf("missing required field %q", key)
	}
	id, ok := idFromValue(v)
	if !ok {
		return 0, Validationf("field %q must be a non-negative integer", key)
	}
	return id, nil
}

// OptionalID extracts an optional id field. Returns (nil, nil) when absent.
func OptionalID(data wire.Object, key string) (*uint32, error) {
	v, ok := data[key]
	if !ok {
		return nil, nil
	}
	id, ok := idFromValue(v)
	if !ok {
		return nil, Validationf("field %q must be a non-negative integer", key)
	}
	return &id, nil
}

// RequiredInt extracts a required integer field.
func RequiredInt(data wire.Object, key string) (int, error) {
	v, ok := data[key]
	if !ok {
		return 0, Validationf("missing required field %q", key)
	}
	n, ok := intFromValue(v)
	if !ok {
		return 0, Validationf("field %q must be an integer", key)
	}
	return n, nil
}

// RequiredBool extracts a required boolean field.
func RequiredBool(data wire.Object, key string) (bool, error) {
	v, ok := data[key]
	if !ok {
		return false, Validationf("missing required field %q", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, Validationf("field %q must be a boolean", key)
	}
	return b, nil
}

// OptionalBool extracts an optional boolean field. Returns (nil, nil)
// when absent.
func OptionalBool(data wire.Object, key string) (*bool, error) {
	v, ok := data[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, Validationf("field %q must be a boolean", key)
	}
	return &b, nil
}

// OptionalObject extracts an optional object field. Returns (nil, nil)
// when absent.
func OptionalObject(data wire.Object, key string) (wire.Object, error) {
	v, ok := data[key]
	if !ok {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Validationf("field %q must be an object", key)
	}
	return obj, nil
}

// OptionalStringList extracts an optional list-of-strings field.
// The second return reports whether the field was present at all; a
// non-string entry is a validation error.
func OptionalStringList(data wire.Object, key string) ([]string, bool, error) {
	v, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, true, Validationf("field %q must be an array", key)
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, true, Validationf("field %q contains a non-string entry", key)
		}
		out = append(out, s)
	}
	return out, true, nil
}

// GeometryFromObject parses a geometry argument. All four numeric
// fields are required.
func GeometryFromObject(obj wire.Object) (state.Geometry, error) {
	var g state.Geometry
	var err error

	if g.X, err = RequiredInt(obj, "x"); err != nil {
		return state.Geometry{}, Validationf("invalid geometry: %s", err.(*Error).Message)
	}
	if g.Y, err = RequiredInt(obj, "y"); err != nil {
		return state.Geometry{}, Validationf("invalid geometry: %s", err.(*Error).Message)
	}
	if g.Width, err = RequiredInt(obj, "width"); err != nil {
		return state.Geometry{}, Validationf("invalid geometry: %s", err.(*Error).Message)
	}
	if g.Height, err = RequiredInt(obj, "height"); err != nil {
		return state.Geometry{}, Validationf("invalid geometry: %s", err.(*Error).Message)
	}
	return g, nil
}
