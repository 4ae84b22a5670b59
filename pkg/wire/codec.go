package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal encodes a value to JSON bytes.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON bytes into a value.
// Numbers decoded into an `any` become float64, per encoding/json.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// EncodeRequest encodes a request to JSON bytes.
func EncodeRequest(req *Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return Marshal(req)
}

// DecodeRequest decodes JSON bytes into a request.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// EncodeObject encodes a response or event object to JSON bytes.
func EncodeObject(obj Object) ([]byte, error) {
	return Marshal(obj)
}

// DecodeObject decodes JSON bytes into a response or event object.
func DecodeObject(data []byte) (Object, error) {
	var obj Object
	if err := Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return obj, nil
}

// Clone creates a deep copy of a value by re-encoding.
// Useful for copying envelopes without shared references.
func Clone[T any](v T) (T, error) {
	var result T
	data, err := Marshal(v)
	if err != nil {
		return result, err
	}
	err = Unmarshal(data, &result)
	return result, err
}

// Equal compares two values by their JSON encoding.
func Equal(a, b any) bool {
	dataA, errA := Marshal(a)
	dataB, errB := Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}
