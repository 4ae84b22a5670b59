package wire

import (
	"fmt"
)

// Object is a decoded JSON object. Method arguments, response payloads
// and event envelopes are all Objects.
type Object = map[string]any

// EventKey is the envelope key that marks a pushed event message and
// names the event it carries.
const EventKey = "event"

// Request represents a method invocation from a client.
type Request struct {
	// Method is the full method name, e.g. "resources/list-views".
	Method string `json:"method"`

	// Data holds the method arguments. May be nil for methods that
	// take no arguments.
	Data Object `json:"data,omitempty"`
}

// Validate checks if the request is well-formed.
func (r *Request) Validate() error {
	if r.Method == "" {
		return fmt.Errorf("request has no method")
	}
	return nil
}

// Ok returns the plain success response object.
func Ok() Object {
	return Object{"result": "ok"}
}

// OkWith returns a success response carrying an "info" payload.
// A nil info is encoded as an explicit null, which is how methods such
// as resources/get-focused-view report "nothing focused".
func OkWith(info any) Object {
	return Object{"result": "ok", "info": info}
}

// Error returns a structured error response.
func Error(kind, message string) Object {
	return Object{"error": message, "kind": kind}
}

// IsError reports whether a response object is a structured error.
func IsError(obj Object) bool {
	_, ok := obj["error"]
	return ok
}

// Kind classifies a decoded message.
type Kind int

const (
	// KindResponse is a reply to a request.
	KindResponse Kind = iota
	// KindEvent is a pushed event envelope.
	KindEvent
)

// PeekKind examines a decoded object and reports whether it is a pushed
// event or a response. Any object carrying the "event" key is an event;
// methods never place that key in response payloads.
func PeekKind(obj Object) Kind {
	if _, ok := obj[EventKey]; ok {
		return KindEvent
	}
	return KindResponse
}
