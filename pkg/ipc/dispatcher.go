package ipc

import (
	"sort"

	"github.com/crest-wm/crest-go/pkg/wire"
)

// Client is a connected IPC peer as seen by the control plane. The
// transport owns the connection; the control plane only references it.
// Identity is stable for the connection's lifetime.
type Client interface {
	// ID returns the stable connection identifier.
	ID() string

	// Send pushes one message to the client. Best-effort and
	// fire-and-forget: delivery failures are the transport's concern
	// and invisible here.
	Send(msg any)
}

// Handler is a method handler that does not need the calling client.
// It returns the response payload or a structured error.
type Handler func(data wire.Object) (any, error)

// FullHandler additionally receives the calling client. Used by
// methods that install per-client state, such as events/watch.
type FullHandler func(client Client, data wire.Object) (any, error)

// DisconnectHandler is notified when a client's connection goes away.
type DisconnectHandler func(client Client)

// Repository routes incoming requests to registered method handlers and
// relays client disconnects to interested parties. Loop-confined.
type Repository struct {
	methods      map[string]FullHandler
	onDisconnect []DisconnectHandler
}

// NewRepository creates an empty method repository.
func NewRepository() *Repository {
	return &Repository{methods: make(map[string]FullHandler)}
}

// Register installs a handler for a method name, replacing any previous
// handler for that name.
func (r *Repository) Register(name string, h Handler) {
	r.methods[name] = func(_ Client, data wire.Object) (any, error) {
		return h(data)
	}
}

// RegisterFull installs a client-aware handler for a method name.
func (r *Repository) RegisterFull(name string, h FullHandler) {
	r.methods[name] = h
}

// Unregister removes a method handler.
func (r *Repository) Unregister(name string) {
	delete(r.methods, name)
}

// Methods returns all registered method names, sorted.
func (r *Repository) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes a request to its handler and converts structured
// errors into error responses. An unregistered method yields an
// unknown-method error response.
func (r *Repository) Dispatch(client Client, req *wire.Request) any {
	h, ok := r.methods[req.Method]
	if !ok {
		return wire.Error(string(KindUnknownMethod), "no such method: "+req.Method)
	}

	data := req.Data
	if data == nil {
		data = wire.Object{}
	}

	result, err := h(client, data)
	if err != nil {
		return ErrorResponse(err)
	}
	return result
}

// OnClientDisconnected registers a disconnect observer.
func (r *Repository) OnClientDisconnected(h DisconnectHandler) {
	r.onDisconnect = append(r.onDisconnect, h)
}

// NotifyClientDisconnected informs all observers that a client is gone.
// Called by the transport glue exactly once per connection.
func (r *Repository) NotifyClientDisconnected(client Client) {
	for _, h := range r.onDisconnect {
		h(client)
	}
}
