package ipc

import (
	"fmt"
	"sort"

	"github.com/crest-wm/crest-go/pkg/state"
)

// Scope describes how an event source attaches to the compositor.
type Scope uint8

const (
	// ScopeGlobal sources connect once, on the compositor core.
	ScopeGlobal Scope = iota
	// ScopePerOutput sources connect on every live output, and must be
	// re-applied when outputs appear.
	ScopePerOutput
)

// Descriptor is one entry of the event source table: how to turn the
// underlying compositor signal on and off, and how many subscribers
// currently want it. The table is fixed at startup; only refcounts
// change at runtime.
//
// Activation funcs may be nil for always-on sources (the output
// lifecycle events, which are produced by the lifecycle hook itself and
// have nothing to connect).
type Descriptor struct {
	Name  string
	Scope Scope

	// Activate connects the global source. Called on the 0->1 refcount
	// transition for ScopeGlobal descriptors.
	Activate func()

	// ActivateOutput connects the source on one output. Called on the
	// 0->1 transition for every live output, and again for every output
	// that appears while the refcount stays positive.
	ActivateOutput func(o *state.Output)

	// Deactivate disconnects the source everywhere. Called on the 1->0
	// transition, and unconditionally on registry Stop.
	Deactivate func()

	refcount int
}

// Refcount returns the descriptor's current reference count.
func (d *Descriptor) Refcount() int {
	return d.refcount
}

// SourceRegistry owns the descriptor table and its refcounts. Only the
// SubscriptionManager drives Increase/Decrease; nothing else touches
// refcounts. Loop-confined.
type SourceRegistry struct {
	descriptors map[string]*Descriptor
	outputs     func() []*state.Output
}

// NewSourceRegistry creates a registry. outputs provides the current
// set of live outputs for per-output activation.
func NewSourceRegistry(outputs func() []*state.Output) *SourceRegistry {
	return &SourceRegistry{
		descriptors: make(map[string]*Descriptor),
		outputs:     outputs,
	}
}

// Add installs a descriptor. Called during table construction only.
func (r *SourceRegistry) Add(d *Descriptor) {
	r.descriptors[d.Name] = d
}

// Known reports whether name is a registered event name.
func (r *SourceRegistry) Known(name string) bool {
	_, ok := r.descriptors[name]
	return ok
}

// Names returns all registered event names, sorted.
func (r *SourceRegistry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Refcount returns the refcount for name, or 0 for unknown names.
func (r *SourceRegistry) Refcount(name string) int {
	if d, ok := r.descriptors[name]; ok {
		return d.refcount
	}
	return 0
}

// Increase increments the refcount for name, activating the source on
// the 0->1 transition. Unknown names are a programmer error: the
// subscription manager resolves names against this registry before
// driving refcounts.
func (r *SourceRegistry) Increase(name string) {
	d, ok := r.descriptors[name]
	if !ok {
		panic(fmt.Sprintf("ipc: increase on unknown event source %q", name))
	}

	d.refcount++
	if d.refcount > 1 {
		return
	}

	if d.Activate != nil {
		d.Activate()
	}
	if d.ActivateOutput != nil {
		for _, o := range r.outputs() {
			d.ActivateOutput(o)
		}
	}
}

// Decrease decrements the refcount for name, deactivating the source on
// the 1->0 transition. Unknown names and refcount underflow are
// programmer errors.
func (r *SourceRegistry) Decrease(name string) {
	d, ok := r.descriptors[name]
	if !ok {
		panic(fmt.Sprintf("ipc: decrease on unknown event source %q", name))
	}
	if d.refcount == 0 {
		panic(fmt.Sprintf("ipc: refcount underflow on event source %q", name))
	}

	d.refcount--
	if d.refcount > 0 {
		return
	}

	if d.Deactivate != nil {
		d.Deactivate()
	}
}

// ApplyToOutput connects every per-output descriptor with a positive
// refcount on a newly added output. Must run before any event from that
// output can be observed; the lifecycle hook guarantees this by running
// synchronously inside output creation.
func (r *SourceRegistry) ApplyToOutput(o *state.Output) {
	for _, d := range r.descriptors {
		if d.refcount > 0 && d.ActivateOutput != nil {
			d.ActivateOutput(o)
		}
	}
}

// Stop deactivates every connected descriptor regardless of refcounts
// and resets the counts. Called on plugin teardown.
func (r *SourceRegistry) Stop() {
	for _, d := range r.descriptors {
		if d.refcount > 0 && d.Deactivate != nil {
			d.Deactivate()
		}
		d.refcount = 0
	}
}
