package ipc

import (
	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Lifecycle events produced by the output hook itself. They have no
// underlying compositor signal; their descriptors exist so the names
// are recognized in watch filters.
const (
	EventOutputAdded   = "output-added"
	EventOutputRemoved = "output-removed"
)

// Rules is the control-plane surface: it owns the event source table,
// the subscription table and the method handlers, and ties them to the
// compositor state tree. One instance per daemon, loop-confined.
type Rules struct {
	core     *state.Core
	repo     *Repository
	registry *SourceRegistry
	subs     *SubscriptionManager
	fanout   *Fanout

	// Live signal connections made by activated descriptors, so
	// Deactivate can take down exactly what Activate set up.
	globalConns map[string]*state.Connection
	outputConns map[string]map[*state.Output]*state.Connection
}

// NewRules builds the rules instance and its descriptor table. Nothing
// is connected or registered until Start.
func NewRules(core *state.Core, repo *Repository) *Rules {
	r := &Rules{
		core:        core,
		repo:        repo,
		globalConns: make(map[string]*state.Connection),
		outputConns: make(map[string]map[*state.Output]*state.Connection),
	}
	r.registry = NewSourceRegistry(core.Outputs)
	r.subs = NewSubscriptionManager(r.registry)
	r.fanout = NewFanout(r.subs)
	r.buildSourceTable()
	return r
}

// Registry exposes the event source registry, mainly for tests and the
// simulator's introspection.
func (r *Rules) Registry() *SourceRegistry {
	return r.registry
}

// Subscriptions exposes the subscription table.
func (r *Rules) Subscriptions() *SubscriptionManager {
	return r.subs
}

// Start registers the method handlers, hooks output lifecycle and
// begins tearing down subscriptions on client disconnect.
func (r *Rules) Start() {
	r.registerMethods()
	r.core.AddOutputListener(r)
	r.repo.OnClientDisconnected(func(c Client) {
		r.subs.RemoveClient(c)
	})
}

// Stop unregisters the method handlers and deactivates every connected
// event source, regardless of refcounts.
func (r *Rules) Stop() {
	r.unregisterMethods()
	r.core.RemoveOutputListener(r)
	r.registry.Stop()
}

// HandleNewOutput connects every active per-output source on the new
// output before announcing it, so no event from the output can slip
// past a live subscription.
func (r *Rules) HandleNewOutput(o *state.Output) {
	r.registry.ApplyToOutput(o)
	r.fanout.Dispatch(EventOutputAdded, wire.Object{"output": OutputPayload(o)})
}

// HandleOutputRemoved announces the removal, then drops the removed
// output's signal connections so later Deactivate calls do not touch a
// dead bus.
func (r *Rules) HandleOutputRemoved(o *state.Output) {
	r.fanout.Dispatch(EventOutputRemoved, wire.Object{"output": OutputPayload(o)})
	for _, conns := range r.outputConns {
		if c, ok := conns[o]; ok {
			c.Disconnect()
			delete(conns, o)
		}
	}
}

// addGlobal installs a descriptor whose source is one connection on the
// core bus. The signal topic doubles as the event name.
func (r *Rules) addGlobal(name string, envelope func(data any) wire.Object) {
	r.registry.Add(&Descriptor{
		Name:  name,
		Scope: ScopeGlobal,
		Activate: func() {
			r.globalConns[name] = r.core.Signals().Connect(name, func(data any) {
				r.fanout.Dispatch(name, envelope(data))
			})
		},
		Deactivate: func() {
			if c := r.globalConns[name]; c != nil {
				c.Disconnect()
				delete(r.globalConns, name)
			}
		},
	})
}

// addPerOutput installs a descriptor whose source is one connection per
// live output.
func (r *Rules) addPerOutput(name string, envelope func(data any) wire.Object) {
	r.registry.Add(&Descriptor{
		Name:  name,
		Scope: ScopePerOutput,
		ActivateOutput: func(o *state.Output) {
			conns := r.outputConns[name]
			if conns == nil {
				conns = make(map[*state.Output]*state.Connection)
				r.outputConns[name] = conns
			}
			if _, connected := conns[o]; connected {
				return
			}
			conns[o] = o.Signals().Connect(name, func(data any) {
				r.fanout.Dispatch(name, envelope(data))
			})
		},
		Deactivate: func() {
			for o, c := range r.outputConns[name] {
				c.Disconnect()
				delete(r.outputConns[name], o)
			}
		},
	})
}

func (r *Rules) buildSourceTable() {
	// Core-scoped sources.
	r.addGlobal(state.SignalViewMapped, viewEnvelope)
	r.addGlobal(state.SignalViewUnmapped, viewEnvelope)
	r.addGlobal(state.SignalViewFocused, viewEnvelope)
	r.addGlobal(state.SignalViewTitle, viewEnvelope)
	r.addGlobal(state.SignalViewAppID, viewEnvelope)
	r.addGlobal(state.SignalViewSetOutput, viewSetOutputEnvelope)
	r.addGlobal(state.SignalViewGeometry, viewGeometryEnvelope)
	r.addGlobal(state.SignalViewWSet, viewWSetEnvelope)
	r.addGlobal(state.SignalPluginActivation, pluginActivationEnvelope)
	r.addGlobal(state.SignalOutputGainFocus, outputEnvelope)

	// Output-scoped sources.
	r.addPerOutput(state.SignalViewTiled, viewTiledEnvelope)
	r.addPerOutput(state.SignalViewMinimized, viewEnvelope)
	r.addPerOutput(state.SignalViewFullscreen, viewEnvelope)
	r.addPerOutput(state.SignalViewSticky, viewEnvelope)
	r.addPerOutput(state.SignalViewWorkspace, viewWorkspaceEnvelope)
	r.addPerOutput(state.SignalOutputWSet, outputWSetEnvelope)
	r.addPerOutput(state.SignalWSetWorkspace, wsetWorkspaceEnvelope)

	// Lifecycle events are always on: produced by the output hook, not
	// by a connectable signal. Registered so the names resolve.
	r.registry.Add(&Descriptor{Name: EventOutputAdded, Scope: ScopeGlobal})
	r.registry.Add(&Descriptor{Name: EventOutputRemoved, Scope: ScopeGlobal})
}

// Envelope builders. Each translates one signal payload into the wire
// object delivered to subscribers; the fan-out stamps the event name.

func viewEnvelope(data any) wire.Object {
	sig := data.(*state.ViewSignal)
	return wire.Object{"view": ViewPayload(sig.View)}
}

func outputEnvelope(data any) wire.Object {
	sig := data.(*state.OutputSignal)
	return wire.Object{"output": OutputPayload(sig.Output)}
}

func viewSetOutputEnvelope(data any) wire.Object {
	sig := data.(*state.ViewSetOutputSignal)
	// "output" is the previous output; the view projection carries the
	// new one.
	return wire.Object{
		"output": OutputPayload(sig.Output),
		"view":   ViewPayload(sig.View),
	}
}

func viewGeometryEnvelope(data any) wire.Object {
	sig := data.(*state.ViewGeometrySignal)
	return wire.Object{
		"old-geometry": GeometryPayload(sig.OldGeometry),
		"view":         ViewPayload(sig.View),
	}
}

func viewWSetEnvelope(data any) wire.Object {
	sig := data.(*state.ViewWSetSignal)
	return wire.Object{
		"old-wset": WSetPayload(sig.OldWSet),
		"new-wset": WSetPayload(sig.NewWSet),
		"view":     ViewPayload(sig.View),
	}
}

func viewTiledEnvelope(data any) wire.Object {
	sig := data.(*state.ViewTiledSignal)
	return wire.Object{
		"old-edges": sig.OldEdges,
		"new-edges": sig.NewEdges,
		"view":      ViewPayload(sig.View),
	}
}

func viewWorkspaceEnvelope(data any) wire.Object {
	sig := data.(*state.ViewWorkspaceSignal)
	return wire.Object{
		"from": PointPayload(sig.From),
		"to":   PointPayload(sig.To),
		"view": ViewPayload(sig.View),
	}
}

func pluginActivationEnvelope(data any) wire.Object {
	sig := data.(*state.PluginActivationSignal)
	env := wire.Object{
		"plugin":      sig.Plugin,
		"state":       sig.Activated,
		"output":      -1,
		"output-data": OutputPayload(sig.Output),
	}
	if sig.Output != nil {
		env["output"] = sig.Output.ID
	}
	return env
}

func outputWSetEnvelope(data any) wire.Object {
	sig := data.(*state.OutputWSetSignal)
	env := wire.Object{
		"output":        -1,
		"new-wset":      -1,
		"output-data":   OutputPayload(sig.Output),
		"new-wset-data": WSetPayload(sig.NewWSet),
	}
	if sig.Output != nil {
		env["output"] = sig.Output.ID
	}
	if sig.NewWSet != nil {
		env["new-wset"] = sig.NewWSet.Index
	}
	return env
}

func wsetWorkspaceEnvelope(data any) wire.Object {
	sig := data.(*state.WorkspaceChangedSignal)
	env := wire.Object{
		"previous-workspace": PointPayload(sig.OldWorkspace),
		"new-workspace":      PointPayload(sig.NewWorkspace),
		"output":             -1,
		"wset":               -1,
		"output-data":        OutputPayload(sig.Output),
		"wset-data":          WSetPayload(sig.WSet),
	}
	if sig.Output != nil {
		env["output"] = sig.Output.ID
	}
	if sig.WSet != nil {
		env["wset"] = sig.WSet.Index
	}
	return env
}
