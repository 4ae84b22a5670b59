package state

// Signal topics emitted on the core bus.
const (
	SignalViewMapped       = "view-mapped"
	SignalViewUnmapped     = "view-unmapped"
	SignalViewSetOutput    = "view-set-output"
	SignalViewGeometry     = "view-geometry-changed"
	SignalViewWSet         = "view-wset-changed"
	SignalViewFocused      = "view-focused"
	SignalViewTitle        = "view-title-changed"
	SignalViewAppID        = "view-app-id-changed"
	SignalPluginActivation = "plugin-activation-state-changed"
	SignalOutputGainFocus  = "output-gain-focus"
)

// Signal topics emitted on per-output buses.
const (
	SignalViewTiled       = "view-tiled"
	SignalViewMinimized   = "view-minimized"
	SignalViewFullscreen  = "view-fullscreened"
	SignalViewSticky      = "view-sticky"
	SignalViewWorkspace   = "view-workspace-changed"
	SignalOutputWSet      = "output-wset-changed"
	SignalWSetWorkspace   = "wset-workspace-changed"
)

// Handler is a signal callback. Handlers run synchronously on the
// processing loop, in connection order.
type Handler func(data any)

// Connection is a live signal connection. Disconnect detaches it; a
// disconnected connection is inert and may be disconnected again.
type Connection struct {
	bus   *Bus
	topic string
	index int
}

// Disconnect removes the handler from its bus.
func (c *Connection) Disconnect() {
	if c.bus == nil {
		return
	}
	c.bus.disconnect(c)
	c.bus = nil
}

// Bus is a minimal topic-keyed signal dispatcher. Loop-confined: no
// locking, handlers run inline on Emit.
type Bus struct {
	handlers map[string][]*busEntry
	nextIdx  int
}

type busEntry struct {
	index int
	fn    Handler
}

// NewBus creates an empty signal bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]*busEntry)}
}

// Connect attaches fn to topic and returns the connection handle.
func (b *Bus) Connect(topic string, fn Handler) *Connection {
	b.nextIdx++
	entry := &busEntry{index: b.nextIdx, fn: fn}
	b.handlers[topic] = append(b.handlers[topic], entry)
	return &Connection{bus: b, topic: topic, index: entry.index}
}

// Emit invokes every handler connected to topic, in connection order.
// Handlers may connect or disconnect during emission; changes take
// effect on the next Emit.
func (b *Bus) Emit(topic string, data any) {
	entries := b.handlers[topic]
	if len(entries) == 0 {
		return
	}

	// Snapshot so handlers can mutate the connection list safely.
	snapshot := make([]*busEntry, len(entries))
	copy(snapshot, entries)
	for _, e := range snapshot {
		if e.fn != nil {
			e.fn(data)
		}
	}
}

func (b *Bus) disconnect(c *Connection) {
	entries := b.handlers[c.topic]
	for i, e := range entries {
		if e.index == c.index {
			e.fn = nil // inert even if a snapshot still holds it
			b.handlers[c.topic] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Signal payloads. Each mirrors the data the compositor attaches to the
// corresponding internal signal.

// ViewSignal is the payload for plain view signals (mapped, unmapped,
// focused, title, app-id, minimized, fullscreen, sticky).
type ViewSignal struct {
	View *View
}

// ViewSetOutputSignal is emitted when a view is moved to an output.
// Output is the previous output; the view already points at the new one.
type ViewSetOutputSignal struct {
	View   *View
	Output *Output // previous output, may be nil
}

// ViewGeometrySignal is emitted when a view's geometry changes.
type ViewGeometrySignal struct {
	View        *View
	OldGeometry Geometry
}

// ViewWSetSignal is emitted when a view moves between workspace sets.
type ViewWSetSignal struct {
	View    *View
	OldWSet *WorkspaceSet
	NewWSet *WorkspaceSet
}

// ViewTiledSignal is emitted when a view's tiled edges change.
type ViewTiledSignal struct {
	View     *View
	OldEdges uint32
	NewEdges uint32
}

// ViewWorkspaceSignal is emitted when a view is carried to another
// workspace of its output.
type ViewWorkspaceSignal struct {
	View *View
	From Point
	To   Point
}

// OutputSignal is the payload for plain output signals (gain-focus).
type OutputSignal struct {
	Output *Output
}

// PluginActivationSignal is emitted when a compositor plugin activates
// or deactivates on an output.
type PluginActivationSignal struct {
	Output    *Output // may be nil for compositor-wide plugins
	Plugin    string
	Activated bool
}

// OutputWSetSignal is emitted when an output switches workspace sets.
type OutputWSetSignal struct {
	Output  *Output
	NewWSet *WorkspaceSet
}

// WorkspaceChangedSignal is emitted when a workspace set switches its
// current workspace.
type WorkspaceChangedSignal struct {
	Output       *Output
	WSet         *WorkspaceSet
	OldWorkspace Point
	NewWorkspace Point
}
