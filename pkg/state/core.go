package state

import (
	"fmt"
)

// OutputListener is notified when outputs appear or disappear.
// Listeners run synchronously on the processing loop, after per-output
// state is fully set up (and before it is torn down).
type OutputListener interface {
	HandleNewOutput(o *Output)
	HandleOutputRemoved(o *Output)
}

// Core is the root of the compositor state tree. All mutation goes
// through its methods so the matching signals are emitted; loop-confined
// like the rest of the package.
type Core struct {
	signals *Bus

	views   []*View
	outputs []*Output
	wsets   []*WorkspaceSet
	devices []*InputDevice

	focusedView   *View
	focusedOutput *Output

	outputListeners []OutputListener

	nextID       uint32
	nextWSetIdx  uint32
	focusCounter int64
}

// NewCore creates an empty compositor state tree.
func NewCore() *Core {
	return &Core{signals: NewBus()}
}

// Signals returns the core-scoped signal bus.
func (c *Core) Signals() *Bus {
	return c.signals
}

// AddOutputListener registers a lifecycle listener. Existing outputs are
// not replayed; callers that need them iterate Outputs() first.
func (c *Core) AddOutputListener(l OutputListener) {
	c.outputListeners = append(c.outputListeners, l)
}

// RemoveOutputListener unregisters a lifecycle listener.
func (c *Core) RemoveOutputListener(l OutputListener) {
	for i, cur := range c.outputListeners {
		if cur == l {
			c.outputListeners = append(c.outputListeners[:i], c.outputListeners[i+1:]...)
			return
		}
	}
}

func (c *Core) allocID() uint32 {
	c.nextID++
	return c.nextID
}

// Views returns all views in stacking-agnostic creation order.
func (c *Core) Views() []*View {
	return c.views
}

// Outputs returns all live outputs.
func (c *Core) Outputs() []*Output {
	return c.outputs
}

// WorkspaceSets returns all workspace sets, attached or not.
func (c *Core) WorkspaceSets() []*WorkspaceSet {
	return c.wsets
}

// InputDevices returns all input devices on the seat.
func (c *Core) InputDevices() []*InputDevice {
	return c.devices
}

// FocusedView returns the view holding keyboard focus, or nil.
func (c *Core) FocusedView() *View {
	return c.focusedView
}

// FocusedOutput returns the active output, or nil before any output
// exists.
func (c *Core) FocusedOutput() *Output {
	return c.focusedOutput
}

// FindView resolves a view id, or nil.
func (c *Core) FindView(id uint32) *View {
	for _, v := range c.views {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// FindOutput resolves an output id, or nil.
func (c *Core) FindOutput(id uint32) *Output {
	for _, o := range c.outputs {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// FindWorkspaceSet resolves a workspace-set index, or nil.
func (c *Core) FindWorkspaceSet(index uint32) *WorkspaceSet {
	for _, w := range c.wsets {
		if w.Index == index {
			return w
		}
	}
	return nil
}

// FindInputDevice resolves an input device id, or nil.
func (c *Core) FindInputDevice(id uint32) *InputDevice {
	for _, d := range c.devices {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// AddOutput creates an output with a fresh workspace set attached,
// notifies lifecycle listeners and returns it. The first output becomes
// the focused output.
func (c *Core) AddOutput(name string, geometry Geometry) *Output {
	c.nextWSetIdx++
	wset := &WorkspaceSet{
		Index:    c.nextWSetIdx,
		Name:     fmt.Sprintf("wset-%d", c.nextWSetIdx),
		GridSize: Dimensions{Width: 3, Height: 3},
	}

	o := &Output{
		ID:       c.allocID(),
		Name:     name,
		Geometry: geometry,
		Workarea: geometry,
		wset:     wset,
		signals:  NewBus(),
	}
	wset.output = o

	c.outputs = append(c.outputs, o)
	c.wsets = append(c.wsets, wset)
	if c.focusedOutput == nil {
		c.focusedOutput = o
	}

	for _, l := range c.outputListeners {
		l.HandleNewOutput(o)
	}
	return o
}

// RemoveOutput destroys an output. Views on it lose their output and
// workspace set; its workspace set is detached but survives. Lifecycle
// listeners run before the output is unlinked, so per-output signal
// state is still observable.
func (c *Core) RemoveOutput(o *Output) {
	for _, l := range c.outputListeners {
		l.HandleOutputRemoved(o)
	}

	for _, v := range c.views {
		if v.Output == o {
			v.Output = nil
			v.WSet = nil
		}
	}
	if o.wset != nil {
		o.wset.output = nil
	}

	for i, cur := range c.outputs {
		if cur == o {
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			break
		}
	}
	if c.focusedOutput == o {
		c.focusedOutput = nil
		if len(c.outputs) > 0 {
			c.focusedOutput = c.outputs[0]
		}
	}
}

// FocusOutput makes o the active output and announces it.
func (c *Core) FocusOutput(o *Output) {
	c.focusedOutput = o
	c.signals.Emit(SignalOutputGainFocus, &OutputSignal{Output: o})
}

// MapView assigns the view an id, attaches it to the focused output's
// workspace set and announces it as mapped.
func (c *Core) MapView(v *View) *View {
	v.ID = c.allocID()
	v.Mapped = true
	if v.Output == nil {
		v.Output = c.focusedOutput
	}
	if v.Output != nil && v.WSet == nil {
		v.WSet = v.Output.wset
	}
	if v.BaseGeometry == (Geometry{}) {
		v.BaseGeometry = v.Geometry
	}

	c.views = append(c.views, v)
	c.signals.Emit(SignalViewMapped, &ViewSignal{View: v})
	return v
}

// UnmapView announces the view as unmapped and removes it.
func (c *Core) UnmapView(v *View) {
	v.Mapped = false
	c.signals.Emit(SignalViewUnmapped, &ViewSignal{View: v})

	for i, cur := range c.views {
		if cur == v {
			c.views = append(c.views[:i], c.views[i+1:]...)
			break
		}
	}
	if c.focusedView == v {
		c.focusedView = nil
	}
}

// CloseView asks the view to close. The simulated client complies
// immediately, so this unmaps the view.
func (c *Core) CloseView(v *View) {
	c.UnmapView(v)
}

// FocusView gives v keyboard focus. A nil v clears focus. The previously
// activated view is deactivated; the view's output gains focus when it
// differs from the current one.
func (c *Core) FocusView(v *View) {
	if prev := c.focusedView; prev != nil && prev != v {
		prev.Activated = false
	}

	c.focusedView = v
	if v != nil {
		v.Activated = true
		c.focusCounter++
		v.LastFocusTimestamp = c.focusCounter
		if v.Output != nil && v.Output != c.focusedOutput {
			c.FocusOutput(v.Output)
		}
	}

	c.signals.Emit(SignalViewFocused, &ViewSignal{View: v})
}

// SetViewTitle updates the title and announces the change.
func (c *Core) SetViewTitle(v *View, title string) {
	v.Title = title
	c.signals.Emit(SignalViewTitle, &ViewSignal{View: v})
}

// SetViewAppID updates the app id and announces the change.
func (c *Core) SetViewAppID(v *View, appID string) {
	v.AppID = appID
	c.signals.Emit(SignalViewAppID, &ViewSignal{View: v})
}

// SetViewGeometry moves/resizes the view and announces the change with
// the old geometry attached.
func (c *Core) SetViewGeometry(v *View, g Geometry) {
	old := v.Geometry
	v.Geometry = g
	v.BaseGeometry = g
	c.signals.Emit(SignalViewGeometry, &ViewGeometrySignal{View: v, OldGeometry: old})
}

// MoveViewToOutput moves the view to another output (and its workspace
// set). When keepPosition is false the view keeps its relative position
// on the new output; the simulated placement just re-centers it.
func (c *Core) MoveViewToOutput(v *View, o *Output) {
	oldOutput := v.Output
	oldWSet := v.WSet
	v.Output = o
	if o != nil {
		v.WSet = o.wset
	} else {
		v.WSet = nil
	}

	c.signals.Emit(SignalViewSetOutput, &ViewSetOutputSignal{View: v, Output: oldOutput})
	if oldWSet != v.WSet {
		c.signals.Emit(SignalViewWSet, &ViewWSetSignal{View: v, OldWSet: oldWSet, NewWSet: v.WSet})
	}
}

// SetViewSticky toggles stickiness; a sticky view shows on every
// workspace of its output. Announced on the view's output bus.
func (c *Core) SetViewSticky(v *View, sticky bool) {
	v.Sticky = sticky
	c.emitOnOutput(v.Output, SignalViewSticky, &ViewSignal{View: v})
}

// SetViewTiled updates the tiled edge mask. Announced on the view's
// output bus with old and new edges.
func (c *Core) SetViewTiled(v *View, edges uint32) {
	old := v.TiledEdges
	v.TiledEdges = edges
	c.emitOnOutput(v.Output, SignalViewTiled, &ViewTiledSignal{View: v, OldEdges: old, NewEdges: edges})
}

// SetViewFullscreen toggles fullscreen. Announced on the view's output bus.
func (c *Core) SetViewFullscreen(v *View, fs bool) {
	v.Fullscreen = fs
	c.emitOnOutput(v.Output, SignalViewFullscreen, &ViewSignal{View: v})
}

// SetViewMinimized toggles minimization. Announced on the view's output bus.
func (c *Core) SetViewMinimized(v *View, min bool) {
	v.Minimized = min
	c.emitOnOutput(v.Output, SignalViewMinimized, &ViewSignal{View: v})
}

// SetPluginActivated records a plugin (de)activation on an output and
// announces it on the core bus.
func (c *Core) SetPluginActivated(o *Output, plugin string, activated bool) {
	c.signals.Emit(SignalPluginActivation, &PluginActivationSignal{
		Output:    o,
		Plugin:    plugin,
		Activated: activated,
	})
}

// SetOutputWSet switches the workspace set shown on an output.
// Announced on the output's bus.
func (c *Core) SetOutputWSet(o *Output, wset *WorkspaceSet) {
	if old := o.wset; old != nil && old != wset {
		old.output = nil
	}
	o.wset = wset
	if wset != nil {
		wset.output = o
		for _, v := range c.views {
			if v.Output == o && !v.Sticky {
				v.WSet = wset
			}
		}
	}

	c.emitOnOutput(o, SignalOutputWSet, &OutputWSetSignal{Output: o, NewWSet: wset})
}

// SetWorkspace switches the current workspace of a workspace set,
// optionally carrying a toplevel view along. Sticky views are never
// carried; they are visible on every workspace anyway. Returns false
// when the target workspace is outside the grid.
func (c *Core) SetWorkspace(wset *WorkspaceSet, target Point, carry *View) bool {
	if !wset.Contains(target) {
		return false
	}

	old := wset.CurrentWorkspace
	if old == target {
		return true
	}

	output := wset.output
	if carry != nil && !carry.Sticky && carry.IsToplevel() && output != nil {
		// The carried view keeps its on-screen position: shift it by
		// the workspace delta so it lands on the target workspace.
		dx := (target.X - old.X) * output.Geometry.Width
		dy := (target.Y - old.Y) * output.Geometry.Height
		g := carry.Geometry
		g.X += dx
		g.Y += dy
		carry.Geometry = g
		carry.BaseGeometry = g

		c.emitOnOutput(output, SignalViewWorkspace, &ViewWorkspaceSignal{
			View: carry,
			From: old,
			To:   target,
		})
	}

	wset.CurrentWorkspace = target
	c.emitOnOutput(output, SignalWSetWorkspace, &WorkspaceChangedSignal{
		Output:       output,
		WSet:         wset,
		OldWorkspace: old,
		NewWorkspace: target,
	})
	return true
}

// AddInputDevice registers an input device on the seat.
func (c *Core) AddInputDevice(name string, typ DeviceType, vendor, product int) *InputDevice {
	d := &InputDevice{
		ID:      c.allocID(),
		Name:    name,
		Vendor:  vendor,
		Product: product,
		Type:    typ,
		Enabled: true,
	}
	c.devices = append(c.devices, d)
	return d
}

// emitOnOutput emits on the output's bus when the output exists.
// Per-output signals for outputless views are dropped, matching the
// compositor: no output, no per-output signal source.
func (c *Core) emitOnOutput(o *Output, topic string, data any) {
	if o == nil {
		return
	}
	o.signals.Emit(topic, data)
}
