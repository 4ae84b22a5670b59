package state

import (
	"testing"
)

// recorder collects emitted signal topics from a bus.
type recorder struct {
	topics   []string
	payloads []any
}

func (r *recorder) watch(bus *Bus, topics ...string) {
	for _, topic := range topics {
		tp := topic
		bus.Connect(tp, func(data any) {
			r.topics = append(r.topics, tp)
			r.payloads = append(r.payloads, data)
		})
	}
}

func newTestOutput(c *Core) *Output {
	return c.AddOutput("DP-1", Geometry{Width: 1920, Height: 1080})
}

func TestAddOutputCreatesWorkspaceSet(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)

	if o.WSet() == nil {
		t.Fatal("output has no workspace set")
	}
	if o.WSet().AttachedOutput() != o {
		t.Error("workspace set not attached to its output")
	}
	if got := o.WSet().GridSize; got.Width != 3 || got.Height != 3 {
		t.Errorf("grid = %v, want 3x3", got)
	}
	if c.FocusedOutput() != o {
		t.Error("first output should be focused")
	}
	if c.FindOutput(o.ID) != o {
		t.Error("FindOutput failed")
	}
	if c.FindWorkspaceSet(o.WSet().Index) != o.WSet() {
		t.Error("FindWorkspaceSet failed")
	}
}

func TestOutputListenerLifecycle(t *testing.T) {
	c := NewCore()

	var added, removed []*Output
	l := &funcListener{
		onNew:     func(o *Output) { added = append(added, o) },
		onRemoved: func(o *Output) { removed = append(removed, o) },
	}
	c.AddOutputListener(l)

	o := newTestOutput(c)
	if len(added) != 1 || added[0] != o {
		t.Fatalf("added = %v", added)
	}

	c.RemoveOutput(o)
	if len(removed) != 1 || removed[0] != o {
		t.Fatalf("removed = %v", removed)
	}
	if c.FindOutput(o.ID) != nil {
		t.Error("removed output still resolvable")
	}

	c.RemoveOutputListener(l)
	newTestOutput(c)
	if len(added) != 1 {
		t.Error("removed listener still notified")
	}
}

type funcListener struct {
	onNew     func(*Output)
	onRemoved func(*Output)
}

func (l *funcListener) HandleNewOutput(o *Output)     { l.onNew(o) }
func (l *funcListener) HandleOutputRemoved(o *Output) { l.onRemoved(o) }

func TestRemoveOutputDetachesViews(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)
	v := c.MapView(&View{Role: RoleToplevel, Output: o})

	c.RemoveOutput(o)

	if v.Output != nil || v.WSet != nil {
		t.Error("view still attached to removed output")
	}
	if o.WSet().AttachedOutput() != nil {
		t.Error("workspace set still attached")
	}
}

func TestMapViewDefaults(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)

	rec := &recorder{}
	rec.watch(c.Signals(), SignalViewMapped)

	v := c.MapView(&View{
		Role:     RoleToplevel,
		Geometry: Geometry{X: 10, Y: 20, Width: 100, Height: 200},
	})

	if v.ID == 0 {
		t.Error("mapped view has no id")
	}
	if !v.Mapped {
		t.Error("view not marked mapped")
	}
	if v.Output != o || v.WSet != o.WSet() {
		t.Error("view not placed on focused output")
	}
	if v.BaseGeometry != v.Geometry {
		t.Error("base geometry not defaulted")
	}
	if len(rec.topics) != 1 || rec.topics[0] != SignalViewMapped {
		t.Errorf("signals = %v", rec.topics)
	}
}

func TestFocusViewActivation(t *testing.T) {
	c := NewCore()
	newTestOutput(c)
	a := c.MapView(&View{Role: RoleToplevel, Focusable: true})
	b := c.MapView(&View{Role: RoleToplevel, Focusable: true})

	c.FocusView(a)
	if !a.Activated || c.FocusedView() != a {
		t.Fatal("first focus did not take")
	}
	firstStamp := a.LastFocusTimestamp

	c.FocusView(b)
	if a.Activated {
		t.Error("previous view still activated")
	}
	if !b.Activated {
		t.Error("focused view not activated")
	}
	if b.LastFocusTimestamp <= firstStamp {
		t.Error("focus timestamps not monotonic")
	}
}

func TestFocusViewSwitchesOutput(t *testing.T) {
	c := NewCore()
	o1 := newTestOutput(c)
	o2 := c.AddOutput("HDMI-A-1", Geometry{X: 1920, Width: 1920, Height: 1080})

	rec := &recorder{}
	rec.watch(c.Signals(), SignalOutputGainFocus)

	v := c.MapView(&View{Role: RoleToplevel, Output: o2})
	c.FocusView(v)

	if c.FocusedOutput() != o2 {
		t.Errorf("focused output = %v, want %v", c.FocusedOutput(), o2)
	}
	if len(rec.topics) != 1 {
		t.Errorf("output-gain-focus emitted %d times, want 1", len(rec.topics))
	}
	_ = o1
}

func TestMoveViewToOutputSignals(t *testing.T) {
	c := NewCore()
	o1 := newTestOutput(c)
	o2 := c.AddOutput("HDMI-A-1", Geometry{X: 1920, Width: 1920, Height: 1080})
	v := c.MapView(&View{Role: RoleToplevel, Output: o1})

	rec := &recorder{}
	rec.watch(c.Signals(), SignalViewSetOutput, SignalViewWSet)

	c.MoveViewToOutput(v, o2)

	if v.Output != o2 || v.WSet != o2.WSet() {
		t.Error("view not re-homed")
	}
	if len(rec.topics) != 2 {
		t.Fatalf("signals = %v", rec.topics)
	}
	setOutput := rec.payloads[0].(*ViewSetOutputSignal)
	if setOutput.Output != o1 {
		t.Error("view-set-output should carry the previous output")
	}
	wsetSig := rec.payloads[1].(*ViewWSetSignal)
	if wsetSig.OldWSet != o1.WSet() || wsetSig.NewWSet != o2.WSet() {
		t.Error("wset signal payload wrong")
	}
}

func TestPerOutputSignalsDroppedWithoutOutput(t *testing.T) {
	c := NewCore()
	v := c.MapView(&View{Role: RoleToplevel}) // no outputs exist

	// Must not panic; there is no output bus to deliver on.
	c.SetViewMinimized(v, true)
	if !v.Minimized {
		t.Error("state change lost")
	}
}

func TestSetWorkspaceCarriesView(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)
	wset := o.WSet()
	v := c.MapView(&View{
		Role:     RoleToplevel,
		Geometry: Geometry{X: 100, Y: 50, Width: 640, Height: 480},
	})

	rec := &recorder{}
	rec.watch(o.Signals(), SignalViewWorkspace, SignalWSetWorkspace)

	if !c.SetWorkspace(wset, Point{X: 1, Y: 0}, v) {
		t.Fatal("SetWorkspace rejected an in-grid target")
	}

	// The carried view shifts by one workspace width.
	if v.Geometry.X != 100+o.Geometry.Width {
		t.Errorf("carried view x = %d", v.Geometry.X)
	}
	if wset.CurrentWorkspace != (Point{X: 1, Y: 0}) {
		t.Errorf("workspace = %v", wset.CurrentWorkspace)
	}
	if len(rec.topics) != 2 || rec.topics[0] != SignalViewWorkspace || rec.topics[1] != SignalWSetWorkspace {
		t.Errorf("signals = %v", rec.topics)
	}

	ws := rec.payloads[1].(*WorkspaceChangedSignal)
	if ws.WSet != wset || ws.OldWorkspace != (Point{}) || ws.NewWorkspace != (Point{X: 1, Y: 0}) {
		t.Errorf("workspace payload = %+v", ws)
	}
}

func TestSetWorkspaceDoesNotCarrySticky(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)
	v := c.MapView(&View{Role: RoleToplevel, Sticky: true, Geometry: Geometry{X: 10, Width: 100, Height: 100}})

	rec := &recorder{}
	rec.watch(o.Signals(), SignalViewWorkspace)

	c.SetWorkspace(o.WSet(), Point{X: 2, Y: 1}, v)

	if v.Geometry.X != 10 {
		t.Error("sticky view was moved")
	}
	if len(rec.topics) != 0 {
		t.Error("view-workspace-changed emitted for a sticky view")
	}
}

func TestSetWorkspaceOutOfGrid(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)

	if c.SetWorkspace(o.WSet(), Point{X: 5, Y: 0}, nil) {
		t.Error("out-of-grid target accepted")
	}
	if c.SetWorkspace(o.WSet(), Point{X: -1, Y: 0}, nil) {
		t.Error("negative target accepted")
	}
}

func TestSetWorkspaceNoopOnSameTarget(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)

	rec := &recorder{}
	rec.watch(o.Signals(), SignalWSetWorkspace)

	if !c.SetWorkspace(o.WSet(), Point{}, nil) {
		t.Error("same-target switch rejected")
	}
	if len(rec.topics) != 0 {
		t.Error("signal emitted for a no-op switch")
	}
}

func TestSetOutputWSetRehomesViews(t *testing.T) {
	c := NewCore()
	o := newTestOutput(c)
	regular := c.MapView(&View{Role: RoleToplevel})
	sticky := c.MapView(&View{Role: RoleToplevel, Sticky: true})
	oldWSet := o.WSet()

	rec := &recorder{}
	rec.watch(o.Signals(), SignalOutputWSet)

	replacement := &WorkspaceSet{Index: 99, Name: "wset-99", GridSize: Dimensions{Width: 3, Height: 3}}
	c.SetOutputWSet(o, replacement)

	if o.WSet() != replacement || replacement.AttachedOutput() != o {
		t.Error("workspace set not swapped")
	}
	if oldWSet.AttachedOutput() != nil {
		t.Error("old set still attached")
	}
	if regular.WSet != replacement {
		t.Error("regular view not re-homed")
	}
	if sticky.WSet == replacement {
		t.Error("sticky view should keep its set")
	}
	if len(rec.topics) != 1 {
		t.Errorf("output-wset-changed emitted %d times", len(rec.topics))
	}
}

func TestUnmapViewClearsFocus(t *testing.T) {
	c := NewCore()
	newTestOutput(c)
	v := c.MapView(&View{Role: RoleToplevel})
	c.FocusView(v)

	rec := &recorder{}
	rec.watch(c.Signals(), SignalViewUnmapped)

	c.UnmapView(v)

	if c.FocusedView() != nil {
		t.Error("unmapped view still focused")
	}
	if c.FindView(v.ID) != nil {
		t.Error("unmapped view still resolvable")
	}
	if len(rec.topics) != 1 {
		t.Errorf("view-unmapped emitted %d times", len(rec.topics))
	}
}

func TestViewTypeName(t *testing.T) {
	tests := []struct {
		name string
		view View
		want string
	}{
		{"toplevel", View{Role: RoleToplevel}, "toplevel"},
		{"unmanaged", View{Role: RoleUnmanaged}, "unmanaged"},
		{"background layer", View{Role: RoleDesktopEnvironment, Layer: LayerBackground}, "background"},
		{"bottom layer", View{Role: RoleDesktopEnvironment, Layer: LayerBottom}, "background"},
		{"top layer", View{Role: RoleDesktopEnvironment, Layer: LayerTop}, "panel"},
		{"overlay layer", View{Role: RoleDesktopEnvironment, Layer: LayerOverlay}, "overlay"},
		{"lock layer", View{Role: RoleDesktopEnvironment, Layer: LayerLock}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.view.TypeName(); got != tt.want {
				t.Errorf("TypeName = %q, want %q", got, tt.want)
			}
		})
	}
}
