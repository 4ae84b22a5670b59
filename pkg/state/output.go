package state

// Output is a display the compositor renders to.
type Output struct {
	ID   uint32
	Name string

	// Geometry is the output's rectangle in layout coordinates;
	// Workarea excludes shell reservations (panels, docks).
	Geometry Geometry
	Workarea Geometry

	wset    *WorkspaceSet
	signals *Bus
}

// Signals returns the output's signal bus. Per-output event sources
// connect here; the bus dies with the output.
func (o *Output) Signals() *Bus {
	return o.signals
}

// WSet returns the workspace set currently shown on this output.
func (o *Output) WSet() *WorkspaceSet {
	return o.wset
}

// WorkspaceSet is an independent grid of workspaces. Usually one per
// output, but sets can be detached or swapped between outputs.
type WorkspaceSet struct {
	Index uint32
	Name  string

	// CurrentWorkspace is the visible cell of the grid.
	CurrentWorkspace Point
	GridSize         Dimensions

	output *Output
}

// AttachedOutput returns the output this set is shown on, or nil when
// the set is detached.
func (w *WorkspaceSet) AttachedOutput() *Output {
	return w.output
}

// Contains reports whether the workspace coordinate is inside the grid.
func (w *WorkspaceSet) Contains(ws Point) bool {
	return ws.X >= 0 && ws.Y >= 0 && ws.X < w.GridSize.Width && ws.Y < w.GridSize.Height
}
