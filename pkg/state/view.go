package state

// Role classifies how the compositor manages a view.
type Role uint8

const (
	// RoleToplevel is a regular application window.
	RoleToplevel Role = iota
	// RoleUnmanaged is a view the compositor does not position (menus,
	// drag icons).
	RoleUnmanaged
	// RoleDesktopEnvironment is a shell component (panel, background).
	RoleDesktopEnvironment
)

// String returns the role name as exposed on the IPC surface.
func (r Role) String() string {
	switch r {
	case RoleToplevel:
		return "toplevel"
	case RoleUnmanaged:
		return "unmanaged"
	case RoleDesktopEnvironment:
		return "desktop-environment"
	default:
		return "unknown"
	}
}

// Layer is the scenegraph layer a view lives in.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerBackground
	LayerBottom
	LayerWorkspace
	LayerTop
	LayerUnmanaged
	LayerOverlay
	LayerLock
)

// String returns the layer name as exposed on the IPC surface.
func (l Layer) String() string {
	switch l {
	case LayerNone:
		return "none"
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerWorkspace:
		return "workspace"
	case LayerTop:
		return "top"
	case LayerUnmanaged:
		return "unmanaged"
	case LayerOverlay:
		return "overlay"
	case LayerLock:
		return "lock"
	default:
		return "unknown"
	}
}

// View is a window (or other surface) known to the compositor.
// Fields are mutated through Core methods only, so every change is
// announced on the right signal bus.
type View struct {
	ID    uint32
	PID   int
	Title string
	AppID string

	Role  Role
	Layer Layer

	// Mapped is true while the view has a live surface on screen.
	Mapped bool

	// Geometry is the pending (requested) geometry; BaseGeometry is the
	// surface geometry without decorations.
	Geometry     Geometry
	BaseGeometry Geometry

	Parent *View
	Output *Output
	WSet   *WorkspaceSet

	TiledEdges uint32
	Fullscreen bool
	Minimized  bool
	Activated  bool
	Sticky     bool

	MinSize Dimensions
	MaxSize Dimensions

	Focusable bool

	// LastFocusTimestamp orders views by focus recency. Monotonic
	// counter, not wall time.
	LastFocusTimestamp int64
}

// IsToplevel reports whether the view is a regular window that can be
// focused, tiled, moved between outputs and so on.
func (v *View) IsToplevel() bool {
	return v.Role == RoleToplevel
}

// BoundingBox returns the on-screen extent of the view.
func (v *View) BoundingBox() Geometry {
	return v.Geometry
}

// TypeName classifies the view for clients: toplevel windows, shell
// layers and unmanaged surfaces each get a stable tag.
func (v *View) TypeName() string {
	switch v.Role {
	case RoleToplevel:
		return "toplevel"
	case RoleUnmanaged:
		return "unmanaged"
	}

	switch v.Layer {
	case LayerBackground, LayerBottom:
		return "background"
	case LayerTop:
		return "panel"
	case LayerOverlay:
		return "overlay"
	}

	return "unknown"
}
