package ipc

import (
	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Projections render state objects into the wire vocabulary. Key names
// and sentinel values are part of the protocol: absent references are
// -1 (or "" for names), never omitted keys.

// GeometryPayload renders a rectangle.
func GeometryPayload(g state.Geometry) wire.Object {
	return wire.Object{
		"x":      g.X,
		"y":      g.Y,
		"width":  g.Width,
		"height": g.Height,
	}
}

// DimensionsPayload renders a width/height pair.
func DimensionsPayload(d state.Dimensions) wire.Object {
	return wire.Object{
		"width":  d.Width,
		"height": d.Height,
	}
}

// PointPayload renders a workspace coordinate.
func PointPayload(p state.Point) wire.Object {
	return wire.Object{
		"x": p.X,
		"y": p.Y,
	}
}

// ViewPayload renders the full view description. A nil view renders as
// nil, which serializes to JSON null.
func ViewPayload(v *state.View) wire.Object {
	if v == nil {
		return nil
	}

	payload := wire.Object{
		"id":                   v.ID,
		"pid":                  v.PID,
		"title":                v.Title,
		"app-id":               v.AppID,
		"base-geometry":        GeometryPayload(v.BaseGeometry),
		"parent":               -1,
		"geometry":             GeometryPayload(v.Geometry),
		"bbox":                 GeometryPayload(v.BoundingBox()),
		"output-id":            -1,
		"output-name":          "",
		"last-focus-timestamp": v.LastFocusTimestamp,
		"role":                 v.Role.String(),
		"mapped":               v.Mapped,
		"layer":                v.Layer.String(),
		"tiled-edges":          v.TiledEdges,
		"fullscreen":           v.Fullscreen,
		"minimized":            v.Minimized,
		"activated":            v.Activated,
		"sticky":               v.Sticky,
		"wset-index":           -1,
		"min-size":             DimensionsPayload(v.MinSize),
		"max-size":             DimensionsPayload(v.MaxSize),
		"focusable":            v.Focusable,
		"type":                 v.TypeName(),
	}
	if v.Parent != nil {
		payload["parent"] = v.Parent.ID
	}
	if v.Output != nil {
		payload["output-id"] = v.Output.ID
		payload["output-name"] = v.Output.Name
	}
	if v.WSet != nil {
		payload["wset-index"] = v.WSet.Index
	}
	return payload
}

// OutputPayload renders the full output description. nil renders as nil.
func OutputPayload(o *state.Output) wire.Object {
	if o == nil {
		return nil
	}

	workspace := wire.Object{
		"x":           0,
		"y":           0,
		"grid_width":  0,
		"grid_height": 0,
	}
	wsetIndex := -1
	if wset := o.WSet(); wset != nil {
		wsetIndex = int(wset.Index)
		workspace["x"] = wset.CurrentWorkspace.X
		workspace["y"] = wset.CurrentWorkspace.Y
		workspace["grid_width"] = wset.GridSize.Width
		workspace["grid_height"] = wset.GridSize.Height
	}

	return wire.Object{
		"id":         o.ID,
		"name":       o.Name,
		"geometry":   GeometryPayload(o.Geometry),
		"workarea":   GeometryPayload(o.Workarea),
		"wset-index": wsetIndex,
		"workspace":  workspace,
	}
}

// WSetPayload renders a workspace set. nil renders as nil.
func WSetPayload(w *state.WorkspaceSet) wire.Object {
	if w == nil {
		return nil
	}

	payload := wire.Object{
		"index":       w.Index,
		"name":        w.Name,
		"output-id":   -1,
		"output-name": "",
		"workspace": wire.Object{
			"x":           w.CurrentWorkspace.X,
			"y":           w.CurrentWorkspace.Y,
			"grid_width":  w.GridSize.Width,
			"grid_height": w.GridSize.Height,
		},
	}
	if out := w.AttachedOutput(); out != nil {
		payload["output-id"] = out.ID
		payload["output-name"] = out.Name
	}
	return payload
}

// DevicePayload renders an input device description.
func DevicePayload(d *state.InputDevice) wire.Object {
	return wire.Object{
		"id":      d.ID,
		"name":    d.Name,
		"vendor":  d.Vendor,
		"product": d.Product,
		"type":    d.Type.String(),
		"enabled": d.Enabled,
	}
}
