package ipc

import (
	"testing"

	"github.com/crest-wm/crest-go/pkg/state"
)

func TestViewPayloadSentinels(t *testing.T) {
	v := &state.View{
		ID:    7,
		Title: "lonely",
		Role:  state.RoleToplevel,
	}

	p := ViewPayload(v)
	if p["parent"] != -1 {
		t.Errorf("parent = %v, want -1", p["parent"])
	}
	if p["output-id"] != -1 || p["output-name"] != "" {
		t.Errorf("output = %v / %v, want -1 / empty", p["output-id"], p["output-name"])
	}
	if p["wset-index"] != -1 {
		t.Errorf("wset-index = %v, want -1", p["wset-index"])
	}
	if p["role"] != "toplevel" || p["type"] != "toplevel" {
		t.Errorf("role = %v, type = %v", p["role"], p["type"])
	}
}

func TestViewPayloadReferences(t *testing.T) {
	core := state.NewCore()
	o := core.AddOutput("DP-1", state.Geometry{Width: 800, Height: 600})
	parent := core.MapView(&state.View{Title: "main"})
	child := core.MapView(&state.View{Title: "dialog", Parent: parent})

	p := ViewPayload(child)
	if p["parent"] != parent.ID {
		t.Errorf("parent = %v, want %d", p["parent"], parent.ID)
	}
	if p["output-id"] != o.ID || p["output-name"] != "DP-1" {
		t.Errorf("output = %v / %v", p["output-id"], p["output-name"])
	}
	if p["wset-index"] != o.WSet().Index {
		t.Errorf("wset-index = %v", p["wset-index"])
	}
}

func TestViewPayloadNil(t *testing.T) {
	if ViewPayload(nil) != nil {
		t.Error("nil view must render as nil")
	}
	if OutputPayload(nil) != nil {
		t.Error("nil output must render as nil")
	}
	if WSetPayload(nil) != nil {
		t.Error("nil wset must render as nil")
	}
}

func TestOutputPayloadWorkspace(t *testing.T) {
	core := state.NewCore()
	o := core.AddOutput("DP-1", state.Geometry{Width: 800, Height: 600})
	core.SetWorkspace(o.WSet(), state.Point{X: 2, Y: 1}, nil)

	p := OutputPayload(o)
	ws := p["workspace"].(map[string]any)
	if ws["x"] != 2 || ws["y"] != 1 {
		t.Errorf("workspace position = %v", ws)
	}
	if ws["grid_width"] != 3 || ws["grid_height"] != 3 {
		t.Errorf("workspace grid = %v", ws)
	}
	if p["wset-index"] != int(o.WSet().Index) {
		t.Errorf("wset-index = %v", p["wset-index"])
	}
}

func TestWSetPayloadDetached(t *testing.T) {
	core := state.NewCore()
	o := core.AddOutput("DP-1", state.Geometry{Width: 800, Height: 600})
	wset := o.WSet()
	core.RemoveOutput(o)

	p := WSetPayload(wset)
	if p["output-id"] != -1 || p["output-name"] != "" {
		t.Errorf("detached wset output = %v / %v", p["output-id"], p["output-name"])
	}
	if p["index"] != wset.Index {
		t.Errorf("index = %v", p["index"])
	}
}

func TestGeometryAndPointPayload(t *testing.T) {
	g := GeometryPayload(state.Geometry{X: 1, Y: 2, Width: 3, Height: 4})
	if g["x"] != 1 || g["y"] != 2 || g["width"] != 3 || g["height"] != 4 {
		t.Errorf("geometry = %v", g)
	}

	pt := PointPayload(state.Point{X: 5, Y: 6})
	if pt["x"] != 5 || pt["y"] != 6 {
		t.Errorf("point = %v", pt)
	}
}
