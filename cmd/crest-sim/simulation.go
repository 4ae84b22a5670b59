package main

import (
	"context"
	"fmt"
	"time"

	"github.com/crest-wm/crest-go/pkg/service"
	"github.com/crest-wm/crest-go/pkg/state"
)

// seedScene populates the state tree with a plausible desktop: two
// outputs, a seat's worth of input devices and a handful of views.
func seedScene(d *service.Daemon) {
	d.Call(func() {
		core := d.Core()

		primary := core.AddOutput("DP-1", state.Geometry{Width: 2560, Height: 1440})
		core.AddOutput("HDMI-A-1", state.Geometry{X: 2560, Width: 1920, Height: 1080})

		core.AddInputDevice("AT Translated Set 2 keyboard", state.DeviceKeyboard, 1, 1)
		core.AddInputDevice("Logitech USB Receiver Mouse", state.DevicePointer, 0x046d, 0xc52b)

		terminal := core.MapView(&state.View{
			PID:       4021,
			Title:     "~ - zsh",
			AppID:     "org.crest.terminal",
			Role:      state.RoleToplevel,
			Layer:     state.LayerWorkspace,
			Geometry:  state.Geometry{X: 40, Y: 40, Width: 1200, Height: 800},
			Focusable: true,
			Output:    primary,
		})
		core.MapView(&state.View{
			PID:       4187,
			Title:     "Crest - browser",
			AppID:     "org.mozilla.firefox",
			Role:      state.RoleToplevel,
			Layer:     state.LayerWorkspace,
			Geometry:  state.Geometry{X: 300, Y: 120, Width: 1600, Height: 1000},
			Focusable: true,
			Output:    primary,
		})
		core.MapView(&state.View{
			PID:      3950,
			Title:    "panel",
			AppID:    "org.crest.panel",
			Role:     state.RoleDesktopEnvironment,
			Layer:    state.LayerTop,
			Geometry: state.Geometry{Width: 2560, Height: 32},
			Output:   primary,
		})

		core.FocusView(terminal)
	})
}

// runSimulation keeps the scene alive: every tick one scripted mutation
// runs on the processing loop, cycling through the interesting state
// transitions so subscribed clients see a steady event stream.
func runSimulation(ctx context.Context, d *service.Daemon) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			step++
			n := step
			d.Post(func() {
				simStep(d.Core(), n)
			})
		}
	}
}

func simStep(core *state.Core, step int) {
	views := toplevels(core)
	if len(views) == 0 {
		return
	}
	v := views[step%len(views)]

	switch step % 6 {
	case 0:
		core.SetViewTitle(v, fmt.Sprintf("%s [%d]", v.AppID, step))
	case 1:
		g := v.Geometry
		g.X = (g.X + 60) % 800
		g.Y = (g.Y + 40) % 500
		core.SetViewGeometry(v, g)
	case 2:
		core.FocusView(v)
	case 3:
		core.SetViewMinimized(v, !v.Minimized)
	case 4:
		if wset := v.WSet; wset != nil {
			next := wset.CurrentWorkspace
			next.X = (next.X + 1) % wset.GridSize.Width
			core.SetWorkspace(wset, next, nil)
		}
	case 5:
		outputs := core.Outputs()
		if len(outputs) > 1 && v.Output != nil {
			for _, o := range outputs {
				if o != v.Output {
					core.MoveViewToOutput(v, o)
					break
				}
			}
		}
	}
}

func toplevels(core *state.Core) []*state.View {
	var out []*state.View
	for _, v := range core.Views() {
		if v.IsToplevel() {
			out = append(out, v)
		}
	}
	return out
}
