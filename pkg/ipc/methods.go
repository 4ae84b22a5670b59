package ipc

import (
	"github.com/crest-wm/crest-go/pkg/state"
	"github.com/crest-wm/crest-go/pkg/version"
	"github.com/crest-wm/crest-go/pkg/wire"
)

// Method names.
const (
	MethodGetInfo          = "config/get-info"
	MethodListDevices      = "input/list-devices"
	MethodConfigureDevice  = "input/configure-device"
	MethodWatch            = "events/watch"
	MethodListViews        = "resources/list-views"
	MethodListOutputs      = "resources/list-outputs"
	MethodListWSets        = "resources/list-wsets"
	MethodViewInfo         = "resources/view-info"
	MethodOutputInfo       = "resources/output-info"
	MethodWSetInfo         = "resources/wset-info"
	MethodConfigureView    = "resources/configure-view"
	MethodFocusView        = "resources/focus-view"
	MethodCloseView        = "resources/close-view"
	MethodGetFocusedView   = "resources/get-focused-view"
	MethodGetFocusedOutput = "resources/get-focused-output"
	MethodSetWorkspace     = "resources/set-workspace"
)

func (r *Rules) registerMethods() {
	r.repo.Register(MethodGetInfo, r.handleGetInfo)
	r.repo.Register(MethodListDevices, r.handleListDevices)
	r.repo.Register(MethodConfigureDevice, r.handleConfigureDevice)
	r.repo.RegisterFull(MethodWatch, r.handleWatch)
	r.repo.Register(MethodListViews, r.handleListViews)
	r.repo.Register(MethodListOutputs, r.handleListOutputs)
	r.repo.Register(MethodListWSets, r.handleListWSets)
	r.repo.Register(MethodViewInfo, r.handleViewInfo)
	r.repo.Register(MethodOutputInfo, r.handleOutputInfo)
	r.repo.Register(MethodWSetInfo, r.handleWSetInfo)
	r.repo.Register(MethodConfigureView, r.handleConfigureView)
	r.repo.Register(MethodFocusView, r.handleFocusView)
	r.repo.Register(MethodCloseView, r.handleCloseView)
	r.repo.Register(MethodGetFocusedView, r.handleGetFocusedView)
	r.repo.Register(MethodGetFocusedOutput, r.handleGetFocusedOutput)
	r.repo.Register(MethodSetWorkspace, r.handleSetWorkspace)
}

func (r *Rules) unregisterMethods() {
	for _, name := range []string{
		MethodGetInfo, MethodListDevices, MethodConfigureDevice,
		MethodWatch, MethodListViews, MethodListOutputs, MethodListWSets,
		MethodViewInfo, MethodOutputInfo, MethodWSetInfo,
		MethodConfigureView, MethodFocusView, MethodCloseView,
		MethodGetFocusedView, MethodGetFocusedOutput, MethodSetWorkspace,
	} {
		r.repo.Unregister(name)
	}
}

func (r *Rules) handleGetInfo(wire.Object) (any, error) {
	return wire.Object{
		"api-version": version.APIVersion,
		"version":     version.Version,
		"git-commit":  version.GitCommit,
		"git-branch":  version.GitBranch,
		"methods":     r.repo.Methods(),
		"events":      r.registry.Names(),
	}, nil
}

func (r *Rules) handleListDevices(wire.Object) (any, error) {
	devices := r.core.InputDevices()
	list := make([]wire.Object, 0, len(devices))
	for _, d := range devices {
		list = append(list, DevicePayload(d))
	}
	return list, nil
}

func (r *Rules) handleConfigureDevice(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	enabled, err := RequiredBool(data, "enabled")
	if err != nil {
		return nil, err
	}

	device := r.core.FindInputDevice(id)
	if device == nil {
		return nil, NotFoundf("no input device with id %d", id)
	}
	device.Enabled = enabled
	return wire.Ok(), nil
}

// handleWatch installs or replaces the caller's subscription. The
// events list is optional; when present, unrecognized names are
// dropped silently.
func (r *Rules) handleWatch(client Client, data wire.Object) (any, error) {
	events, present, err := OptionalStringList(data, "events")
	if err != nil {
		return nil, err
	}
	r.subs.Subscribe(client, events, present)
	return wire.Ok(), nil
}

func (r *Rules) handleListViews(wire.Object) (any, error) {
	views := r.core.Views()
	list := make([]wire.Object, 0, len(views))
	for _, v := range views {
		list = append(list, ViewPayload(v))
	}
	return list, nil
}

func (r *Rules) handleListOutputs(wire.Object) (any, error) {
	outputs := r.core.Outputs()
	list := make([]wire.Object, 0, len(outputs))
	for _, o := range outputs {
		list = append(list, OutputPayload(o))
	}
	return list, nil
}

func (r *Rules) handleListWSets(wire.Object) (any, error) {
	wsets := r.core.WorkspaceSets()
	list := make([]wire.Object, 0, len(wsets))
	for _, w := range wsets {
		list = append(list, WSetPayload(w))
	}
	return list, nil
}

func (r *Rules) handleViewInfo(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	v := r.core.FindView(id)
	if v == nil {
		return nil, NotFoundf("no view with id %d", id)
	}
	return wire.OkWith(ViewPayload(v)), nil
}

func (r *Rules) handleOutputInfo(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	o := r.core.FindOutput(id)
	if o == nil {
		return nil, NotFoundf("no output with id %d", id)
	}
	return OutputPayload(o), nil
}

func (r *Rules) handleWSetInfo(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	w := r.core.FindWorkspaceSet(id)
	if w == nil {
		return nil, NotFoundf("no workspace set with index %d", id)
	}
	return WSetPayload(w), nil
}

// handleConfigureView applies output, geometry and stickiness changes
// to a toplevel. Every argument is validated and every precondition
// checked before the first mutation; a failing check aborts the whole
// call with no partial effects.
func (r *Rules) handleConfigureView(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	outputID, err := OptionalID(data, "output_id")
	if err != nil {
		return nil, err
	}
	geomObj, err := OptionalObject(data, "geometry")
	if err != nil {
		return nil, err
	}
	sticky, err := OptionalBool(data, "sticky")
	if err != nil {
		return nil, err
	}
	var geometry *state.Geometry
	if geomObj != nil {
		g, err := GeometryFromObject(geomObj)
		if err != nil {
			return nil, err
		}
		geometry = &g
	}

	v := r.core.FindView(id)
	if v == nil {
		return nil, NotFoundf("no view with id %d", id)
	}
	if !v.IsToplevel() {
		return nil, Preconditionf("view %d is not a toplevel", id)
	}
	var target *state.Output
	if outputID != nil {
		if target = r.core.FindOutput(*outputID); target == nil {
			return nil, NotFoundf("no output with id %d", *outputID)
		}
	}

	if target != nil && target != v.Output {
		r.core.MoveViewToOutput(v, target)
	}
	if geometry != nil {
		r.core.SetViewGeometry(v, *geometry)
	}
	if sticky != nil && *sticky != v.Sticky {
		r.core.SetViewSticky(v, *sticky)
	}
	return wire.Ok(), nil
}

func (r *Rules) handleFocusView(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	v := r.core.FindView(id)
	if v == nil {
		return nil, NotFoundf("no view with id %d", id)
	}
	if !v.IsToplevel() {
		return nil, Preconditionf("view %d is not focusable from the control plane", id)
	}
	r.core.FocusView(v)
	return wire.Ok(), nil
}

func (r *Rules) handleCloseView(data wire.Object) (any, error) {
	id, err := RequiredID(data, "id")
	if err != nil {
		return nil, err
	}
	v := r.core.FindView(id)
	if v == nil {
		return nil, NotFoundf("no view with id %d", id)
	}
	r.core.CloseView(v)
	return wire.Ok(), nil
}

func (r *Rules) handleGetFocusedView(wire.Object) (any, error) {
	return wire.OkWith(ViewPayload(r.core.FocusedView())), nil
}

func (r *Rules) handleGetFocusedOutput(wire.Object) (any, error) {
	return wire.OkWith(OutputPayload(r.core.FocusedOutput())), nil
}

// handleSetWorkspace switches the current workspace of a workspace set,
// addressed either directly or through its output, optionally carrying
// a toplevel view along.
func (r *Rules) handleSetWorkspace(data wire.Object) (any, error) {
	x, err := RequiredInt(data, "x")
	if err != nil {
		return nil, err
	}
	y, err := RequiredInt(data, "y")
	if err != nil {
		return nil, err
	}
	wsetIndex, err := OptionalID(data, "wset-index")
	if err != nil {
		return nil, err
	}
	outputID, err := OptionalID(data, "output_id")
	if err != nil {
		return nil, err
	}
	viewID, err := OptionalID(data, "view-id")
	if err != nil {
		return nil, err
	}
	if wsetIndex == nil && outputID == nil {
		return nil, Validationf("one of %q or %q is required", "wset-index", "output_id")
	}

	var wset *state.WorkspaceSet
	if wsetIndex != nil {
		if wset = r.core.FindWorkspaceSet(*wsetIndex); wset == nil {
			return nil, NotFoundf("no workspace set with index %d", *wsetIndex)
		}
	} else {
		o := r.core.FindOutput(*outputID)
		if o == nil {
			return nil, NotFoundf("no output with id %d", *outputID)
		}
		if wset = o.WSet(); wset == nil {
			return nil, Preconditionf("output %d has no workspace set", *outputID)
		}
	}

	var carry *state.View
	if viewID != nil {
		if carry = r.core.FindView(*viewID); carry == nil {
			return nil, NotFoundf("no view with id %d", *viewID)
		}
		if !carry.IsToplevel() {
			return nil, Preconditionf("view %d is not a toplevel", *viewID)
		}
		if carry.Sticky {
			return nil, Preconditionf("view %d is sticky and lives on every workspace", *viewID)
		}
		if carry.WSet != wset {
			return nil, Preconditionf("view %d is not on workspace set %d", *viewID, wset.Index)
		}
	}

	target := state.Point{X: x, Y: y}
	if !wset.Contains(target) {
		return nil, Validationf("workspace (%d, %d) is outside the grid of workspace set %d", x, y, wset.Index)
	}

	r.core.SetWorkspace(wset, target, carry)
	return wire.Ok(), nil
}
