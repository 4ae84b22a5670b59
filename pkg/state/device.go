package state

// DeviceType classifies an input device.
type DeviceType uint8

const (
	DeviceKeyboard DeviceType = iota
	DevicePointer
	DeviceTouch
	DeviceTabletTool
	DeviceTabletPad
	DeviceSwitch
)

// String returns the device type name as exposed on the IPC surface.
func (t DeviceType) String() string {
	switch t {
	case DeviceKeyboard:
		return "keyboard"
	case DevicePointer:
		return "pointer"
	case DeviceTouch:
		return "touch"
	case DeviceTabletTool:
		return "tablet_tool"
	case DeviceTabletPad:
		return "tablet_pad"
	case DeviceSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// InputDevice is an input device attached to the seat.
type InputDevice struct {
	ID      uint32
	Name    string
	Vendor  int
	Product int
	Type    DeviceType
	Enabled bool
}
