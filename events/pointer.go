package events

import "github.com/vecboard/vecboard"

// PointerDevice classifies the input device a Pointer sample came from,
// per spec.md §4.8: derived from the platform event's pointer type, with
// two button-flag overrides layered on top.
type PointerDevice uint8

const (
	DeviceMouse PointerDevice = iota
	DevicePen
	DeviceTouch
	// DeviceEraser is reported instead of DevicePen when the platform
	// event's button flags have bit 0x20 set (the "eraser end" of a
	// stylus).
	DeviceEraser
	// DeviceRightButtonMouse is reported instead of DeviceMouse when the
	// platform event's button flags have bit 0x2 set (the right mouse
	// button).
	DeviceRightButtonMouse
)

// RawPointerType is the platform-reported device kind before the
// button-flag overrides are applied.
type RawPointerType uint8

const (
	RawMouse RawPointerType = iota
	RawPen
	RawTouch
)

const (
	buttonFlagEraser      = 0x20
	buttonFlagRightButton = 0x2
)

// PlatformPointerEvent is the raw input this package maps into a Pointer.
// Field names mirror the common browser/OS pointer-event shape (screenX/Y,
// pressure, pointerId, buttons bitmask) so a host's event adapter can fill
// it in directly.
type PlatformPointerEvent struct {
	ScreenPos    vecboard.Vec2
	Pressure     float64
	IsPrimary    bool
	Type         RawPointerType
	ButtonFlags  uint32
	ID           uint64
	TimestampMS  float64
}

// ViewportMapper is the minimal capability PointerOfEvent needs from a
// viewport: mapping a screen-space position into canvas space. Declared
// here (rather than importing the renderer package's concrete Viewport)
// so events has no dependency on renderer, matching the teacher's
// structural-interface style for avoiding cross-package cycles.
type ViewportMapper interface {
	ScreenToCanvas(p vecboard.Vec2) vecboard.Vec2
}

// Pointer is the normalized pointer sample spec.md §4.8 names:
// {screen_pos, canvas_pos, pressure, is_primary, down, device, id,
// timestamp}.
type Pointer struct {
	ScreenPos   vecboard.Vec2
	CanvasPos   vecboard.Vec2
	Pressure    float64
	IsPrimary   bool
	Down        bool
	Device      PointerDevice
	ID          uint64
	TimestampMS float64
}

// PointerOfEvent maps a platform pointer event into a Pointer, per
// spec.md §4.8. relativeTo, if non-nil, is subtracted from the computed
// canvas position before it is returned — used when a gesture needs
// positions relative to some anchor (e.g. a drag's start point) rather
// than the viewport's own origin.
func PointerOfEvent(event PlatformPointerEvent, down bool, viewport ViewportMapper, relativeTo *vecboard.Vec2) Pointer {
	canvasPos := viewport.ScreenToCanvas(event.ScreenPos)
	if relativeTo != nil {
		canvasPos = canvasPos.Sub(*relativeTo)
	}

	device := deviceOf(event.Type, event.ButtonFlags)

	return Pointer{
		ScreenPos:   event.ScreenPos,
		CanvasPos:   canvasPos,
		Pressure:    event.Pressure,
		IsPrimary:   event.IsPrimary,
		Down:        down,
		Device:      device,
		ID:          event.ID,
		TimestampMS: event.TimestampMS,
	}
}

// deviceOf derives the reported device tag from the platform's raw
// pointer type and button-flags bitmask: a pen with bit 0x20 set reports
// as Eraser; a mouse with bit 0x2 set reports as RightButtonMouse.
// Touch passes through unconditionally — the two overrides are
// stylus/mouse-specific.
func deviceOf(raw RawPointerType, buttonFlags uint32) PointerDevice {
	switch raw {
	case RawPen:
		if buttonFlags&buttonFlagEraser != 0 {
			return DeviceEraser
		}
		return DevicePen
	case RawMouse:
		if buttonFlags&buttonFlagRightButton != 0 {
			return DeviceRightButtonMouse
		}
		return DeviceMouse
	default:
		return DeviceTouch
	}
}
