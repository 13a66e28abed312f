// Package notch answers whether a display has a camera-notch cutout at its top
// edge, and where that cutout is, from the static screen geometry reported by
// the window system.
package notch

// Rect is a rectangle in screen points, origin at the bottom-left corner of
// the primary display (AppKit coordinates).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Info is the result of a notch query. Rect is nil when there is no notch,
// or when a notch is assumed but its position is unknown.
type Info struct {
	HasNotch bool  `json:"hasNotch"`
	Rect     *Rect `json:"rect,omitempty"`
}

// NoNotch is returned whenever a screen has no notch.
var NoNotch = Info{}

// Screen describes a single display.
type Screen interface {
	// Frame is the full frame of the screen.
	Frame() Rect
	// TopInset is the top safe-area inset. Zero on displays without a notch.
	TopInset() float64
	// AuxiliaryTopLeft is the unobscured area left of the notch.
	AuxiliaryTopLeft() (Rect, bool)
	// AuxiliaryTopRight is the unobscured area right of the notch.
	AuxiliaryTopRight() (Rect, bool)
}

// ScreenProvider enumerates displays.
type ScreenProvider interface {
	// Main returns the screen designated as primary, if any.
	Main() (Screen, bool)
	// Screens returns all screens, in system order.
	Screens() []Screen
}

// ScreenNotch is the per-screen result of Detector.AllScreens.
type ScreenNotch struct {
	Index int  `json:"index"`
	Frame Rect `json:"frame"`
	Info  Info `json:"notch"`
}
