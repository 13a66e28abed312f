//go:build darwin && cgo

package notch

import (
	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/island/pkg/utils/osver"
)

// Safe-area insets and auxiliary top areas were added in macOS 12.
var hasNotchAPI = osver.IsAtLeast(12, 0, 0)

type appkitScreen struct {
	frame    Rect
	inset    float64
	left     Rect
	right    Rect
	hasLeft  bool
	hasRight bool
}

// newAppkitScreen copies geometry out of an NSScreen so the returned value
// does not hold on to the Objective-C object.
func newAppkitScreen(s appkit.Screen) *appkitScreen {
	ret := &appkitScreen{
		frame: fromNSRect(s.Frame()),
	}
	if !hasNotchAPI {
		return ret
	}

	ret.inset = s.SafeAreaInsets().Top
	ret.left = fromNSRect(s.AuxiliaryTopLeftArea())
	ret.right = fromNSRect(s.AuxiliaryTopRightArea())
	// AppKit reports a zero rect when there is no auxiliary area.
	ret.hasLeft = !ret.left.IsEmpty()
	ret.hasRight = !ret.right.IsEmpty()

	logrus.WithFields(logrus.Fields{
		"frame": ret.frame,
		"inset": ret.inset,
		"left":  ret.left,
		"right": ret.right,
	}).Trace("read screen geometry")

	return ret
}

func (s *appkitScreen) Frame() Rect                     { return s.frame }
func (s *appkitScreen) TopInset() float64               { return s.inset }
func (s *appkitScreen) AuxiliaryTopLeft() (Rect, bool)  { return s.left, s.hasLeft }
func (s *appkitScreen) AuxiliaryTopRight() (Rect, bool) { return s.right, s.hasRight }

func fromNSRect(r foundation.Rect) Rect {
	return Rect{
		X:      r.Origin.X,
		Y:      r.Origin.Y,
		Width:  r.Size.Width,
		Height: r.Size.Height,
	}
}

// AppkitProvider enumerates NSScreen instances.
type AppkitProvider struct{}

// NewSystemProvider returns the screen provider for this platform.
func NewSystemProvider() ScreenProvider {
	return &AppkitProvider{}
}

func (p *AppkitProvider) Main() (Screen, bool) {
	s := appkit.Screen_MainScreen()
	if s.Ptr() == nil {
		return nil, false
	}
	return newAppkitScreen(s), true
}

func (p *AppkitProvider) Screens() []Screen {
	screens := appkit.Screen_Screens()
	ret := make([]Screen, 0, len(screens))
	for _, s := range screens {
		ret = append(ret, newAppkitScreen(s))
	}
	return ret
}
