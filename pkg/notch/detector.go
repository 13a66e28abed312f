package notch

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Policy decides what counts as evidence of a notch.
type Policy string

const (
	// PolicyStrict requires both auxiliary areas and a positive computed
	// notch size.
	PolicyStrict Policy = "strict"
	// PolicyInset treats a positive top inset as sufficient evidence, even
	// when the auxiliary areas are unavailable.
	PolicyInset Policy = "inset"
)

// ParsePolicy converts s to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, PolicyInset:
		return Policy(s), nil
	case "":
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown notch policy %q, must be one of %q, %q", s, PolicyStrict, PolicyInset)
	}
}

// Detector computes notch geometry. It holds no state between calls and is
// safe for concurrent use.
type Detector struct {
	provider ScreenProvider
	policy   Policy
}

// NewDetector returns a Detector reading screens from provider.
func NewDetector(provider ScreenProvider, policy Policy) *Detector {
	if policy == "" {
		policy = PolicyStrict
	}
	return &Detector{
		provider: provider,
		policy:   policy,
	}
}

// Policy returns the policy in use.
func (d *Detector) Policy() Policy {
	return d.policy
}

// NotchInfo computes the notch of screen. The absence of a notch is a normal
// outcome, not an error.
func (d *Detector) NotchInfo(screen Screen) Info {
	if screen == nil {
		return NoNotch
	}

	inset := screen.TopInset()
	left, hasLeft := screen.AuxiliaryTopLeft()
	right, hasRight := screen.AuxiliaryTopRight()

	switch d.policy {
	case PolicyInset:
		if inset <= 0 {
			return NoNotch
		}
		if !hasLeft || !hasRight {
			return Info{HasNotch: true}
		}
		r, ok := notchRect(screen.Frame(), inset, left, right)
		if !ok {
			return Info{HasNotch: true}
		}
		return Info{HasNotch: true, Rect: &r}
	default:
		if !hasLeft || !hasRight {
			return NoNotch
		}
		r, ok := notchRect(screen.Frame(), inset, left, right)
		if !ok {
			return NoNotch
		}
		return Info{HasNotch: true, Rect: &r}
	}
}

// MainScreenNotch computes the notch of the primary screen, falling back to
// the first enumerated screen. With no screens at all it reports no notch.
func (d *Detector) MainScreenNotch() Info {
	if d.provider == nil {
		return NoNotch
	}

	if s, ok := d.provider.Main(); ok && s != nil {
		return d.NotchInfo(s)
	}

	screens := d.provider.Screens()
	if len(screens) == 0 {
		logrus.Trace("no screens enumerated, reporting no notch")
		return NoNotch
	}

	return d.NotchInfo(screens[0])
}

// AllScreens computes the notch of every enumerated screen.
func (d *Detector) AllScreens() []ScreenNotch {
	if d.provider == nil {
		return nil
	}

	screens := d.provider.Screens()
	ret := make([]ScreenNotch, 0, len(screens))
	for i, s := range screens {
		ret = append(ret, ScreenNotch{
			Index: i,
			Frame: s.Frame(),
			Info:  d.NotchInfo(s),
		})
	}
	return ret
}

// notchRect places the cutout between the two auxiliary areas, hanging down
// from the top of frame by inset.
func notchRect(frame Rect, inset float64, left, right Rect) (Rect, bool) {
	x := left.MaxX()
	width := right.MinX() - x
	height := inset
	if width <= 0 || height <= 0 {
		return Rect{}, false
	}

	return Rect{
		X:      x,
		Y:      frame.MaxY() - height,
		Width:  width,
		Height: height,
	}, true
}
