package notch

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
)

var _ Screen = &StaticScreen{}

// StaticScreen is a Screen with fixed geometry.
type StaticScreen struct {
	FrameRect Rect    `json:"frame"`
	Inset     float64 `json:"topInset"`
	Left      *Rect   `json:"auxiliaryTopLeft,omitempty"`
	Right     *Rect   `json:"auxiliaryTopRight,omitempty"`
}

func (s *StaticScreen) Frame() Rect       { return s.FrameRect }
func (s *StaticScreen) TopInset() float64 { return s.Inset }

func (s *StaticScreen) AuxiliaryTopLeft() (Rect, bool) {
	if s.Left == nil {
		return Rect{}, false
	}
	return *s.Left, true
}

func (s *StaticScreen) AuxiliaryTopRight() (Rect, bool) {
	if s.Right == nil {
		return Rect{}, false
	}
	return *s.Right, true
}

// ParseStaticScreen decodes a StaticScreen from its JSON form, e.g.
//
//	{"frame":{"x":0,"y":0,"width":1512,"height":982},"topInset":32,
//	 "auxiliaryTopLeft":{"x":0,"y":950,"width":662,"height":32},
//	 "auxiliaryTopRight":{"x":850,"y":950,"width":662,"height":32}}
func ParseStaticScreen(s string) (*StaticScreen, error) {
	var ret StaticScreen
	if err := json.Unmarshal([]byte(s), &ret); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse screen description")
	}
	return &ret, nil
}

var _ ScreenProvider = &StaticProvider{}

// StaticProvider serves a fixed list of screens. MainIndex selects the
// primary screen; a negative value means no screen is designated primary.
type StaticProvider struct {
	MainIndex int
	List      []Screen
}

// NewStaticProvider returns a provider whose first screen is primary.
func NewStaticProvider(screens ...Screen) *StaticProvider {
	return &StaticProvider{
		MainIndex: 0,
		List:      screens,
	}
}

func (p *StaticProvider) Main() (Screen, bool) {
	if p.MainIndex < 0 || p.MainIndex >= len(p.List) {
		return nil, false
	}
	return p.List[p.MainIndex], true
}

func (p *StaticProvider) Screens() []Screen {
	return p.List
}
