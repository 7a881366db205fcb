package checkable

import (
	"fmt"
	"strings"
	"time"
)

// Defaults for tile appearance
const (
	DefaultAnimationDuration = 300 * time.Millisecond
	DefaultBorderWidth       = 4
	DefaultBorderRadius      = 12
)

// CheckPosition is where the checkmark overlay sits on a tile
type CheckPosition int

const (
	TopLeft CheckPosition = iota
	TopRight
	Center
	BottomLeft
	BottomRight
)

var checkPositionNames = map[CheckPosition]string{
	TopLeft:     "top-left",
	TopRight:    "top-right",
	Center:      "center",
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
}

func (p CheckPosition) String() string {
	if name, ok := checkPositionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("CheckPosition(%d)", int(p))
}

// ParseCheckPosition parses the text form of a CheckPosition
func ParseCheckPosition(s string) (CheckPosition, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for p, name := range checkPositionNames {
		if name == norm {
			return p, nil
		}
	}
	return TopRight, fmt.Errorf("unknown checkmark position %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (p CheckPosition) MarshalText() ([]byte, error) {
	name, ok := checkPositionNames[p]
	if !ok {
		return nil, fmt.Errorf("invalid checkmark position %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *CheckPosition) UnmarshalText(text []byte) error {
	parsed, err := ParseCheckPosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Appearance holds the visual parameters of a tile. The selection logic never reads it.
type Appearance struct {
	AnimationDuration time.Duration
	BorderColor       string
	BorderWidth       int
	BorderRadius      int
	NormalBackground  string
	CheckedBackground string
	CheckmarkColor    string
	LabelColor        string
	NormalGlyphColor  string
	CheckedGlyphColor string
	CheckmarkPosition CheckPosition
}

// DefaultAppearance returns the stock tile appearance
func DefaultAppearance() Appearance {
	return Appearance{
		AnimationDuration: DefaultAnimationDuration,
		BorderColor:       "#5f5f87",
		BorderWidth:       DefaultBorderWidth,
		BorderRadius:      DefaultBorderRadius,
		NormalBackground:  "#262626",
		CheckedBackground: "#005f87",
		CheckmarkColor:    "#ffffff",
		LabelColor:        "#d0d0d0",
		NormalGlyphColor:  "#8a8a8a",
		CheckedGlyphColor: "#ffd75f",
		CheckmarkPosition: TopRight,
	}
}
