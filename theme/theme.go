package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Point     rune // ● curve control point
	Transient rune // ◆ transient point
	Hover     rune // ◉ point under the pointer
	Selected  rune // ■ selected point
	Dragged   rune // ✚ point being dragged
	Line      rune // · curve segment
	Stem      rune // │ transient stem
	Preview   rune // ╌ continuous event being created
	Wave      rune // ░ reference audio
	Selection rune // ▫ selection rectangle border
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Point:     '●',
			Transient: '◆',
			Hover:     '◉',
			Selected:  '■',
			Dragged:   '✚',
			Line:      '·',
			Stem:      '│',
			Preview:   '╌',
			Wave:      '░',
			Selection: '▫',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0
	RoleMuted     = 0.2
	RoleIntensity = 0.45
	RoleFG        = 0.55
	RoleSharpness = 0.7
	RoleHover     = 0.8
	RoleWarning   = 0.85
	RoleSelection = 1.0
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Intensity() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleIntensity))
}

func (t *Theme) Sharpness() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSharpness))
}

func (t *Theme) Hover() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleHover))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Selection() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSelection))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
