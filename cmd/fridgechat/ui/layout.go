package ui

// Layout constants for panel and overlay sizing
const (
	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1

	// Overlay margin from the terminal edge
	OverlayMarginH = 4
	OverlayMarginV = 2

	// Control areas
	HeaderHeight = 1
	FooterHeight = 1
	InputHeight  = 3
	ChipsHeight  = 3

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
	CompactModeWidth      = 90
)

// Rect is a screen region in cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	PanelRatio     float64
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int, panelRatio float64) LayoutConfig {
	if panelRatio <= 0 || panelRatio >= 1 {
		panelRatio = 0.6
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		PanelRatio:     panelRatio,
		IsCompact:      width < CompactModeWidth,
	}
}

// BodyHeight is the height between header and footer.
func (l LayoutConfig) BodyHeight() int {
	return max(l.TerminalHeight-HeaderHeight-FooterHeight, 0)
}

// PanelRect is the embedded chat panel. In compact mode it takes the whole
// body and the fridge sidebar is hidden.
func (l LayoutConfig) PanelRect() Rect {
	w := l.TerminalWidth
	if !l.IsCompact {
		w = int(float64(l.TerminalWidth) * l.PanelRatio)
	}
	return Rect{X: 0, Y: HeaderHeight, Width: w, Height: l.BodyHeight()}
}

// SidebarRect is the fridge sidebar next to the panel.
func (l LayoutConfig) SidebarRect() Rect {
	if l.IsCompact {
		return Rect{}
	}
	p := l.PanelRect()
	return Rect{X: p.Width, Y: HeaderHeight, Width: l.TerminalWidth - p.Width, Height: l.BodyHeight()}
}

// OverlayRect is the fullscreen overlay's content area. Clicks outside it
// close the overlay.
func (l LayoutConfig) OverlayRect() Rect {
	mh, mv := OverlayMarginH, OverlayMarginV
	if l.IsCompact {
		mh, mv = 1, 1
	}
	return Rect{
		X:      mh,
		Y:      mv,
		Width:  max(l.TerminalWidth-2*mh, 0),
		Height: max(l.TerminalHeight-2*mv, 0),
	}
}

// ContentWidth returns the usable width inside a bordered box
func ContentWidth(boxWidth int) int {
	return max(boxWidth-(PanelBorderWidth*2)-(PanelPaddingH*2), 0)
}

// ContentHeight returns the usable height inside a bordered box
func ContentHeight(boxHeight int) int {
	return max(boxHeight-(PanelBorderWidth*2), 0)
}

// TranscriptHeight is what remains for messages once the chips and the
// input are placed inside a box.
func TranscriptHeight(boxHeight int) int {
	return max(ContentHeight(boxHeight)-ChipsHeight-InputHeight, 1)
}
