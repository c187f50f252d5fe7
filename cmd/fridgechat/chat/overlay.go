package chat

import (
	"fridgechat/cmd/fridgechat/ui"
	"fridgechat/internal/conversation"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OverlayModel is the fullscreen view of the same conversation. Beyond the
// shared surface it only knows whether it is open and where its content sits.
type OverlayModel struct {
	surface
	open   bool
	bounds ui.Rect
}

func newOverlay(session *conversation.Session, styles *ui.Styles, cache *ui.RenderCache) OverlayModel {
	return OverlayModel{surface: newSurface(overlaySurface, session, styles, cache)}
}

// IsOpen reports whether the overlay is showing.
func (o OverlayModel) IsOpen() bool {
	return o.open
}

// Bounds is the overlay content area.
func (o OverlayModel) Bounds() ui.Rect {
	return o.bounds
}

// SetBounds places the overlay and resizes its viewport and input.
func (o *OverlayModel) SetBounds(r ui.Rect) {
	o.bounds = r
	o.resize(r.Width, r.Height)
}

// Open shows the overlay and takes input focus. The textarea starts from the
// session draft; nothing else is copied.
func (o *OverlayModel) Open() tea.Cmd {
	if o.open {
		return nil
	}
	o.open = true
	o.syncDraft()
	o.refresh()
	o.viewport.GotoBottom()
	return o.input.Focus()
}

// Close hides the overlay. Messages and draft stay in the session.
func (o *OverlayModel) Close() {
	o.open = false
	o.input.Blur()
}

// ClickOutside reports whether a mouse event is a left press outside the
// content bounds.
func (o OverlayModel) ClickOutside(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	return !o.bounds.Contains(msg.X, msg.Y)
}

// View renders the overlay content box placed over the whole terminal.
func (o OverlayModel) View(spinnerView string, termWidth, termHeight int) string {
	title := o.styles.Title.Render("Assistant") + o.styles.Muted.Render("  esc to close")
	box := o.styles.Overlay.
		Width(max(o.bounds.Width-2*ui.PanelBorderWidth, 0)).
		Height(ui.ContentHeight(o.bounds.Height)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, o.body(spinnerView)))
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, box)
}
