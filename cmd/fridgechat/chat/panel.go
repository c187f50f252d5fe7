package chat

import (
	"fridgechat/cmd/fridgechat/ui"
	"fridgechat/internal/conversation"

	"github.com/charmbracelet/lipgloss"
)

// PanelModel is the chat embedded next to the fridge sidebar.
type PanelModel struct {
	surface
	bounds ui.Rect
}

func newPanel(session *conversation.Session, styles *ui.Styles, cache *ui.RenderCache) PanelModel {
	p := PanelModel{surface: newSurface(panelSurface, session, styles, cache)}
	p.input.Focus()
	return p
}

// SetBounds places the panel and resizes its viewport and input.
func (p *PanelModel) SetBounds(r ui.Rect) {
	p.bounds = r
	p.resize(r.Width, r.Height)
}

// View renders the panel.
func (p PanelModel) View(spinnerView string, focused bool) string {
	style := p.styles.Panel
	if focused {
		style = style.BorderForeground(p.styles.Theme.Primary)
	}
	title := p.styles.Title.Render("Assistant")
	return style.
		Width(max(p.bounds.Width-2*ui.PanelBorderWidth, 0)).
		Height(ui.ContentHeight(p.bounds.Height)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, p.body(spinnerView)))
}
