// Package chat implements the interactive fridgechat TUI. The embedded panel
// and the fullscreen overlay are two views of one conversation.Session: each
// keeps only its own scroll position and input focus and re-reads the session
// whenever its subscription fires.
package chat

import (
	"fmt"
	"strings"

	"fridgechat/cmd/fridgechat/ui"
	"fridgechat/internal/conversation"
	"fridgechat/internal/logging"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// maxChips is the number of suggestion chips reachable from the keyboard.
const maxChips = 9

type surfaceID int

const (
	panelSurface surfaceID = iota
	overlaySurface
)

func (id surfaceID) String() string {
	if id == overlaySurface {
		return "overlay"
	}
	return "panel"
}

// sessionChangedMsg is delivered when a surface's subscription fires.
type sessionChangedMsg struct {
	surface surfaceID
	change  conversation.Change
}

// sessionClosedMsg is delivered when a surface's subscription channel closes.
type sessionClosedMsg struct {
	surface surfaceID
}

// block is one message as a surface shows it after applying reveal progress.
type block struct {
	message   conversation.Message
	visible   string
	revealing bool
}

// view is the renderable projection of a session snapshot. Both surfaces
// derive it the same way, which is what keeps them identical.
type view struct {
	blocks []block
	chips  []string
	typing bool
	busy   bool
}

func project(st conversation.State) view {
	v := view{typing: st.Typing, busy: st.Typing || st.Animating}

	for _, m := range st.Messages {
		b := block{message: m, visible: m.Text}
		if m.IsAssistant() {
			if rs, ok := st.Reveal[m.ID]; ok {
				b.visible = rs.Text()
				b.revealing = !rs.Done()
			}
		}
		// Queued replies have nothing revealed yet.
		if b.visible == "" && b.revealing {
			continue
		}
		v.blocks = append(v.blocks, b)
	}

	// Chips belong to the latest visible assistant message and stay on
	// screen, disabled, while the session is busy.
	for i := len(v.blocks) - 1; i >= 0; i-- {
		if m := v.blocks[i].message; m.IsAssistant() {
			v.chips = chipsOf(m.Suggestions)
			break
		}
	}
	return v
}

func chipsOf(suggestions []string) []string {
	var out []string
	for _, s := range suggestions {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxChips {
			break
		}
	}
	return out
}

// plain renders the view as text without styling.
func (v view) plain() string {
	var sb strings.Builder
	for _, b := range v.blocks {
		if b.message.IsAssistant() {
			sb.WriteString("Assistant")
			if b.message.IsProactive {
				sb.WriteString(" (proactive)")
			}
		} else {
			sb.WriteString("You")
		}
		sb.WriteString(": ")
		sb.WriteString(b.visible)
		sb.WriteString("\n")
		if !b.revealing {
			for _, c := range b.message.Cards {
				fmt.Fprintf(&sb, "[%s] %s\n", c.Title, c.Content)
			}
		}
	}
	if v.typing {
		sb.WriteString("Assistant is typing...\n")
	}
	for i, c := range v.chips {
		state := ""
		if v.busy {
			state = " (disabled)"
		}
		fmt.Fprintf(&sb, "%d) %s%s\n", i+1, c, state)
	}
	return sb.String()
}

// surface is the state one presentation keeps of its own. Everything about
// the conversation itself is read from session on demand.
type surface struct {
	id       surfaceID
	session  *conversation.Session
	sub      <-chan conversation.Change
	styles   *ui.Styles
	cache    *ui.RenderCache
	renderer *glamour.TermRenderer
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
}

func newSurface(id surfaceID, session *conversation.Session, styles *ui.Styles, cache *ui.RenderCache) surface {
	ta := textarea.New()
	ta.Placeholder = "Ask about your fridge..."
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(ui.InputHeight - 1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return surface{
		id:       id,
		session:  session,
		sub:      session.Subscribe(),
		styles:   styles,
		cache:    cache,
		viewport: viewport.New(0, 0),
		input:    ta,
	}
}

// waitForChange blocks until the surface's subscription fires. Each surface
// re-arms its own listener after handling the message.
func (s *surface) waitForChange() tea.Cmd {
	sub, id := s.sub, s.id
	return func() tea.Msg {
		change, ok := <-sub
		if !ok {
			return sessionClosedMsg{surface: id}
		}
		return sessionChangedMsg{surface: id, change: change}
	}
}

func (s *surface) unsubscribe() {
	s.session.Unsubscribe(s.sub)
}

// Transcript returns the plain text this surface shows.
func (s *surface) Transcript() string {
	return project(s.session.Snapshot()).plain()
}

func (s *surface) resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	inner := ui.ContentWidth(width)
	s.viewport.Width = inner
	s.viewport.Height = ui.TranscriptHeight(height)
	s.input.SetWidth(inner)
	s.renderer = nil
	s.refresh()
}

// refresh re-reads the session into the viewport, following the bottom when
// the user has not scrolled away from it.
func (s *surface) refresh() {
	follow := s.viewport.AtBottom() || s.viewport.TotalLineCount() == 0
	s.viewport.SetContent(s.renderBlocks(project(s.session.Snapshot())))
	if follow {
		s.viewport.GotoBottom()
	}
}

// syncDraft pulls the shared draft into a surface that is not being typed in.
func (s *surface) syncDraft() {
	if d := s.session.Draft(); s.input.Value() != d {
		s.input.SetValue(d)
		s.input.CursorEnd()
	}
}

func (s *surface) markdown() *glamour.TermRenderer {
	if s.renderer != nil {
		return s.renderer
	}
	style := "light"
	if s.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(ui.ContentWidth(s.width)-4, 20)),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("markdown renderer unavailable: %v", err)
		return nil
	}
	s.renderer = r
	return r
}

// safeRenderMarkdown renders markdown and falls back to the raw text when
// glamour fails or panics.
func (s *surface) safeRenderMarkdown(content string) (rendered string) {
	r := s.markdown()
	if r == nil {
		return content
	}
	defer func() {
		if rec := recover(); rec != nil {
			logging.Get(logging.CategoryUI).Error("markdown render panic: %v", rec)
			rendered = content
		}
	}()
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (s *surface) renderMarkdown(content string) string {
	theme := "light"
	if s.styles.Theme.IsDark {
		theme = "dark"
	}
	key := ui.ComputeKey(content, s.width, theme)
	return s.cache.GetOrCompute(key, func() string { return s.safeRenderMarkdown(content) })
}

func (s *surface) renderBlocks(v view) string {
	width := ui.ContentWidth(s.width)
	var parts []string
	for _, b := range v.blocks {
		if !b.message.IsAssistant() {
			parts = append(parts, s.styles.UserMessage.Render("You: "+b.visible))
			continue
		}
		var body []string
		if b.message.IsProactive {
			body = append(body, s.styles.ProactiveLabel.Render("from your fridge"))
		}
		body = append(body, s.renderMarkdown(b.visible))
		if !b.revealing {
			if cards := ui.RenderCards(b.message.Cards, width-2); cards != "" {
				body = append(body, cards)
			}
		}
		parts = append(parts, s.styles.AssistantMessage.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
	}
	if len(parts) == 0 {
		parts = append(parts, s.styles.Muted.Render("Ask anything about cooking, or press ctrl+a to analyze your fridge."))
	}
	return strings.Join(parts, "\n\n")
}

func (s *surface) renderChips(v view) string {
	if len(v.chips) == 0 {
		return ""
	}
	style := s.styles.Chip
	if v.busy {
		style = s.styles.ChipDisabled
	}
	chips := make([]string, 0, len(v.chips))
	for i, c := range v.chips {
		chips = append(chips, style.Render(fmt.Sprintf("%d %s", i+1, c)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// body renders transcript, typing indicator, chips and input stacked for a
// box of the surface's size.
func (s *surface) body(spinnerView string) string {
	v := project(s.session.Snapshot())
	rows := []string{s.viewport.View()}

	status := ""
	if v.typing {
		status = s.styles.Spinner.Render(spinnerView) + s.styles.Muted.Render(" Assistant is typing...")
	}
	rows = append(rows, status)

	chips := s.renderChips(v)
	rows = append(rows, lipgloss.NewStyle().Height(ui.ChipsHeight-1).MaxHeight(ui.ChipsHeight-1).Render(chips))
	rows = append(rows, s.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// chip returns the n-th (1-based) clickable chip.
func (s *surface) chip(n int) (string, bool) {
	v := project(s.session.Snapshot())
	if v.busy || n < 1 || n > len(v.chips) {
		return "", false
	}
	return v.chips[n-1], true
}
