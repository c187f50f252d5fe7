package chat

import (
	"context"
	"fmt"
	"strings"

	"fridgechat/cmd/fridgechat/ui"
	"fridgechat/internal/conversation"
	"fridgechat/internal/fridge"
	"fridgechat/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InventoryChangedMsg tells the model the inventory changed on disk. The CLI
// sends it from the watcher.
type InventoryChangedMsg struct{}

type replyDoneMsg struct {
	err error
}

type snapshotMsg struct {
	items fridge.Snapshot
	err   error
}

type promptMsg struct {
	kind fridge.PromptKind
	text string
	err  error
}

// Config carries the collaborators of the TUI.
type Config struct {
	Assistant  *conversation.Assistant
	Inventory  fridge.Inventory
	Bridge     *fridge.Bridge
	Styles     ui.Styles
	PanelRatio float64
	Context    context.Context
}

// Model is the root bubbletea model. It owns the two surfaces and forwards
// every user action to the session.
type Model struct {
	ctx       context.Context
	session   *conversation.Session
	assistant *conversation.Assistant
	inventory fridge.Inventory
	bridge    *fridge.Bridge

	styles  *ui.Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	layout  ui.LayoutConfig
	ratio   float64

	panel   PanelModel
	overlay OverlayModel

	items   fridge.Snapshot
	notices []fridge.Notification
	status  string
	err     error

	width, height int
	quitting      bool
}

// NewModel builds the TUI around cfg.Assistant's session.
func NewModel(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	bridge := cfg.Bridge
	if bridge == nil {
		bridge = fridge.NewBridge(nil)
	}
	inventory := cfg.Inventory
	if inventory == nil {
		inventory = fridge.StaticInventory(nil)
	}

	styles := cfg.Styles
	cache := ui.NewRenderCache(256)
	session := cfg.Assistant.Session()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		ctx:       ctx,
		session:   session,
		assistant: cfg.Assistant,
		inventory: inventory,
		bridge:    bridge,
		styles:    &styles,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		ratio:     cfg.PanelRatio,
		panel:     newPanel(session, &styles, cache),
		overlay:   newOverlay(session, &styles, cache),
	}
}

// Init starts the spinner, both session listeners and the first inventory
// load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.panel.waitForChange(),
		m.overlay.waitForChange(),
		m.loadInventory(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout = ui.NewLayoutConfig(msg.Width, msg.Height, m.ratio)
		m.help.Width = msg.Width
		m.panel.SetBounds(m.layout.PanelRect())
		m.overlay.SetBounds(m.layout.OverlayRect())
		return m, nil

	case sessionChangedMsg:
		s := m.surfaceFor(msg.surface)
		s.refresh()
		if !m.focused(msg.surface) || msg.change.Kind == conversation.ChangeUserMessage {
			s.syncDraft()
		}
		logging.UIDebug("%s saw %s seq=%d", msg.surface, msg.change.Kind, msg.change.Seq)
		return m, s.waitForChange()

	case sessionClosedMsg:
		logging.UIDebug("%s subscription closed", msg.surface)
		return m, nil

	case replyDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "The assistant could not answer; showing a fallback."
		} else {
			m.err = nil
			m.status = ""
		}
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.status = "Fridge unavailable: " + msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.notices = m.bridge.Notifications(msg.items)
		return m, nil

	case promptMsg:
		if msg.err != nil {
			m.status = "Fridge unavailable: " + msg.err.Error()
			return m, nil
		}
		logging.Bridge("submitting %s prompt", msg.kind)
		return m.clickSuggestion(msg.text)

	case InventoryChangedMsg:
		return m, m.loadInventory()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.overlay.IsOpen() && m.overlay.ClickOutside(msg) {
			m.closeOverlay()
			return m, nil
		}
		s := m.active()
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		var cmd tea.Cmd
		var handled bool
		m, cmd, handled = m.handleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		s := m.active()
		s.input, cmd = s.input.Update(msg)
		m.session.SetDraft(s.input.Value())
		return m, cmd
	}

	return m, nil
}

// handleKeyMsg processes the keys the model owns. The bool reports whether
// the key was consumed; unconsumed keys go to the focused input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Close):
		if m.overlay.IsOpen() {
			m.closeOverlay()
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Fullscreen):
		if m.overlay.IsOpen() {
			m.closeOverlay()
			return m, nil, true
		}
		m.panel.input.Blur()
		return m, m.overlay.Open(), true

	case key.Matches(msg, m.keys.Send):
		s := m.active()
		text := s.input.Value()
		if !m.session.SubmitUserMessage(text) {
			return m, nil, true
		}
		s.input.Reset()
		return m, m.answer(text), true

	case key.Matches(msg, m.keys.ScrollUp):
		m.active().viewport.HalfPageUp()
		return m, nil, true

	case key.Matches(msg, m.keys.ScrollDown):
		m.active().viewport.HalfPageDown()
		return m, nil, true

	case key.Matches(msg, m.keys.Chips) && m.active().input.Value() == "":
		// Digits only pick chips on an empty input; otherwise they are text.
		if text, ok := m.active().chip(int(msg.Runes[0] - '0')); ok {
			next, cmd := m.clickSuggestion(text)
			return next, cmd, true
		}
	}

	if kind, ok := m.keys.promptFor(func(b key.Binding) bool { return key.Matches(msg, b) }); ok {
		if m.session.Busy() {
			return m, nil, true
		}
		return m, m.fridgePrompt(kind), true
	}
	return m, nil, false
}

// clickSuggestion submits a chip or fridge prompt and, when the session
// accepts it, waits for the reply off the UI goroutine.
func (m Model) clickSuggestion(text string) (Model, tea.Cmd) {
	if !m.session.ClickSuggestion(text) {
		return m, nil
	}
	return m, m.answer(text)
}

func (m Model) answer(text string) tea.Cmd {
	a, ctx := m.assistant, m.ctx
	return func() tea.Msg {
		return replyDoneMsg{err: a.Answer(ctx, text)}
	}
}

func (m Model) fridgePrompt(kind fridge.PromptKind) tea.Cmd {
	inv, bridge, ctx := m.inventory, m.bridge, m.ctx
	return func() tea.Msg {
		items, err := inv.Snapshot(ctx)
		if err != nil {
			return promptMsg{kind: kind, err: err}
		}
		text, err := bridge.Prompt(kind, items, nil)
		return promptMsg{kind: kind, text: text, err: err}
	}
}

func (m Model) loadInventory() tea.Cmd {
	inv, ctx := m.inventory, m.ctx
	return func() tea.Msg {
		items, err := inv.Snapshot(ctx)
		return snapshotMsg{items: items, err: err}
	}
}

func (m *Model) closeOverlay() {
	m.overlay.Close()
	m.panel.syncDraft()
	m.panel.refresh()
	m.panel.input.Focus()
}

func (m *Model) surfaceFor(id surfaceID) *surface {
	if id == overlaySurface {
		return &m.overlay.surface
	}
	return &m.panel.surface
}

func (m *Model) active() *surface {
	if m.overlay.IsOpen() {
		return &m.overlay.surface
	}
	return &m.panel.surface
}

func (m Model) focused(id surfaceID) bool {
	return (id == overlaySurface) == m.overlay.IsOpen()
}

// Panel exposes the embedded surface.
func (m Model) Panel() PanelModel { return m.panel }

// Overlay exposes the fullscreen surface.
func (m Model) Overlay() OverlayModel { return m.overlay }

// Close releases both subscriptions.
func (m Model) Close() {
	m.panel.unsubscribe()
	m.overlay.unsubscribe()
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.overlay.IsOpen() {
		return m.overlay.View(m.spinner.View(), m.width, m.height)
	}

	header := m.styles.Header.Width(m.width).Render("fridgechat")
	body := m.panel.View(m.spinner.View(), true)
	if !m.layout.IsCompact {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar())
	}
	footer := m.styles.Footer.Render(m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) footer() string {
	if m.status != "" {
		style := m.styles.Warning
		if m.err != nil {
			style = m.styles.Error
		}
		return style.Render(m.status)
	}
	return m.help.View(m.keys)
}

func (m Model) renderSidebar() string {
	r := m.layout.SidebarRect()
	width := ui.ContentWidth(r.Width)

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Your fridge"))
	sb.WriteString("\n")

	if len(m.items) == 0 {
		sb.WriteString(m.styles.Muted.Render("Nothing tracked yet."))
	}
	now := m.bridge.Now()
	for _, it := range m.items {
		line := it.Name
		if it.Quantity > 1 {
			line = fmt.Sprintf("%s ×%d", it.Name, it.Quantity)
		}
		if days, ok := fridge.DaysUntilExpiry(it, now); ok {
			switch {
			case days < 0:
				line += m.styles.Error.Render(" expired")
			case days <= fridge.ExpiringWindow:
				line += m.styles.Warning.Render(fmt.Sprintf(" %dd", days))
			default:
				line += m.styles.Muted.Render(fmt.Sprintf(" %dd", days))
			}
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(m.notices) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.RenderDivider(width))
		sb.WriteString("\n")
		for _, n := range m.notices {
			sb.WriteString(m.styles.UrgencyStyle(string(n.Urgency)).Render(n.Title))
			sb.WriteString("\n")
			sb.WriteString(m.styles.Muted.Render(n.Message))
			sb.WriteString("\n")
		}
	}

	return m.styles.Sidebar.
		Width(max(r.Width-2*ui.PanelBorderWidth, 0)).
		Height(ui.ContentHeight(r.Height)).
		Render(sb.String())
}
