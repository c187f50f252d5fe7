package chat

import (
	"fridgechat/internal/fridge"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Send       key.Binding
	Fullscreen key.Binding
	Close      key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Chips      key.Binding

	Analysis  key.Binding
	Recipe    key.Binding
	Nutrition key.Binding
	Storage   key.Binding
	Shopping  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Fullscreen: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "fullscreen")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Chips: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "suggestion"),
		),

		Analysis:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "analyze fridge")),
		Recipe:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "recipes")),
		Nutrition: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "nutrition")),
		Storage:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "storage")),
		Shopping:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "shopping list")),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Chips, k.Fullscreen, k.Analysis, k.Recipe, k.Quit}
}

// FullHelp lists every binding.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Chips, k.Fullscreen, k.Close, k.Quit},
		{k.Analysis, k.Recipe, k.Nutrition, k.Storage, k.Shopping},
		{k.ScrollUp, k.ScrollDown},
	}
}

// promptFor maps a fridge shortcut to its prompt kind.
func (k keyMap) promptFor(binding func(key.Binding) bool) (fridge.PromptKind, bool) {
	switch {
	case binding(k.Analysis):
		return fridge.PromptAnalysis, true
	case binding(k.Recipe):
		return fridge.PromptRecipe, true
	case binding(k.Nutrition):
		return fridge.PromptNutrition, true
	case binding(k.Storage):
		return fridge.PromptStorage, true
	case binding(k.Shopping):
		return fridge.PromptShopping, true
	default:
		return "", false
	}
}
