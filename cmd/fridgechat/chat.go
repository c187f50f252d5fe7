package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"fridgechat/cmd/fridgechat/chat"
	"fridgechat/cmd/fridgechat/ui"
	"fridgechat/internal/conversation"
	"fridgechat/internal/fridge"
	"fridgechat/internal/logging"
	"fridgechat/internal/usage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runInteractiveChat runs the TUI and, when enabled, the inventory watcher
// that feeds proactive messages into the same session.
func runInteractiveChat(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, err := newReplySource(ctx, rt.cfg.Assistant)
	if err != nil {
		return err
	}

	session := conversation.NewSession(
		conversation.WithRevealInterval(rt.cfg.GetRevealInterval()),
		conversation.WithStrictContract(rt.cfg.Reveal.StrictIDs),
	)
	defer session.Close()

	tracker := usage.NewTracker(usage.DefaultPath(rt.workspace))
	defer func() {
		if err := tracker.Close(); err != nil {
			logging.BootError("saving usage: %v", err)
		}
	}()
	ctx = usage.WithSession(usage.NewContext(ctx, tracker), session.ID())

	assistant := conversation.NewAssistant(session, source, conversation.AssistantConfig{
		Timeout:     rt.cfg.Assistant.GetTimeout(),
		FailureText: rt.cfg.Assistant.FailureText,
	})

	model := chat.NewModel(chat.Config{
		Assistant:  assistant,
		Inventory:  rt.store,
		Bridge:     rt.bridge,
		Styles:     ui.NewStyles(ui.ThemeFor(rt.cfg.UI.Theme)),
		PanelRatio: rt.cfg.UI.GetPanelRatio(),
		Context:    ctx,
	})
	defer model.Close()

	announcer := chat.NewAnnouncer(assistant, rt.store, rt.bridge, rt.preferences)
	if _, err := announcer.Check(ctx); err != nil {
		logging.InventoryWarn("initial fridge check: %v", err)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if rt.cfg.Inventory.Watch {
		w, err := fridge.NewWatcher(rt.watchedPath(), rt.cfg.Inventory.GetDebounce(), func(ctx context.Context) {
			p.Send(chat.InventoryChangedMsg{})
			if _, err := announcer.Check(ctx); err != nil {
				logging.InventoryWarn("fridge check: %v", err)
			}
		})
		if err != nil {
			logging.InventoryWarn("inventory watcher disabled: %v", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := rt.preferences.Save(); err != nil {
		logging.BootError("saving notification preferences: %v", err)
	}
	return nil
}
