package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fridgechat/internal/config"
	"fridgechat/internal/conversation"
	"fridgechat/internal/fridge"
	"fridgechat/internal/logging"
	"fridgechat/internal/reply"
	"fridgechat/internal/ux"
)

// runtime is what every command needs: resolved paths, configuration, the
// inventory store and notification preferences.
type runtime struct {
	workspace   string
	cfg         *config.Config
	store       fridge.Store
	bridge      *fridge.Bridge
	preferences *ux.PreferencesManager
}

// loadRuntime resolves the workspace, loads config, starts logging and opens
// the configured inventory.
func loadRuntime() (*runtime, error) {
	ws := workspace
	if ws == "" {
		var err error
		if ws, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to resolve workspace: %w", err)
		}
	}
	ws, err := filepath.Abs(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(ws, logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat(),
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return nil, err
	}
	logging.Boot("workspace=%s config=%s provider=%s inventory=%s", ws, path, cfg.Assistant.Provider, cfg.Inventory.Backend)

	store, err := openInventory(ws, cfg.Inventory)
	if err != nil {
		return nil, err
	}

	prefs := ux.NewPreferencesManager(config.Resolve(ws, cfg.Notifications.PreferencesPath))
	if err := prefs.Load(); err != nil {
		logging.BootError("notification preferences: %v", err)
	}

	bridge := fridge.NewBridge(nil)
	bridge.LowStockThreshold = cfg.Inventory.LowStockThreshold

	return &runtime{
		workspace:   ws,
		cfg:         cfg,
		store:       store,
		bridge:      bridge,
		preferences: prefs,
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		logging.BootError("closing inventory: %v", err)
	}
	logging.CloseAll()
}

// watchedPath is the file whose changes trigger proactive messages.
func (rt *runtime) watchedPath() string {
	return config.Resolve(rt.workspace, rt.cfg.Inventory.WatchedPath())
}

func openInventory(ws string, ic config.InventoryConfig) (fridge.Store, error) {
	switch ic.Backend {
	case config.InventorySQLite:
		return fridge.OpenSQLiteInventory(config.Resolve(ws, ic.DatabasePath))
	default:
		return fridge.NewFileInventory(config.Resolve(ws, ic.Path)), nil
	}
}

// newReplySource builds the configured reply source.
func newReplySource(ctx context.Context, ac config.AssistantConfig) (conversation.ReplySource, error) {
	switch ac.Provider {
	case config.ProviderGemini:
		g, err := reply.NewGemini(ctx, ac.APIKey, ac.Model)
		if err != nil {
			return nil, err
		}
		logging.Reply("using %s", g.Name())
		return g, nil
	default:
		logging.Reply("using mock replies (latency %s)", ac.GetMockLatency())
		return reply.NewMock(ac.GetMockLatency()), nil
	}
}
