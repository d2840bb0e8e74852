// Package app wires the portside components together and runs the dashboard.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/portside/portside/internal/action"
	"github.com/portside/portside/internal/cache"
	"github.com/portside/portside/internal/config"
	"github.com/portside/portside/internal/engine"
	"github.com/portside/portside/internal/poll"
	"github.com/portside/portside/internal/prefs"
	"github.com/portside/portside/internal/state"
	"github.com/portside/portside/internal/ui"
)

// pingTimeout bounds the startup reachability check.
const pingTimeout = 5 * time.Second

// Options configure the portside application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/portside/prefs.toml
	Host       string // overrides the configured engine host
}

// Run boots the portside TUI until the context is cancelled. It fails before
// starting any poller when the engine cannot be reached at all.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}

	if err := redirectLog(cfg.LogPath); err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := engine.NewClient(cfg.Host)
	if err != nil {
		return fmt.Errorf("init engine client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return fmt.Errorf("engine unreachable at %s: %w", cfg.Host, err)
	}

	store := &state.Store{}
	readCache := cache.New()

	pollers := poll.NewSet(store, client, readCache, cfg.Poll, cfg.Cache)
	pollers.Start(ctx)

	dispatcher := action.NewDispatcher(store, client, readCache, pollers)

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      store,
		Dispatcher: dispatcher,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
}

// redirectLog points the standard logger at the configured file. The TUI
// owns the terminal, so stderr logging would corrupt the display.
func redirectLog(path string) error {
	if path == "" {
		log.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	return nil
}
