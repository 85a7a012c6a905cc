// ABOUTME: Shared initialization code for all modes (CLI and TUI)
// ABOUTME: Wires the store, preferences, session, and wizard together

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"soundscape/config"
	"soundscape/library"
	"soundscape/media"
	"soundscape/prefs"
	"soundscape/session"
	"soundscape/wizard"
)

var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	ConfigPath string
	DebugLog   bool
}

// App holds the wired application core shared by the CLI and TUI modes.
type App struct {
	Config     config.AppConfig
	Store      *library.Store
	Prefs      *prefs.Prefs
	Grants     *media.GrantTracker
	State      *session.ActivePresetState
	Controller *session.Controller
	Wizard     *wizard.Wizard
	Messenger  *session.Messenger

	cancel context.CancelFunc
}

// InitializeApp opens the store and preferences and wires the session layer.
// The returned App owns a background context cancelled by Close.
func InitializeApp(opts RunOptions) (*App, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		debugf("config load: %v", err)
	}

	store, err := library.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	prf, err := prefs.Open(cfg.PreferencesPath)
	if err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	// The grant budget starts out owning every track already in the library
	uris, err := store.TrackURIs()
	if err != nil {
		_ = prf.Close()
		_ = store.Close()

		return nil, fmt.Errorf("loading track URIs: %w", err)
	}

	grants := media.NewGrantTracker(cfg.PermissionAllowance, uris)

	ctx, cancel := context.WithCancel(context.Background())

	debounce := time.Duration(cfg.ModifiedDebounceMs) * time.Millisecond
	state := session.NewActivePresetState(ctx, store, prf, debounce, debugf)
	messenger := session.NewMessenger()
	controller := session.NewController(store, state, messenger)
	wiz := wizard.New(ctx, store, grants, messenger, media.DisplayName)

	return &App{
		Config:     cfg,
		Store:      store,
		Prefs:      prf,
		Grants:     grants,
		State:      state,
		Controller: controller,
		Wizard:     wiz,
		Messenger:  messenger,
		cancel:     cancel,
	}, nil
}

// Close tears down the session goroutines and the underlying stores.
func (a *App) Close() {
	a.cancel()

	if err := a.Prefs.Close(); err != nil {
		debugf("closing preferences: %v", err)
	}

	if err := a.Store.Close(); err != nil {
		debugf("closing library: %v", err)
	}
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	fileInfo, _ := os.Stdout.Stat()
	if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// truncate shortens string to maxLen, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
