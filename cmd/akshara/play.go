package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/akshara-arcade/akshara/internal/assets"
	"github.com/akshara-arcade/akshara/internal/bus"
	"github.com/akshara-arcade/akshara/internal/config"
	"github.com/akshara-arcade/akshara/internal/engine"
	"github.com/akshara-arcade/akshara/internal/manager"
	"github.com/akshara-arcade/akshara/internal/platform/tui"
	"github.com/akshara-arcade/akshara/internal/registry"
	"github.com/akshara-arcade/akshara/internal/scenes"
	"github.com/akshara-arcade/akshara/internal/state"
	"github.com/akshara-arcade/akshara/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [scene]",
	Short: "Start the platform",
	Long: `Start the platform at the menu, or jump straight into a scene.

Controls:
  p          - Pause/resume
  ?          - Toggle help
  q/Ctrl+C   - Quit

Examples:
  akshara play
  akshara play alphabet
  akshara play vocabulary --debug`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	if flagDebug {
		cfg.Debug = true
	}

	startScene := cfg.StartScene
	if len(args) == 1 {
		startScene = args[0]
	}
	if !scenes.Exists(startScene) {
		fmt.Fprintf(os.Stderr, "Error: unknown scene %q\n", startScene)
		fmt.Fprintln(os.Stderr, "Run 'akshara list' to see available scenes.")
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	// Get terminal size early; the first WindowSizeMsg corrects it
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Open save storage
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open save database: %v\n", err)
		// Continue without persistence - the game still works
		db = nil
	}

	initial := state.Initial()
	initial.User.Preferences.Locale = cfg.Locale
	if db != nil {
		restoreSaved(db, initial, logger)
	}

	b := bus.New(logger)
	b.SetDebug(cfg.Debug)

	store := state.New(initial, nil, logger)
	if cfg.Debug {
		//nolint:errcheck // middleware is non-nil
		store.Use(state.LoggingMiddleware(store, logger))
	}
	if db != nil {
		//nolint:errcheck // middleware is non-nil
		store.Use(state.PersistenceMiddleware(store, db, logger))
	}
	tracking := state.NewTracking(logTracker{logger})
	//nolint:errcheck // middleware is non-nil
	store.Use(tracking.Middleware())

	manifest, err := assets.LoadManifest(cfg.Manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	library := assets.NewLibrary(manifest, cfg.AssetsDir, logger)

	reg := registry.New(logger)
	mgr := manager.New(b, reg, logger)
	mgr.AttachStore(store)

	platform := tui.NewPlatform(b, store, width, height, logger)
	mgr.AttachEngine(platform)

	env := &engine.Env{
		Dispatch: store.Dispatch,
		Assets:   library,
		Bus:      b,
		Logger:   logger,
	}
	sceneLoader := scenes.NewLoader(env, logger)
	mgr.AttachScenes(sceneLoader)

	reg.Register("assets", library)
	reg.Register("scenes", sceneLoader)
	reg.Register(manager.ViewportService, platform)

	ctx := context.Background()
	if err := mgr.Initialize(ctx, manager.Config{Debug: cfg.Debug, Locale: cfg.Locale}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	//nolint:errcheck // action types are non-empty
	mgr.Dispatch(state.Action{Type: state.ActionInitializeApp})
	//nolint:errcheck // action types are non-empty
	mgr.Dispatch(state.Action{
		Type:    state.ActionChangeScene,
		Payload: state.SceneChange{Scene: startScene},
	})

	runErr := tui.Run(platform, mgr)

	mgr.Destroy(ctx)
	tracking.Close()
	if db != nil {
		db.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running platform: %v\n", runErr)
		os.Exit(1)
	}
}

// restoreSaved merges previously persisted preferences and progress into
// the initial state. Corrupt or missing entries are ignored.
func restoreSaved(db *storage.Store, initial *state.AppState, logger *log.Logger) {
	if raw, ok, err := db.Get(state.PreferencesKey); err == nil && ok {
		var prefs state.Preferences
		if err := json.Unmarshal([]byte(raw), &prefs); err == nil {
			initial.User.Preferences = prefs
		} else {
			logger.Warn("ignoring corrupt saved preferences", "err", err)
		}
	}
	if raw, ok, err := db.Get(state.ProgressKey); err == nil && ok {
		var progress state.Progress
		if err := json.Unmarshal([]byte(raw), &progress); err == nil {
			if progress.Scores == nil {
				progress.Scores = make(map[string]int)
			}
			initial.User.Progress = progress
		} else {
			logger.Warn("ignoring corrupt saved progress", "err", err)
		}
	}
}

// logTracker is the analytics collaborator: gameplay events go to the
// debug log.
type logTracker struct {
	logger *log.Logger
}

func (t logTracker) Track(event string, props map[string]any) {
	t.logger.Debug("track", "event", event, "props", props)
}
