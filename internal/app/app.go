package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/vidlift/internal/capture"
	"github.com/five82/vidlift/internal/config"
	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/logging"
	"github.com/five82/vidlift/internal/prefs"
	"github.com/five82/vidlift/internal/state"
	"github.com/five82/vidlift/internal/transfer"
	"github.com/five82/vidlift/internal/ui"
	"github.com/five82/vidlift/internal/videoapi"
)

// Version is reported in the User-Agent header.
const Version = "0.1"

// Options configure the vidlift application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/vidlift/prefs.toml
	RefreshEvery int    // seconds; overrides refresh_seconds when positive
	LogLevel     string // overrides log_level when set
}

// Services holds the wired components shared by the TUI and the CLI.
type Services struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger

	Client   *videoapi.Client
	Store    *state.Store
	Library  *library.View
	Notifier *Notifier
	Transfer *transfer.Controller
	Source   *capture.FFmpegSource
	Capture  *capture.Controller

	logCloser io.Closer
}

// Build loads configuration, opens the log file, and wires every component.
func Build(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshInterval = time.Duration(opts.RefreshEvery) * time.Second
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, closer, err := logging.Open(cfg.LogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	client, err := videoapi.NewClient(videoapi.Options{
		BaseURL:        cfg.APIBase,
		ListPath:       cfg.ListPath,
		UploadPath:     cfg.UploadPath,
		DeletePath:     cfg.DeletePath,
		StaticBase:     cfg.StaticBase,
		UserAgent:      "vidlift/" + Version,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger.With("component", "api"),
	})
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	store := &state.Store{}
	view := library.New(client, store, logger.With("component", "library"))
	notifier := &Notifier{logger: logger.With("component", "notice")}
	uploads := transfer.New(client, transfer.Options{
		Refresher: view,
		Notifier:  notifier,
		Logger:    logger.With("component", "transfer"),
	})
	source := capture.NewFFmpegSource(capture.FFmpegConfig{
		Binary:           cfg.Capture.FFmpegPath,
		InputFormat:      cfg.Capture.InputFormat,
		VideoDevice:      cfg.Capture.VideoDevice,
		AudioInputFormat: cfg.Capture.AudioInputFormat,
		AudioDevice:      cfg.Capture.AudioDevice,
		Width:            cfg.Capture.Width,
		Height:           cfg.Capture.Height,
		FPS:              cfg.Capture.FPS,
	}, logger.With("component", "ffmpeg"))
	recorder := capture.NewController(source, uploads, capture.Options{
		Logger: logger.With("component", "capture"),
	})

	logger.Info("vidlift starting",
		"version", Version,
		"api_base", cfg.APIBase,
		"refresh_interval", cfg.RefreshInterval,
	)

	return &Services{
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
		Client:    client,
		Store:     store,
		Library:   view,
		Notifier:  notifier,
		Transfer:  uploads,
		Source:    source,
		Capture:   recorder,
		logCloser: closer,
	}, nil
}

// Close releases any capture devices still held and closes the log file.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	if s.Capture != nil {
		s.Capture.Close()
	}
	if s.logCloser == nil {
		return nil
	}
	s.Logger.Info("vidlift stopped")
	return s.logCloser.Close()
}

// Run boots the vidlift TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := Build(opts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if svc.Config.RefreshInterval > 0 {
		StartPoller(ctx, svc.Library, svc.Config.RefreshInterval)
	} else {
		// Initial fetch so the Videos tab is populated before the first frame.
		_ = svc.Library.Refresh(ctx)
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Library:   svc.Library,
		Uploads:   svc.Transfer,
		Recorder:  svc.Capture,
		Notices:   svc.Notifier,
		LogPath:   svc.Config.LogPath(),
		ThemeName: svc.Prefs.Theme,
		StartTab:  svc.Prefs.StartTab,
		PrefsPath: svc.PrefsPath,
	}
	if err := ui.Run(uiOpts); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Notifier forwards user-visible notices to whichever front end attached
// last. Notices sent with nothing attached are logged only.
type Notifier struct {
	mu     sync.Mutex
	fn     func(string)
	logger *slog.Logger
}

// Attach sets the receiver for later notices. A nil fn detaches.
func (n *Notifier) Attach(fn func(string)) {
	n.mu.Lock()
	n.fn = fn
	n.mu.Unlock()
}

// Notify implements transfer.Notifier.
func (n *Notifier) Notify(msg string) {
	n.mu.Lock()
	fn, logger := n.fn, n.logger
	n.mu.Unlock()
	if logger != nil {
		logger.Debug("notice", "message", msg)
	}
	if fn != nil {
		fn(msg)
	}
}
