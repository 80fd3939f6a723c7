package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/publish"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/spotify"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// Events older than this are removed at startup.
const historyRetention = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("mudra failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if n, err := st.Events().Prune(time.Now().Add(-historyRetention)); err != nil {
		logger.Warn("failed to prune event history", "error", err)
	} else if n > 0 {
		logger.Info("pruned event history", "removed", n)
	}

	frames := capture.NewFrameBuffer()
	sess, err := session.New(session.Config{
		Camera:         capture.NewCamera(cfg.CameraIndex, logger),
		Detector:       newDetector(logger),
		Frames:         frames,
		Cooldown:       cfg.Cooldown,
		SwipeThreshold: cfg.SwipeThreshold,
		FPS:            cfg.FPS,
		StopTimeout:    cfg.StopTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	dispatcher, player, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewEventHub(logger)

	appConfig := app.Config{
		Session:    sess,
		Dispatcher: dispatcher,
		Store:      st,
		Hub:        hub,
		Logger:     logger,
	}
	if cfg.MQTTBroker != "" {
		client, err := publish.Connect(publish.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Logger:   logger,
		})
		if err != nil {
			logger.Warn("mqtt fan-out disabled", "error", err)
		} else {
			defer client.Disconnect(250)
			publisher := publish.NewPublisher(client, publish.PublisherConfig{Topic: cfg.MQTTTopic, Logger: logger})
			go publisher.Start(ctx)
			appConfig.Publisher = publisher
		}
	}

	application, err := app.New(appConfig)
	if err != nil {
		return err
	}
	if err := application.LoadSettings(); err != nil {
		logger.Warn("failed to load stored settings", "error", err)
	}
	go application.Run(ctx)

	webDir := findWebDir(cfg.WebDir())
	if webDir != "" {
		logger.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Session:    sess,
		Frames:     frames,
		Hub:        hub,
		Player:     player,
		Dispatcher: cfg.Dispatcher,
		Logger:     logger,
	})

	logger.Info("mudra ready",
		"addr", cfg.Addr,
		"dispatcher", cfg.Dispatcher,
		"cooldown", sess.Settings().Cooldown,
		"swipe_threshold", sess.Settings().SwipeThreshold)

	if !cfg.TrayEnabled {
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	// The menu bar loop must own the main goroutine.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx, cfg.Addr)
		stop()
	}()
	runTray(ctx, stop, application, dashboardURL(cfg.Addr), logger)
	stop()
	return <-serveErr
}

func runTray(ctx context.Context, quit func(), application *app.App, url string, logger *slog.Logger) {
	tr := tray.New()
	tr.OnToggle(func(enabled bool) error {
		if err := application.SetEnabled(enabled); err != nil {
			logger.Error("failed to toggle detection", "enabled", enabled, "error", err)
			return err
		}
		return nil
	})
	tr.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn("failed to open browser", "url", url, "error", err)
		}
	})
	tr.OnQuit(quit)
	application.OnGesture(func(ev gesture.Event) {
		tr.SetLastGesture(ev.Label)
	})

	go func() {
		<-ctx.Done()
		tr.Quit()
	}()
	tr.Run()
}

// newDispatcher builds the dispatcher named in cfg. player is nil unless the
// dispatcher talks to the Spotify Web API.
func newDispatcher(cfg *config.Config, logger *slog.Logger) (action.Dispatcher, api.Player, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Dispatcher {
	case config.DispatcherSpotify:
		if cfg.SpotifyAccessToken == "" {
			logger.Warn("SPOTIFY_ACCESS_TOKEN is not set; actions will fail until it is")
		}
		client := spotify.NewClient(
			spotify.StaticToken(cfg.SpotifyAccessToken),
			spotify.WithBaseURL(cfg.SpotifyAPIURL),
			spotify.WithVolumeStep(cfg.VolumeStep),
		)
		return client, client, nil

	case config.DispatcherPlugin:
		manager := plugin.NewManager(cfg.PluginDir, logger)
		if err := manager.Discover(); err != nil {
			return nil, nil, fmt.Errorf("discover plugins: %w", err)
		}
		if _, err := manager.Get(cfg.PluginName); err != nil {
			return nil, nil, fmt.Errorf("plugin dispatcher: %w", err)
		}
		executor := plugin.NewExecutor(cfg.PluginTimeout)
		return action.NewPluginDispatcher(manager, executor, cfg.PluginName, cfg.VolumeStep), nil, nil

	case config.DispatcherLog:
		return action.LogDispatcher{Logger: logger}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown dispatcher %q", cfg.Dispatcher)
}

// newDetector prefers MediaPipe and falls back to the mock detector, which
// never reports a hand.
func newDetector(logger *slog.Logger) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), logger)
	if err != nil {
		logger.Warn("MediaPipe not available, using mock detector", "error", err)
		return detector.NewMockDetector()
	}
	logger.Info("using MediaPipe hand detection")
	return mp
}

// findWebDir searches for the web directory in common locations: "web",
// "../web", "../../web" and then dataWebDir. It returns the first existing
// directory or an empty string.
func findWebDir(dataWebDir string) string {
	for _, p := range []string{"web", "../web", "../../web", dataWebDir} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("opening a browser is not supported on " + runtime.GOOS)
	}
	return cmd.Start()
}
