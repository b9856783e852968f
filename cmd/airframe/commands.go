package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/airframe/internal/app"
	"github.com/ayusman/airframe/internal/capture"
	"github.com/ayusman/airframe/internal/config"
	"github.com/ayusman/airframe/internal/detector"
	"github.com/ayusman/airframe/internal/filter"
	"github.com/ayusman/airframe/internal/gesture"
	"github.com/ayusman/airframe/internal/logger"
	"github.com/ayusman/airframe/internal/metrics"
	"github.com/ayusman/airframe/internal/plugin"
	"github.com/ayusman/airframe/internal/server"
	"github.com/ayusman/airframe/internal/store"
	"github.com/ayusman/airframe/internal/studio"
	"github.com/ayusman/airframe/internal/tray"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const shutdownTimeout = 5 * time.Second

func newApp() *cli.App {
	return &cli.App{
		Name:    "airframe",
		Usage:   "hands-free photo studio driven by hand gestures",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "load environment variables from `FILE`",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (default from AIRFRAME_LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json (default from AIRFRAME_LOG_FORMAT)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := config.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", c.String("env-file"), err)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			filterCommand(),
			versionCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the studio: camera, gesture control and HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.StringFlag{Name: "data-dir", Usage: "directory for the database and recordings"},
			&cli.StringFlag{Name: "web-dir", Usage: "static files to serve at /"},
			&cli.BoolFlag{Name: "no-camera", Usage: "run without a camera; landmarks arrive over POST /api/frames"},
			&cli.BoolFlag{Name: "tray", Usage: "show the system tray menu"},
		},
		Action: runServe,
	}
}

// loadConfig resolves the environment and applies command line overrides.
func loadConfig(c *cli.Context) config.Config {
	cfg := config.FromEnv()
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}

	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
		cfg.DBPath = filepath.Join(cfg.DataDir, "airframe.db")
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}
	if c.Bool("no-camera") {
		cfg.Camera = false
	}
	if c.IsSet("tray") {
		cfg.Tray = c.Bool("tray")
	}
	return cfg
}

func runServe(c *cli.Context) error {
	cfg := loadConfig(c)
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.PluginDir, log)
	if err := plugins.Discover(); err != nil {
		log.Warn("plugin discovery failed", slog.String("error", err.Error()))
	}
	log.Info("plugins loaded", slog.Int("count", len(plugins.List())))

	appCfg := app.Config{
		Store:   st,
		Hooks:   plugin.NewHooks(plugins, plugin.NewExecutor(cfg.PluginTimeout), log),
		Metrics: metrics.New(),
		Logger:  log,
		Timings: gesture.Timings{
			Debounce: cfg.Debounce,
			Hold:     cfg.Hold,
			Sustain:  cfg.Sustain,
		},
		ResetMotionOnLoss: cfg.ResetMotionOnLoss,
		Gate: capture.GateConfig{
			IdleFPS:   cfg.IdleFPS,
			ActiveFPS: cfg.ActiveFPS,
		},
		MotionThreshold: cfg.MotionThreshold,
		RenderFPS:       cfg.RenderFPS,
		NoiseSeed:       cfg.NoiseSeed,
		DownloadDir:     cfg.DownloadDir,
		RecordingDir:    filepath.Join(cfg.DataDir, "recordings"),
		JPEGQuality:     cfg.JPEGQuality,
	}
	if cfg.Camera {
		appCfg.Camera = capture.NewCamera(capture.Devices{
			User:        cfg.CameraUser,
			Environment: cfg.CameraEnvironment,
		})
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			appCfg.Detector = mp
			log.Info("using MediaPipe hand detection")
		} else {
			log.Warn("MediaPipe not available, landmarks must be posted to /api/frames", slog.String("error", err.Error()))
		}
	}

	studioApp := app.New(appCfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := studioApp.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer studioApp.Stop()

	webDir := c.String("web-dir")
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Info("serving static files", slog.String("dir", webDir))
	}

	srv := server.New(server.Config{
		StaticDir:     webDir,
		App:           studioApp,
		Metrics:       appCfg.Metrics,
		Logger:        log,
		StreamQuality: cfg.JPEGQuality,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	if cfg.Tray {
		runTray(ctx, studioApp, cfg.Addr, stop)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", slog.String("error", err.Error()))
	}
	return nil
}

// runTray shows the tray menu and blocks until it quits.
func runTray(ctx context.Context, a *app.App, addr string, quit func()) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnAction(func(action gesture.Action) {
		a.Trigger(ctx, action)
	})
	t.OnSettings(func() {
		openBrowser("http://" + addr)
	})
	t.OnQuit(quit)

	cancel := a.Subscribe(func(fb studio.Feedback) {
		t.ShowFeedback(fb)
		t.SetFilter(string(a.Studio().Filter()))
	})
	defer cancel()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err == nil {
		go cmd.Wait()
	}
}

// findWebDir searches "web", "../web" and <dataDir>/web and returns the first
// existing directory, or "".
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "apply a studio filter to an image file",
		ArgsUsage: "INPUT OUTPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "none, grayscale, sepia, vintage, colorPop or beauty",
				Value:   string(filter.KindSepia),
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "noise seed for the vintage grain",
			},
		},
		Action: runFilter,
	}
}

func runFilter(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: airframe filter [--kind KIND] INPUT OUTPUT", 2)
	}
	kind, err := filter.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}

	buf, err := capture.LoadImage(c.Args().Get(0))
	if err != nil {
		return err
	}
	if err := filter.NewPipeline(filter.NewNoise(c.Uint64("seed"))).Apply(kind, buf); err != nil {
		return err
	}
	if err := capture.SaveImage(c.Args().Get(1), buf); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s: %s -> %s (%dx%d)\n", kind, c.Args().Get(0), c.Args().Get(1), buf.Width, buf.Height)
	return nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "airframe %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
			return nil
		},
	}
}
