package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aliasghar-j/EduMind/pkg/api"
	"github.com/aliasghar-j/EduMind/pkg/config"
	"github.com/aliasghar-j/EduMind/pkg/export"
	"github.com/aliasghar-j/EduMind/pkg/nats"
	"github.com/aliasghar-j/EduMind/pkg/normalize"
	"github.com/aliasghar-j/EduMind/pkg/status"
	"github.com/aliasghar-j/EduMind/pkg/store"
	"github.com/aliasghar-j/EduMind/pkg/toast"
	"github.com/aliasghar-j/EduMind/pkg/widget"
)

const defaultConfigPath = "config.yaml"

var (
	configPath    = flag.String("config", defaultConfigPath, "Path to configuration file")
	version       = flag.Bool("version", false, "Print version information")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	listCalendars = flag.Bool("list-calendars", false, "List the student's calendars and exit")
	exportPath    = flag.String("export-ics", "", "Write upcoming events to an iCalendar file and exit")
)

// Version information - can be set at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("EduMind calendar widget %s (%s)\n", Version, GitCommit)
		os.Exit(0)
	}

	app, err := NewApp(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *listCalendars {
		if err := app.printCalendars(ctx); err != nil {
			app.logger.Error("Failed to list calendars", "error", err)
			os.Exit(1)
		}
		return
	}
	if *exportPath != "" {
		if err := app.exportICS(ctx, *exportPath); err != nil {
			app.logger.Error("Failed to export events", "error", err)
			os.Exit(1)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app.widget.Init(ctx)
	app.logger.Info("Calendar widget started",
		"state", app.widget.State().String(),
		"month", app.widget.ReferenceMonth().Label())

	sig := <-sigChan
	app.logger.Info("Received shutdown signal", "signal", sig)

	app.Stop()
	app.logger.Info("Calendar widget stopped")
}

// App holds the wired widget components.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	client  *api.Client
	toasts  *toast.Emitter
	gate    *status.Gate
	store   *store.Store
	widget  *widget.Widget
	surface *consoleSurface
}

// NewApp loads configuration and wires the widget against the dashboard
// server.
func NewApp(configPath string, debugMode bool) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging, debugMode)
	logger.Info("Starting calendar widget",
		"version", Version,
		"server", cfg.Server.BaseURL,
		"config_path", configPath)

	var toastOpts []toast.Option
	if cfg.NATS.Enabled {
		bridge, err := nats.NewPublisher(&nats.Config{
			URL:            cfg.NATS.URL,
			Subject:        cfg.NATS.Subject,
			ConnectTimeout: 5 * time.Second,
			ReconnectWait:  2 * time.Second,
			MaxReconnects:  10,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect toast bridge: %w", err)
		}
		toastOpts = append(toastOpts, toast.WithSink(bridge))
	}

	surface := newConsoleSurface(os.Stdout)
	toastOpts = append(toastOpts, toast.WithListener(surface.RenderToasts))
	toasts := toast.NewEmitter(logger, toastOpts...)

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, logger)
	gate := status.NewGate(client, logger)
	eventStore := store.NewStore(client, gate, toasts, logger)

	w := widget.New(gate, eventStore, surface, client.SignInURL(), logger,
		widget.WithLocation(cfg.Location()))

	return &App{
		config:  cfg,
		logger:  logger,
		client:  client,
		toasts:  toasts,
		gate:    gate,
		store:   eventStore,
		widget:  w,
		surface: surface,
	}, nil
}

// Stop tears the widget down and closes the toast emitter (and with it the
// NATS bridge, if attached).
func (a *App) Stop() {
	a.widget.Destroy()
	if err := a.toasts.Close(); err != nil {
		a.logger.Error("Error closing toast emitter", "error", err)
	}
}

func (a *App) printCalendars(ctx context.Context) error {
	calendars, err := a.client.ListCalendars(ctx)
	if err != nil {
		return err
	}
	for _, cal := range calendars {
		marker := " "
		if cal.Primary {
			marker = "*"
		}
		fmt.Printf("%s %s\t%s\n", marker, cal.ID, cal.Summary)
	}
	return nil
}

func (a *App) exportICS(ctx context.Context, path string) error {
	a.gate.Resolve(ctx)
	events := a.store.FetchUpcoming(ctx)
	if len(events) == 0 {
		return fmt.Errorf("no events to export")
	}

	doc, err := export.ICS(normalize.NormalizeAll(events), time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("Exported upcoming events", "path", path, "count", len(events))
	return nil
}

// setupLogger configures the application logger.
func setupLogger(cfg config.LoggingConfig, debugMode bool) *slog.Logger {
	var level slog.Level
	if debugMode {
		level = slog.LevelDebug
	} else {
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
