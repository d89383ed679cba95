package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/services"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	links      *services.LinkService
	entries    *services.EntryService
	devices    *services.DeviceService
	downloads  *services.DownloadService
	clients    map[string]*services.Client
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// open launches a URL in the browser; replaced in tests.
	open func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
// Services share one rate limited HTTP client built from the [http] section.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(opts.Config.HTTP, nil)
	}

	cfg := opts.Config
	clients := map[string]*services.Client{
		"links":     services.NewClient(cfg.Links.BaseURL, opts.HTTPClient, shared.WithLogger(opts.Logger, "service", "links")),
		"entries":   services.NewClient(cfg.Entries.BaseURL, opts.HTTPClient, shared.WithLogger(opts.Logger, "service", "entries")),
		"devices":   services.NewClient(cfg.Devices.BaseURL, opts.HTTPClient, shared.WithLogger(opts.Logger, "service", "devices")),
		"downloads": services.NewClient(cfg.Downloads.BaseURL, opts.HTTPClient, shared.WithLogger(opts.Logger, "service", "downloads")),
	}

	return &Runner{
		config:     cfg,
		configPath: opts.ConfigPath,
		links:      services.NewLinkService(clients["links"], cfg.Links.ReorderMethod),
		entries:    services.NewEntryService(clients["entries"]),
		devices:    services.NewDeviceService(clients["devices"], cfg.Devices.ReorderMethod),
		downloads:  services.NewDownloadService(clients["downloads"]),
		clients:    clients,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       shared.OpenURL,
	}
}

// SetLogger replaces the runner logger, e.g. to keep log lines off the TUI screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, linksCommand, settingsCommand, entriesCommand, devicesCommand, downloadCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// observer logs collection notifications; the CLI has nothing to redraw.
func observer[T models.Item](logger *log.Logger) collection.Observer[T] {
	return collection.FuncObserver[T]{
		OnNotify: func(n collection.Notification) {
			switch n.Level {
			case collection.LevelError:
				logger.Error(n.Message, "error", n.Err)
			case collection.LevelWarn:
				logger.Warn(n.Message, "error", n.Err)
			default:
				logger.Info(n.Message)
			}
		},
	}
}

// linkCollection loads the link collection.
func (r *Runner) linkCollection(ctx context.Context) (*collection.Collection[models.Link], error) {
	c := collection.New[models.Link]("links", r.links, observer[models.Link](r.logger), r.logger)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// entryCollection loads the link page entries.
func (r *Runner) entryCollection(ctx context.Context) (*collection.Collection[models.Entry], error) {
	c := collection.New[models.Entry]("entries", r.entries, observer[models.Entry](r.logger), r.logger)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// deviceCollection loads the device collection.
func (r *Runner) deviceCollection(ctx context.Context) (*collection.Collection[models.Device], error) {
	c := collection.New[models.Device]("devices", r.devices, observer[models.Device](r.logger), r.logger)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
