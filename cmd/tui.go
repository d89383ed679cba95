package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/homedeck/internal/live"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/repositories"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/desertthunder/homedeck/internal/tasks"
	"github.com/desertthunder/homedeck/internal/ui"
	"github.com/urfave/cli/v3"
)

// useFileLogger redirects logs to the configured file to avoid interfering with TUI rendering.
// The returned func closes the file.
func (r *Runner) useFileLogger() (func(), error) {
	fileLogger, f, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)
	return func() { f.Close() }, nil
}

// TUILinks launches the interactive link page editor.
func (r *Runner) TUILinks(ctx context.Context, cmd *cli.Command) error {
	closeLog, err := r.useFileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := ui.Run(ctx, ui.NewLinksModel(ctx, r.links, r.logger)); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// TUIDevices launches the live device dashboard. The theme is kept in the
// local preferences database between sessions.
func (r *Runner) TUIDevices(ctx context.Context, cmd *cli.Command) error {
	closeLog, err := r.useFileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var store ui.ThemeStore
	if db, err := shared.OpenPreferences(r.config.Database); err != nil {
		r.logger.Warn("preferences unavailable, theme will not persist", "error", err)
	} else {
		defer db.Close()
		store = repositories.NewPreferenceRepository(db)
	}

	var source ui.LiveSource
	if url := r.config.Devices.WSURL; url != "" {
		cfg := live.DefaultConfig(url)
		cfg.PingInterval = r.config.Devices.PingInterval()
		source = live.NewChannel(cfg, r.logger)
	}

	if err := ui.Run(ctx, ui.NewDevicesModel(ctx, r.devices, source, store, r.logger)); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// TUIDownload launches the score download form.
func (r *Runner) TUIDownload(ctx context.Context, cmd *cli.Command) error {
	closeLog, err := r.useFileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	poller := tasks.NewPoller(r.downloads, r.config.Downloads.PollInterval(), r.logger)
	defer poller.Reset()

	defaults := models.DownloadRequest{
		URL:          cmd.StringArg("url"),
		Scale:        r.config.Downloads.DefaultScale,
		SharpenCount: r.config.Downloads.DefaultSharpen,
	}
	m := ui.NewDownloadModel(ctx, poller, r.downloads.ResolveURL, defaults, r.logger)
	if err := ui.Run(ctx, m); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// tuiCommand returns the top-level TUI command for the interactive views.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch an interactive view",
		Commands: []*cli.Command{
			{
				Name:   "links",
				Usage:  "Edit and reorder the link page",
				Action: r.TUILinks,
			},
			{
				Name:    "devices",
				Aliases: []string{"wol"},
				Usage:   "Live Wake-on-LAN dashboard",
				Action:  r.TUIDevices,
			},
			{
				Name:      "download",
				Aliases:   []string{"dl"},
				Usage:     "Download a score with a progress bar",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Action:    r.TUIDownload,
			},
		},
	}
}
