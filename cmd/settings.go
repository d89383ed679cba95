package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints the link page settings.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.links.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(settings, cmd.Bool("pretty"))
	}
	r.writePlain("theme:       %s\n", settings.Theme)
	return r.writePlain("button size: %d\n", settings.ButtonSize)
}

// SettingsTheme sets the theme to light or dark, or flips it with "toggle".
// The current settings are sent back whole so the button size is kept.
func (r *Runner) SettingsTheme(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("theme")
	if arg == "" {
		return fmt.Errorf("%w: theme (light, dark or toggle)", shared.ErrMissingArgument)
	}

	settings, err := r.links.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if arg == "toggle" {
		settings.Theme = settings.Theme.Toggle()
	} else {
		theme, err := models.ParseTheme(arg)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		settings.Theme = theme
	}

	saved, err := r.links.SaveSettings(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return r.writePlain("✓ Theme: %s\n", saved.Theme)
}

// SettingsSize sets the button size to one of [models.ButtonSizes].
func (r *Runner) SettingsSize(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("size")
	if arg == "" {
		return fmt.Errorf("%w: button size", shared.ErrMissingArgument)
	}

	size, err := strconv.Atoi(arg)
	if err != nil || !slices.Contains(models.ButtonSizes, size) {
		return fmt.Errorf("%w: button size %q, expected one of %v", shared.ErrInvalidArgument, arg, models.ButtonSizes)
	}

	settings, err := r.links.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.ButtonSize = size

	saved, err := r.links.SaveSettings(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return r.writePlain("✓ Button size: %d\n", saved.ButtonSize)
}

// settingsCommand handles link page settings
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change link page settings",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current settings",
				Flags:  outputFlags(),
				Action: r.SettingsShow,
			},
			{
				Name:      "theme",
				Usage:     "Set the page theme (light, dark or toggle)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "theme"}},
				Action:    r.SettingsTheme,
			},
			{
				Name:      "size",
				Usage:     "Set the button size",
				Arguments: []cli.Argument{&cli.StringArg{Name: "size"}},
				Action:    r.SettingsSize,
			},
		},
	}
}
