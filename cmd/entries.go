package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/homedeck/internal/formatter"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// EntriesList prints the link page entries in creation order.
func (r *Runner) EntriesList(ctx context.Context, cmd *cli.Command) error {
	entries, err := r.entries.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	if len(entries) == 0 {
		return r.writePlain("No entries\n")
	}
	return r.writePlain("%s", formatter.EntriesTable(entries))
}

// EntriesAdd uploads a new entry, then prints the reloaded list.
func (r *Runner) EntriesAdd(ctx context.Context, cmd *cli.Command) error {
	entry, err := applyEntryFlags(models.Entry{}, cmd)
	if err != nil {
		return err
	}
	entry = entry.WithDefaults()
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	entries, err := r.entryCollection(ctx)
	if err != nil {
		return err
	}
	if err := entries.Create(ctx, entry); err != nil {
		return err
	}
	r.writePlain("✓ Added %s\n", entry.Title)
	return r.writePlain("%s", formatter.EntriesTable(entries.Items()))
}

// EntriesEdit changes only the fields given as flags. The stored icon stays unless --icon is set.
func (r *Runner) EntriesEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id", shared.ErrMissingArgument)
	}

	entries, err := r.entryCollection(ctx)
	if err != nil {
		return err
	}
	current, ok := entries.Get(id)
	if !ok {
		return fmt.Errorf("%w: entry %s", shared.ErrNotFound, id)
	}

	entry, err := applyEntryFlags(current, cmd)
	if err != nil {
		return err
	}
	entry = entry.WithDefaults()
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if err := entries.Update(ctx, id, entry); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", entry.Title)
}

// EntriesDelete removes an entry.
func (r *Runner) EntriesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id", shared.ErrMissingArgument)
	}

	entries, err := r.entryCollection(ctx)
	if err != nil {
		return err
	}
	if err := entries.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// applyEntryFlags copies the given flags onto entry. Color flags need the custom template.
func applyEntryFlags(entry models.Entry, cmd *cli.Command) (models.Entry, error) {
	for flag, field := range map[string]*string{
		"title":    &entry.Title,
		"url":      &entry.URL,
		"template": &entry.Template,
		"icon":     &entry.IconFile,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}

	colors := map[string]*string{
		"bg-color":     &entry.CustomColor,
		"border-color": &entry.CustomBorderColor,
		"text-color":   &entry.CustomTextColor,
	}
	for flag, field := range colors {
		if !cmd.IsSet(flag) {
			continue
		}
		if entry.Template != models.TemplateCustom {
			return entry, fmt.Errorf("%w: --%s needs --template %s", shared.ErrInvalidFlag, flag, models.TemplateCustom)
		}
		*field = cmd.String(flag)
	}
	return entry, nil
}

func entryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Button label"},
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "URL the button opens"},
		&cli.StringFlag{Name: "template", Usage: "Button template: default, custom or a named style"},
		&cli.StringFlag{Name: "bg-color", Usage: "Background color for the custom template (default #000000)"},
		&cli.StringFlag{Name: "border-color", Usage: "Border color for the custom template (default #FFFFFF)"},
		&cli.StringFlag{Name: "text-color", Usage: "Text color for the custom template (default #FFFFFF)"},
		&cli.StringFlag{Name: "icon", Usage: "Image to upload as the icon (png, jpg, jpeg, gif or svg)"},
	}
}

// entriesCommand handles the server-rendered link page
func entriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "entries",
		Aliases: []string{"entry", "e"},
		Usage:   "Manage entries of the server-rendered link page",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List entries in creation order",
				Flags:  outputFlags(),
				Action: r.EntriesList,
			},
			{
				Name:   "add",
				Usage:  "Add an entry",
				Flags:  entryFlags(),
				Action: r.EntriesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit the given fields of an entry",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     entryFlags(),
				Action:    r.EntriesEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an entry",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.EntriesDelete,
			},
		},
	}
}
