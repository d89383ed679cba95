package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/homedeck/internal/formatter"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// LinksList prints the links in page order.
func (r *Runner) LinksList(ctx context.Context, cmd *cli.Command) error {
	links, err := r.links.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(links, cmd.Bool("pretty"))
	}
	if len(links) == 0 {
		return r.writePlain("No links\n")
	}
	return r.writePlain("%s", formatter.LinksTable(links))
}

// LinksAdd creates a link, then prints the reloaded page.
func (r *Runner) LinksAdd(ctx context.Context, cmd *cli.Command) error {
	link, err := applyLinkFlags(models.Link{}, cmd)
	if err != nil {
		return err
	}
	link = link.WithDefaults()
	if err := link.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	if err := links.Create(ctx, link); err != nil {
		return err
	}
	r.writePlain("✓ Added %s\n", link.Name)
	return r.writePlain("%s", formatter.LinksTable(links.Items()))
}

// LinksEdit changes only the fields given as flags.
func (r *Runner) LinksEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: link id", shared.ErrMissingArgument)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	current, ok := links.Get(id)
	if !ok {
		return fmt.Errorf("%w: link %s", shared.ErrNotFound, id)
	}

	link, err := applyLinkFlags(current, cmd)
	if err != nil {
		return err
	}
	if err := link.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if err := links.Update(ctx, id, link); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", link.Name)
}

// applyLinkFlags copies the given flags onto link. --gradient takes exactly two colors.
func applyLinkFlags(link models.Link, cmd *cli.Command) (models.Link, error) {
	for flag, field := range map[string]*string{
		"name":         &link.Name,
		"url":          &link.URL,
		"text-color":   &link.TextColor,
		"bg-color":     &link.BgColor,
		"border-color": &link.BorderColor,
		"font":         &link.FontFamily,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}

	switch {
	case cmd.IsSet("gradient") && cmd.Bool("no-gradient"):
		return link, fmt.Errorf("%w: --gradient and --no-gradient are exclusive", shared.ErrInvalidFlag)
	case cmd.IsSet("gradient"):
		colors := cmd.StringSlice("gradient")
		if len(colors) != 2 {
			return link, fmt.Errorf("%w: --gradient needs exactly two colors, got %d", shared.ErrInvalidFlag, len(colors))
		}
		link.UseGradient = true
		link.GradientColor1, link.GradientColor2 = colors[0], colors[1]
	case cmd.Bool("no-gradient"):
		link.UseGradient = false
	}
	return link, nil
}

// LinksDelete removes a link.
func (r *Runner) LinksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: link id", shared.ErrMissingArgument)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	if err := links.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// LinksMove moves one link before another, or to the end without --before.
func (r *Runner) LinksMove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: link id", shared.ErrMissingArgument)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	if err := links.Move(ctx, id, cmd.String("before")); err != nil {
		return err
	}
	return r.writePlain("%s", formatter.LinksTable(links.Items()))
}

// LinksReorder persists a complete order given as arguments.
func (r *Runner) LinksReorder(ctx context.Context, cmd *cli.Command) error {
	order := cmd.Args().Slice()
	if len(order) == 0 {
		return fmt.Errorf("%w: link ids in the new order", shared.ErrMissingArgument)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	if err := links.SetOrder(ctx, order); err != nil {
		return err
	}
	return r.writePlain("%s", formatter.LinksTable(links.Items()))
}

// LinksExport downloads the snapshot and writes it in the chosen format.
func (r *Runner) LinksExport(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	snap, err := r.links.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export links: %w", err)
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Links.ExportDir
	}
	name := cmd.String("name")
	if name == "" {
		name = formatter.DefaultExportName(time.Now(), f)
	}

	path, err := formatter.WriteExport(snap, f, dir, name)
	if err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "links", len(snap.Links))
	return r.writePlain("✓ Exported %d links to %s\n", len(snap.Links), path)
}

// LinksImport uploads a JSON or YAML snapshot.
func (r *Runner) LinksImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: snapshot file", shared.ErrMissingArgument)
	}

	snap, err := formatter.ReadSnapshot(path)
	if err != nil {
		return err
	}
	if err := r.links.Import(ctx, snap); err != nil {
		return fmt.Errorf("failed to import links: %w", err)
	}
	return r.writePlain("✓ Imported %d links from %s\n", len(snap.Links), path)
}

// LinksOpen opens a link in the browser.
func (r *Runner) LinksOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: link id", shared.ErrMissingArgument)
	}

	links, err := r.linkCollection(ctx)
	if err != nil {
		return err
	}
	link, ok := links.Get(id)
	if !ok {
		return fmt.Errorf("%w: link %s", shared.ErrNotFound, id)
	}
	return r.open(link.URL)
}

func linkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Button label"},
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Absolute URL the button opens"},
		&cli.StringFlag{Name: "text-color", Usage: "Text color, e.g. #000000"},
		&cli.StringFlag{Name: "bg-color", Usage: "Background color, e.g. #ffffff"},
		&cli.StringFlag{Name: "border-color", Usage: "Border color"},
		&cli.StringFlag{Name: "font", Usage: "Font family"},
		&cli.StringSliceFlag{Name: "gradient", Usage: "Two gradient colors, e.g. --gradient #ff0000 --gradient #0000ff"},
		&cli.BoolFlag{Name: "no-gradient", Usage: "Use the plain background color"},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
	}
}

// linksCommand handles link page operations
func linksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "links",
		Aliases: []string{"link", "l"},
		Usage:   "Manage the link page",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List links in page order",
				Flags:  outputFlags(),
				Action: r.LinksList,
			},
			{
				Name:   "add",
				Usage:  "Add a link",
				Flags:  linkFlags(),
				Action: r.LinksAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit the given fields of a link",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     linkFlags(),
				Action:    r.LinksEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a link",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LinksDelete,
			},
			{
				Name:      "move",
				Usage:     "Move a link before another one (or to the end)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "before", Aliases: []string{"b"}, Usage: "ID of the link to move in front of"},
				},
				Action: r.LinksMove,
			},
			{
				Name:      "reorder",
				Usage:     "Set the full link order",
				ArgsUsage: "ID...",
				Action:    r.LinksReorder,
			},
			{
				Name:  "export",
				Usage: "Export links and settings to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, yaml, markdown or csv", Value: "json"},
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory (default: links.export_dir)"},
					&cli.StringFlag{Name: "name", Usage: "Output file name (default: homedeck-export-<unix ms>.<ext>)"},
				},
				Action: r.LinksExport,
			},
			{
				Name:      "import",
				Usage:     "Replace links and settings from a JSON or YAML export",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Action:    r.LinksImport,
			},
			{
				Name:      "open",
				Usage:     "Open a link in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LinksOpen,
			},
		},
	}
}
