package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/desertthunder/homedeck/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Download submits a score, prints progress until the task ends and
// optionally saves the finished file. Progress is printed as the server reports it.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	req := models.DownloadRequest{
		URL:          cmd.StringArg("url"),
		Scale:        r.config.Downloads.DefaultScale,
		SharpenCount: r.config.Downloads.DefaultSharpen,
	}
	if req.URL == "" {
		return fmt.Errorf("%w: score url", shared.ErrMissingArgument)
	}
	if cmd.IsSet("scale") {
		req.Scale = cmd.Float("scale")
	}
	if cmd.IsSet("sharpen") {
		req.SharpenCount = int(cmd.Int("sharpen"))
	}
	if req.Scale <= 0 || req.SharpenCount < 0 {
		return fmt.Errorf("%w: scale must be positive and sharpen non-negative", shared.ErrInvalidFlag)
	}

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	poller := tasks.NewPoller(r.downloads, r.config.Downloads.PollInterval(), r.logger)

	prog := make(chan tasks.ProgressUpdate, 16)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		last := ""
		for u := range prog {
			line := fmt.Sprintf("[%5.1f%%] %s", u.Percent, u.Message)
			if line == last {
				continue
			}
			last = line
			r.writePlain("%s\n", line)
		}
	}()

	err := poller.Submit(ctx, req, prog)
	var snap tasks.Snapshot
	if err == nil {
		snap, err = poller.Wait(ctx)
	}
	// Reset waits for the poll goroutine, so nothing sends on prog after this.
	poller.Reset()
	close(prog)
	<-printed
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	link, err := r.downloads.ResolveURL(snap.DownloadURL)
	if err != nil {
		return err
	}
	r.writePlain("✓ Ready: %s\n", link)

	if out := cmd.String("save"); out != "" {
		return r.saveDownload(ctx, snap.DownloadURL, out)
	}
	return nil
}

func (r *Runner) saveDownload(ctx context.Context, downloadURL, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	n, err := r.downloads.Fetch(ctx, downloadURL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	r.logger.Info("download saved", "path", path, "bytes", n)
	return r.writePlain("✓ Saved %s (%d bytes)\n", path, n)
}

// downloadCommand handles score downloads
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl"},
		Usage:     "Download a score as PDF and follow its progress",
		Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "scale", Usage: "Render scale (default: downloads.default_scale)"},
			&cli.IntFlag{Name: "sharpen", Usage: "Sharpen passes (default: downloads.default_sharpen)"},
			&cli.StringFlag{Name: "save", Aliases: []string{"o"}, Usage: "Save the finished PDF to this path"},
			&cli.DurationFlag{Name: "timeout", Usage: "Give up after this long, e.g. 5m"},
		},
		Action: r.Download,
	}
}
