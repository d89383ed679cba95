package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/formatter"
	"github.com/desertthunder/homedeck/internal/live"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/services"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/desertthunder/homedeck/internal/tasks"
	"github.com/urfave/cli/v3"
)

// DevicesList prints the devices in dashboard order.
func (r *Runner) DevicesList(ctx context.Context, cmd *cli.Command) error {
	devices, err := r.devices.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}
	if len(devices) == 0 {
		return r.writePlain("No devices\n")
	}
	return r.writePlain("%s", formatter.DevicesTable(devices))
}

// DevicesAdd registers a device, then prints the reloaded dashboard.
func (r *Runner) DevicesAdd(ctx context.Context, cmd *cli.Command) error {
	device := applyDeviceFlags(models.Device{}, cmd).WithDefaults()
	if err := device.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	devices, err := r.deviceCollection(ctx)
	if err != nil {
		return err
	}
	if err := devices.Create(ctx, device); err != nil {
		return err
	}
	r.writePlain("✓ Added %s\n", device.Name)
	return r.writePlain("%s", formatter.DevicesTable(devices.Items()))
}

// DevicesEdit changes only the fields given as flags.
func (r *Runner) DevicesEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}

	devices, err := r.deviceCollection(ctx)
	if err != nil {
		return err
	}
	current, ok := devices.Get(id)
	if !ok {
		return fmt.Errorf("%w: device %s", shared.ErrNotFound, id)
	}

	device := applyDeviceFlags(current, cmd).WithDefaults()
	if err := device.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if err := devices.Update(ctx, id, device); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", device.Name)
}

func applyDeviceFlags(device models.Device, cmd *cli.Command) models.Device {
	for flag, field := range map[string]*string{
		"name":         &device.Name,
		"mac":          &device.MAC,
		"ip":           &device.IP,
		"subnet":       &device.Subnet,
		"os":           &device.OSType,
		"ssh-user":     &device.SSH.Username,
		"ssh-password": &device.SSH.Password,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}
	if cmd.IsSet("port") {
		device.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("ssh-user") {
		device.SSH.Enabled = device.SSH.Username != ""
	}
	return device
}

// DevicesDelete removes a device.
func (r *Runner) DevicesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}

	devices, err := r.deviceCollection(ctx)
	if err != nil {
		return err
	}
	if err := devices.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// DevicesMove moves one device before another, or to the end without --before.
func (r *Runner) DevicesMove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}

	devices, err := r.deviceCollection(ctx)
	if err != nil {
		return err
	}
	if err := devices.Move(ctx, id, cmd.String("before")); err != nil {
		return err
	}
	return r.writePlain("%s", formatter.DevicesTable(devices.Items()))
}

// DevicesWake sends magic packets to the given devices, or all of them with --all.
func (r *Runner) DevicesWake(ctx context.Context, cmd *cli.Command) error {
	ids, err := r.targets(ctx, cmd, func(models.Device) bool { return true })
	if err != nil {
		return err
	}
	return r.bulk(ctx, cmd, "wake", ids, r.devices.Wake)
}

// DevicesShutdown shuts down devices over SSH. Devices without SSH are skipped by --all
// and rejected when named.
func (r *Runner) DevicesShutdown(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: shutdown must be confirmed with --yes", shared.ErrMissingArgument)
	}

	ids, err := r.targets(ctx, cmd, models.Device.CanShutdown)
	if err != nil {
		return err
	}
	return r.bulk(ctx, cmd, "shutdown", ids, r.devices.Shutdown)
}

// targets resolves the device arguments against the current list.
func (r *Runner) targets(ctx context.Context, cmd *cli.Command, eligible func(models.Device) bool) ([]string, error) {
	devices, err := r.deviceCollection(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	if cmd.Bool("all") {
		for _, d := range devices.Items() {
			if eligible(d) {
				ids = append(ids, d.ID)
			}
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: no eligible devices", shared.ErrNotFound)
		}
		return ids, nil
	}

	ids = cmd.Args().Slice()
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: device ids or --all", shared.ErrMissingArgument)
	}
	for _, id := range ids {
		d, ok := devices.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: device %s", shared.ErrNotFound, id)
		}
		if !eligible(d) {
			return nil, fmt.Errorf("%w: device %s does not allow this action", shared.ErrInvalidArgument, d.Name)
		}
	}
	return ids, nil
}

// bulk runs action through the worker pool and prints one line per device.
func (r *Runner) bulk(ctx context.Context, cmd *cli.Command, name string, ids []string, action func(context.Context, string) (services.ActionResult, error)) error {
	fn := func(ctx context.Context, id string) error {
		res, err := action(ctx, id)
		if err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("%w: %s returned %q", shared.ErrApplication, name, res.Status)
		}
		return nil
	}

	prog := make(chan tasks.ProgressUpdate, len(ids))
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range prog {
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := tasks.BulkAction(ctx, prog, ids, fn, tasks.BulkOpts{
		Action:     name,
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-printed
	if err != nil {
		return err
	}

	r.logger.Info(name+" finished", "succeeded", result.Succeeded, "failed", result.Failed)
	r.writePlain("%s: %d succeeded, %d failed\n", name, result.Succeeded, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d devices failed to %s", shared.ErrApplication, result.Failed, result.Total, name)
	}
	return nil
}

// DevicesWatch follows the push channel and prints the dashboard as it changes.
// With --json every event is printed as one line instead.
func (r *Runner) DevicesWatch(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("url")
	if url == "" {
		url = r.config.Devices.WSURL
	}
	if url == "" {
		return fmt.Errorf("%w: devices.ws_url", shared.ErrMissingConfig)
	}

	cfg := live.DefaultConfig(url)
	cfg.PingInterval = r.config.Devices.PingInterval()
	channel := live.NewChannel(cfg, r.logger)

	if cmd.Bool("json") {
		return channel.Run(ctx, jsonSink{r: r})
	}

	devices := collection.New[models.Device]("devices", r.devices, collection.FuncObserver[models.Device]{
		OnRender: func(items []models.Device) {
			r.writePlain("%s\n", formatter.DevicesTable(items))
		},
		OnPatch: func(_ int, d models.Device) {
			r.writePlain("%s → %s\n", d.Name, d.Status)
		},
		OnNotify: observer[models.Device](r.logger).Notify,
	}, r.logger)

	if err := devices.Load(ctx); err != nil {
		r.logger.Warn("initial load failed, waiting for the push channel", "error", err)
	}
	return channel.Run(ctx, live.CollectionSink{Devices: devices})
}

// jsonSink prints each event as a JSON line.
type jsonSink struct {
	r *Runner
}

func (s jsonSink) Snapshot(devices []models.Device) {
	s.r.writeJSON(map[string]any{"event": live.EventDevicesList, "devices": devices}, false)
}

func (s jsonSink) Status(delta live.StatusDelta) {
	s.r.writeJSON(map[string]any{"event": live.EventStatusUpdate, "device_id": delta.DeviceID, "status": delta.Status}, false)
}

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
		&cli.StringFlag{Name: "mac", Usage: "MAC address, e.g. aa:bb:cc:dd:ee:ff"},
		&cli.StringFlag{Name: "ip", Usage: "IP address for status checks and shutdown"},
		&cli.StringFlag{Name: "subnet", Usage: "Subnet mask (default: 255.255.255.0)"},
		&cli.IntFlag{Name: "port", Usage: "Wake-on-LAN port (default: 9)"},
		&cli.StringFlag{Name: "os", Usage: "Operating system: linux, windows or macos"},
		&cli.StringFlag{Name: "ssh-user", Usage: "SSH user for shutdown; empty disables shutdown"},
		&cli.StringFlag{Name: "ssh-password", Usage: "SSH password for shutdown"},
	}
}

func bulkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Act on every eligible device"},
		&cli.IntFlag{Name: "workers", Usage: "Concurrent requests", Value: 4},
		&cli.FloatFlag{Name: "rate", Usage: "Requests started per second", Value: 2},
	}
}

// devicesCommand handles Wake-on-LAN dashboard operations
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "devices",
		Aliases: []string{"device", "wol"},
		Usage:   "Manage Wake-on-LAN devices",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List devices and their status",
				Flags:  outputFlags(),
				Action: r.DevicesList,
			},
			{
				Name:   "add",
				Usage:  "Register a device",
				Flags:  deviceFlags(),
				Action: r.DevicesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit the given fields of a device",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     deviceFlags(),
				Action:    r.DevicesEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a device",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.DevicesDelete,
			},
			{
				Name:      "move",
				Usage:     "Move a device before another one (or to the end)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "before", Aliases: []string{"b"}, Usage: "ID of the device to move in front of"},
				},
				Action: r.DevicesMove,
			},
			{
				Name:      "wake",
				Usage:     "Send Wake-on-LAN packets",
				ArgsUsage: "[ID...]",
				Flags:     bulkFlags(),
				Action:    r.DevicesWake,
			},
			{
				Name:      "shutdown",
				Usage:     "Shut devices down over SSH",
				ArgsUsage: "[ID...]",
				Flags: append(bulkFlags(),
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the shutdown"},
				),
				Action: r.DevicesShutdown,
			},
			{
				Name:  "watch",
				Usage: "Follow live status updates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "Push channel URL (default: devices.ws_url)"},
					&cli.BoolFlag{Name: "json", Usage: "Print raw events as JSON lines"},
				},
				Action: r.DevicesWatch,
			},
		},
	}
}
