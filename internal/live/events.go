package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

const (
	EventDevicesList  = "devices_list"
	EventStatusUpdate = "device_status_update"
)

// Envelope is one frame on the push channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// StatusDelta changes the status of one device.
type StatusDelta struct {
	DeviceID string              `json:"device_id"`
	Status   models.DeviceStatus `json:"status"`
}

// Event is a decoded frame: exactly one of Snapshot or Delta is set.
type Event struct {
	Name     string
	Snapshot []models.Device
	Delta    *StatusDelta
}

// ErrUnknownEvent is returned by [Decode] for event names it does not handle.
var ErrUnknownEvent = fmt.Errorf("unknown event")

// Decode parses one frame.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, fmt.Errorf("%w: envelope: %w", shared.ErrDecode, err)
	}

	switch env.Event {
	case EventDevicesList:
		var devices []models.Device
		if err := json.Unmarshal(env.Data, &devices); err != nil {
			return Event{}, fmt.Errorf("%w: %s: %w", shared.ErrDecode, env.Event, err)
		}
		if devices == nil {
			devices = []models.Device{}
		}
		return Event{Name: env.Event, Snapshot: devices}, nil
	case EventStatusUpdate:
		var delta StatusDelta
		if err := json.Unmarshal(env.Data, &delta); err != nil {
			return Event{}, fmt.Errorf("%w: %s: %w", shared.ErrDecode, env.Event, err)
		}
		if delta.DeviceID == "" {
			return Event{}, fmt.Errorf("%w: %s: missing device_id", shared.ErrDecode, env.Event)
		}
		return Event{Name: env.Event, Delta: &delta}, nil
	default:
		return Event{Name: env.Event}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// Sink receives decoded events in arrival order.
type Sink interface {
	Snapshot(devices []models.Device)
	Status(delta StatusDelta)
}

// CollectionSink merges events into a device collection: snapshots replace it,
// deltas patch the status of a known device and are dropped otherwise.
type CollectionSink struct {
	Devices *collection.Collection[models.Device]
}

func (s CollectionSink) Snapshot(devices []models.Device) {
	s.Devices.Replace(devices)
}

func (s CollectionSink) Status(delta StatusDelta) {
	s.Devices.ApplyDelta(delta.DeviceID, func(d *models.Device) {
		d.Status = delta.Status
	})
}

// ChanSink forwards events to C, for UIs that apply them on their own loop.
// A send waits for the consumer until Ctx is done; the event is then dropped.
type ChanSink struct {
	Ctx context.Context
	C   chan<- Event
}

func (s ChanSink) Snapshot(devices []models.Device) {
	s.send(Event{Name: EventDevicesList, Snapshot: devices})
}

func (s ChanSink) Status(delta StatusDelta) {
	s.send(Event{Name: EventStatusUpdate, Delta: &delta})
}

func (s ChanSink) send(ev Event) {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case s.C <- ev:
	case <-ctx.Done():
	}
}

// Deliver routes ev to sink.
func Deliver(sink Sink, ev Event) {
	switch {
	case ev.Snapshot != nil:
		sink.Snapshot(ev.Snapshot)
	case ev.Delta != nil:
		sink.Status(*ev.Delta)
	}
}
