package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/homedeck/internal/models"
)

// ActionResult is the body of a wake or shutdown response, {"status": "success"} on success.
type ActionResult struct {
	Status string `json:"status"`
}

// OK reports whether the server acknowledged the action.
func (r ActionResult) OK() bool { return r.Status == "success" }

// DeviceService talks to the Wake-on-LAN API.
type DeviceService struct {
	client        *Client
	reorderMethod string
}

// NewDeviceService wraps client. reorderMethod defaults to PUT; the WoL backend expects POST.
func NewDeviceService(client *Client, reorderMethod string) *DeviceService {
	return &DeviceService{client: client, reorderMethod: normalizeMethod(reorderMethod, http.MethodPut)}
}

// List fetches the ordered devices (GET /devices).
func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := s.client.do(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// Create adds a device (POST /devices). The server assigns the id when it is empty.
func (s *DeviceService) Create(ctx context.Context, device models.Device) (models.Device, error) {
	device.ID = ""
	return s.save(ctx, device)
}

// Update replaces a device. The WoL API creates or updates by id through the same POST.
func (s *DeviceService) Update(ctx context.Context, id string, device models.Device) error {
	device.ID = id
	if _, err := s.save(ctx, device); err != nil {
		return err
	}
	return nil
}

func (s *DeviceService) save(ctx context.Context, device models.Device) (models.Device, error) {
	saved := device
	if err := s.client.do(ctx, http.MethodPost, "/devices", device, &saved); err != nil {
		return models.Device{}, fmt.Errorf("failed to save device: %w", err)
	}
	return saved, nil
}

// Delete removes the device with id (DELETE /devices/{id}).
func (s *DeviceService) Delete(ctx context.Context, id string) error {
	if err := s.client.do(ctx, http.MethodDelete, "/devices/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete device %s: %w", id, err)
	}
	return nil
}

// Reorder persists the full order of device ids.
func (s *DeviceService) Reorder(ctx context.Context, order []string) error {
	if err := s.client.do(ctx, s.reorderMethod, "/devices/reorder", orderBody(order), nil); err != nil {
		return fmt.Errorf("failed to reorder devices: %w", err)
	}
	return nil
}

// Wake sends a magic packet through the server (POST /wake/{id}).
func (s *DeviceService) Wake(ctx context.Context, id string) (ActionResult, error) {
	return s.action(ctx, "wake", id)
}

// Shutdown asks the server to power the device off over SSH (POST /shutdown/{id}).
func (s *DeviceService) Shutdown(ctx context.Context, id string) (ActionResult, error) {
	return s.action(ctx, "shutdown", id)
}

func (s *DeviceService) action(ctx context.Context, name, id string) (ActionResult, error) {
	var result ActionResult
	if err := s.client.do(ctx, http.MethodPost, "/"+name+"/"+url.PathEscape(id), nil, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to %s device %s: %w", name, id, err)
	}
	return result, nil
}
