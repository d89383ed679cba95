package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/homedeck/internal/models"
)

// LinkService talks to the link-tree API.
type LinkService struct {
	client        *Client
	reorderMethod string
}

// NewLinkService wraps client. reorderMethod defaults to PUT.
func NewLinkService(client *Client, reorderMethod string) *LinkService {
	return &LinkService{client: client, reorderMethod: normalizeMethod(reorderMethod, http.MethodPut)}
}

// List fetches the ordered links (GET /links).
func (s *LinkService) List(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := s.client.do(ctx, http.MethodGet, "/links", nil, &links); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Create adds a link (POST /links) and returns the stored copy with its server-assigned id.
func (s *LinkService) Create(ctx context.Context, link models.Link) (models.Link, error) {
	var created models.Link
	if err := s.client.do(ctx, http.MethodPost, "/links", link, &created); err != nil {
		return models.Link{}, fmt.Errorf("failed to create link: %w", err)
	}
	return created, nil
}

// Update replaces the link with id (PUT /links/{id}).
func (s *LinkService) Update(ctx context.Context, id string, link models.Link) error {
	link.ID = id
	if err := s.client.do(ctx, http.MethodPut, "/links/"+url.PathEscape(id), link, nil); err != nil {
		return fmt.Errorf("failed to update link %s: %w", id, err)
	}
	return nil
}

// Delete removes the link with id (DELETE /links/{id}).
func (s *LinkService) Delete(ctx context.Context, id string) error {
	if err := s.client.do(ctx, http.MethodDelete, "/links/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete link %s: %w", id, err)
	}
	return nil
}

// Reorder persists the full order of link ids.
func (s *LinkService) Reorder(ctx context.Context, order []string) error {
	if err := s.client.do(ctx, s.reorderMethod, "/links/reorder", orderBody(order), nil); err != nil {
		return fmt.Errorf("failed to reorder links: %w", err)
	}
	return nil
}

// Settings fetches the page settings (GET /settings). Missing fields take the server defaults.
func (s *LinkService) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := s.client.do(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// SaveSettings merges settings on the server (PUT /settings) and returns the merged result.
func (s *LinkService) SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	merged := settings
	if err := s.client.do(ctx, http.MethodPut, "/settings", settings, &merged); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return merged, nil
}

// Export downloads the whole snapshot (GET /export).
func (s *LinkService) Export(ctx context.Context) (models.Snapshot, error) {
	snap := models.Snapshot{Settings: models.DefaultSettings()}
	if err := s.client.do(ctx, http.MethodGet, "/export", nil, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to export: %w", err)
	}
	return snap, nil
}

// Import replaces the server state with snap (POST /import).
func (s *LinkService) Import(ctx context.Context, snap models.Snapshot) error {
	if snap.Links == nil {
		snap.Links = []models.Link{}
	}
	if err := s.client.do(ctx, http.MethodPost, "/import", snap, nil); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	return nil
}

func orderBody(order []string) map[string][]string {
	if order == nil {
		order = []string{}
	}
	return map[string][]string{"order": order}
}

func normalizeMethod(m, fallback string) string {
	switch m = strings.ToUpper(strings.TrimSpace(m)); m {
	case http.MethodPut, http.MethodPost:
		return m
	default:
		return fallback
	}
}
