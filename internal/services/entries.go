package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// EntryService talks to the server-rendered link page. Entries are saved as
// multipart forms so an icon image can travel with them.
type EntryService struct {
	client *Client
}

// NewEntryService wraps client.
func NewEntryService(client *Client) *EntryService {
	return &EntryService{client: client}
}

// List fetches the entries in creation order (GET /entries).
func (s *EntryService) List(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.client.do(ctx, http.MethodGet, "/entries", nil, &entries); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// Create adds an entry (POST /entries). The server only answers with the new id.
func (s *EntryService) Create(ctx context.Context, entry models.Entry) (models.Entry, error) {
	var created struct {
		ID int `json:"id"`
	}
	if err := s.client.doForm(ctx, http.MethodPost, "/entries", entryForm(entry), &created); err != nil {
		return models.Entry{}, fmt.Errorf("failed to create entry: %w", err)
	}
	entry.ID = created.ID
	return entry, nil
}

// Update replaces the entry with id (PUT /entries/{id}). The stored icon is kept
// unless entry carries a new IconFile.
func (s *EntryService) Update(ctx context.Context, id string, entry models.Entry) error {
	n, err := entryID(id)
	if err != nil {
		return err
	}
	if err := s.client.doForm(ctx, http.MethodPut, "/entries/"+strconv.Itoa(n), entryForm(entry), nil); err != nil {
		return fmt.Errorf("failed to update entry %d: %w", n, err)
	}
	return nil
}

// Delete removes the entry with id (DELETE /entries/{id}).
func (s *EntryService) Delete(ctx context.Context, id string) error {
	n, err := entryID(id)
	if err != nil {
		return err
	}
	if err := s.client.do(ctx, http.MethodDelete, "/entries/"+strconv.Itoa(n), nil, nil); err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", n, err)
	}
	return nil
}

// Reorder always fails: the page lists entries in the order they were created.
func (s *EntryService) Reorder(ctx context.Context, order []string) error {
	return fmt.Errorf("%w: entries keep their creation order", shared.ErrNotImplemented)
}

func entryID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: entry id %q is not a positive number", shared.ErrInvalidArgument, id)
	}
	return n, nil
}

// entryForm writes the fields the page's form posts. Colors are only sent for the custom template.
func entryForm(entry models.Entry) func(*multipart.Writer) error {
	return func(form *multipart.Writer) error {
		fields := [][2]string{
			{"title", entry.Title},
			{"url", entry.URL},
			{"template", entry.Template},
		}
		if entry.Template == models.TemplateCustom {
			fields = append(fields,
				[2]string{"custom_color", entry.CustomColor},
				[2]string{"custom_border_color", entry.CustomBorderColor},
				[2]string{"custom_text_color", entry.CustomTextColor},
			)
		}
		for _, f := range fields {
			if err := form.WriteField(f[0], f[1]); err != nil {
				return err
			}
		}

		if entry.IconFile == "" {
			return nil
		}
		icon, err := os.Open(entry.IconFile)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		defer icon.Close()

		part, err := form.CreateFormFile("icon", filepath.Base(entry.IconFile))
		if err != nil {
			return err
		}
		_, err = io.Copy(part, icon)
		return err
	}
}
