package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// DownloadService talks to the score download API.
type DownloadService struct {
	client *Client
}

func NewDownloadService(client *Client) *DownloadService {
	return &DownloadService{client: client}
}

// Submit starts a download task (POST /download) and returns its task id.
//
// A body carrying {"error": "..."} is an application error even on a 2xx status.
func (s *DownloadService) Submit(ctx context.Context, req models.DownloadRequest) (string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", fmt.Errorf("%w: score url is required", shared.ErrMissingArgument)
	}

	var resp struct {
		TaskID string `json:"task_id"`
		Error  string `json:"error"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/download", req, &resp); err != nil {
		return "", fmt.Errorf("failed to submit download: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("failed to submit download: %w", &APIError{StatusCode: http.StatusOK, Message: resp.Error})
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("%w: response carried no task_id", shared.ErrDecode)
	}
	return resp.TaskID, nil
}

// Status polls one task (GET /status/{id}). An unknown task is reported as
// status not_found, not as an error, so the poller can apply it like any other state.
func (s *DownloadService) Status(ctx context.Context, taskID string) (models.TaskStatus, error) {
	var status models.TaskStatus
	err := s.client.do(ctx, http.MethodGet, "/status/"+url.PathEscape(taskID), nil, &status)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return models.TaskStatus{Status: models.TaskNotFound, Message: apiErr.Message}, nil
	}
	if err != nil {
		return models.TaskStatus{}, fmt.Errorf("failed to get task status: %w", err)
	}
	return status, nil
}

// ResolveURL turns a relative download_url into an absolute one against the service base.
func (s *DownloadService) ResolveURL(downloadURL string) (string, error) {
	base, err := url.Parse(s.client.BaseURL() + "/")
	if err != nil {
		return "", fmt.Errorf("%w: bad base url: %w", shared.ErrInvalidConfig, err)
	}
	ref, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad download url %q", shared.ErrDecode, downloadURL)
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch streams the finished file at downloadURL into w and returns the byte count.
func (s *DownloadService) Fetch(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	target, err := s.ResolveURL(downloadURL)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request failed: %w", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return 0, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write download: %w", err)
	}
	return n, nil
}
