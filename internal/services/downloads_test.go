package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	tu "github.com/desertthunder/homedeck/internal/testing"
)

func TestDownloadService(t *testing.T) {
	ctx := context.Background()

	t.Run("Submit", func(t *testing.T) {
		t.Run("returns task id", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusOK, map[string]string{"task_id": "t-1"})
			})

			id, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Submit(ctx, models.DownloadRequest{URL: "https://musescore.com/x", Scale: 2, SharpenCount: 1})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "t-1" {
				t.Errorf("expected t-1, got %s", id)
			}
			if got := string(srv.Requests()[0].Body); got != `{"url":"https://musescore.com/x","scale":2,"sharpen_count":1}` {
				t.Errorf("unexpected body %s", got)
			}
		})

		t.Run("error body on 400", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "URL required"})
			})

			_, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Submit(ctx, models.DownloadRequest{URL: "x"})
			if !errors.Is(err, shared.ErrApplication) {
				t.Errorf("expected ErrApplication, got %v", err)
			}
		})

		t.Run("error body on 200", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusOK, map[string]string{"error": "scraper offline"})
			})

			_, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Submit(ctx, models.DownloadRequest{URL: "x"})
			if !errors.Is(err, shared.ErrApplication) {
				t.Errorf("expected ErrApplication, got %v", err)
			}
		})

		t.Run("empty url is rejected locally", func(t *testing.T) {
			_, err := NewDownloadService(NewClient("http://unused", nil, nil)).Submit(ctx, models.DownloadRequest{})
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("Status", func(t *testing.T) {
		t.Run("processing", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"processing","progress":87.5,"message":"page 2/4"}`))
			})

			st, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Status(ctx, "t-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if st.Status != models.TaskProcessing || st.Progress != 87.5 || st.Message != "page 2/4" {
				t.Errorf("unexpected status %+v", st)
			}
			if srv.Requests()[0].Path != "/status/t-1" {
				t.Errorf("unexpected path %s", srv.Requests()[0].Path)
			}
		})

		t.Run("404 maps to not_found", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(w, http.StatusNotFound, map[string]string{"status": "not_found"})
			})

			st, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Status(ctx, "gone")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if st.Status != models.TaskNotFound {
				t.Errorf("expected not_found, got %s", st.Status)
			}
		})
	})

	t.Run("Fetch resolves relative download url", func(t *testing.T) {
		srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("%PDF-1.4"))
		})

		svc := NewDownloadService(NewClient(srv.URL, nil, nil))
		var buf bytes.Buffer
		n, err := svc.Fetch(ctx, "/download_file/abcd1234", &buf)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if n != int64(buf.Len()) || buf.String() != "%PDF-1.4" {
			t.Errorf("unexpected payload %q (%d bytes)", buf.String(), n)
		}
		if srv.Requests()[0].Path != "/download_file/abcd1234" {
			t.Errorf("unexpected path %s", srv.Requests()[0].Path)
		}
	})

	t.Run("Fetch missing file", func(t *testing.T) {
		srv := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
		})

		_, err := NewDownloadService(NewClient(srv.URL, nil, nil)).Fetch(ctx, "/download_file/x", &bytes.Buffer{})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
