package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	tu "github.com/desertthunder/homedeck/internal/testing"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

// backend is an in-memory link page, WoL service and download service.
type backend struct {
	mu       sync.Mutex
	links    []models.Link
	entries  []models.Entry
	devices  []models.Device
	settings models.Settings
	actions  map[string]string
	statuses []models.TaskStatus
	polls    int
	nextID   int
}

func newBackend() *backend {
	return &backend{
		links: []models.Link{
			{ID: "l1", Name: "Blog", URL: "https://blog.example.com"},
			{ID: "l2", Name: "Code", URL: "https://code.example.com"},
			{ID: "l3", Name: "Mail", URL: "https://mail.example.com"},
		},
		entries: []models.Entry{
			{ID: 1, Title: "Wiki", URL: "https://wiki.example.com", Template: "default", Icon: "uploads/wiki.png"},
			{ID: 2, Title: "Status", URL: "https://status.example.com", Template: "custom",
				CustomColor: "#000000", CustomBorderColor: "#FFFFFF", CustomTextColor: "#FFFFFF"},
		},
		devices: []models.Device{
			{ID: "d1", Name: "Desktop", MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.0.2", Status: models.StatusOnline,
				SSH: models.SSH{Enabled: true, Username: "root"}},
			{ID: "d2", Name: "NAS", MAC: "aa:bb:cc:dd:ee:02", Status: models.StatusOffline},
		},
		settings: models.Settings{Theme: models.ThemeLight, ButtonSize: 175},
		actions:  map[string]string{},
		statuses: []models.TaskStatus{
			{Status: models.TaskProcessing, Progress: 50, Message: "Rendering pages"},
			{Status: models.TaskCompleted, Progress: 100, Message: "Done", DownloadURL: "/files/score.pdf"},
		},
	}
}

func (b *backend) routes() http.HandlerFunc {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /links", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		tu.WriteJSON(w, http.StatusOK, b.links)
	})
	mux.HandleFunc("POST /links", func(w http.ResponseWriter, r *http.Request) {
		var link models.Link
		json.NewDecoder(r.Body).Decode(&link)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		link.ID = "new" + strconv.Itoa(b.nextID)
		b.links = append(b.links, link)
		tu.WriteJSON(w, http.StatusCreated, link)
	})
	mux.HandleFunc("PUT /links/reorder", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Order []string `json:"order"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		next := make([]models.Link, 0, len(b.links))
		for _, id := range body.Order {
			for _, l := range b.links {
				if l.ID == id {
					next = append(next, l)
				}
			}
		}
		b.links = next
		tu.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
	})
	mux.HandleFunc("PUT /links/{id}", func(w http.ResponseWriter, r *http.Request) {
		var link models.Link
		json.NewDecoder(r.Body).Decode(&link)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.links {
			if l.ID == r.PathValue("id") {
				b.links[i] = link
				tu.WriteJSON(w, http.StatusOK, link)
				return
			}
		}
		tu.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Link not found"})
	})
	mux.HandleFunc("DELETE /links/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.links = slices.DeleteFunc(b.links, func(l models.Link) bool { return l.ID == r.PathValue("id") })
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /settings", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		tu.WriteJSON(w, http.StatusOK, b.settings)
	})
	mux.HandleFunc("PUT /settings", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewDecoder(r.Body).Decode(&b.settings)
		tu.WriteJSON(w, http.StatusOK, b.settings)
	})
	mux.HandleFunc("GET /export", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		tu.WriteJSON(w, http.StatusOK, models.Snapshot{Links: b.links, Settings: b.settings})
	})
	mux.HandleFunc("POST /import", func(w http.ResponseWriter, r *http.Request) {
		var snap models.Snapshot
		json.NewDecoder(r.Body).Decode(&snap)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.links, b.settings = snap.Links, snap.Settings
		tu.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
	})

	mux.HandleFunc("GET /entries", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		tu.WriteJSON(w, http.StatusOK, b.entries)
	})
	mux.HandleFunc("POST /entries", func(w http.ResponseWriter, r *http.Request) {
		entry, ok := entryFromForm(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		entry.ID = len(b.entries) + 10
		b.entries = append(b.entries, entry)
		tu.WriteJSON(w, http.StatusOK, map[string]any{"id": entry.ID, "message": "Entry added successfully"})
	})
	mux.HandleFunc("PUT /entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		entry, ok := entryFromForm(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.entries {
			if strconv.Itoa(e.ID) == r.PathValue("id") {
				entry.ID = e.ID
				if entry.Icon == "" {
					entry.Icon = e.Icon
				}
				b.entries[i] = entry
				tu.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entry updated successfully"})
				return
			}
		}
		tu.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Entry not found"})
	})
	mux.HandleFunc("DELETE /entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.entries = slices.DeleteFunc(b.entries, func(e models.Entry) bool { return strconv.Itoa(e.ID) == r.PathValue("id") })
		tu.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted successfully"})
	})

	mux.HandleFunc("GET /devices", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		tu.WriteJSON(w, http.StatusOK, b.devices)
	})
	mux.HandleFunc("POST /devices", func(w http.ResponseWriter, r *http.Request) {
		var device models.Device
		json.NewDecoder(r.Body).Decode(&device)
		b.mu.Lock()
		defer b.mu.Unlock()
		if device.ID == "" {
			device.ID = "d9"
			b.devices = append(b.devices, device)
		} else {
			for i, d := range b.devices {
				if d.ID == device.ID {
					b.devices[i] = device
				}
			}
		}
		tu.WriteJSON(w, http.StatusOK, device)
	})
	mux.HandleFunc("POST /devices/reorder", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
	})
	mux.HandleFunc("DELETE /devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.devices = slices.DeleteFunc(b.devices, func(d models.Device) bool { return d.ID == r.PathValue("id") })
		tu.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
	})
	mux.HandleFunc("POST /{action}/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		status := b.actions[r.PathValue("id")]
		if status == "" {
			status = "success"
		}
		tu.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
	})

	mux.HandleFunc("POST /download", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, map[string]string{"task_id": "t1"})
	})
	mux.HandleFunc("GET /status/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := min(b.polls, len(b.statuses)-1)
		b.polls++
		tu.WriteJSON(w, http.StatusOK, b.statuses[i])
	})
	mux.HandleFunc("GET /files/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 score"))
	})

	return mux.ServeHTTP
}

// entryFromForm reads the fields the link page form posts, rejecting a missing title or url.
func entryFromForm(w http.ResponseWriter, r *http.Request) (models.Entry, bool) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		tu.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return models.Entry{}, false
	}
	entry := models.Entry{
		Title:             r.FormValue("title"),
		URL:               r.FormValue("url"),
		Template:          r.FormValue("template"),
		CustomColor:       r.FormValue("custom_color"),
		CustomBorderColor: r.FormValue("custom_border_color"),
		CustomTextColor:   r.FormValue("custom_text_color"),
	}
	if entry.Title == "" || entry.URL == "" {
		tu.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Title and URL are required"})
		return models.Entry{}, false
	}
	if _, header, err := r.FormFile("icon"); err == nil {
		entry.Icon = "uploads/" + header.Filename
	}
	return entry, true
}

func newTestRunner(t *testing.T, b *backend) (*Runner, *tu.RecordingServer, *bytes.Buffer) {
	t.Helper()
	srv := tu.NewRecordingServer(t, b.routes())

	config := shared.DefaultConfig()
	config.Links.BaseURL = srv.URL
	config.Entries.BaseURL = srv.URL
	config.Devices.BaseURL = srv.URL
	config.Devices.ReorderMethod = http.MethodPost
	config.Downloads.BaseURL = srv.URL
	config.Downloads.PollIntervalMS = 5
	config.HTTP.RequestsPerSecond = 0
	config.Links.ExportDir = t.TempDir()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return runner, srv, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "homedeck", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"homedeck"}, args...))
}

func lastBody(t *testing.T, srv *tu.RecordingServer, method, path string) []byte {
	t.Helper()
	reqs := srv.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i].Body
		}
	}
	t.Fatalf("no %s %s request recorded", method, path)
	return nil
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.links == nil || runner.devices == nil || runner.downloads == nil {
				t.Error("expected services to be created")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Fatal("expected default config to be set")
			}
			if got := runner.clients["links"].BaseURL(); got != strings.TrimRight(runner.config.Links.BaseURL, "/") {
				t.Errorf("expected links client to use config base url, got %s", got)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient builds a rate limited one", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient == nil || runner.httpClient == http.DefaultClient {
				t.Error("expected a dedicated http client")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}
		for _, want := range []string{"setup", "links", "settings", "entries", "devices", "download", "api", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q command, got %v", want, names)
			}
		}
	})
}

func TestLinksCommands(t *testing.T) {
	t.Run("list prints a table in page order", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "links", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		blog, mail := strings.Index(out, "Blog"), strings.Index(out, "Mail")
		if blog < 0 || mail < 0 || blog > mail {
			t.Errorf("expected Blog before Mail, got:\n%s", out)
		}
	})

	t.Run("list --json prints the raw links", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "links", "list", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var links []models.Link
		if err := json.Unmarshal(output.Bytes(), &links); err != nil {
			t.Fatalf("expected JSON output, got %v: %s", err, output.String())
		}
		if len(links) != 3 {
			t.Errorf("expected 3 links, got %d", len(links))
		}
	})

	t.Run("add fills styling defaults", func(t *testing.T) {
		runner, srv, output := newTestRunner(t, newBackend())

		err := run(runner, "links", "add", "--name", "Docs", "--url", "https://docs.example.com")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var sent models.Link
		json.Unmarshal(lastBody(t, srv, http.MethodPost, "/links"), &sent)
		if sent.BgColor != "#ffffff" || sent.TextColor != "#000000" {
			t.Errorf("expected default colors, got %+v", sent)
		}
		out := output.String()
		if !strings.Contains(out, "Added Docs") || !strings.Contains(out, "new1") {
			t.Errorf("expected the reloaded page with the new id, got %q", out)
		}
		if n := srv.Count(http.MethodGet, "/links"); n != 2 {
			t.Errorf("expected load and reload around the create, got %d GETs", n)
		}
	})

	t.Run("add with two gradient colors", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "links", "add", "--name", "Docs", "--url", "https://docs.example.com",
			"--gradient", "#ff0000", "--gradient", "#0000ff")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var sent models.Link
		json.Unmarshal(lastBody(t, srv, http.MethodPost, "/links"), &sent)
		if !sent.UseGradient || sent.GradientColor1 != "#ff0000" || sent.GradientColor2 != "#0000ff" {
			t.Errorf("expected gradient enabled, got %+v", sent)
		}
	})

	t.Run("a gradient needs exactly two colors", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		for _, colors := range [][]string{{"#ff0000"}, {"#ff0000", "#00ff00", "#0000ff"}} {
			args := []string{"links", "add", "--name", "Docs", "--url", "https://docs.example.com"}
			for _, c := range colors {
				args = append(args, "--gradient", c)
			}
			err := run(runner, args...)
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag for %v, got %v", colors, err)
			}
		}
		if n := srv.Count(http.MethodPost, "/links"); n != 0 {
			t.Errorf("expected no POST, got %d", n)
		}
	})

	t.Run("edit --no-gradient turns the gradient off", func(t *testing.T) {
		b := newBackend()
		b.links[0].UseGradient = true
		b.links[0].GradientColor1, b.links[0].GradientColor2 = "#111111", "#222222"
		runner, srv, _ := newTestRunner(t, b)

		if err := run(runner, "links", "edit", "--no-gradient", "l1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var sent models.Link
		json.Unmarshal(lastBody(t, srv, http.MethodPut, "/links/l1"), &sent)
		if sent.UseGradient {
			t.Errorf("expected gradient off, got %+v", sent)
		}
	})

	t.Run("add rejects a relative url without calling the server", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "links", "add", "--name", "Docs", "--url", "docs")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/links"); n != 0 {
			t.Errorf("expected no POST, got %d", n)
		}
	})

	t.Run("edit changes only the given fields", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "links", "edit", "--name", "Notes", "l1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var sent models.Link
		json.Unmarshal(lastBody(t, srv, http.MethodPut, "/links/l1"), &sent)
		if sent.Name != "Notes" || sent.URL != "https://blog.example.com" {
			t.Errorf("expected name changed and url kept, got %+v", sent)
		}
	})

	t.Run("edit of an unknown id", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "links", "edit", "--name", "Notes", "nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete reloads afterwards", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "links", "delete", "l2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := srv.Count(http.MethodDelete, "/links/l2"); n != 1 {
			t.Errorf("expected one DELETE, got %d", n)
		}
		if n := srv.Count(http.MethodGet, "/links"); n != 2 {
			t.Errorf("expected load and reload, got %d GETs", n)
		}
	})

	t.Run("move persists the dropped order", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "links", "move", "--before", "l1", "l3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var body struct {
			Order []string `json:"order"`
		}
		json.Unmarshal(lastBody(t, srv, http.MethodPut, "/links/reorder"), &body)
		if !slices.Equal(body.Order, []string{"l3", "l1", "l2"}) {
			t.Errorf("expected [l3 l1 l2], got %v", body.Order)
		}
	})

	t.Run("move onto itself sends nothing", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "links", "move", "--before", "l3", "l2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := srv.Count(http.MethodPut, "/links/reorder"); n != 0 {
			t.Errorf("expected no reorder call, got %d", n)
		}
	})

	t.Run("reorder requires every id", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "links", "reorder", "l2", "l1")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if n := srv.Count(http.MethodPut, "/links/reorder"); n != 0 {
			t.Errorf("expected no reorder call, got %d", n)
		}
	})

	t.Run("export writes yaml to the given file", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())
		dir := t.TempDir()

		if err := run(runner, "links", "export", "--format", "yaml", "--dir", dir, "--name", "links.yaml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		path := filepath.Join(dir, "links.yaml")
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "buttonSize: 175") {
			t.Errorf("expected settings in export, got:\n%s", content)
		}
		if !strings.Contains(output.String(), "Exported 3 links") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("export defaults to a timestamped json file in export_dir", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		if err := run(runner, "links", "export"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		matches, _ := filepath.Glob(filepath.Join(runner.config.Links.ExportDir, "homedeck-export-*.json"))
		if len(matches) != 1 {
			t.Errorf("expected one export file, got %v", matches)
		}
	})

	t.Run("export rejects an unknown format", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "links", "export", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("import uploads a snapshot file", func(t *testing.T) {
		b := newBackend()
		runner, srv, _ := newTestRunner(t, b)
		path := filepath.Join(t.TempDir(), "snap.json")
		os.WriteFile(path, []byte(`{"links":[{"id":"x","name":"X","url":"https://x.example.com"}],"settings":{"theme":"dark","buttonSize":100}}`), 0644)

		if err := run(runner, "links", "import", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/import"); n != 1 {
			t.Fatalf("expected one import, got %d", n)
		}
		if b.settings.Theme != models.ThemeDark || len(b.links) != 1 {
			t.Errorf("expected server state replaced, got %+v %+v", b.settings, b.links)
		}
	})

	t.Run("open launches the link url", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())
		var opened string
		runner.open = func(u string) error { opened = u; return nil }

		if err := run(runner, "links", "open", "l2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if opened != "https://code.example.com" {
			t.Errorf("expected code url, got %q", opened)
		}
	})
}

func TestSettingsCommands(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "settings", "show"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "button size: 175") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("theme toggle keeps the button size", func(t *testing.T) {
		b := newBackend()
		runner, _, _ := newTestRunner(t, b)

		if err := run(runner, "settings", "theme", "toggle"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.settings.Theme != models.ThemeDark || b.settings.ButtonSize != 175 {
			t.Errorf("expected dark/175, got %+v", b.settings)
		}
	})

	t.Run("theme rejects unknown values", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "settings", "theme", "blue")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("size must be an offered size", func(t *testing.T) {
		b := newBackend()
		runner, srv, _ := newTestRunner(t, b)

		err := run(runner, "settings", "size", "130")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if n := srv.Count(http.MethodPut, "/settings"); n != 0 {
			t.Errorf("expected no save, got %d", n)
		}

		if err := run(runner, "settings", "size", "200"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.settings.ButtonSize != 200 || b.settings.Theme != models.ThemeLight {
			t.Errorf("expected light/200, got %+v", b.settings)
		}
	})
}

func TestEntriesCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		runner, srv, output := newTestRunner(t, newBackend())

		if err := run(runner, "entries", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Wiki") || !strings.Contains(out, "uploads/wiki.png") || !strings.Contains(out, "TEMPLATE") {
			t.Errorf("unexpected output %q", out)
		}
		if srv.Count(http.MethodGet, "/entries") != 1 {
			t.Errorf("expected GET /entries, got %+v", srv.Requests())
		}
	})

	t.Run("list --json", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "entries", "list", "--json", "--pretty=false"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var entries []models.Entry
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("expected JSON output, got %q", output.String())
		}
		if len(entries) != 2 || entries[1].ID != 2 {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("add uploads the icon and reloads", func(t *testing.T) {
		b := newBackend()
		runner, srv, output := newTestRunner(t, b)
		icon := filepath.Join(t.TempDir(), "docs.svg")
		if err := os.WriteFile(icon, []byte("<svg/>"), 0o644); err != nil {
			t.Fatal(err)
		}

		err := run(runner, "entries", "add", "--title", "Docs", "--url", "https://docs.example.com",
			"--template", "custom", "--bg-color", "#112233", "--icon", icon)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		added := b.entries[len(b.entries)-1]
		if added.Title != "Docs" || added.Icon != "uploads/docs.svg" {
			t.Errorf("unexpected stored entry %+v", added)
		}
		if added.CustomColor != "#112233" || added.CustomBorderColor != "#FFFFFF" || added.CustomTextColor != "#FFFFFF" {
			t.Errorf("expected the given background and default colors, got %+v", added)
		}
		if !strings.Contains(output.String(), "Added Docs") || !strings.Contains(output.String(), "uploads/docs.svg") {
			t.Errorf("unexpected output %q", output.String())
		}
		if srv.Count(http.MethodGet, "/entries") != 2 {
			t.Errorf("expected a reload after the create, got %+v", srv.Requests())
		}
	})

	t.Run("colors need the custom template", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "entries", "add", "--title", "Docs", "--url", "https://docs.example.com", "--text-color", "#fff")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if srv.Count(http.MethodPost, "/entries") != 0 {
			t.Errorf("expected no create, got %+v", srv.Requests())
		}
	})

	t.Run("add rejects a non image icon", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "entries", "add", "--title", "Docs", "--url", "https://docs.example.com", "--icon", "notes.txt")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if srv.Count(http.MethodPost, "/entries") != 0 {
			t.Errorf("expected no create, got %+v", srv.Requests())
		}
	})

	t.Run("edit keeps the stored icon", func(t *testing.T) {
		b := newBackend()
		runner, srv, output := newTestRunner(t, b)

		if err := run(runner, "entries", "edit", "1", "--title", "Team Wiki"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Count(http.MethodPut, "/entries/1") != 1 {
			t.Fatalf("expected PUT /entries/1, got %+v", srv.Requests())
		}
		if b.entries[0].Title != "Team Wiki" || b.entries[0].URL != "https://wiki.example.com" || b.entries[0].Icon != "uploads/wiki.png" {
			t.Errorf("unexpected stored entry %+v", b.entries[0])
		}
		if !strings.Contains(output.String(), "Updated Team Wiki") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("edit of an unknown entry", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "entries", "edit", "99", "--title", "x")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		b := newBackend()
		runner, _, output := newTestRunner(t, b)

		if err := run(runner, "entries", "delete", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(b.entries) != 1 || b.entries[0].ID != 1 {
			t.Errorf("unexpected entries %+v", b.entries)
		}
		if !strings.Contains(output.String(), "Deleted 2") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("delete needs a numeric id", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "entries", "delete", "wiki")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if srv.Count(http.MethodDelete, "/entries/wiki") != 0 {
			t.Errorf("expected no delete request, got %+v", srv.Requests())
		}
	})
}

func TestDevicesCommands(t *testing.T) {
	t.Run("list shows status and ssh user", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "devices", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := output.String()
		for _, want := range []string{"Desktop", "online", "root", "NAS", "offline"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("add validates the mac address", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "devices", "add", "--name", "Laptop", "--mac", "nope")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/devices"); n != 0 {
			t.Errorf("expected no POST, got %d", n)
		}
	})

	t.Run("add enables ssh when a user is given", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "devices", "add", "--name", "Laptop", "--mac", "aa:bb:cc:dd:ee:03", "--ssh-user", "admin", "--port", "7")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var sent models.Device
		json.Unmarshal(lastBody(t, srv, http.MethodPost, "/devices"), &sent)
		if !sent.SSH.Enabled || sent.SSH.AuthMethod != "password" || sent.Port != 7 || sent.Subnet != models.DefaultSubnet {
			t.Errorf("unexpected device sent: %+v", sent)
		}
	})

	t.Run("move posts the new order", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "devices", "move", "d1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var body struct {
			Order []string `json:"order"`
		}
		json.Unmarshal(lastBody(t, srv, http.MethodPost, "/devices/reorder"), &body)
		if !slices.Equal(body.Order, []string{"d2", "d1"}) {
			t.Errorf("expected [d2 d1], got %v", body.Order)
		}
	})

	t.Run("wake several devices", func(t *testing.T) {
		runner, srv, output := newTestRunner(t, newBackend())

		if err := run(runner, "devices", "wake", "--rate", "100", "d1", "d2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Count(http.MethodPost, "/wake/d1") != 1 || srv.Count(http.MethodPost, "/wake/d2") != 1 {
			t.Errorf("expected one wake per device, got %v", srv.Requests())
		}
		if !strings.Contains(output.String(), "wake: 2 succeeded, 0 failed") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("a failed status counts as a failure", func(t *testing.T) {
		b := newBackend()
		b.actions["d2"] = "error"
		runner, _, output := newTestRunner(t, b)

		err := run(runner, "devices", "wake", "--all", "--rate", "100")
		if !errors.Is(err, shared.ErrApplication) {
			t.Fatalf("expected ErrApplication, got %v", err)
		}
		if !strings.Contains(output.String(), "1 succeeded, 1 failed") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("wake of an unknown device", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "devices", "wake", "d7")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/wake/d7"); n != 0 {
			t.Errorf("expected no wake call, got %d", n)
		}
	})

	t.Run("shutdown needs confirmation", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "devices", "shutdown", "d1")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/shutdown/d1"); n != 0 {
			t.Errorf("expected no shutdown call, got %d", n)
		}
	})

	t.Run("shutdown --all skips devices without ssh", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		if err := run(runner, "devices", "shutdown", "--all", "--yes", "--rate", "100"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Count(http.MethodPost, "/shutdown/d1") != 1 || srv.Count(http.MethodPost, "/shutdown/d2") != 0 {
			t.Errorf("expected only d1 shut down, got %v", srv.Requests())
		}
	})

	t.Run("shutdown of a device without ssh", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "devices", "shutdown", "--yes", "d2")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("watch merges pushed events", func(t *testing.T) {
		b := newBackend()
		runner, _, output := newTestRunner(t, b)

		upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
		ws := tu.NewRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"devices_list","data":[{"id":"d1","name":"Desktop","mac":"aa:bb:cc:dd:ee:01","status":"online"},{"id":"d2","name":"NAS","mac":"aa:bb:cc:dd:ee:02","status":"offline"}]}`))
			conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"device_status_update","data":{"device_id":"d2","status":"online"}}`))
			conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"device_status_update","data":{"device_id":"zz","status":"online"}}`))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			time.Sleep(50 * time.Millisecond)
		})
		url := "ws" + strings.TrimPrefix(ws.URL, "http") + "/ws"

		if err := run(runner, "devices", "watch", "--url", url); err != nil {
			t.Fatalf("expected clean close, got %v", err)
		}

		out := output.String()
		if strings.Count(out, "STATUS") != 2 {
			t.Errorf("expected initial and snapshot tables, got:\n%s", out)
		}
		if !strings.Contains(out, "NAS → online") {
			t.Errorf("expected patched row, got:\n%s", out)
		}
		if strings.Contains(out, "zz") {
			t.Errorf("expected unknown device to be ignored, got:\n%s", out)
		}
	})

	t.Run("watch without a url", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())
		runner.config.Devices.WSURL = ""

		err := run(runner, "devices", "watch")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestDownloadCommand(t *testing.T) {
	t.Run("follows progress and saves the file", func(t *testing.T) {
		runner, srv, output := newTestRunner(t, newBackend())
		path := filepath.Join(t.TempDir(), "out", "score.pdf")

		err := run(runner, "download", "--scale", "3", "--save", path, "https://musescore.com/user/1/scores/2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var req models.DownloadRequest
		json.Unmarshal(lastBody(t, srv, http.MethodPost, "/download"), &req)
		if req.Scale != 3 || req.SharpenCount != runner.config.Downloads.DefaultSharpen {
			t.Errorf("unexpected request %+v", req)
		}

		out := output.String()
		if !strings.Contains(out, "Ready: "+srv.URL+"/files/score.pdf") {
			t.Errorf("expected resolved link, got:\n%s", out)
		}
		if content := tu.MustReadFile(t, path); content != "%PDF-1.4 score" {
			t.Errorf("unexpected file content %q", content)
		}
	})

	t.Run("prints progress exactly as reported", func(t *testing.T) {
		b := newBackend()
		b.statuses = []models.TaskStatus{
			{Status: models.TaskProcessing, Progress: 150, Message: "Overshoot"},
			{Status: models.TaskProcessing, Progress: 87.5, Message: "Page 7 of 8"},
			{Status: models.TaskCompleted, Progress: 100, Message: "Done", DownloadURL: "/files/score.pdf"},
		}
		runner, _, output := newTestRunner(t, b)

		if err := run(runner, "download", "https://musescore.com/user/1/scores/2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		for _, want := range []string{"[150.0%] Overshoot", "[ 87.5%] Page 7 of 8", "[100.0%] Done"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("a task error fails the command", func(t *testing.T) {
		b := newBackend()
		b.statuses = []models.TaskStatus{{Status: models.TaskError, Message: "score is private"}}
		runner, _, _ := newTestRunner(t, b)

		err := run(runner, "download", "https://musescore.com/user/1/scores/2")
		if !errors.Is(err, shared.ErrApplication) {
			t.Fatalf("expected ErrApplication, got %v", err)
		}
		if !strings.Contains(err.Error(), "score is private") {
			t.Errorf("expected server message, got %v", err)
		}
	})

	t.Run("requires a url", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "download")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects a non-positive scale", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "download", "--scale", "0", "https://musescore.com/user/1/scores/2")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Fatalf("expected ErrInvalidFlag, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/download"); n != 0 {
			t.Errorf("expected no submission, got %d", n)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get prints JSON from the chosen service", func(t *testing.T) {
		runner, _, output := newTestRunner(t, newBackend())

		if err := run(runner, "api", "get", "--service", "devices", "--pretty=false", "devices"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(output.String(), `[{"id":"d1"`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("get reports non-2xx as an application error", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "api", "get", "/missing")
		if !errors.Is(err, shared.ErrApplication) {
			t.Errorf("expected ErrApplication, got %v", err)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, newBackend())

		err := run(runner, "api", "get", "--service", "weather", "/x")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("post validates the body", func(t *testing.T) {
		runner, srv, _ := newTestRunner(t, newBackend())

		err := run(runner, "api", "post", "--data", "{oops", "/links")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if n := srv.Count(http.MethodPost, "/links"); n != 0 {
			t.Errorf("expected no request, got %d", n)
		}
	})

	t.Run("put sends the body", func(t *testing.T) {
		b := newBackend()
		runner, _, _ := newTestRunner(t, b)

		if err := run(runner, "api", "put", "--data", `{"theme":"dark","buttonSize":100}`, "/settings"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.settings.ButtonSize != 100 {
			t.Errorf("expected settings saved, got %+v", b.settings)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("creates config and database", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := run(runner, "setup", "--config", "config.toml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "homedeck.db"))
	})

	t.Run("rejects an invalid existing config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(path, []byte("[links]\nbase_url = \"not a url\"\n"), 0644)

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		err := run(runner, "setup", "--config", path)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
