// package formatter converts link-tree snapshots and collections to files and terminal text (JSON, YAML, Markdown, CSV)
package formatter

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// Format is a snapshot export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formats lists every supported export format, default first.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatCSV}

// ParseFormat accepts a format name or common alias. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// DefaultExportName returns homedeck-export-<unix-ms>.<ext>.
func DefaultExportName(now time.Time, f Format) string {
	return fmt.Sprintf("homedeck-export-%d.%s", now.UnixMilli(), f.Ext())
}

// Export renders a snapshot in the given format.
func Export(snap models.Snapshot, f Format) ([]byte, error) {
	if snap.Links == nil {
		snap.Links = []models.Link{}
	}

	switch f {
	case FormatJSON:
		return ExportToJSON(snap)
	case FormatYAML:
		return ExportToYAML(snap)
	case FormatMarkdown:
		return ExportToMarkdown(snap)
	case FormatCSV:
		return ExportToCSV(snap.Links)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// ExportToJSON renders an indented JSON snapshot, the format the server's import accepts.
func ExportToJSON(snap models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToYAML renders the snapshot as YAML using the same field names as JSON.
func ExportToYAML(snap models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a readable link list with the page settings.
func ExportToMarkdown(snap models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Links\n\n")
	fmt.Fprintf(&buf, "**Theme**: %s\n", snap.Settings.Theme)
	fmt.Fprintf(&buf, "**Button size**: %d\n", snap.Settings.ButtonSize)
	fmt.Fprintf(&buf, "**Links**: %d\n\n", len(snap.Links))

	for i, link := range snap.Links {
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, escapeMarkdown(link.Name), link.URL)
	}

	return buf.Bytes(), nil
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// ExportToCSV renders links in display order with columns: Position, ID, Name, URL, TextColor, BorderColor, BgColor, UseGradient
func ExportToCSV(links []models.Link) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Name", "URL", "TextColor", "BorderColor", "BgColor", "UseGradient"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, link := range links {
		record := []string{
			strconv.Itoa(i + 1),
			link.ID,
			link.Name,
			link.URL,
			link.TextColor,
			link.BorderColor,
			link.BgColor,
			strconv.FormatBool(link.UseGradient),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteExport writes the snapshot into dir. An empty name uses [DefaultExportName].
//
// Returns the path written.
func WriteExport(snap models.Snapshot, f Format, dir, name string) (string, error) {
	if name == "" {
		name = DefaultExportName(time.Now(), f)
	}
	if dir == "" {
		dir = "."
	}

	data, err := Export(snap, f)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// ParseSnapshot decodes a JSON or YAML snapshot. name selects the decoder by extension;
// otherwise documents starting with '{' are treated as JSON.
func ParseSnapshot(data []byte, name string) (models.Snapshot, error) {
	var snap models.Snapshot

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return snap, fmt.Errorf("%w: empty snapshot", shared.ErrDecode)
	}

	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		err = json.Unmarshal(trimmed, &snap)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(trimmed, &snap)
	case ".md", ".csv":
		return snap, fmt.Errorf("%w: %s snapshots cannot be imported", shared.ErrInvalidArgument, filepath.Ext(name))
	default:
		if trimmed[0] == '{' {
			err = json.Unmarshal(trimmed, &snap)
		} else {
			err = yaml.Unmarshal(trimmed, &snap)
		}
	}
	if err != nil {
		return snap, fmt.Errorf("%w: invalid snapshot: %w", shared.ErrDecode, err)
	}

	if snap.Links == nil {
		snap.Links = []models.Link{}
	}
	for i, link := range snap.Links {
		if err := link.Validate(); err != nil {
			return snap, fmt.Errorf("%w: link %d: %w", shared.ErrDecode, i+1, err)
		}
	}
	return snap, nil
}

// ReadSnapshot reads and parses a snapshot file.
func ReadSnapshot(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return ParseSnapshot(data, path)
}

// LinksTable renders links as aligned columns for terminal output.
func LinksTable(links []models.Link) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tURL")
	for i, link := range links {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, link.ID, link.Name, link.URL)
	}
	w.Flush()
	return buf.String()
}

// EntriesTable renders link page entries; ICON is "-" when none was uploaded.
func EntriesTable(entries []models.Entry) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tURL\tTEMPLATE\tICON")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n", i+1, e.ID, e.Title, e.URL, e.Template, cmp.Or(e.Icon, "-"))
	}
	w.Flush()
	return buf.String()
}

// DevicesTable renders devices as aligned columns for terminal output.
func DevicesTable(devices []models.Device) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tMAC\tIP\tSTATUS\tSSH")
	for i, d := range devices {
		ssh := "-"
		if d.CanShutdown() {
			ssh = cmp.Or(d.SSH.Username, "yes")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, d.ID, d.Name, d.MAC, d.IP, statusOrUnknown(d.Status), ssh)
	}
	w.Flush()
	return buf.String()
}

func statusOrUnknown(s models.DeviceStatus) models.DeviceStatus {
	if s == "" {
		return models.StatusUnknown
	}
	return s
}
