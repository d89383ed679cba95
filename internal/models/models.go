package models

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Item is anything held in an ordered collection. Identifiers are assigned by the server and unique within a collection.
type Item interface {
	ItemID() string
}

// Model defines the base interface for locally persisted models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for local data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

const (
	DefaultGradientAngle = 45
	DefaultButtonSize    = 150
	DefaultSubnet        = "255.255.255.0"
	DefaultWakePort      = 9
	DefaultOSType        = "linux"
)

// ButtonSizes are the link button sizes the link page offers, smallest first.
var ButtonSizes = []int{100, 125, 150, 175, 200}

// Link is one link-tree button. JSON names follow the link-tree backend.
type Link struct {
	ID             string `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string `json:"name" yaml:"name"`
	URL            string `json:"url" yaml:"url"`
	TextColor      string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	BorderColor    string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	FontFamily     string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	UseGradient    bool   `json:"useGradient" yaml:"useGradient"`
	BgColor        string `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	GradientColor1 string `json:"gradientColor1,omitempty" yaml:"gradientColor1,omitempty"`
	GradientColor2 string `json:"gradientColor2,omitempty" yaml:"gradientColor2,omitempty"`
	GradientAngle  int    `json:"gradientAngle,omitempty" yaml:"gradientAngle,omitempty"`
}

func (l Link) ItemID() string { return l.ID }

// WithDefaults fills styling fields the form leaves blank.
func (l Link) WithDefaults() Link {
	if l.TextColor == "" {
		l.TextColor = "#000000"
	}
	if l.BorderColor == "" {
		l.BorderColor = "#000000"
	}
	if l.BgColor == "" {
		l.BgColor = "#ffffff"
	}
	if l.FontFamily == "" {
		l.FontFamily = "Arial"
	}
	if l.GradientAngle == 0 {
		l.GradientAngle = DefaultGradientAngle
	}
	return l
}

// Validate checks the fields the link form requires.
func (l Link) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("link name is required")
	}
	u, err := url.Parse(l.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("link url %q must be absolute", l.URL)
	}
	return nil
}

// Entry templates offered by the older server-rendered link page. Any other
// name is passed through as a CSS button class.
const (
	TemplateDefault = "default"
	TemplateCustom  = "custom"
)

// IconExtensions are the image types the entries service accepts as icons.
var IconExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg"}

// Entry is one button of the server-rendered link page. The server numbers entries
// and keeps them in creation order. Colors only apply to the custom template.
type Entry struct {
	ID                int    `json:"id,omitempty"`
	Title             string `json:"title"`
	URL               string `json:"url"`
	Icon              string `json:"icon,omitempty"`
	Template          string `json:"template,omitempty"`
	CustomColor       string `json:"custom_color,omitempty"`
	CustomBorderColor string `json:"custom_border_color,omitempty"`
	CustomTextColor   string `json:"custom_text_color,omitempty"`

	// IconFile is a local image uploaded with the next save.
	IconFile string `json:"-"`
}

// ItemID is the decimal id, or "" before the server has assigned one.
func (e Entry) ItemID() string {
	if e.ID == 0 {
		return ""
	}
	return strconv.Itoa(e.ID)
}

// WithDefaults fills the template and, for custom entries, the colors the form starts with.
func (e Entry) WithDefaults() Entry {
	if e.Template == "" {
		e.Template = TemplateDefault
	}
	if e.Template == TemplateCustom {
		if e.CustomColor == "" {
			e.CustomColor = "#000000"
		}
		if e.CustomBorderColor == "" {
			e.CustomBorderColor = "#FFFFFF"
		}
		if e.CustomTextColor == "" {
			e.CustomTextColor = "#FFFFFF"
		}
	}
	return e
}

// Validate requires a title and url, and an image extension for a new icon.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.URL) == "" {
		return fmt.Errorf("entry title and url are required")
	}
	if e.IconFile != "" && !slices.Contains(IconExtensions, strings.ToLower(filepath.Ext(e.IconFile))) {
		return fmt.Errorf("icon %q must be one of %s", e.IconFile, strings.Join(IconExtensions, ", "))
	}
	return nil
}

// DeviceStatus is the reachability reported by the WoL service.
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
	StatusUnknown DeviceStatus = "unknown"
)

// SSH holds the shutdown credentials for a device.
type SSH struct {
	Enabled       bool   `json:"enabled"`
	Username      string `json:"username,omitempty"`
	AuthMethod    string `json:"authMethod,omitempty"`
	Password      string `json:"password,omitempty"`
	SSHKey        string `json:"sshKey,omitempty"`
	KeyPassphrase string `json:"keyPassphrase,omitempty"`
}

// Device is a Wake-on-LAN target. JSON names follow the WoL backend.
type Device struct {
	ID     string       `json:"id,omitempty"`
	Name   string       `json:"name"`
	MAC    string       `json:"mac"`
	IP     string       `json:"ip,omitempty"`
	Subnet string       `json:"subnet,omitempty"`
	Port   int          `json:"port,omitempty"`
	OSType string       `json:"os_type,omitempty"`
	Status DeviceStatus `json:"status,omitempty"`
	SSH    SSH          `json:"ssh"`
}

func (d Device) ItemID() string { return d.ID }

// WithDefaults fills the values the WoL form pre-populates.
func (d Device) WithDefaults() Device {
	if d.Subnet == "" {
		d.Subnet = DefaultSubnet
	}
	if d.Port == 0 {
		d.Port = DefaultWakePort
	}
	if d.OSType == "" {
		d.OSType = DefaultOSType
	}
	if d.Status == "" {
		d.Status = StatusUnknown
	}
	if d.SSH.Enabled && d.SSH.AuthMethod == "" {
		d.SSH.AuthMethod = "password"
	}
	return d
}

// Validate checks the name and MAC address, and the IP when present.
func (d Device) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("device name is required")
	}
	if _, err := net.ParseMAC(d.MAC); err != nil {
		return fmt.Errorf("invalid mac address %q", d.MAC)
	}
	if d.IP != "" && net.ParseIP(d.IP) == nil {
		return fmt.Errorf("invalid ip address %q", d.IP)
	}
	return nil
}

// CanShutdown reports whether the shutdown action should be offered.
func (d Device) CanShutdown() bool { return d.SSH.Enabled }

// Theme is a light or dark display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts "light" or "dark" (any case).
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Settings are the link-tree page settings. The server merges partial updates.
type Settings struct {
	Theme      Theme `json:"theme" yaml:"theme"`
	ButtonSize int   `json:"buttonSize" yaml:"buttonSize"`
}

// DefaultSettings mirrors the server's defaults.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeLight, ButtonSize: DefaultButtonSize}
}

// Snapshot is the whole-state export/import document of the link-tree.
type Snapshot struct {
	Links    []Link   `json:"links" yaml:"links"`
	Settings Settings `json:"settings" yaml:"settings"`
}

// TaskState is a download task status string.
type TaskState string

const (
	TaskStarting   TaskState = "starting"
	TaskProcessing TaskState = "processing"
	TaskCompleted  TaskState = "completed"
	TaskError      TaskState = "error"
	TaskNotFound   TaskState = "not_found"
)

// Terminal reports whether polling should stop at this state.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskError || s == TaskNotFound
}

// DownloadRequest is the body of a download submission.
type DownloadRequest struct {
	URL          string  `json:"url"`
	Scale        float64 `json:"scale"`
	SharpenCount int     `json:"sharpen_count"`
}

// TaskStatus is one status poll result. Progress (0-100, possibly fractional) and Message are shown verbatim.
type TaskStatus struct {
	Status      TaskState `json:"status"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	DownloadURL string    `json:"download_url,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Preference is a locally persisted display preference keyed by scope and key, e.g. ("devices", "theme").
type Preference struct {
	PrefID  string
	Scope   string
	Key     string
	Value   string
	Created time.Time
	Updated time.Time
}

func (p *Preference) ID() string           { return p.PrefID }
func (p *Preference) CreatedAt() time.Time { return p.Created }
func (p *Preference) UpdatedAt() time.Time { return p.Updated }

// Validate requires a scope and key.
func (p *Preference) Validate() error {
	if p.Scope == "" || p.Key == "" {
		return fmt.Errorf("preference scope and key are required")
	}
	return nil
}
