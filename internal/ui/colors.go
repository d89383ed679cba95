package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/models"
)

var (
	lightStyles = NewPalette("#7D56F4", "#04B575", "#D70000", "#C76E00", "#626262", "#1A1A1A")
	darkStyles  = NewPalette("#B9A3FF", "#3EE6A0", "#FF5F5F", "#FFB454", "#8A8A8A", "#E4E4E4")
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

var _ Painter = (*Palette)(nil)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	text     lipgloss.Style
	cursor   lipgloss.Style
	dragging lipgloss.Style
}

func NewPalette(t, s, e, w, h, fg string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		text:     NewStyle(fg),
		cursor:   NewBold(t),
		dragging: NewBold(w).Reverse(true),
	}
}

// paletteFor returns the palette of a theme.
func paletteFor(theme models.Theme) *Palette {
	if theme == models.ThemeDark {
		return darkStyles
	}
	return lightStyles
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// status colors a device status.
func (p *Palette) status(s models.DeviceStatus) string {
	switch s {
	case models.StatusOnline:
		return p.ok.Render("● online")
	case models.StatusOffline:
		return p.err.Render("○ offline")
	default:
		return p.help.Render("? unknown")
	}
}

// note styles a notification by level.
func (p *Palette) note(n collection.Notification) string {
	switch n.Level {
	case collection.LevelError:
		return p.err.Render(n.String())
	case collection.LevelWarn:
		return p.warn.Render(n.String())
	default:
		return p.ok.Render(n.String())
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
