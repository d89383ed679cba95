package ui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// LinksRemote is the link-tree server as seen by the links board.
type LinksRemote interface {
	collection.Remote[models.Link]
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error)
}

// LinksModel is the links board: a reorderable list of links with add, edit,
// delete, theme and size controls.
type LinksModel struct {
	ctx      context.Context
	remote   LinksRemote
	links    *collection.Collection[models.Link]
	rows     *rowsView[models.Link]
	settings models.Settings
	palette  *Palette
	logger   *log.Logger

	form    *form
	base    models.Link
	confirm string

	// open launches a URL; replaced in tests.
	open func(string) error

	help     help.Model
	keys     keyMap
	showHelp bool
	width    int
}

// NewLinksModel creates the links board over remote.
func NewLinksModel(ctx context.Context, remote LinksRemote, logger *log.Logger) *LinksModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := newBoard[models.Link]()
	m := &LinksModel{
		ctx:      ctx,
		remote:   remote,
		links:    collection.New[models.Link]("links", remote, b, logger),
		settings: models.DefaultSettings(),
		palette:  paletteFor(models.ThemeLight),
		logger:   shared.WithLogger(logger, "view", "links"),
		open:     shared.OpenURL,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.rows = newRowsView(ctx, m.links, b, m.renderLink)
	return m
}

// Collection exposes the links collection.
func (m *LinksModel) Collection() *collection.Collection[models.Link] { return m.links }

// Init loads links and settings.
func (m *LinksModel) Init() tea.Cmd {
	return tea.Batch(
		m.rows.board.wait(),
		m.rows.dispatch("load", collection.LoadCommand{}),
		m.loadSettings(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *LinksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		if m.form != nil || m.confirm != "" {
			return m, nil
		}
		return m, m.rows.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *LinksModel) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCollectionChanged:
		m.rows.sync()
		return m, m.rows.board.wait()

	case MsgSaved:
		r := msg.data.(savedResult)
		if r.action == "save" && m.form != nil {
			m.form.busy = false
			if r.err != nil {
				m.form.err = r.err.Error()
			} else {
				m.form = nil
			}
		}
		m.rows.savedNote(r)
		return m, nil

	case MsgSettingsLoaded:
		r := msg.data.(settingsResult)
		if r.err != nil {
			m.logger.Warn("failed to load settings", "error", r.err)
			m.rows.setNote(collection.LevelWarn, "failed to load settings", r.err)
			return m, nil
		}
		m.settings = r.settings
		m.applyTheme()
		return m, nil

	case MsgSettingsSaved:
		r := msg.data.(settingsResult)
		if r.err != nil {
			m.logger.Error("failed to save settings", "error", r.err)
			m.rows.setNote(collection.LevelError, "failed to save settings", r.err)
			return m, nil
		}
		m.logger.Info("settings saved", "theme", r.settings.Theme, "button_size", r.settings.ButtonSize)
		return m, nil
	}
	return m, nil
}

func (m *LinksModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.handleFormKeys(msg)
	}

	if m.confirm != "" {
		id := m.confirm
		switch {
		case key.Matches(msg, m.keys.yes):
			m.confirm = ""
			return m, m.rows.dispatch("delete", collection.DeleteCommand{ID: id})
		case key.Matches(msg, m.keys.no):
			m.confirm = ""
		}
		return m, nil
	}

	if m.rows.dragging() {
		switch {
		case key.Matches(msg, m.keys.up):
			m.rows.handleDragKey(-1)
		case key.Matches(msg, m.keys.down):
			m.rows.handleDragKey(1)
		case key.Matches(msg, m.keys.grab), key.Matches(msg, m.keys.submit):
			return m, m.rows.drop()
		case key.Matches(msg, m.keys.back):
			m.rows.cancelDrag()
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.rows.move(-1)
	case key.Matches(msg, m.keys.down):
		m.rows.move(1)
	case key.Matches(msg, m.keys.grab):
		m.rows.grab()
	case key.Matches(msg, m.keys.add):
		m.beginEdit("")
	case key.Matches(msg, m.keys.edit):
		if link, ok := m.rows.selected(); ok {
			m.beginEdit(link.ID)
		}
	case key.Matches(msg, m.keys.remove):
		if link, ok := m.rows.selected(); ok {
			m.confirm = link.ID
		}
	case key.Matches(msg, m.keys.open):
		if link, ok := m.rows.selected(); ok {
			if err := m.open(link.URL); err != nil {
				m.rows.setNote(collection.LevelError, "failed to open link", err)
			}
		}
	case key.Matches(msg, m.keys.reload):
		return m, tea.Batch(m.rows.dispatch("load", collection.LoadCommand{}), m.loadSettings())
	case key.Matches(msg, m.keys.theme):
		m.settings.Theme = m.settings.Theme.Toggle()
		m.applyTheme()
		return m, m.saveSettings()
	case key.Matches(msg, m.keys.bigger):
		return m, m.resize(1)
	case key.Matches(msg, m.keys.smaller):
		return m, m.resize(-1)
	case key.Matches(msg, m.keys.help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *LinksModel) beginEdit(id string) {
	if err := m.links.Dispatch(m.ctx, collection.BeginEditCommand{ID: id}); err != nil {
		m.rows.setNote(collection.LevelWarn, "cannot edit", err)
		return
	}

	m.base = models.Link{}
	title := "Add link"
	if id != "" {
		m.base, _ = m.links.Get(id)
		title = "Edit link"
	}
	m.form = newForm(title,
		fieldSpec{label: "Name", value: m.base.Name},
		fieldSpec{label: "URL", value: m.base.URL},
		fieldSpec{label: "Text color", value: m.base.TextColor, optional: true},
		fieldSpec{label: "Background", value: m.base.BgColor, optional: true},
		fieldSpec{label: "Border color", value: m.base.BorderColor, optional: true},
	)
}

func (m *LinksModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, cmd := m.form.Update(msg)
	switch ev {
	case formCancelled:
		_ = m.links.Dispatch(m.ctx, collection.CancelEditCommand{})
		m.form = nil
		return m, nil
	case formSubmitted:
		link := m.formLink()
		if err := link.Validate(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		m.form.busy = true
		return m, m.rows.dispatch("save", collection.SubmitCommand[models.Link]{Item: link})
	}
	return m, cmd
}

// formLink merges the form values over the link being edited.
func (m *LinksModel) formLink() models.Link {
	link := m.base
	link.Name = m.form.value(0)
	link.URL = m.form.value(1)
	link.TextColor = m.form.value(2)
	link.BgColor = m.form.value(3)
	link.BorderColor = m.form.value(4)
	return link.WithDefaults()
}

// resize steps the button size through [models.ButtonSizes].
func (m *LinksModel) resize(step int) tea.Cmd {
	i := slices.Index(models.ButtonSizes, m.settings.ButtonSize)
	if i < 0 {
		i = slices.Index(models.ButtonSizes, models.DefaultButtonSize)
	}
	next := max(0, min(i+step, len(models.ButtonSizes)-1))
	if models.ButtonSizes[next] == m.settings.ButtonSize {
		return nil
	}
	m.settings.ButtonSize = models.ButtonSizes[next]
	m.rows.redraw()
	return m.saveSettings()
}

func (m *LinksModel) applyTheme() {
	m.palette = paletteFor(m.settings.Theme)
	m.rows.redraw()
}

func (m *LinksModel) loadSettings() tea.Cmd {
	return func() tea.Msg {
		s, err := m.remote.Settings(m.ctx)
		return settingsLoadedMsg(s, err)
	}
}

// saveSettings sends the local settings; the local value is kept on failure.
func (m *LinksModel) saveSettings() tea.Cmd {
	settings := m.settings
	return func() tea.Msg {
		s, err := m.remote.SaveSettings(m.ctx, settings)
		return settingsSavedMsg(s, err)
	}
}

// nameWidth scales the name column with the button size.
func (m *LinksModel) nameWidth() int {
	return max(8, m.settings.ButtonSize/6)
}

func (m *LinksModel) renderLink(l models.Link) string {
	p := m.palette
	swatch := p.As("■", lipgloss.Color(l.BgColor))
	if l.UseGradient {
		swatch = p.As("■", lipgloss.Color(l.GradientColor1)) + p.As("■", lipgloss.Color(l.GradientColor2))
	} else {
		swatch += " "
	}
	w := m.nameWidth()
	return fmt.Sprintf("%s %s %s", swatch, p.text.Render(fit(l.Name, w)), p.help.Render(l.URL))
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w-1]) + "…"
	}
	return s + strings.Repeat(" ", w-len(r))
}

// View renders the board.
func (m *LinksModel) View() string {
	p := m.palette
	if m.form != nil {
		return m.form.View(p) + "\n\n" + m.help.ShortHelpView(m.keys.formKeys())
	}

	var b strings.Builder
	b.WriteString(p.title.Render(fmt.Sprintf("Links · %s · size %d", m.settings.Theme, m.settings.ButtonSize)))
	b.WriteString("\n")
	b.WriteString(m.rows.view(p, "No links yet. Press a to add one."))
	b.WriteString("\n")

	switch {
	case m.confirm != "":
		name := m.confirm
		if link, ok := m.links.Get(m.confirm); ok {
			name = link.Name
		}
		b.WriteString(p.warn.Render(fmt.Sprintf("Delete %q? (y/n)", name)))
	default:
		b.WriteString(m.rows.noteView(p))
	}
	b.WriteString("\n\n")

	switch {
	case m.rows.dragging():
		b.WriteString(m.help.ShortHelpView(m.keys.dragKeys()))
	case m.showHelp:
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	default:
		b.WriteString(m.help.ShortHelpView(m.keys.linkKeys()))
	}
	return b.String()
}
