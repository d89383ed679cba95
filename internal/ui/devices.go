package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/live"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/services"
	"github.com/desertthunder/homedeck/internal/shared"
)

// DevicesScope is the preference scope of the device dashboard.
const DevicesScope = "devices"

// DevicesRemote is the WoL server as seen by the device dashboard.
type DevicesRemote interface {
	collection.Remote[models.Device]
	Wake(ctx context.Context, id string) (services.ActionResult, error)
	Shutdown(ctx context.Context, id string) (services.ActionResult, error)
}

// LiveSource delivers push events until ctx ends or the connection closes.
type LiveSource interface {
	Run(ctx context.Context, sink live.Sink) error
}

// ThemeStore persists the dashboard theme between sessions.
type ThemeStore interface {
	Theme(scope string) models.Theme
	SetTheme(scope string, theme models.Theme) error
}

// confirmation is an action awaiting y/n.
type confirmation struct {
	action string
	id     string
}

// DevicesModel is the device dashboard: a reorderable device list kept current
// by the push channel, with wake and shutdown actions.
type DevicesModel struct {
	ctx     context.Context
	remote  DevicesRemote
	devices *collection.Collection[models.Device]
	rows    *rowsView[models.Device]
	source  LiveSource
	store   ThemeStore
	theme   models.Theme
	palette *Palette
	logger  *log.Logger

	events   chan live.Event
	liveDone chan error
	online   bool

	form    *form
	base    models.Device
	confirm *confirmation

	help     help.Model
	keys     keyMap
	showHelp bool
}

// NewDevicesModel creates the dashboard. source and store may be nil.
func NewDevicesModel(ctx context.Context, remote DevicesRemote, source LiveSource, store ThemeStore, logger *log.Logger) *DevicesModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	theme := models.ThemeLight
	if store != nil {
		theme = store.Theme(DevicesScope)
	}

	b := newBoard[models.Device]()
	m := &DevicesModel{
		ctx:      ctx,
		remote:   remote,
		devices:  collection.New[models.Device]("devices", remote, b, logger),
		source:   source,
		store:    store,
		theme:    theme,
		palette:  paletteFor(theme),
		logger:   shared.WithLogger(logger, "view", "devices"),
		events:   make(chan live.Event),
		liveDone: make(chan error, 1),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.rows = newRowsView(ctx, m.devices, b, m.renderDevice)
	return m
}

// Collection exposes the device collection.
func (m *DevicesModel) Collection() *collection.Collection[models.Device] { return m.devices }

// Init loads devices and subscribes to the push channel.
func (m *DevicesModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rows.board.wait(), m.rows.dispatch("load", collection.LoadCommand{})}
	if m.source != nil {
		m.online = true
		go func() {
			m.liveDone <- m.source.Run(m.ctx, live.ChanSink{Ctx: m.ctx, C: m.events})
		}()
		cmds = append(cmds, m.waitForEvent())
	}
	return tea.Batch(cmds...)
}

func (m *DevicesModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return liveEventMsg(ev)
		case err := <-m.liveDone:
			return liveClosedMsg(err)
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m *DevicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		if m.form != nil || m.confirm != nil {
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

func (m *DevicesModel) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCollectionChanged:
		m.rows.sync()
		return m, m.rows.board.wait()

	case MsgLiveEvent:
		live.Deliver(live.CollectionSink{Devices: m.devices}, msg.data.(live.Event))
		m.rows.sync()
		return m, m.waitForEvent()

	case MsgLiveClosed:
		m.online = false
		if err := errData(msg); err != nil {
			m.logger.Warn("live channel closed", "error", err)
			m.rows.setNote(collection.LevelWarn, "live updates stopped", err)
		}
		return m, nil

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

	case MsgDeviceAction:
		r := msg.data.(actionResult)
		name := r.id
		if d, ok := m.devices.Get(r.id); ok {
			name = d.Name
		}
		if r.err != nil {
			m.logger.Error("device action failed", "action", r.action, "id", r.id, "error", r.err)
			m.rows.setNote(collection.LevelError, fmt.Sprintf("failed to %s %s", r.action, name), r.err)
			return m, nil
		}
		m.rows.setNote(collection.LevelInfo, fmt.Sprintf("%s sent to %s", r.action, name), nil)
		return m, nil
	}
	return m, nil
}

func (m *DevicesModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.handleFormKeys(msg)
	}

	if m.confirm != nil {
		c := *m.confirm
		switch {
		case key.Matches(msg, m.keys.yes):
			m.confirm = nil
			if c.action == "delete" {
				return m, m.rows.dispatch("delete", collection.DeleteCommand{ID: c.id})
			}
			return m, m.action(c.action, c.id)
		case key.Matches(msg, m.keys.no):
			m.confirm = nil
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
		if d, ok := m.rows.selected(); ok {
			m.beginEdit(d.ID)
		}
	case key.Matches(msg, m.keys.remove):
		if d, ok := m.rows.selected(); ok {
			m.confirm = &confirmation{action: "delete", id: d.ID}
		}
	case key.Matches(msg, m.keys.wake):
		if d, ok := m.rows.selected(); ok {
			return m, m.action("wake", d.ID)
		}
	case key.Matches(msg, m.keys.shutdown):
		if d, ok := m.rows.selected(); ok {
			if !d.CanShutdown() {
				m.rows.setNote(collection.LevelWarn, fmt.Sprintf("ssh is not enabled for %s", d.Name), nil)
				return m, nil
			}
			m.confirm = &confirmation{action: "shutdown", id: d.ID}
		}
	case key.Matches(msg, m.keys.reload):
		return m, m.rows.dispatch("load", collection.LoadCommand{})
	case key.Matches(msg, m.keys.theme):
		m.toggleTheme()
	case key.Matches(msg, m.keys.help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// toggleTheme switches the local theme and stores it.
func (m *DevicesModel) toggleTheme() {
	m.theme = m.theme.Toggle()
	m.palette = paletteFor(m.theme)
	m.rows.redraw()
	if m.store == nil {
		return
	}
	if err := m.store.SetTheme(DevicesScope, m.theme); err != nil {
		m.logger.Error("failed to store theme", "error", err)
		m.rows.setNote(collection.LevelError, "failed to store theme", err)
	}
}

// action runs a wake or shutdown request. Actions do not change the collection.
func (m *DevicesModel) action(name, id string) tea.Cmd {
	return func() tea.Msg {
		var (
			res services.ActionResult
			err error
		)
		switch name {
		case "wake":
			res, err = m.remote.Wake(m.ctx, id)
		case "shutdown":
			res, err = m.remote.Shutdown(m.ctx, id)
		default:
			err = fmt.Errorf("%w: %s", shared.ErrInvalidArgument, name)
		}
		if err == nil && !res.OK() {
			err = fmt.Errorf("%w: status %q", shared.ErrApplication, res.Status)
		}
		return deviceActionMsg(name, id, err)
	}
}

func (m *DevicesModel) beginEdit(id string) {
	if err := m.devices.Dispatch(m.ctx, collection.BeginEditCommand{ID: id}); err != nil {
		m.rows.setNote(collection.LevelWarn, "cannot edit", err)
		return
	}

	m.base = models.Device{}.WithDefaults()
	title := "Add device"
	if id != "" {
		m.base, _ = m.devices.Get(id)
		title = "Edit device"
	}
	m.form = newForm(title,
		fieldSpec{label: "Name", value: m.base.Name},
		fieldSpec{label: "MAC", value: m.base.MAC},
		fieldSpec{label: "IP", value: m.base.IP, optional: true},
		fieldSpec{label: "Port", value: strconv.Itoa(m.base.Port)},
		fieldSpec{label: "SSH user", value: m.base.SSH.Username, optional: true},
		fieldSpec{label: "SSH password", value: m.base.SSH.Password, secret: true, optional: true},
	)
}

func (m *DevicesModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, cmd := m.form.Update(msg)
	switch ev {
	case formCancelled:
		_ = m.devices.Dispatch(m.ctx, collection.CancelEditCommand{})
		m.form = nil
		return m, nil
	case formSubmitted:
		device, err := m.formDevice()
		if err == nil {
			err = device.Validate()
		}
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		m.form.busy = true
		return m, m.rows.dispatch("save", collection.SubmitCommand[models.Device]{Item: device})
	}
	return m, cmd
}

// formDevice merges the form values over the device being edited.
func (m *DevicesModel) formDevice() (models.Device, error) {
	d := m.base
	d.Name = m.form.value(0)
	d.MAC = m.form.value(1)
	d.IP = m.form.value(2)

	port, err := strconv.Atoi(m.form.value(3))
	if err != nil || port < 1 || port > 65535 {
		return d, fmt.Errorf("invalid port %q", m.form.value(3))
	}
	d.Port = port

	d.SSH.Username = m.form.value(4)
	d.SSH.Password = m.form.value(5)
	d.SSH.Enabled = d.SSH.Username != ""
	return d.WithDefaults(), nil
}

func (m *DevicesModel) renderDevice(d models.Device) string {
	p := m.palette
	ssh := ""
	if d.CanShutdown() {
		ssh = p.help.Render(" ssh")
	}
	return fmt.Sprintf("%s %s %s %s%s",
		p.text.Render(fit(d.Name, 18)),
		p.status(d.Status),
		p.help.Render(d.MAC),
		p.help.Render(d.IP),
		ssh,
	)
}

// View renders the dashboard.
func (m *DevicesModel) View() string {
	p := m.palette
	if m.form != nil {
		return m.form.View(p) + "\n\n" + m.help.ShortHelpView(m.keys.formKeys())
	}

	state := "offline"
	if m.online {
		state = "live"
	}

	var b strings.Builder
	b.WriteString(p.title.Render(fmt.Sprintf("Devices · %s · %s", state, m.theme)))
	b.WriteString("\n")
	b.WriteString(m.rows.view(p, "No devices yet. Press a to add one."))
	b.WriteString("\n")

	if m.confirm != nil {
		name := m.confirm.id
		if d, ok := m.devices.Get(m.confirm.id); ok {
			name = d.Name
		}
		b.WriteString(p.warn.Render(fmt.Sprintf("%s %q? (y/n)", capitalize(m.confirm.action), name)))
	} else {
		b.WriteString(m.rows.noteView(p))
	}
	b.WriteString("\n\n")

	switch {
	case m.rows.dragging():
		b.WriteString(m.help.ShortHelpView(m.keys.dragKeys()))
	case m.showHelp:
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	default:
		b.WriteString(m.help.ShortHelpView(m.keys.deviceKeys()))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
