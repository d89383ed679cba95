package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/desertthunder/homedeck/internal/tasks"
)

// DownloadModel submits a score download and follows its progress.
type DownloadModel struct {
	ctx     context.Context
	poller  *tasks.Poller
	resolve func(string) (string, error)
	logger  *log.Logger

	form     *form
	updates  chan tasks.ProgressUpdate
	last     tasks.ProgressUpdate
	snap     tasks.Snapshot
	link     string
	err      error
	bar      progress.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	defaults models.DownloadRequest
}

// NewDownloadModel creates the download view. resolve turns a server download path
// into an absolute URL and may be nil.
func NewDownloadModel(ctx context.Context, poller *tasks.Poller, resolve func(string) (string, error), defaults models.DownloadRequest, logger *log.Logger) *DownloadModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if resolve == nil {
		resolve = func(s string) (string, error) { return s, nil }
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &DownloadModel{
		ctx:     ctx,
		poller:  poller,
		resolve: resolve,
		logger:  shared.WithLogger(logger, "view", "download"),
		form: newForm("Download score",
			fieldSpec{label: "Score URL", value: defaults.URL},
			fieldSpec{label: "Scale", value: strconv.FormatFloat(defaults.Scale, 'f', -1, 64)},
			fieldSpec{label: "Sharpen passes", value: strconv.Itoa(defaults.SharpenCount)},
		),
		updates:  make(chan tasks.ProgressUpdate, 16),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		defaults: defaults,
	}
}

// Init starts listening for progress.
func (m *DownloadModel) Init() tea.Cmd {
	return tea.Batch(m.waitForProgress(), m.spinner.Tick)
}

func (m *DownloadModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-m.updates:
			return progressUpdateMsg(u)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m *DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(msg.Width-4, 72))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.apply(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgSubmitted:
			if err := errData(msg); err != nil {
				m.err = err
				m.logger.Error("submission failed", "error", err)
			}
			m.snap = m.poller.Snapshot()
			return m, nil
		}
	}
	return m, nil
}

func (m *DownloadModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m, m.submit()
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

// submit starts a download when the trigger is enabled.
func (m *DownloadModel) submit() tea.Cmd {
	if !m.poller.TriggerEnabled() {
		return nil
	}

	req, err := m.request()
	if err != nil {
		m.form.err = err.Error()
		return nil
	}
	m.form.err = ""
	m.err = nil
	m.link = ""
	m.last = tasks.ProgressUpdate{}

	return func() tea.Msg {
		return submittedMsg(m.poller.Submit(m.ctx, req, m.updates))
	}
}

// request reads the form. Blank numeric fields fall back to the configured defaults.
func (m *DownloadModel) request() (models.DownloadRequest, error) {
	req := models.DownloadRequest{URL: m.form.value(0), Scale: m.defaults.Scale, SharpenCount: m.defaults.SharpenCount}
	if req.URL == "" {
		return req, fmt.Errorf("%w: score URL", shared.ErrMissingArgument)
	}
	if v := m.form.value(1); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return req, fmt.Errorf("%w: scale %q", shared.ErrInvalidArgument, v)
		}
		req.Scale = scale
	}
	if v := m.form.value(2); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("%w: sharpen passes %q", shared.ErrInvalidArgument, v)
		}
		req.SharpenCount = n
	}
	return req, nil
}

func (m *DownloadModel) apply(u tasks.ProgressUpdate) {
	m.last = u
	m.snap = m.poller.Snapshot()
	if s, ok := u.Data.(tasks.Snapshot); ok {
		m.snap = s
	}

	switch u.Phase {
	case tasks.Complete:
		link, err := m.resolve(m.snap.DownloadURL)
		if err != nil {
			m.err = err
			return
		}
		m.link = link
		m.logger.Info("download ready", "url", link)
	case tasks.Fail:
		m.err = m.snap.Err
		if m.err == nil {
			m.err = fmt.Errorf("%w: %s", shared.ErrApplication, u.Message)
		}
	}
}

// ratio feeds the bar; the bar itself limits what it draws to [0, 1].
func (m *DownloadModel) ratio() float64 {
	return m.last.Percent / 100
}

// View renders the form, progress and result.
func (m *DownloadModel) View() string {
	p := lightStyles

	var b strings.Builder
	b.WriteString(m.form.View(p))
	b.WriteString("\n\n")

	switch m.snap.State {
	case tasks.Submitted, tasks.Polling:
		b.WriteString(m.spinner.View() + " " + m.snap.State.String() + "\n")
		b.WriteString(m.bar.ViewAs(m.ratio()) + "\n")
		b.WriteString(p.help.Render(m.last.Message))
	case tasks.Completed:
		b.WriteString(m.bar.ViewAs(1) + "\n")
		b.WriteString(p.ok.Render("✓ "+m.last.Message) + "\n")
		b.WriteString(p.text.Render(m.link))
	case tasks.Errored:
		err := m.err
		if err == nil {
			err = m.snap.Err
		}
		b.WriteString(p.err.Render(fmt.Sprintf("✗ %v", err)))
	default:
		if m.err != nil {
			b.WriteString(p.err.Render(fmt.Sprintf("✗ %v", m.err)))
		}
	}
	b.WriteString("\n\n")

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download"))
	if !m.poller.TriggerEnabled() {
		submit.SetEnabled(false)
	}
	quit := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.next, submit, quit}))
	return b.String()
}
