package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/session"
	"github.com/muurk/vininsight/internal/vehicle"
)

// focusArea is the part of the screen receiving keys
type focusArea int

const (
	focusVehicles focusArea = iota
	focusAPIKey
	focusResults
)

// Messages for async operations
type decodeDoneMsg struct {
	completion session.Completion
}

type testDoneMsg struct {
	result session.TestResult
}

// Deps are the collaborators the application is wired with.
type Deps struct {
	Provider vehicle.Provider
	Store    config.CredentialStore
	Decoder  session.Decoder
}

// noticeQueue collects blocking notices until the user dismisses them.
type noticeQueue struct {
	items []session.Notice
}

// Notify implements session.Notifier.
func (q *noticeQueue) Notify(n session.Notice) {
	q.items = append(q.items, n)
}

func (q *noticeQueue) current() (session.Notice, bool) {
	if len(q.items) == 0 {
		return session.Notice{}, false
	}
	return q.items[0], true
}

func (q *noticeQueue) dismiss() {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

// AppModel is the host shell. It binds the navigation pane and the content
// pane, and owns the selection and decode session shared by both.
type AppModel struct {
	ctx context.Context

	Selection *vehicle.Selection
	Session   *session.Session
	Store     config.CredentialStore

	Nav     NavigationPane
	Content ContentPane

	notices *noticeQueue
	focus   focusArea
	testing bool
	initCmd tea.Cmd

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model

	// Help
	Help      help.Model
	Keys      appKeyMap
	EditKeys  editKeyMap
	ModalKeys modalKeyMap
}

// NewAppModel wires the application. ctx bounds every background request.
func NewAppModel(ctx context.Context, deps Deps) AppModel {
	notices := &noticeQueue{}
	sel := vehicle.NewSelection()
	sess := session.New(sel, deps.Store, deps.Decoder,
		session.WithNotifier(notices),
		session.WithEscaper(presenter.TerminalEscape),
	)

	saved, err := deps.Store.Load()
	if err != nil {
		logging.Warn("Failed to load saved API key", zap.Error(err))
		notices.Notify(session.Notice{Title: session.TitleError, Message: "Could not read the saved API key."})
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := AppModel{
		ctx:       ctx,
		Selection: sel,
		Session:   sess,
		Store:     deps.Store,
		Nav:       NewNavigationPane(deps.Provider),
		Content:   NewContentPane(saved),
		notices:   notices,
		Spinner:   s,
		Help:      help.New(),
		Keys:      newAppKeyMap(),
		EditKeys:  newEditKeyMap(),
		ModalKeys: newModalKeyMap(),
	}
	m.Nav, m.initCmd = m.Nav.Load(ctx)
	m.Content = m.Content.Sync(sess.Snapshot())
	return m
}

// Init starts the first vehicle list load
func (m AppModel) Init() tea.Cmd {
	if m.initCmd == nil {
		return nil
	}
	return tea.Batch(m.initCmd, m.Spinner.Tick)
}

// Update handles all messages and routes them to the panes
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m, cmd = m.handleKey(msg)

	case vehiclesLoadedMsg:
		if msg.err != nil {
			logging.Warn("Vehicle list load failed", zap.Error(msg.err))
		}
		m.Nav, cmd = m.Nav.Update(msg)

	case decodeDoneMsg:
		m.Session.Complete(msg.completion)

	case testDoneMsg:
		m.testing = false
		m.Session.CompleteTest(msg.result)

	case spinner.TickMsg:
		if m.busy() {
			m.Spinner, cmd = m.Spinner.Update(msg)
		}
	}

	m.Content = m.Content.Sync(m.Session.Snapshot())
	return m, cmd
}

func (m AppModel) busy() bool {
	return m.Nav.Loading || m.testing || m.Session.Status() == session.Decoding
}

func (m AppModel) resize(width, height int) AppModel {
	m.Width = width
	m.Height = height

	navWidth := width / 3
	if navWidth < MinNavWidth {
		navWidth = MinNavWidth
	}
	if navWidth > MaxNavWidth {
		navWidth = MaxNavWidth
	}
	// Header, footer and outer border.
	paneHeight := height - 9
	if paneHeight < 10 {
		paneHeight = 10
	}

	m.Nav = m.Nav.SetSize(navWidth, paneHeight)
	m.Content = m.Content.SetSize(width-navWidth-4, paneHeight)
	return m
}

// handleKey dispatches a key press by focus.
func (m AppModel) handleKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	// Notices are blocking.
	if _, ok := m.notices.current(); ok {
		if key.Matches(msg, m.ModalKeys.Dismiss) {
			m.notices.dismiss()
		}
		return m, nil
	}

	if m.focus == focusAPIKey {
		return m.updateKeyInput(msg)
	}

	if m.focus == focusVehicles && m.Nav.Filtering() {
		var cmd tea.Cmd
		m.Nav, cmd = m.Nav.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Focus):
		if m.focus == focusVehicles {
			m.focus = focusResults
		} else {
			m.focus = focusVehicles
		}
		return m, nil

	case key.Matches(msg, m.Keys.EditKey):
		m.focus = focusAPIKey
		return m, m.Content.KeyInput.Focus()

	case key.Matches(msg, m.Keys.Refresh):
		var cmd tea.Cmd
		m.Nav, cmd = m.Nav.Load(m.ctx)
		if cmd == nil {
			return m, nil
		}
		return m, tea.Batch(cmd, m.Spinner.Tick)

	case key.Matches(msg, m.Keys.Decode):
		return m.startDecode()

	case key.Matches(msg, m.Keys.Test):
		return m.startTest()

	case m.focus == focusVehicles && key.Matches(msg, m.Keys.Select):
		if v, ok := m.Nav.Selected(); ok {
			m.Selection.Select(v)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusVehicles:
		m.Nav, cmd = m.Nav.Update(msg)
	case focusResults:
		m.Content, cmd = m.Content.Update(msg)
	}
	return m, cmd
}

// updateKeyInput edits the API key. Every change is written through to the
// credential store so a decode always uses what the field shows.
func (m AppModel) updateKeyInput(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.EditKeys.Save):
		if m.saveKey() {
			m.notices.Notify(session.Notice{Title: "Success", Message: "API key saved"})
			logging.Info("API key saved")
		}
		return m, nil

	case key.Matches(msg, m.EditKeys.Cancel):
		m.Content.KeyInput.Blur()
		m.focus = focusVehicles
		return m, nil
	}

	before := m.Content.KeyInput.Value()
	var cmd tea.Cmd
	m.Content.KeyInput, cmd = m.Content.KeyInput.Update(msg)
	if m.Content.KeyInput.Value() != before {
		m.saveKey()
	}
	return m, cmd
}

func (m AppModel) saveKey() bool {
	value := strings.TrimSpace(m.Content.KeyInput.Value())
	if err := m.Store.Save(value); err != nil {
		logging.Error("Failed to save API key", zap.Error(err))
		m.notices.Notify(session.Notice{Title: session.TitleError, Message: "Could not save the API key."})
		return false
	}
	return true
}

func (m AppModel) startDecode() (AppModel, tea.Cmd) {
	req, err := m.Session.BeginDecode()
	if err != nil {
		if !errors.Is(err, session.ErrDecodeInProgress) {
			logging.Debug("Decode refused", zap.Error(err))
		}
		return m, nil
	}

	ctx := m.ctx
	return m, tea.Batch(
		func() tea.Msg { return decodeDoneMsg{completion: req.Do(ctx)} },
		m.Spinner.Tick,
	)
}

func (m AppModel) startTest() (AppModel, tea.Cmd) {
	if m.testing {
		return m, nil
	}
	req, err := m.Session.BeginTest()
	if err != nil {
		return m, nil
	}
	m.testing = true

	ctx := m.ctx
	return m, tea.Batch(
		func() tea.Msg { return testDoneMsg{result: req.Do(ctx)} },
		m.Spinner.Tick,
	)
}

// View renders the host shell
func (m AppModel) View() string {
	width, height := m.Width, m.Height
	if width == 0 {
		width = MinTerminalWidth + 28
	}

	if n, ok := m.notices.current(); ok {
		return RenderModal(m.renderNotice(n, width), width, height)
	}

	spin := m.Spinner.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.Nav.View(m.focus == focusVehicles, spin),
		m.Content.View(m.focus, spin),
	)

	var helpText string
	if m.focus == focusAPIKey {
		helpText = m.Help.View(m.EditKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}
	if m.testing {
		helpText = SpinnerStyle.Render(spin+" Testing API connection with sample VIN...") + "  " + helpText
	}

	return RenderApplicationContainer(body, helpText, width, height)
}

func (m AppModel) renderNotice(n session.Notice, width int) string {
	titleStyle := TitleStyle
	switch n.Title {
	case session.TitleError, session.TitleDecodeError, session.TitleTestFailed, session.TitleAPIKeyRequired:
		titleStyle = ErrorStyle
	case session.TitleTestOK, "Success":
		titleStyle = SuccessStyle
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(n.Title),
		"",
		presenter.TerminalEscapeLines(n.Message),
		"",
		m.Help.View(m.ModalKeys),
	)
	return ModalStyle.Width(SafeModalWidth(60, width)).Render(content)
}

// Run starts the full-screen interface and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	model := NewAppModel(ctx, deps)
	defer model.Session.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
