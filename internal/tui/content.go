package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/session"
	"github.com/muurk/vininsight/internal/vindecode"
)

const noDataText = "No data available"

// ContentPane shows the API key toolbar, vehicle details and decode results.
type ContentPane struct {
	KeyInput textinput.Model
	Summary  table.Model
	Raw      viewport.Model

	snap   session.Snapshot
	result *presenter.ViewModel

	Width  int
	Height int
}

// NewContentPane creates the content pane with apiKey pre-filled.
func NewContentPane(apiKey string) ContentPane {
	in := textinput.New()
	in.Placeholder = "Enter auto.dev API key"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Width = 24
	in.SetValue(apiKey)

	t := table.New(
		table.WithColumns(summaryColumns(40)),
		table.WithHeight(8),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(PrimaryColor).Bold(true)
	styles.Selected = styles.Selected.Foreground(TextColor).Bold(false)
	t.SetStyles(styles)

	vp := viewport.New(40, 8)
	vp.SetContent(noDataText)

	return ContentPane{
		KeyInput: in,
		Summary:  t,
		Raw:      vp,
	}
}

func summaryColumns(width int) []table.Column {
	value := width - summaryKeyWidth - 4
	if value < 10 {
		value = 10
	}
	return []table.Column{
		{Title: "Field", Width: summaryKeyWidth},
		{Title: "Value", Width: value},
	}
}

// SetSize lays the summary and raw view out side by side.
func (c ContentPane) SetSize(width, height int) ContentPane {
	c.Width = width
	c.Height = height

	half := (width - 6) / 2
	if half < 20 {
		half = 20
	}
	body := height - 14
	if body < 4 {
		body = 4
	}

	c.Summary.SetColumns(summaryColumns(half))
	c.Summary.SetWidth(half)
	c.Summary.SetHeight(body)
	c.Raw.Width = half
	c.Raw.Height = body
	return c
}

// Sync refreshes the pane from a session snapshot.
func (c ContentPane) Sync(snap session.Snapshot) ContentPane {
	c.snap = snap
	if snap.Result == c.result {
		return c
	}
	c.result = snap.Result

	if snap.Result == nil {
		c.Summary.SetRows(nil)
		c.Raw.SetContent(noDataText)
		c.Raw.GotoTop()
		return c
	}

	rows := make([]table.Row, len(snap.Result.Rows))
	for i, r := range snap.Result.Rows {
		rows[i] = table.Row{r.Key, r.Value}
	}
	c.Summary.SetRows(rows)
	c.Summary.GotoTop()
	c.Raw.SetContent(snap.Result.Raw)
	c.Raw.GotoTop()
	return c
}

// Snapshot returns the snapshot last passed to Sync.
func (c ContentPane) Snapshot() session.Snapshot {
	return c.snap
}

// Update scrolls the summary table and raw view.
func (c ContentPane) Update(msg tea.Msg) (ContentPane, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	c.Summary, cmd = c.Summary.Update(msg)
	cmds = append(cmds, cmd)
	c.Raw, cmd = c.Raw.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the pane.
func (c ContentPane) View(focus focusArea, spin string) string {
	var b strings.Builder

	b.WriteString(c.renderToolbar(focus == focusAPIKey))
	b.WriteString("\n\n")
	b.WriteString(c.renderVehicle())
	b.WriteString("\n\n")
	b.WriteString(c.renderStatus(spin))
	b.WriteString("\n\n")
	b.WriteString(c.renderResults())

	style := PaneStyle(focus != focusVehicles).Width(c.Width - 2)
	if c.Height > 0 {
		style = style.Height(c.Height)
	}
	return style.Render(b.String())
}

func (c ContentPane) renderToolbar(editing bool) string {
	label := BlurredInputStyle.Render("API Key:")
	if editing {
		label = FocusedInputStyle.Render("API Key:")
	}
	test := SubtitleStyle.Render("Test VIN: " + vindecode.SampleVIN)
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", c.KeyInput.View(), "   ", test)
}

func (c ContentPane) renderVehicle() string {
	if !c.snap.HasVehicle {
		return RenderTitle("Select a vehicle") + "\n" +
			RenderSubtitle("Choose a vehicle from the left panel to see details")
	}

	v := c.snap.Vehicle
	esc := presenter.TerminalEscape
	lines := []string{
		RenderTitle("Vehicle Information"),
		LabelStyle.Render("Name") + esc(v.Name),
		LabelStyle.Render("VIN") + esc(v.VINDisplay()),
		LabelStyle.Render("Model") + esc(v.Model),
		LabelStyle.Render("Year") + esc(v.Year),
	}
	return strings.Join(lines, "\n")
}

func (c ContentPane) renderStatus(spin string) string {
	if !c.snap.HasVehicle {
		return ""
	}

	label := c.snap.StatusLabel()
	var status string
	switch c.snap.Status {
	case session.Decoding:
		status = SpinnerStyle.Render(spin + " " + label)
	case session.Decoded:
		status = SuccessStyle.Render(label)
	case session.Failed:
		status = ErrorStyle.Render(presenter.TerminalEscape(label))
	default:
		status = BlurredInputStyle.Render(label)
	}

	line := LabelStyle.Render("Status") + status
	if c.snap.CanDecode() {
		line += "   " + FocusedInputStyle.Render("[d] Decode VIN")
	}
	return line
}

func (c ContentPane) renderResults() string {
	summary := noDataText
	if c.result != nil && len(c.result.Rows) > 0 {
		summary = c.Summary.View()
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Summary"),
		summary,
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Raw Decode Data"),
		c.Raw.View(),
	)

	half := lipgloss.NewStyle().Width(c.Raw.Width + 2)
	return lipgloss.JoinHorizontal(lipgloss.Top, half.Render(left), half.Render(right))
}
