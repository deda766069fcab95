package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/vehicle"
)

// Printer provides methods for printing UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(w),
	}
}

// Width returns the width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params []Detail) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	p.Println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Detail) {
	p.Println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintSummary prints the summary rows as a two-column table.
func (p *Printer) PrintSummary(rows []presenter.Row) {
	p.Println(SectionTitleStyle.Render("Summary"))
	p.Println(RenderSummaryTable(rows, p.width))
}

// PrintRaw prints the indented response in a box.
func (p *Printer) PrintRaw(raw string) {
	p.Println(SectionTitleStyle.Render("Raw Decode Data"))
	p.Println(RawBoxStyle(p.width).Render(raw))
}

// RenderSummaryTable renders rows as a Field/Value table. An empty summary
// renders as "No data available".
func RenderSummaryTable(rows []presenter.Row, width int) string {
	if len(rows) == 0 {
		return TroubleshootingItemStyle.Render("No data available")
	}

	t := newTable(width).Headers("Field", "Value")
	for _, r := range rows {
		t.Row(r.Key, r.Value)
	}
	return t.Render()
}

// PrintVehicles prints the vehicle list as a table.
func (p *Printer) PrintVehicles(views []vehicle.View) {
	if len(views) == 0 {
		p.Println(WarningTitleStyle.Render(WarningMarker + " No vehicles available"))
		return
	}

	t := newTable(p.width).Headers("Name", "VIN", "Model", "Year")
	for _, v := range views {
		t.Row(
			presenter.TerminalEscape(v.Name),
			presenter.TerminalEscape(v.VINDisplay()),
			presenter.TerminalEscape(v.Model),
			presenter.TerminalEscape(v.Year),
		)
	}
	p.Println(t.Render())
}

func newTable(width int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col == 0:
				return TableKeyStyle
			default:
				return TableCellStyle
			}
		})
}

// HintLines splits a multi-line troubleshooting hint into its headline and
// the remaining non-empty lines.
func HintLines(hint string) (string, []string) {
	lines := strings.Split(hint, "\n")
	var tips []string
	for _, l := range lines[1:] {
		if l = strings.TrimSpace(l); l != "" {
			tips = append(tips, l)
		}
	}
	return lines[0], tips
}
