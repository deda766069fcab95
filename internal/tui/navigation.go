package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/vininsight/internal/presenter"
	"github.com/muurk/vininsight/internal/vehicle"
)

// vehiclesLoadedMsg carries the result of a vehicle list load
type vehiclesLoadedMsg struct {
	vehicles []vehicle.Vehicle
	err      error
}

// vehicleItem wraps a Vehicle for use with bubbles/list
type vehicleItem struct {
	record vehicle.Vehicle
	view   vehicle.View
}

func newVehicleItem(v vehicle.Vehicle) vehicleItem {
	return vehicleItem{record: v, view: v.Normalize()}
}

// FilterValue filters by name, VIN or model
func (i vehicleItem) FilterValue() string {
	return i.view.Name + " " + i.view.VIN + " " + i.view.Model
}

// Title returns the vehicle name for list display
func (i vehicleItem) Title() string {
	return presenter.TerminalEscape(i.view.Name)
}

// Description returns vehicle details for list display
func (i vehicleItem) Description() string {
	return presenter.TerminalEscape(fmt.Sprintf("%s • %s %s", i.view.VINDisplay(), i.view.Year, i.view.Model))
}

// NavigationPane is the left-hand vehicle list.
type NavigationPane struct {
	provider vehicle.Provider

	List    list.Model
	Loading bool
	Err     error

	Width  int
	Height int
}

// NewNavigationPane creates the vehicle list backed by provider.
func NewNavigationPane(provider vehicle.Provider) NavigationPane {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(HighlightColor).BorderForeground(HighlightColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.BorderForeground(HighlightColor)

	l := list.New([]list.Item{}, delegate, MinNavWidth, 10)
	l.Title = "Vehicles"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return NavigationPane{
		provider: provider,
		List:     l,
	}
}

// Load starts a list load. The previous list is replaced when it completes.
func (n NavigationPane) Load(ctx context.Context) (NavigationPane, tea.Cmd) {
	if n.provider == nil {
		n.Err = fmt.Errorf("no vehicle source configured")
		return n, nil
	}
	n.Loading = true
	n.Err = nil
	provider := n.provider
	return n, func() tea.Msg {
		vs, err := provider.Load(ctx)
		return vehiclesLoadedMsg{vehicles: vs, err: err}
	}
}

// SetSize resizes the pane.
func (n NavigationPane) SetSize(width, height int) NavigationPane {
	n.Width = width
	n.Height = height
	n.List.SetSize(width-4, max(height-2, 3))
	return n
}

// Filtering reports whether the list is capturing input for its filter.
func (n NavigationPane) Filtering() bool {
	return n.List.FilterState() == list.Filtering
}

// Selected returns the vehicle under the cursor.
func (n NavigationPane) Selected() (vehicle.Vehicle, bool) {
	item, ok := n.List.SelectedItem().(vehicleItem)
	if !ok {
		return vehicle.Vehicle{}, false
	}
	return item.record, true
}

// Update handles list loads and navigation keys.
func (n NavigationPane) Update(msg tea.Msg) (NavigationPane, tea.Cmd) {
	if loaded, ok := msg.(vehiclesLoadedMsg); ok {
		n.Loading = false
		n.Err = loaded.err
		if loaded.err != nil {
			return n, nil
		}
		items := make([]list.Item, len(loaded.vehicles))
		for i, v := range loaded.vehicles {
			items[i] = newVehicleItem(v)
		}
		return n, n.List.SetItems(items)
	}

	var cmd tea.Cmd
	n.List, cmd = n.List.Update(msg)
	return n, cmd
}

// View renders the pane. spin is shown while loading.
func (n NavigationPane) View(focused bool, spin string) string {
	var b strings.Builder

	switch {
	case n.Loading:
		b.WriteString(RenderTitle("Vehicles"))
		b.WriteString("\n\n")
		b.WriteString(SpinnerStyle.Render(spin + " Loading vehicles..."))

	case n.Err != nil:
		b.WriteString(RenderTitle("Vehicles"))
		b.WriteString("\n\n")
		b.WriteString(RenderError(presenter.TerminalEscape(n.Err.Error())))
		b.WriteString("\n\n")
		b.WriteString(RenderSubtitle("Press r to retry"))

	case len(n.List.Items()) == 0:
		b.WriteString(RenderTitle("Vehicles"))
		b.WriteString("\n\n")
		b.WriteString(WarningStyle.Render("⚠ No vehicles available"))

	default:
		b.WriteString(n.List.View())
	}

	style := PaneStyle(focused).Width(n.Width - 2)
	if n.Height > 0 {
		style = style.Height(n.Height)
	}
	return style.Render(b.String())
}
