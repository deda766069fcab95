// Package tui implements the interactive terminal interface for VIN Insight.
//
// The screen is split into two panes bound together by a host model:
//   - Navigation: the vehicle list (bubbles/list) loaded from a vehicle.Provider
//   - Content: the API key field, details of the selected vehicle, the decode
//     status and the decode result (summary table and raw JSON viewport)
//
// Selecting a vehicle in the navigation pane updates the shared
// vehicle.Selection; the decode session reacts by resetting its state, and
// the content pane re-renders from the session snapshot on the next update.
//
// # Key Bindings
//
//   - ↑/↓ navigate, Enter select, / filter
//   - d decode the selected VIN, t test the API key against the sample VIN
//   - a edit the API key (Enter saves, Esc leaves the field)
//   - r reload the vehicle list, Tab switch pane, q quit
//
// # Thread Safety
//
// Network calls run as tea.Cmd functions and report back with typed
// messages. All model updates occur in the Bubble Tea update goroutine, so
// the session and selection are never touched concurrently. A decode result
// that arrives after the selection changed is discarded by the session.
package tui
