// Package vehicle models the browsable vehicle list and the current selection.
//
// A Provider loads the list, either from an Ext-style tree endpoint over
// HTTP or from a local YAML/JSON file. The Selection tracks which record the
// user picked and notifies subscribers synchronously, in subscription order,
// every time a record is selected, even when the same record is selected
// again.
//
// # Normalization
//
// Missing fields are shown with defaults:
//   - Name, Model, Year: "Unknown"
//   - VIN: "" (displayed as "Not specified")
//
// A record whose VIN is blank after trimming cannot be decoded.
//
// # Thread Safety
//
// Selection is driven from the UI event loop and is not safe for concurrent
// use.
package vehicle
