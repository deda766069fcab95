// Package ui renders the output of the non-interactive vininsight commands.
//
// Unlike the full-screen TUI, these components follow a "print once and
// exit" pattern: a command header, a summary table, the raw response and a
// success or failure box. Everything is written through a Printer so
// commands can be pointed at any io.Writer in tests.
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("VIN Decode", "vininsight decode", []ui.Detail{{Key: "VIN", Value: vin}})
//	p.PrintSummary(vm.Rows)
//	p.PrintRaw(vm.Raw)
//
// # Logging Integration
//
// zap logging is silent unless VININSIGHT_LOG_LEVEL or --log-level is set,
// so the curated output is displayed cleanly.
package ui
