// Package presenter turns a decode payload into a display-ready view-model:
// a summary of the top-level scalar fields and an indented rendering of the
// whole response. All functions are pure.
package presenter

import (
	"bytes"
	"encoding/json"
	"html"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/muurk/vininsight/internal/vindecode"
)

// Row is one summary entry.
type Row struct {
	Key   string
	Value string
}

// ViewModel is everything a renderer needs to show a decode result.
type ViewModel struct {
	Rows []Row
	Raw  string
}

// Escaper makes text safe for a particular rendering surface.
type Escaper func(string) string

// HTMLEscape escapes text for embedding in HTML.
func HTMLEscape(s string) string {
	return html.EscapeString(s)
}

// TerminalEscape removes escape sequences and control characters so text
// cannot move the cursor or restyle the terminal. Newlines and tabs become spaces.
func TerminalEscape(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// TerminalEscapeLines is TerminalEscape applied line by line, so multi-line
// messages keep their layout.
func TerminalEscapeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = TerminalEscape(line)
	}
	return strings.Join(lines, "\n")
}

// Build summarizes p and pretty-prints it.
func Build(p *vindecode.Payload, esc Escaper) ViewModel {
	return ViewModel{
		Rows: Summarize(p, esc),
		Raw:  PrettyPrint(p),
	}
}

// Summarize returns the top-level scalar fields of p in response order.
// Null values, empty strings, objects and arrays are left out. Strings are
// unquoted, numbers keep their literal text and booleans read "true"/"false".
// Keys and values pass through esc; a nil esc leaves them unchanged.
func Summarize(p *vindecode.Payload, esc Escaper) []Row {
	if esc == nil {
		esc = func(s string) string { return s }
	}

	rows := []Row{}
	for _, f := range p.Fields() {
		value, ok := scalarText(f.Value)
		if !ok {
			continue
		}
		rows = append(rows, Row{Key: esc(f.Name), Value: esc(value)})
	}
	return rows
}

// scalarText renders a raw JSON scalar. It reports false for values that
// are not shown in the summary.
func scalarText(raw json.RawMessage) (string, bool) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return "", false
	}
	switch v[0] {
	case '{', '[', 'n':
		return "", false
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	default:
		// Numbers and true/false are shown as written.
		return string(v), true
	}
}

// PrettyPrint renders the whole payload with two-space indentation.
// <, > and & are written as \u escapes, so the output is safe to embed in
// HTML and still parses to the same value. An empty payload gives "{}".
func PrettyPrint(p *vindecode.Payload) string {
	raw := p.Raw()

	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		// Raw holds validated JSON; this only guards a hand-built payload.
		return "{}"
	}

	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, indented.Bytes())
	return escaped.String()
}

// RenderHTML renders p as an HTML fragment: a summary table followed by the
// indented response in a <pre> block. All payload text is escaped.
func RenderHTML(p *vindecode.Payload) string {
	vm := Build(p, HTMLEscape)

	var b strings.Builder
	b.WriteString("<table class=\"vin-summary\">\n")
	b.WriteString("  <tr><th>Field</th><th>Value</th></tr>\n")
	for _, r := range vm.Rows {
		b.WriteString("  <tr><td>" + r.Key + "</td><td>" + r.Value + "</td></tr>\n")
	}
	b.WriteString("</table>\n")
	b.WriteString("<pre class=\"vin-raw\">" + vm.Raw + "</pre>\n")
	return b.String()
}
