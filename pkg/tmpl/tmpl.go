// Package tmpl renders user supplied Go templates for CLI output.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// millis formats a Unix millisecond timestamp with the given layout in local time.
func millis(layout string, ms int64) string {
	return time.UnixMilli(ms).Format(layout)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// oneline collapses newlines so multi line bodies fit on a single row.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var funcs = template.FuncMap{
	"join":    strings.Join,
	"upper":   strings.ToUpper,
	"time":    millis,
	"rfc3339": func(ms int64) string { return millis(time.RFC3339, ms) },
	"trunc":   truncate,
	"oneline": oneline,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - join: Join string slice with separator (e.g., join .Args " ")
//   - time: Format Unix milliseconds with a layout (e.g., time "15:04" .Time)
//   - rfc3339: Format Unix milliseconds as RFC 3339
//   - trunc: Truncate to n runes (e.g., trunc 20 .Body)
//   - oneline: Collapse whitespace and newlines to single spaces
//   - upper: Upper-case a string
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
