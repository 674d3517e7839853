// Package output renders command results as styled tables, panels, JSON or
// CSV.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q (expected table, json or csv)", raw)
}

// Output is the per-command sink for user-facing results and messages.
type Output struct {
	Out    io.Writer
	Err    io.Writer
	Format Format

	styles    Styles
	errStyles Styles
}

func New(out, errw io.Writer, format Format) *Output {
	if format == "" {
		format = FormatTable
	}
	return &Output{
		Out:       out,
		Err:       errw,
		Format:    format,
		styles:    newStyles(lipgloss.NewRenderer(out)),
		errStyles: newStyles(lipgloss.NewRenderer(errw)),
	}
}

func (o *Output) Styles() Styles { return o.styles }

func (o *Output) Println(a ...any) {
	_, _ = fmt.Fprintln(o.Out, a...)
}

func (o *Output) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.Out, format, a...)
}

// message writes a status line. In json and csv mode status lines go to the
// error stream so that Out carries only data.
func (o *Output) message(render func(Styles) string) {
	if o.Format == FormatTable {
		o.Println(render(o.styles))
		return
	}
	_, _ = fmt.Fprintln(o.Err, render(o.errStyles))
}

func (o *Output) Success(format string, a ...any) {
	o.message(func(s Styles) string { return s.Success.Render("✓ " + fmt.Sprintf(format, a...)) })
}

func (o *Output) Warning(format string, a ...any) {
	o.message(func(s Styles) string { return s.Warning.Render("⚠ " + fmt.Sprintf(format, a...)) })
}

func (o *Output) Info(format string, a ...any) {
	o.message(func(s Styles) string { return s.Info.Render("ℹ") + " " + fmt.Sprintf(format, a...) })
}

func (o *Output) Muted(format string, a ...any) {
	o.message(func(s Styles) string { return s.Muted.Render(fmt.Sprintf(format, a...)) })
}

func (o *Output) Heading(text string) {
	o.Println(o.styles.Title.Render(text))
}

// Error writes an error panel to the error stream.
func (o *Output) Error(title, message string, details ...string) {
	body := message
	if len(details) > 0 {
		body += "\n" + o.errStyles.Muted.Render(strings.Join(details, "\n"))
	}
	panel := o.errStyles.Panel.BorderForeground(colorError).Render(body)
	_, _ = fmt.Fprintln(o.Err, o.errStyles.Error.Render("✗ "+title))
	_, _ = fmt.Fprintln(o.Err, panel)
}

// Field is one label/value line of a panel.
type Field struct {
	Label string
	Value string
}

func F(label string, value any) Field {
	return Field{Label: label, Value: fmt.Sprint(value)}
}

// ResultPanel prints a titled panel of label/value lines.
func (o *Output) ResultPanel(title string, fields ...Field) {
	o.panel(title, colorSuccess, fields)
}

func (o *Output) InfoPanel(title string, fields ...Field) {
	o.panel(title, colorInfo, fields)
}

func (o *Output) panel(title string, border lipgloss.Color, fields []Field) {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, o.styles.Label.Render(f.Label+":")+" "+o.styles.Value.Render(f.Value))
	}
	o.Println(o.styles.Title.Render(title))
	o.Println(o.styles.Panel.BorderForeground(border).Render(strings.Join(lines, "\n")))
}

func (o *Output) Table(t *Table) {
	_, _ = io.WriteString(o.Out, t.View(o.styles))
}

func (o *Output) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.Out, string(data))
	return err
}

// Status colors ENABLED/ACTIVE/RUNNING green and PAUSED yellow in tables.
func (o *Output) Status(value string) string {
	switch value {
	case "ENABLED", "ACTIVE", "RUNNING":
		return o.styles.Success.Render(value)
	case "PAUSED":
		return o.styles.Warning.Render(value)
	case "NOT_RUNNING":
		return o.styles.Muted.Render(value)
	case "":
		return "-"
	}
	return value
}

// Column names a record key and its table header.
type Column struct {
	Key   string
	Label string
}

// Columns builds columns whose labels are derived from the keys
// ("serving_status" becomes "Serving Status") unless overridden.
func Columns(keys []string, labels map[string]string) []Column {
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		label, ok := labels[k]
		if !ok {
			label = titleKey(k)
		}
		cols = append(cols, Column{Key: k, Label: label})
	}
	return cols
}

func titleKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Data writes records in the selected format: a table, a JSON array of the
// records, or CSV with the column keys as header.
func (o *Output) Data(title string, cols []Column, records []Record) error {
	switch o.Format {
	case FormatJSON:
		if records == nil {
			records = []Record{}
		}
		return o.JSON(records)
	case FormatCSV:
		return WriteCSV(o.Out, cols, records)
	}
	headers := make([]string, 0, len(cols))
	for _, c := range cols {
		headers = append(headers, c.Label)
	}
	t := NewTable(title, headers...)
	for _, r := range records {
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, o.cell(c.Key, r[c.Key]))
		}
		t.AddRow(cells...)
	}
	o.Table(t)
	return nil
}

func (o *Output) cell(key string, v any) string {
	if s, ok := v.(string); ok && (key == "status" || key == "serving_status") {
		return o.Status(s)
	}
	return Cell(v)
}
