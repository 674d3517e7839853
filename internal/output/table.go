package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a static table rendered with aligned, padded columns.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// dividers holds row indexes that are preceded by a divider line.
	dividers map[int]bool
}

func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers, dividers: map[int]bool{}}
}

func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// AddDivider separates the rows added so far from the next one.
func (t *Table) AddDivider() {
	if len(t.Rows) > 0 {
		t.dividers[len(t.Rows)] = true
	}
}

func (t *Table) View(styles Styles) string {
	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range colWidths {
		colWidths[i] += 2
	}
	totalWidth := len(colWidths) - 1
	for _, w := range colWidths {
		totalWidth += w
	}

	headerStyle := styles.Header.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("|")
	divider := styles.Muted.Render(strings.Repeat("-", totalWidth))

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	t.writeLine(&sb, t.Headers, colWidths, headerStyle, sep)
	sb.WriteString(divider + "\n")
	for idx, row := range t.Rows {
		if t.dividers[idx] {
			sb.WriteString(styles.Muted.Render(strings.Repeat("·", totalWidth)) + "\n")
		}
		t.writeLine(&sb, row, colWidths, rowStyle, sep)
	}
	return sb.String()
}

func (t *Table) writeLine(sb *strings.Builder, cells []string, widths []int, style lipgloss.Style, sep string) {
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(style.Width(widths[i]).Render(cell))
		if i < len(widths)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")
}
