package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/solana-dashboard/internal/ui/style"
)

// TableColumn is one column's header, width and alignment.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table renders rows under fixed columns with a movable selection bar.
type Table struct {
	columns     []TableColumn
	rows        [][]string
	rowStyles   []lipgloss.Style
	width       int
	selectedRow int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style

	showBorder bool
	selectable bool
}

// NewTable creates an empty table with the default styling.
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
		selectable: true,
	}
}

// SetColumns replaces the column layout.
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = columns
	return t
}

// SetRows replaces all rows, clamping the selection into range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	t.rowStyles = make([]lipgloss.Style, len(rows))
	for i := range t.rowStyles {
		t.rowStyles[i] = t.rowStyle
	}
	if t.selectedRow >= len(rows) {
		t.selectedRow = len(rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetRowStyle overrides the style of one row.
func (t *Table) SetRowStyle(rowIndex int, s lipgloss.Style) *Table {
	if rowIndex >= 0 && rowIndex < len(t.rowStyles) {
		t.rowStyles[rowIndex] = s
	}
	return t
}

// SetWidth sets the total table width used for auto-sized columns.
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// SetSelectable enables or disables the selection bar.
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetShowBorder enables or disables the outer border.
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// MoveUp moves the selection bar up one row.
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves the selection bar down one row.
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// SelectedRow returns the selected row index.
func (t *Table) SelectedRow() int {
	return t.selectedRow
}

// SelectedRowData returns the selected row's cells, nil when empty.
func (t *Table) SelectedRowData() []string {
	if t.selectedRow >= 0 && t.selectedRow < len(t.rows) {
		return t.rows[t.selectedRow]
	}
	return nil
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table.
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}

	t.autoSizeColumns()

	var content strings.Builder

	var headerRow strings.Builder
	for i, col := range t.columns {
		headerRow.WriteString(t.renderCell(col.Header, col.Width, col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			headerRow.WriteString("│")
		}
	}
	content.WriteString(headerRow.String())
	content.WriteString("\n")

	var separator strings.Builder
	for i, col := range t.columns {
		separator.WriteString(strings.Repeat("─", col.Width+cellPadding))
		if i < len(t.columns)-1 {
			separator.WriteString("┼")
		}
	}
	content.WriteString(separator.String())

	for rowIndex, row := range t.rows {
		content.WriteString("\n")

		rowStyle := t.rowStyles[rowIndex]
		if t.selectable && rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		var rowStr strings.Builder
		for i, col := range t.columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowStr.WriteString(t.renderCell(cell, col.Width, col.Align, rowStyle))
			if i < len(t.columns)-1 {
				rowStr.WriteString("│")
			}
		}
		content.WriteString(rowStr.String())
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// cellPadding is the two cells the Padding(0, 1) styles add around cell
// content. lipgloss counts padding inside Width, so the rendered width must
// include it or content filling the column wraps onto a second line.
const cellPadding = 2

func (t *Table) renderCell(content string, width int, align lipgloss.Position, s lipgloss.Style) string {
	runes := []rune(content)
	if len(runes) > width {
		if width > 3 {
			content = string(runes[:width-3]) + "..."
		} else {
			content = string(runes[:width])
		}
	}
	return s.Width(width + cellPadding).Align(align).Render(content)
}

// autoSizeColumns distributes leftover width across columns with no
// explicit width. Column widths budget content; padding and separators are
// overhead on top.
func (t *Table) autoSizeColumns() {
	if t.width <= 0 {
		return
	}

	totalExplicit := 0
	autoCount := 0
	for _, col := range t.columns {
		if col.Width > 0 {
			totalExplicit += col.Width
		} else {
			autoCount++
		}
	}

	available := t.width - totalExplicit - cellPadding*len(t.columns) - (len(t.columns) - 1)
	if autoCount == 0 || available <= 0 {
		return
	}
	autoWidth := available / autoCount
	for i := range t.columns {
		if t.columns[i].Width <= 0 {
			t.columns[i].Width = autoWidth
		}
	}
}
