package grid

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Format identifies an export output format
type Format string

const (
	// FormatCSV exports comma-separated values
	FormatCSV Format = "csv"
	// FormatExcel exports a tab-separated file Excel opens natively
	FormatExcel Format = "excel"
	// FormatHTML exports a standalone HTML table
	FormatHTML Format = "html"
	// FormatText exports tab-separated plain text
	FormatText Format = "text"
	// FormatPrint exports a print-ready HTML document
	FormatPrint Format = "print"
)

// Valid reports whether the format is supported
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatExcel, FormatHTML, FormatText, FormatPrint:
		return true
	}
	return false
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.ms-excel"
	case FormatHTML, FormatPrint:
		return "text/html"
	default:
		return "text/plain"
	}
}

// Extension returns the file extension for the format, without the dot
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "xls"
	case FormatHTML, FormatPrint:
		return "html"
	default:
		return "txt"
	}
}

// Export renders the filtered rows and visible columns in the given
// format. The current page and any hidden columns are ignored.
func (g *Grid[T]) Export(format Format, title string) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	g.mu.Lock()
	cols := g.visibleColumnsLocked()
	rows := g.filteredRowsLocked()
	g.mu.Unlock()

	switch format {
	case FormatCSV:
		return renderDelimited(cols, rows, ",", true), nil
	case FormatExcel, FormatText:
		return renderDelimited(cols, rows, "\t", false), nil
	case FormatHTML:
		return renderHTML(cols, rows, title, false), nil
	default:
		return renderHTML(cols, rows, title, true), nil
	}
}

// renderDelimited joins cells with the given separator. CSV wraps string
// cells in double quotes; numeric and other cells stay bare.
func renderDelimited[T any](cols []Column[T], rows []T, sep string, quoteStrings bool) []byte {
	var b strings.Builder

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}
	b.WriteString(strings.Join(headers, sep))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = formatCell(col.Value(row), quoteStrings)
		}
		b.WriteString(strings.Join(cells, sep))
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func formatCell(v interface{}, quoteStrings bool) string {
	switch c := v.(type) {
	case string:
		if quoteStrings {
			return `"` + c + `"`
		}
		return c
	case time.Time:
		s := c.Format(time.RFC3339)
		if quoteStrings {
			return `"` + s + `"`
		}
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func renderHTML[T any](cols []Column[T], rows []T, title string, printable bool) []byte {
	var b strings.Builder

	if title == "" {
		title = "Export"
	}

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: sans-serif; margin: 24px; }\n")
	b.WriteString("table { border-collapse: collapse; width: 100%; }\n")
	b.WriteString("th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }\n")
	b.WriteString("th { background: #f4f4f5; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))

	b.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range cols {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(col.Header))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, col := range cols {
			cell := formatCell(col.Value(row), false)
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")

	if printable {
		b.WriteString("<script>window.onload = function() { window.print(); };</script>\n")
	}
	b.WriteString("</body>\n</html>\n")

	return []byte(b.String())
}
