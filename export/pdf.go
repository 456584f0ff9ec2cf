package export

import (
	"io"
	"strings"

	"github.com/oplog/oplog/logbook"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points, measured from the bottom edge of a Letter page.
const (
	pageHeight   = 792.0
	marginLeft   = 50.0
	titleLeft    = 100.0
	titleY       = 760.0
	firstRowY    = 730.0
	nextPageY    = 750.0
	bottomMargin = 50.0
	rowStep      = 18.0
	wrapStep     = 14.0

	// WrapWidth is the number of characters per printed line.
	WrapWidth = 110
	// ContinuationPrefix starts every wrapped continuation line.
	ContinuationPrefix = "  "
	// CellSeparator joins the non-empty cells of a row.
	CellSeparator = " | "
)

// Line is one printed line at height Y.
type Line struct {
	Y    float64
	Text string
}

// Page is the content of one PDF page. Title is only set on the first page.
type Page struct {
	Title string
	Lines []Line
}

// RowText joins the non-empty cells of a row.
func RowText(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, CellSeparator)
}

// Wrap cuts text into lines of at most width characters. The rest after
// each cut continues on a new line behind ContinuationPrefix, which counts
// toward that line's width.
func Wrap(text string, width int) []string {
	rest := []rune(text)
	prefix := []rune(ContinuationPrefix)
	if width <= len(prefix) {
		return []string{text}
	}
	var out []string
	for len(rest) > width {
		out = append(out, string(rest[:width]))
		rest = append(append([]rune(nil), prefix...), rest[width:]...)
	}
	return append(out, string(rest))
}

// LayoutPDF places the title and table rows on pages. A row's wrapped lines
// follow each other 14pt apart and rows are 18pt apart; when the cursor
// falls below the bottom margin the next line starts a new page. Pages are
// only created when a line needs them.
func LayoutPDF(table logbook.Table, title string) []Page {
	pages := []Page{{Title: title}}
	cur := &pages[0]
	y := firstRowY
	for _, row := range table.Rows {
		lines := Wrap(RowText(row), WrapWidth)
		for i, text := range lines {
			if y < bottomMargin {
				pages = append(pages, Page{})
				cur = &pages[len(pages)-1]
				y = nextPageY
			}
			cur.Lines = append(cur.Lines, Line{Y: y, Text: text})
			if i < len(lines)-1 {
				y -= wrapStep
			}
		}
		y -= rowStep
	}
	return pages
}

// WritePDF renders the layout of table as a Letter-size Helvetica PDF.
func WritePDF(w io.Writer, table logbook.Table, title string) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("oplog", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range LayoutPDF(table, title) {
		pdf.AddPage()
		if page.Title != "" {
			pdf.SetFont("Helvetica", "B", 14)
			pdf.Text(titleLeft, pageHeight-titleY, tr(page.Title))
		}
		pdf.SetFont("Helvetica", "", 9)
		for _, l := range page.Lines {
			pdf.Text(marginLeft, pageHeight-l.Y, tr(l.Text))
		}
	}
	return pdf.Output(w)
}
