package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/pfrederiksen/harvest-reports/internal/harvest"
)

// ExtractTables returns every <table> in the document, in document order.
//
// The first row of each table is the header row whatever its cell types are; every
// later row becomes a data row of th and td cell text. Rows of nested tables belong to
// the nested table only.
func ExtractTables(r io.Reader) ([]harvest.ExtractedTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "parsing HTML")
	}
	return extractTables(doc.Selection), nil
}

// ExtractTablesFromString is ExtractTables for an in-memory page
func ExtractTablesFromString(html string) ([]harvest.ExtractedTable, error) {
	return ExtractTables(strings.NewReader(html))
}

func extractTables(root *goquery.Selection) []harvest.ExtractedTable {
	tables := make([]harvest.ExtractedTable, 0)

	root.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		tables = append(tables, extractTable(tbl))
	})

	return tables
}

func extractTable(tbl *goquery.Selection) harvest.ExtractedTable {
	out := harvest.ExtractedTable{
		Caption: harvest.NoCaption,
		Headers: make([]string, 0),
		Rows:    make([][]string, 0),
	}

	if caption := ownedBy(tbl, tbl.Find("caption")).First(); caption.Length() > 0 {
		out.Caption = strings.TrimSpace(caption.Text())
	}

	rows := ownedBy(tbl, tbl.Find("tr"))
	rows.Each(func(i int, row *goquery.Selection) {
		cells := cellTexts(row)
		if i == 0 {
			out.Headers = cells
			return
		}
		out.Rows = append(out.Rows, cells)
	})

	return out
}

// cellTexts returns the trimmed text of the row's own th and td cells
func cellTexts(row *goquery.Selection) []string {
	cells := make([]string, 0)
	row.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

// ownedBy keeps the elements of sel whose nearest enclosing table is tbl
func ownedBy(tbl, sel *goquery.Selection) *goquery.Selection {
	owner := tbl.Get(0)
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		enclosing := s.Parent().Closest("table")
		return enclosing.Length() > 0 && enclosing.Get(0) == owner
	})
}
