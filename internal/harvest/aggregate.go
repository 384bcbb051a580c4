package harvest

// TableKey identifies an aggregated table. Category is already sanitized.
type TableKey struct {
	Species  string `json:"species"`
	Category string `json:"category"`
}

// AggregatedTable is every row for one (species, category) pair, merged across report pages
type AggregatedTable struct {
	Species  string     `json:"species"`
	Category string     `json:"category"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
}

// Key returns the table's identity
func (t *AggregatedTable) Key() TableKey {
	return TableKey{Species: t.Species, Category: t.Category}
}

// Append fits each row to the header width and adds it
func (t *AggregatedTable) Append(rows ...[]string) {
	for _, row := range rows {
		t.Rows = append(t.Rows, FitRow(row, len(t.Headers)))
	}
}

// Aggregation holds aggregated tables in the order their categories were first seen
type Aggregation struct {
	tables []*AggregatedTable
	index  map[TableKey]*AggregatedTable
}

// NewAggregation creates an empty Aggregation
func NewAggregation() *Aggregation {
	return &Aggregation{
		tables: make([]*AggregatedTable, 0),
		index:  make(map[TableKey]*AggregatedTable),
	}
}

// Tables returns the aggregated tables in first-seen order
func (a *Aggregation) Tables() []*AggregatedTable {
	return a.tables
}

// Get returns the table for a key, or nil
func (a *Aggregation) Get(key TableKey) *AggregatedTable {
	return a.index[key]
}

// Len returns the number of aggregated tables
func (a *Aggregation) Len() int {
	return len(a.tables)
}

// Aggregate merges a crawl's tables by species and link category.
//
// The category comes from the report link text, not the table caption, so several
// differently captioned tables on one page land in the same bucket. The first table
// seen for a category sets the headers; rows from every table are width-fitted to them.
func Aggregate(result *CrawlResult) *Aggregation {
	agg := NewAggregation()
	if result == nil {
		return agg
	}

	for _, sp := range result.Species {
		for _, report := range sp.Reports {
			key := TableKey{Species: sp.Name, Category: Sanitize(report.Link.Text)}

			for _, tbl := range report.Tables {
				acc, exists := agg.index[key]
				if !exists {
					acc = &AggregatedTable{
						Species:  key.Species,
						Category: key.Category,
						Headers:  append([]string(nil), tbl.Headers...),
						Rows:     make([][]string, 0, len(tbl.Rows)),
					}
					agg.index[key] = acc
					agg.tables = append(agg.tables, acc)
				}
				acc.Append(tbl.Rows...)
			}
		}
	}

	return agg
}

// FitRow returns a copy of row truncated or padded with empty strings to width.
// Cells past the width are dropped, never moved to another column.
func FitRow(row []string, width int) []string {
	fitted := make([]string, width)
	copy(fitted, row)
	return fitted
}
