package harvest

// NoCaption is used when a table has no <caption> element.
const NoCaption = "No Caption"

// ExtractedTable is a single <table> pulled from a report page.
// Header and row widths are not reconciled at extraction time.
type ExtractedTable struct {
	Caption string     `json:"caption"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReportLink is an anchor found under a species heading on the index page
type ReportLink struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// ReportResult is the outcome of a successful fetch and extraction of one ReportLink
type ReportResult struct {
	Link   ReportLink       `json:"link"`
	URL    string           `json:"url"` // resolved absolute URL
	Tables []ExtractedTable `json:"tables"`
}

// LinkFailure records a report link that could not be fetched or parsed
type LinkFailure struct {
	Species string     `json:"species"`
	Link    ReportLink `json:"link"`
	URL     string     `json:"url"`
	Err     error      `json:"-"`
}

// Message returns the failure message, or "" if none was recorded
func (f LinkFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// SpeciesReports holds the report results for one species, in link order
type SpeciesReports struct {
	Name    string         `json:"name"`
	Reports []ReportResult `json:"reports"`
}

// CrawlResult is the ordered per-species output of a crawl.
// Species appear in the order their headings were encountered.
type CrawlResult struct {
	Species  []*SpeciesReports `json:"species"`
	Failures []LinkFailure     `json:"failures,omitempty"`

	index map[string]*SpeciesReports
}

// NewCrawlResult creates an empty CrawlResult
func NewCrawlResult() *CrawlResult {
	return &CrawlResult{
		Species:  make([]*SpeciesReports, 0),
		Failures: make([]LinkFailure, 0),
		index:    make(map[string]*SpeciesReports),
	}
}

// Ensure returns the entry for the named species, creating it on first use.
// Repeated heading names share one entry.
func (c *CrawlResult) Ensure(name string) *SpeciesReports {
	if c.index == nil {
		c.index = make(map[string]*SpeciesReports)
		for _, sp := range c.Species {
			c.index[sp.Name] = sp
		}
	}
	if sp, ok := c.index[name]; ok {
		return sp
	}
	sp := &SpeciesReports{Name: name, Reports: make([]ReportResult, 0)}
	c.index[name] = sp
	c.Species = append(c.Species, sp)
	return sp
}

// Add appends a report result to the named species
func (c *CrawlResult) Add(species string, result ReportResult) {
	sp := c.Ensure(species)
	sp.Reports = append(sp.Reports, result)
}

// Lookup returns the reports for a species and whether it was found
func (c *CrawlResult) Lookup(name string) ([]ReportResult, bool) {
	for _, sp := range c.Species {
		if sp.Name == name {
			return sp.Reports, true
		}
	}
	return nil, false
}

// AddFailure records a failed link
func (c *CrawlResult) AddFailure(f LinkFailure) {
	c.Failures = append(c.Failures, f)
}

// ReportCount returns the number of successful report results across all species
func (c *CrawlResult) ReportCount() int {
	n := 0
	for _, sp := range c.Species {
		n += len(sp.Reports)
	}
	return n
}
