// Package harvest provides the data model for scraped hunting-harvest reports.
//
// The harvest package defines the tables extracted from report pages, the per-species
// crawl results that group them, and the aggregation step that merges every table for a
// (species, category) pair into one width-reconciled table ready to be written as CSV.
// It also owns the name sanitization rule shared by aggregation and the CSV sink.
package harvest
