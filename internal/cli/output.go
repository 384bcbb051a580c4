package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/pfrederiksen/harvest-reports/internal/harvest"
	"github.com/pfrederiksen/harvest-reports/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
)

// FailureSummary describes a report link that could not be fetched
type FailureSummary struct {
	Species string `json:"species"`
	Report  string `json:"report"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CrawledAt time.Time              `json:"crawled_at"`
	IndexURL  string                 `json:"index_url"`
	OutputDir string                 `json:"output_dir"`
	Species   int                    `json:"species"`
	Reports   int                    `json:"reports"`
	FileCount int                    `json:"file_count"`
	RowCount  int                    `json:"row_count"`
	Files     []storage.WrittenFile  `json:"files"`
	Failures  []FailureSummary       `json:"failures"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// NewOutputResult summarizes a crawl and the files written from it
func NewOutputResult(result *harvest.CrawlResult, written []storage.WrittenFile) *OutputResult {
	out := &OutputResult{
		Files:    written,
		Failures: make([]FailureSummary, 0),
	}
	if out.Files == nil {
		out.Files = make([]storage.WrittenFile, 0)
	}
	out.FileCount = len(out.Files)
	for _, f := range out.Files {
		out.RowCount += f.Rows
	}

	if result != nil {
		out.Species = len(result.Species)
		out.Reports = result.ReportCount()
		for _, f := range result.Failures {
			out.Failures = append(out.Failures, FailureSummary{
				Species: f.Species,
				Report:  f.Link.Text,
				URL:     f.URL,
				Error:   f.Message(),
			})
		}
	}

	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatMarkdown:
		return writeMarkdown(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.FileCount == 0 {
		fmt.Fprintln(w, "No tables found.")
	} else {
		// Group by species, keeping the order files are listed in
		species := make([]string, 0)
		bySpecies := make(map[string][]storage.WrittenFile)
		for _, f := range result.Files {
			if _, ok := bySpecies[f.Species]; !ok {
				species = append(species, f.Species)
			}
			bySpecies[f.Species] = append(bySpecies[f.Species], f)
		}

		for _, name := range species {
			files := bySpecies[name]
			fmt.Fprintf(w, "\n%s (%d %s):\n", name, len(files), plural(len(files), "file", "files"))
			for _, f := range files {
				fmt.Fprintf(w, "  %s.csv: %d rows, %d columns\n", f.Category, f.Rows, f.Columns)
				if verbose {
					fmt.Fprintf(w, "       Path: %s\n", f.Path)
				}
			}
		}
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed reports (%d):\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s - %s: %s\n", f.Species, f.Report, f.URL)
			if verbose && f.Error != "" {
				fmt.Fprintf(w, "       Error: %s\n", f.Error)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d %s, %d rows across %d species (output: %s)\n",
		result.FileCount, plural(result.FileCount, "file", "files"), result.RowCount, result.Species, result.OutputDir)

	return nil
}

// writeMarkdown outputs results as a Markdown report
func writeMarkdown(w io.Writer, result *OutputResult) error {
	md := markdown.NewMarkdown(w)

	md.H1("Harvest Report Crawl")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Index", result.IndexURL},
			{"Crawled", result.CrawledAt.Format("2006-01-02 15:04:05 MST")},
			{"Output", "`" + result.OutputDir + "`"},
			{"Species", strconv.Itoa(result.Species)},
			{"Reports", strconv.Itoa(result.Reports)},
			{"Files", strconv.Itoa(result.FileCount)},
			{"Rows", strconv.Itoa(result.RowCount)},
		},
	})
	md.PlainText("")

	md.H2("Files")
	if result.FileCount == 0 {
		md.PlainText("No tables found.")
	} else {
		rows := make([][]string, 0, len(result.Files))
		for _, f := range result.Files {
			rows = append(rows, []string{
				f.Species,
				f.Category,
				strconv.Itoa(f.Rows),
				strconv.Itoa(f.Columns),
				"`" + relPath(result.OutputDir, f.Path) + "`",
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Species", "Category", "Rows", "Columns", "File"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if len(result.Failures) > 0 {
		md.H2("Failed Reports")
		items := make([]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			items = append(items, fmt.Sprintf("%s - %s: %s (%s)", f.Species, f.Report, f.URL, f.Error))
		}
		md.BulletList(items...)
	}

	return md.Build()
}

// relPath shows path relative to dir when possible
func relPath(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
