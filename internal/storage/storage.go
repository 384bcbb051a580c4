package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pfrederiksen/harvest-reports/internal/harvest"
	"github.com/pfrederiksen/harvest-reports/internal/logger"
)

// Storage handles persistence of aggregated tables
type Storage struct {
	outputDir string
}

// WrittenFile describes one CSV file produced by a run
type WrittenFile struct {
	Species  string `json:"species"`
	Category string `json:"category"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
}

// New creates a new Storage instance
func New(outputDir string) (*Storage, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, eris.New("output directory is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(outputDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, eris.Wrap(err, "getting home directory")
		}
		outputDir = filepath.Join(home, outputDir[2:])
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, eris.Wrap(err, "creating output directory")
	}

	return &Storage{
		outputDir: outputDir,
	}, nil
}

// OutputDir returns the resolved output directory
func (s *Storage) OutputDir() string {
	return s.outputDir
}

// TablePath returns where a table for species and category is written.
// category is expected to be sanitized already.
func (s *Storage) TablePath(species, category string) string {
	return filepath.Join(s.outputDir, harvest.Sanitize(species), category+".csv")
}

// WriteTable writes one aggregated table and returns its path
func (s *Storage) WriteTable(tbl *harvest.AggregatedTable) (string, error) {
	path := s.TablePath(tbl.Species, tbl.Category)
	if err := WriteCSV(path, tbl.Headers, tbl.Rows); err != nil {
		return "", err
	}
	logger.IncrCounter("sink.files.written")
	logger.Info("Saved table", logger.Fields{
		"species":  tbl.Species,
		"category": tbl.Category,
		"path":     path,
		"rows":     len(tbl.Rows),
	})
	return path, nil
}

// WriteAll writes every table in the aggregation, stopping at the first failure
func (s *Storage) WriteAll(agg *harvest.Aggregation) ([]WrittenFile, error) {
	written := make([]WrittenFile, 0, agg.Len())
	for _, tbl := range agg.Tables() {
		path, err := s.WriteTable(tbl)
		if err != nil {
			return written, err
		}
		written = append(written, WrittenFile{
			Species:  tbl.Species,
			Category: tbl.Category,
			Path:     path,
			Rows:     len(tbl.Rows),
			Columns:  len(tbl.Headers),
		})
	}
	return written, nil
}

// WriteCSV writes header and rows to path, creating parent directories and
// replacing any existing file
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrapf(err, "creating directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "writing header to %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrapf(err, "writing rows to %s", path)
	}

	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "closing %s", path)
	}
	return nil
}
