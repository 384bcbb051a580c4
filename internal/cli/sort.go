package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/harvest-reports/internal/storage"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone       SortOrder = ""
	SortBySpecies  SortOrder = "species"
	SortByCategory SortOrder = "category"
	SortByRows     SortOrder = "rows"
)

// Valid reports whether the sort order is known
func (o SortOrder) Valid() bool {
	switch o {
	case SortNone, SortBySpecies, SortByCategory, SortByRows:
		return true
	}
	return false
}

// sortFiles sorts written files based on the specified sort order.
// SortNone keeps crawl order.
func sortFiles(files []storage.WrittenFile, sortOrder SortOrder) {
	switch sortOrder {
	case SortBySpecies:
		sort.SliceStable(files, func(i, j int) bool {
			if !strings.EqualFold(files[i].Species, files[j].Species) {
				return strings.ToLower(files[i].Species) < strings.ToLower(files[j].Species)
			}
			// If species are equal, sort by category
			return strings.ToLower(files[i].Category) < strings.ToLower(files[j].Category)
		})
	case SortByCategory:
		sort.SliceStable(files, func(i, j int) bool {
			if !strings.EqualFold(files[i].Category, files[j].Category) {
				return strings.ToLower(files[i].Category) < strings.ToLower(files[j].Category)
			}
			return strings.ToLower(files[i].Species) < strings.ToLower(files[j].Species)
		})
	case SortByRows:
		// Largest tables first
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].Rows > files[j].Rows
		})
	}
}
