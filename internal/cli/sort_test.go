package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pfrederiksen/harvest-reports/internal/storage"
)

func fileKeys(files []storage.WrittenFile) []string {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Species+"/"+f.Category)
	}
	return keys
}

func TestSortFiles(t *testing.T) {
	files := func() []storage.WrittenFile {
		return []storage.WrittenFile{
			{Species: "Elk", Category: "General", Rows: 5},
			{Species: "deer", Category: "Special_Permit", Rows: 40},
			{Species: "Deer", Category: "General", Rows: 12},
			{Species: "Bear", Category: "Harvest", Rows: 12},
		}
	}

	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{"none keeps crawl order", SortNone, []string{"Elk/General", "deer/Special_Permit", "Deer/General", "Bear/Harvest"}},
		{"by species then category", SortBySpecies, []string{"Bear/Harvest", "Deer/General", "deer/Special_Permit", "Elk/General"}},
		{"by category then species", SortByCategory, []string{"Deer/General", "Elk/General", "Bear/Harvest", "deer/Special_Permit"}},
		{"by rows descending, stable", SortByRows, []string{"deer/Special_Permit", "Deer/General", "Bear/Harvest", "Elk/General"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := files()
			sortFiles(f, tt.order)
			assert.Equal(t, tt.want, fileKeys(f))
		})
	}
}

func TestSortOrder_Valid(t *testing.T) {
	for _, o := range []SortOrder{SortNone, SortBySpecies, SortByCategory, SortByRows} {
		assert.True(t, o.Valid(), string(o))
	}
	assert.False(t, SortOrder("date").Valid())
}
