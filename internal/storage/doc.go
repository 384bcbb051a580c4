// Package storage writes aggregated harvest tables to disk as CSV files.
//
// Each (species, category) table is stored at <output_dir>/<species>/<category>.csv,
// with the species name sanitized into a directory name. Existing files are overwritten
// and missing directories are created. The default location is ./wdfw_harvest_reports.
package storage
