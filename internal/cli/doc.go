// Package cli implements the command-line interface for harvest-reports.
//
// The cli package provides the Cobra-based CLI that loads configuration, crawls the
// harvest index page, aggregates report tables by species and category, writes them as
// CSV files, and prints a run summary (text, JSON, or Markdown). It coordinates the
// config, scraper, harvest, and storage packages.
package cli
