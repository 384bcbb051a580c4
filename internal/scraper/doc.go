// Package scraper provides HTTP fetching and HTML parsing for harvest report pages.
//
// The scraper package fetches the agency's harvest index page, discovers the report links
// listed under each species heading, fetches every report page once, and extracts the
// tables it contains. Individual report failures are recorded and skipped so one bad link
// never aborts a crawl.
package scraper
