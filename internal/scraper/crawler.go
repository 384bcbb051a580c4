package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/harvest-reports/internal/harvest"
	"github.com/pfrederiksen/harvest-reports/internal/logger"
)

const (
	SpeciesSelector = "h3"
	LinkListTag     = "ul"
)

// Crawler walks the species sections of an index page and extracts every linked report
type Crawler struct {
	fetcher     Fetcher
	baseURL     string
	concurrency int
}

// CrawlerOption configures a Crawler
type CrawlerOption func(*Crawler)

// WithConcurrency sets how many report pages may be fetched at once.
// Values below 1 are treated as 1. Output order does not depend on it.
func WithConcurrency(n int) CrawlerOption {
	return func(c *Crawler) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// NewCrawler creates a Crawler that resolves relative links against baseURL
func NewCrawler(fetcher Fetcher, baseURL string, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		fetcher:     fetcher,
		baseURL:     baseURL,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// plannedLink is a report link that survived href deduplication
type plannedLink struct {
	species string
	link    harvest.ReportLink
	url     string
}

// linkOutcome is the per-link result of fetching and extracting a report
type linkOutcome struct {
	tables []harvest.ExtractedTable
	err    error
}

// CrawlURL fetches the index page and crawls it.
// Failing to fetch the index page is the only fatal fetch error.
func (c *Crawler) CrawlURL(ctx context.Context, indexURL string) (*harvest.CrawlResult, error) {
	logger.Info("Fetching index page", logger.Fields{"url": indexURL})

	indexHTML, err := c.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetching index page")
	}

	return c.Crawl(ctx, indexHTML)
}

// Crawl discovers the report links under each species heading in indexHTML, fetches
// each distinct href once, and returns the extracted tables grouped by species.
func (c *Crawler) Crawl(ctx context.Context, indexHTML string) (*harvest.CrawlResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexHTML))
	if err != nil {
		return nil, eris.Wrap(err, "parsing index page")
	}

	result := harvest.NewCrawlResult()
	plan := c.planLinks(doc, result)
	logger.SetGauge("crawl.species", float64(len(result.Species)))

	outcomes := make([]linkOutcome, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = c.fetchReport(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "crawl cancelled")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "crawl cancelled")
	}

	for i, p := range plan {
		out := outcomes[i]
		if out.err != nil {
			result.AddFailure(harvest.LinkFailure{
				Species: p.species,
				Link:    p.link,
				URL:     p.url,
				Err:     out.err,
			})
			continue
		}
		result.Add(p.species, harvest.ReportResult{
			Link:   p.link,
			URL:    p.url,
			Tables: out.tables,
		})
	}

	logger.Info("Crawl finished", logger.Fields{
		"species":  len(result.Species),
		"reports":  result.ReportCount(),
		"failures": len(result.Failures),
	})

	return result, nil
}

// planLinks walks the species headings in document order and returns the links to
// fetch. An href already seen anywhere in this crawl is skipped. A species gets an
// entry in result as soon as one of its links is planned.
func (c *Crawler) planLinks(doc *goquery.Document, result *harvest.CrawlResult) []plannedLink {
	order := documentOrder(doc)
	lists := uniqueNodes(doc.Find(LinkListTag))

	visited := make(map[string]bool)
	plan := make([]plannedLink, 0)

	for _, heading := range uniqueNodes(doc.Find(SpeciesSelector)) {
		headingSel := doc.FindNodes(heading)
		species := strings.TrimSpace(headingSel.Text())
		logger.Info("Processing species", logger.Fields{"species": species})

		list := nextNode(order, heading, lists)
		if list == nil {
			logger.Debug("No report list after species heading", logger.Fields{"species": species})
			continue
		}

		for _, anchor := range uniqueNodes(doc.FindNodes(list).Find("a")) {
			a := doc.FindNodes(anchor)
			href, ok := a.Attr("href")
			if !ok {
				logger.Debug("Skipping link without href", logger.Fields{"species": species})
				continue
			}
			if visited[href] {
				logger.IncrCounter("crawl.links.duplicate")
				logger.Debug("Skipping already visited link", logger.Fields{
					"species": species,
					"href":    href,
				})
				continue
			}
			visited[href] = true

			result.Ensure(species)
			plan = append(plan, plannedLink{
				species: species,
				link: harvest.ReportLink{
					Href: href,
					Text: strings.TrimSpace(a.Text()),
				},
				url: c.resolve(href),
			})
		}
	}

	return plan
}

// fetchReport fetches and extracts one report page. Failures are logged and returned,
// never propagated to the rest of the crawl.
func (c *Crawler) fetchReport(ctx context.Context, p plannedLink) linkOutcome {
	logger.Info("Processing report", logger.Fields{
		"species": p.species,
		"report":  p.link.Text,
		"url":     p.url,
	})

	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, p.url)
	logger.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		logger.IncrCounter("crawl.links.failed")
		logger.Warn("Report fetch failed", logger.Fields{
			"species": p.species,
			"url":     p.url,
		}, err)
		return linkOutcome{err: err}
	}

	tables, err := ExtractTablesFromString(page)
	if err != nil {
		logger.IncrCounter("crawl.links.failed")
		logger.Warn("Report parse failed", logger.Fields{
			"species": p.species,
			"url":     p.url,
		}, err)
		return linkOutcome{err: err}
	}

	logger.IncrCounter("crawl.links.fetched")
	for range tables {
		logger.IncrCounter("crawl.tables.extracted")
	}

	return linkOutcome{tables: tables}
}

// resolve makes href absolute. Anything starting with "http" is used as is; everything
// else is appended to the base URL without further normalization.
func (c *Crawler) resolve(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return c.baseURL + href
}

// uniqueNodes returns the selection's nodes with duplicates removed, keeping the first
// occurrence of each
func uniqueNodes(sel *goquery.Selection) []*html.Node {
	seen := make(map[*html.Node]bool, sel.Length())
	nodes := make([]*html.Node, 0, sel.Length())
	for _, n := range sel.Nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		nodes = append(nodes, n)
	}
	return nodes
}

// documentOrder numbers every element node in pre-order
func documentOrder(doc *goquery.Document) map[*html.Node]int {
	order := make(map[*html.Node]int)
	for i, n := range doc.Find("*").Nodes {
		order[n] = i
	}
	return order
}

// nextNode returns the first candidate that comes after n in document order
func nextNode(order map[*html.Node]int, n *html.Node, candidates []*html.Node) *html.Node {
	pos := order[n]
	for _, cand := range candidates {
		if order[cand] > pos {
			return cand
		}
	}
	return nil
}
