package scraper

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	DefaultUserAgent = "harvest-reports/1.0 (github.com/pfrederiksen/harvest-reports)"
	DefaultTimeout   = 30 * time.Second
)

// ErrUnexpectedStatus is returned when a page responds with a non-2xx status
var ErrUnexpectedStatus = eris.New("unexpected status code")

// Fetcher retrieves the HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper fetches pages over HTTP
type Scraper struct {
	client    *http.Client
	userAgent string
}

// Option configures a Scraper
type Option func(*Scraper)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads a page and returns its body as text.
// Any non-2xx response is an error wrapping ErrUnexpectedStatus.
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "fetching page %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", eris.Wrapf(ErrUnexpectedStatus, "%s returned %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrapf(err, "reading body of %s", url)
	}

	return string(body), nil
}
