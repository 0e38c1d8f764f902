package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	jsonfeed "github.com/mmcdole/gofeed/json"
	"github.com/mmcdole/gofeed/rss"
)

const defaultMaxFeedSize = 10 * 1024 * 1024

// ErrUnknownFormat is returned when a document is neither RSS, Atom nor JSON Feed
var ErrUnknownFormat = errors.New("unknown feed format")

// ParseError reports a feed document that could not be fetched or parsed
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser fetches feed documents over HTTP and parses them into a Document
type Parser struct {
	client    *http.Client
	userAgent string
	maxSize   int64
}

// NewParser creates a new feed parser
func NewParser(timeout time.Duration, userAgent string) *Parser {
	return &Parser{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		maxSize:   defaultMaxFeedSize,
	}
}

// Parse fetches and parses a feed from the given URL.
// All errors are returned as *ParseError.
func (p *Parser) Parse(ctx context.Context, feedURL string) (Document, error) {
	data, err := p.fetch(ctx, feedURL)
	if err != nil {
		return nil, &ParseError{URL: feedURL, Err: err}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, &ParseError{URL: feedURL, Err: err}
	}
	switch d := doc.(type) {
	case *RSSDocument:
		d.URL = feedURL
	case *AtomDocument:
		d.URL = feedURL
	case *JSONDocument:
		d.URL = feedURL
	}
	return doc, nil
}

// ParseDocument detects the format of a raw feed document and parses it with the matching parser
func ParseDocument(data []byte) (Document, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		f, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse rss: %w", err)
		}
		return &RSSDocument{Feed: f}, nil
	case gofeed.FeedTypeAtom:
		f, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse atom: %w", err)
		}
		return &AtomDocument{Feed: f}, nil
	case gofeed.FeedTypeJSON:
		f, err := (&jsonfeed.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse json feed: %w", err)
		}
		return &JSONDocument{Feed: f}, nil
	default:
		return nil, ErrUnknownFormat
	}
}

// fetch retrieves the raw document from a URL
func (p *Parser) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL: %s", feedURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	// add browser-like headers
	addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
