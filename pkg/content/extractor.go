package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/umputun/sift/pkg/domain"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 5 * 1024 * 1024
	excerptLength      = 200
)

// error causes wrapped by ExtractionError
var (
	ErrNotHTML     = errors.New("not an html document")
	ErrInvalidUTF8 = errors.New("invalid utf-8 content")
	ErrNoContent   = errors.New("no readable content")
)

// ExtractionError reports a page that could not be fetched or yielded no readable content
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Options defines extractor parameters
type Options struct {
	Timeout       time.Duration // per-request timeout
	UserAgent     string
	RateLimit     time.Duration // minimal interval between requests, 0 disables limiting
	MaxBodySize   int64
	MinTextLength int // minimal text length (in characters) for an isolation stage to be accepted
	Logger        lgr.L
}

// HTTPExtractor fetches article pages and isolates their readable content
type HTTPExtractor struct {
	client        *http.Client
	limiter       *rate.Limiter
	userAgent     string
	maxBodySize   int64
	minTextLength int
	sanitizer     *bluemonday.Policy
	logger        lgr.L
}

// page is a fetched and utf-8 decoded html document
type page struct {
	url  *url.URL // final url after redirects
	body []byte
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(opts Options) *HTTPExtractor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaultMaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = lgr.NoOp
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateLimit), 1)
	}

	return &HTTPExtractor{
		client:        &http.Client{Timeout: opts.Timeout},
		limiter:       limiter,
		userAgent:     opts.UserAgent,
		maxBodySize:   opts.MaxBodySize,
		minTextLength: opts.MinTextLength,
		sanitizer:     bluemonday.UGCPolicy(),
		logger:        opts.Logger,
	}
}

// Extract retrieves the page at urlStr and returns its readable content.
// All failures are returned as *ExtractionError.
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (*domain.ExtractedContent, error) {
	p, err := e.fetch(ctx, urlStr)
	if err != nil {
		return nil, &ExtractionError{URL: urlStr, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return nil, &ExtractionError{URL: urlStr, Err: fmt.Errorf("parse html: %w", err)}
	}
	meta := readMeta(doc, p.url)

	res, stage := e.isolate(p, doc)
	if res == nil {
		return nil, &ExtractionError{URL: urlStr, Err: ErrNoContent}
	}
	e.logger.Logf("[DEBUG] extracted %s with %s, %d chars", urlStr, stage, utf8.RuneCountInString(res.TextContent))

	e.finalize(ctx, res, meta, p.url)
	return res, nil
}

// fetch downloads the page and decodes it to utf-8
func (e *HTTPExtractor) fetch(ctx context.Context, urlStr string) (*page, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", urlStr)
	}

	if err = e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	addBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(raw)
	}
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	decoded, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	if !utf8.Valid(body) {
		return nil, ErrInvalidUTF8
	}

	finalURL := parsedURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return &page{url: finalURL, body: body}, nil
}

// finalize sanitizes html, renders markdown and fills metadata gaps
func (e *HTTPExtractor) finalize(ctx context.Context, res *domain.ExtractedContent, meta pageMeta, pageURL *url.URL) {
	res.HTMLContent = e.sanitizer.Sanitize(res.HTMLContent)
	if res.HTMLContent != "" {
		md, err := htmltomarkdown.ConvertString(res.HTMLContent, converter.WithContext(ctx))
		if err != nil {
			e.logger.Logf("[WARN] markdown conversion for %s failed: %v", pageURL, err)
		}
		res.MarkdownContent = strings.TrimSpace(md)
	}

	if res.Title == "" {
		res.Title = meta.title
	}
	if res.Excerpt == "" {
		res.Excerpt = meta.description
	}
	if res.Excerpt == "" {
		res.Excerpt = truncateRunes(collapseSpaces(res.TextContent), excerptLength)
	}
	res.CanonicalURL = meta.canonical
	if res.CanonicalURL == "" {
		res.CanonicalURL = pageURL.String()
	}
	if res.Image == "" {
		res.Image = meta.image
	}
	if res.Favicon == "" {
		res.Favicon = meta.favicon
	}
	if res.SiteName == "" {
		res.SiteName = meta.siteName
	}
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
