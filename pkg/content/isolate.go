package content

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/umputun/sift/pkg/domain"
)

// pageMeta is document-level metadata read directly from the page head
type pageMeta struct {
	title       string
	description string
	canonical   string
	image       string
	favicon     string
	siteName    string
}

// isolate runs the extraction chain and returns the first acceptable result with the stage name
func (e *HTTPExtractor) isolate(p *page, doc *goquery.Document) (*domain.ExtractedContent, string) {
	if res := e.fromReadability(p); e.accept(res) {
		return res, "readability"
	}
	if res := e.fromTrafilatura(p); e.accept(res) {
		return res, "trafilatura"
	}
	if res := fromDocument(doc); e.accept(res) {
		return res, "goquery"
	}
	return nil, ""
}

func (e *HTTPExtractor) accept(res *domain.ExtractedContent) bool {
	if res == nil || res.TextContent == "" {
		return false
	}
	return utf8.RuneCountInString(res.TextContent) >= e.minTextLength
}

func (e *HTTPExtractor) fromReadability(p *page) *domain.ExtractedContent {
	article, err := readability.FromReader(bytes.NewReader(p.body), p.url)
	if err != nil {
		e.logger.Logf("[DEBUG] readability failed for %s: %v", p.url, err)
		return nil
	}
	return &domain.ExtractedContent{
		Title:       strings.TrimSpace(article.Title),
		HTMLContent: article.Content,
		TextContent: renderText(article.Node),
		Excerpt:     strings.TrimSpace(article.Excerpt),
		Author:      strings.TrimSpace(article.Byline),
		SiteName:    article.SiteName,
		Image:       article.Image,
		Favicon:     article.Favicon,
		Language:    article.Language,
		PublishedAt: article.PublishedTime,
		ModifiedAt:  article.ModifiedTime,
	}
}

func (e *HTTPExtractor) fromTrafilatura(p *page) *domain.ExtractedContent {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    true,
		Deduplicate:     true,
		OriginalURL:     p.url,
	}

	result, err := trafilatura.Extract(bytes.NewReader(p.body), opts)
	if err != nil || result == nil {
		e.logger.Logf("[DEBUG] trafilatura failed for %s: %v", p.url, err)
		return nil
	}

	res := &domain.ExtractedContent{
		Title:       strings.TrimSpace(result.Metadata.Title),
		TextContent: strings.TrimSpace(result.ContentText),
		Excerpt:     strings.TrimSpace(result.Metadata.Description),
		Author:      strings.TrimSpace(result.Metadata.Author),
		SiteName:    result.Metadata.Sitename,
		Image:       result.Metadata.Image,
		Language:    result.Metadata.Language,
	}
	if !result.Metadata.Date.IsZero() {
		published := result.Metadata.Date.UTC()
		res.PublishedAt = &published
	}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err == nil {
			res.HTMLContent = buf.String()
		}
	}
	return res
}

// fromDocument is the last-resort stage: the whole body without scripts and chrome
func fromDocument(doc *goquery.Document) *domain.ExtractedContent {
	body := doc.Find("body").First().Clone()
	body.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	bodyHTML, err := body.Html()
	if err != nil {
		bodyHTML = ""
	}
	var text string
	if len(body.Nodes) > 0 {
		text = renderText(body.Nodes[0])
	}
	return &domain.ExtractedContent{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		HTMLContent: strings.TrimSpace(bodyHTML),
		TextContent: text,
	}
}

// readMeta collects head metadata used to complete extraction results
func readMeta(doc *goquery.Document, pageURL *url.URL) pageMeta {
	attr := func(selector, name string) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return strings.TrimSpace(v)
	}

	return pageMeta{
		title:       strings.TrimSpace(doc.Find("title").First().Text()),
		description: firstNonEmpty(attr(`meta[name="description"]`, "content"), attr(`meta[property="og:description"]`, "content")),
		canonical:   resolve(pageURL, attr(`link[rel="canonical"]`, "href")),
		image:       resolve(pageURL, attr(`meta[property="og:image"]`, "content")),
		favicon:     resolve(pageURL, firstNonEmpty(attr(`link[rel="icon"]`, "href"), attr(`link[rel="shortcut icon"]`, "href"))),
		siteName:    attr(`meta[property="og:site_name"]`, "content"),
	}
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
