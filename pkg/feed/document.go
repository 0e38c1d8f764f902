package feed

import (
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	jsonfeed "github.com/mmcdole/gofeed/json"
	"github.com/mmcdole/gofeed/rss"

	"github.com/umputun/sift/pkg/domain"
)

const untitled = "Untitled"

// Document is a parsed feed in one of the supported formats.
// The set of implementations is closed: RSSDocument, AtomDocument and JSONDocument.
type Document interface {
	Meta() domain.FeedMeta
	// Entries returns normalized entries in document order, entries without a link are dropped
	Entries() []domain.FeedEntry
	document()
}

// RSSDocument wraps a parsed RSS 0.9x/2.0 channel
type RSSDocument struct {
	Feed *rss.Feed
	URL  string // address the document was fetched from, empty if parsed from bytes
}

// AtomDocument wraps a parsed Atom feed
type AtomDocument struct {
	Feed *atom.Feed
	URL  string
}

// JSONDocument wraps a parsed JSON Feed
type JSONDocument struct {
	Feed *jsonfeed.Feed
	URL  string
}

func (*RSSDocument) document()  {}
func (*AtomDocument) document() {}
func (*JSONDocument) document() {}

// Meta returns channel metadata
func (d *RSSDocument) Meta() domain.FeedMeta {
	meta := domain.FeedMeta{
		Title:       strings.TrimSpace(d.Feed.Title),
		Description: strings.TrimSpace(d.Feed.Description),
		Link:        resolveLink(strings.TrimSpace(d.Feed.Link), d.URL),
	}
	if d.Feed.Image != nil {
		meta.IconURL = d.Feed.Image.URL
	}
	return meta
}

// Entries returns channel items. Title falls back to the link, then to "Untitled".
// Relative links are resolved against the channel link or the document address.
func (d *RSSDocument) Entries() []domain.FeedEntry {
	res := make([]domain.FeedEntry, 0, len(d.Feed.Items))
	for _, item := range d.Feed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" && item.GUID != nil && item.GUID.IsPermalink != "false" && isHTTPURL(item.GUID.Value) {
			link = strings.TrimSpace(item.GUID.Value)
		}
		if link == "" {
			continue
		}
		link = resolveLink(link, d.Feed.Link, d.URL)
		res = append(res, domain.FeedEntry{
			Title:       firstNonEmpty(item.Title, link, untitled),
			Link:        link,
			Description: strings.TrimSpace(item.Description),
			HTMLContent: item.Content,
			PublishedAt: utcTime(item.PubDateParsed),
		})
	}
	return res
}

// Meta returns feed metadata, the link is the alternate link when present
func (d *AtomDocument) Meta() domain.FeedMeta {
	return domain.FeedMeta{
		Title:       strings.TrimSpace(d.Feed.Title),
		Description: strings.TrimSpace(d.Feed.Subtitle),
		Link:        resolveLink(atomLink(d.Feed.Links), d.URL),
		IconURL:     firstNonEmpty(d.Feed.Icon, d.Feed.Logo),
	}
}

// Entries returns feed entries. Published date falls back to the updated date.
func (d *AtomDocument) Entries() []domain.FeedEntry {
	res := make([]domain.FeedEntry, 0, len(d.Feed.Entries))
	base := atomLink(d.Feed.Links)
	for _, entry := range d.Feed.Entries {
		if entry == nil {
			continue
		}
		link := atomLink(entry.Links)
		if link == "" {
			continue
		}
		link = resolveLink(link, base, d.URL)
		fe := domain.FeedEntry{
			Title:       firstNonEmpty(entry.Title, link, untitled),
			Link:        link,
			Description: strings.TrimSpace(entry.Summary),
			PublishedAt: utcTime(entry.PublishedParsed),
		}
		if fe.PublishedAt == nil {
			fe.PublishedAt = utcTime(entry.UpdatedParsed)
		}
		if entry.Content != nil {
			if entry.Content.Type == "text" {
				fe.TextContent = entry.Content.Value
			} else {
				fe.HTMLContent = entry.Content.Value
			}
		}
		res = append(res, fe)
	}
	return res
}

// Meta returns feed metadata
func (d *JSONDocument) Meta() domain.FeedMeta {
	return domain.FeedMeta{
		Title:       strings.TrimSpace(d.Feed.Title),
		Description: strings.TrimSpace(d.Feed.Description),
		Link:        resolveLink(strings.TrimSpace(d.Feed.HomePageURL), d.URL),
		IconURL:     firstNonEmpty(d.Feed.Icon, d.Feed.Favicon),
	}
}

// Entries returns feed items, the item url falls back to external_url
func (d *JSONDocument) Entries() []domain.FeedEntry {
	res := make([]domain.FeedEntry, 0, len(d.Feed.Items))
	for _, item := range d.Feed.Items {
		if item == nil {
			continue
		}
		link := firstNonEmpty(item.URL, item.ExternalURL)
		if link == "" {
			continue
		}
		link = resolveLink(link, d.Feed.HomePageURL, d.Feed.FeedURL, d.URL)
		res = append(res, domain.FeedEntry{
			Title:       firstNonEmpty(item.Title, link, untitled),
			Link:        link,
			Description: strings.TrimSpace(item.Summary),
			HTMLContent: item.ContentHTML,
			TextContent: item.ContentText,
			PublishedAt: parseJSONDate(item.DatePublished),
		})
	}
	return res
}

// SubscriptionMeta returns document metadata for a new subscription,
// an empty title is replaced by the host of the feed URL
func SubscriptionMeta(doc Document, feedURL string) domain.FeedMeta {
	meta := doc.Meta()
	if meta.Title != "" {
		return meta
	}
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		meta.Title = u.Host
		return meta
	}
	meta.Title = untitled
	return meta
}

func atomLink(links []*atom.Link) string {
	var first string
	for _, l := range links {
		if l == nil || l.Href == "" {
			continue
		}
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
		if first == "" {
			first = strings.TrimSpace(l.Href)
		}
	}
	return first
}

// resolveLink makes a relative link absolute against the first base that is an absolute http(s) url.
// Absolute and unparsable links are returned as is.
func resolveLink(link string, bases ...string) string {
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() || link == "" {
		return link
	}
	for _, b := range bases {
		if !isHTTPURL(b) {
			continue
		}
		base, err := url.Parse(strings.TrimSpace(b))
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String()
	}
	return link
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func parseJSONDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func utcTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
