package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/sift/pkg/domain"
)

type rssDoc struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Channel *rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string        `xml:"title"`
	Link          string        `xml:"link"`
	Description   string        `xml:"description"`
	AtomLink      *atomSelfLink `xml:"http://www.w3.org/2005/Atom link"`
	LastBuildDate string        `xml:"lastBuildDate"`
	Items         []*rssItem    `xml:"item"`
}

type atomSelfLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category,omitempty"`
}

// Generator renders stored articles and subscriptions back out as RSS and OPML
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// GenerateRSS creates an RSS 2.0 feed of processed articles, optionally for a single label
func (g *Generator) GenerateRSS(articles []domain.Article, label string) (string, error) {
	title := "Sift - All Articles"
	selfLink := g.baseURL + "/rss"
	if label != "" {
		title = "Sift - " + label
		selfLink = g.baseURL + "/rss/" + label
	}

	items := make([]*rssItem, 0, len(articles))
	for i := range articles {
		items = append(items, g.rssItem(&articles[i]))
	}

	doc := &rssDoc{
		Version: "2.0",
		Channel: &rssChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Summarized and labeled articles",
			AtomLink:      &atomSelfLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

func (g *Generator) rssItem(a *domain.Article) *rssItem {
	desc := a.Summary
	if desc == "" {
		desc = a.Description
	}
	item := &rssItem{
		Title:       a.Title,
		Link:        a.URL,
		GUID:        a.URL,
		Description: desc,
		Author:      a.Author,
		PubDate:     a.PublishedAt.UTC().Format(time.RFC1123Z),
	}
	if a.Label != "" {
		item.Categories = []string{a.Label}
	}
	return item
}

// GenerateOPML creates an OPML file with feed subscriptions
func (g *Generator) GenerateOPML(feeds []domain.Feed) (string, error) {
	type outline struct {
		XMLName xml.Name `xml:"outline"`
		Text    string   `xml:"text,attr"`
		Title   string   `xml:"title,attr"`
		Type    string   `xml:"type,attr"`
		XMLURL  string   `xml:"xmlUrl,attr"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		outlines = append(outlines, outline{Text: f.Title, Title: f.Title, Type: "rss", XMLURL: f.URL})
	}

	doc := opml{
		Version: "2.0",
		Head:    head{Title: "Sift Subscriptions", DateCreated: g.now().UTC().Format(time.RFC1123Z)},
		Body:    body{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}
	return xml.Header + string(output), nil
}
