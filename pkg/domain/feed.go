package domain

import "time"

// Feed represents a subscribed RSS/Atom/JSON feed
type Feed struct {
	ID           int64
	Title        string
	URL          string
	Description  string
	IconURL      string
	AddedAt      time.Time
	LastSyncedAt *time.Time
}

// FeedMeta is the channel-level metadata of a parsed feed document
type FeedMeta struct {
	Title       string
	Description string
	Link        string
	IconURL     string
}

// FeedEntry is one normalized item of a parsed feed document, prior to content extraction
type FeedEntry struct {
	Title       string
	Link        string
	Description string
	HTMLContent string // inline content from the feed, if any
	TextContent string
	PublishedAt *time.Time
}
