package domain

import "time"

// Article represents a persisted, fully processed feed entry
type Article struct {
	ID              int64
	FeedID          int64
	Title           string
	URL             string
	Description     string
	HTMLContent     string
	TextContent     string
	MarkdownContent string
	Summary         string
	Label           string
	ImageURL        string
	Author          string
	FaviconURL      string
	SiteName        string
	PublishedAt     time.Time
	CreatedAt       time.Time
	IsBookmarked    bool
	IsRead          bool
}

// ExtractedContent is the readable content isolated from an article page
type ExtractedContent struct {
	Title           string
	HTMLContent     string
	TextContent     string
	MarkdownContent string
	Excerpt         string
	CanonicalURL    string
	Image           string
	Author          string
	SiteName        string
	Favicon         string
	Language        string
	PublishedAt     *time.Time
	ModifiedAt      *time.Time
}

// ArticleFilter represents filtering criteria for article listing
type ArticleFilter struct {
	FeedID         int64
	Label          string
	BookmarkedOnly bool
	UnreadOnly     bool
	Limit          int
	Offset         int
}
