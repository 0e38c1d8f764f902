package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/rest"

	"github.com/umputun/sift/pkg/domain"
	"github.com/umputun/sift/pkg/feed"
	"github.com/umputun/sift/pkg/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	rssItemsLimit   = 100
)

type articleFlag int

const (
	flagBookmarked articleFlag = iota
	flagRead
)

// feedInfo is the JSON representation of a feed
type feedInfo struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Description  string     `json:"description,omitempty"`
	IconURL      string     `json:"icon_url,omitempty"`
	AddedAt      time.Time  `json:"added_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// articleInfo is the JSON representation of an article in lists
type articleInfo struct {
	ID           int64     `json:"id"`
	FeedID       int64     `json:"feed_id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Description  string    `json:"description,omitempty"`
	Summary      string    `json:"summary"`
	Label        string    `json:"label"`
	ImageURL     string    `json:"image_url,omitempty"`
	Author       string    `json:"author,omitempty"`
	FaviconURL   string    `json:"favicon_url,omitempty"`
	SiteName     string    `json:"site_name,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	IsBookmarked bool      `json:"is_bookmarked"`
	IsRead       bool      `json:"is_read"`
}

// articleDetails adds content and predictions to articleInfo
type articleDetails struct {
	articleInfo
	HTMLContent     string           `json:"html_content"`
	TextContent     string           `json:"text_content"`
	MarkdownContent string           `json:"markdown_content"`
	Predictions     []predictionInfo `json:"predictions"`
}

type predictionInfo struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// statusHandler returns server status with the refresh indicator, 503 if the store is not reachable
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := rest.JSON{
		"status":     "ok",
		"version":    s.cfg.Version,
		"time":       time.Now().UTC(),
		"refreshing": s.refresher.IsRefreshing(),
	}
	code := http.StatusOK
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Logf("[WARN] store ping failed: %v", err)
			status["status"] = "store unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	s.renderJSON(w, r, code, status)
}

// refreshHandler starts a refresh of all feeds and returns immediately
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	// the refresh outlives the request but not the server
	s.refresher.RefreshAll(s.baseCtx)
	s.renderJSON(w, r, http.StatusAccepted, rest.JSON{"refreshing": true})
}

func (s *Server) listFeedsHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.GetFeeds(r.Context())
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to get feeds")
		return
	}
	res := make([]feedInfo, 0, len(feeds))
	for i := range feeds {
		res = append(res, toFeedInfo(&feeds[i]))
	}
	s.renderJSON(w, r, http.StatusOK, res)
}

// subscribeHandler adds a feed, expects {"url": "..."}
func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		rest.SendErrorJSON(w, r, s.logger, http.StatusBadRequest, errors.New("empty url"), "url is required")
		return
	}

	f, err := s.subscriber.Subscribe(r.Context(), req.URL)
	var parseErr *feed.ParseError
	switch {
	case errors.Is(err, repository.ErrDuplicateFeed):
		rest.SendErrorJSON(w, r, s.logger, http.StatusConflict, err, "feed already subscribed")
		return
	case errors.As(err, &parseErr):
		rest.SendErrorJSON(w, r, s.logger, http.StatusUnprocessableEntity, err, "can't load feed: "+parseErr.Err.Error())
		return
	case err != nil:
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to subscribe")
		return
	}
	s.renderJSON(w, r, http.StatusCreated, toFeedInfo(f))
}

func (s *Server) getFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	f, err := s.feeds.GetFeed(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, r, err, "failed to get feed")
		return
	}
	s.renderJSON(w, r, http.StatusOK, toFeedInfo(f))
}

func (s *Server) deleteFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.feeds.DeleteFeed(r.Context(), id); err != nil {
		s.sendStoreError(w, r, err, "failed to delete feed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshFeedHandler refreshes a single feed and waits for the result
func (s *Server) refreshFeedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	f, err := s.feeds.GetFeed(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, r, err, "failed to get feed")
		return
	}

	// other callers may join this pass, so a disconnecting client doesn't cancel it
	if err := s.refresher.RefreshFeed(s.baseCtx, *f); err != nil {
		var parseErr *feed.ParseError
		if errors.As(err, &parseErr) {
			rest.SendErrorJSON(w, r, s.logger, http.StatusBadGateway, err, "can't load feed")
			return
		}
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to refresh feed")
		return
	}

	if f, err = s.feeds.GetFeed(r.Context(), id); err != nil {
		s.sendStoreError(w, r, err, "failed to get feed")
		return
	}
	s.renderJSON(w, r, http.StatusOK, toFeedInfo(f))
}

// opmlHandler exports subscriptions as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.GetFeeds(r.Context())
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to get feeds")
		return
	}
	opml, err := s.generator.GenerateOPML(feeds)
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to generate opml")
		return
	}
	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sift.opml"`)
	if _, err := w.Write([]byte(opml)); err != nil {
		s.logger.Logf("[WARN] failed to write opml response: %v", err)
	}
}

// listArticlesHandler returns articles, filtered by feed, label, bookmarked and unread query params
func (s *Server) listArticlesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseArticleFilter(r)
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusBadRequest, err, "invalid query")
		return
	}
	articles, err := s.articles.GetArticles(r.Context(), filter)
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to get articles")
		return
	}
	res := make([]articleInfo, 0, len(articles))
	for i := range articles {
		res = append(res, toArticleInfo(&articles[i]))
	}
	s.renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) getArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	a, err := s.articles.GetArticle(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, r, err, "failed to get article")
		return
	}
	preds, err := s.articles.GetPredictions(r.Context(), id)
	if err != nil {
		rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, "failed to get predictions")
		return
	}

	res := articleDetails{
		articleInfo:     toArticleInfo(a),
		HTMLContent:     a.HTMLContent,
		TextContent:     a.TextContent,
		MarkdownContent: a.MarkdownContent,
		Predictions:     make([]predictionInfo, 0, len(preds)),
	}
	for _, p := range preds {
		res.Predictions = append(res.Predictions, predictionInfo{Label: p.Label, Confidence: p.Confidence})
	}
	s.renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) deleteArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.articles.DeleteArticle(r.Context(), id); err != nil {
		s.sendStoreError(w, r, err, "failed to delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// flagHandler sets or clears a bookmark or read flag of an article
func (s *Server) flagHandler(flag articleFlag, value bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.pathID(w, r)
		if !ok {
			return
		}

		var err error
		switch flag {
		case flagBookmarked:
			err = s.articles.SetBookmarked(r.Context(), id, value)
		case flagRead:
			err = s.articles.SetRead(r.Context(), id, value)
		}
		if err != nil {
			s.sendStoreError(w, r, err, "failed to update article")
			return
		}

		a, err := s.articles.GetArticle(r.Context(), id)
		if err != nil {
			s.sendStoreError(w, r, err, "failed to get article")
			return
		}
		s.renderJSON(w, r, http.StatusOK, toArticleInfo(a))
	}
}

// rssHandler serves RSS feed of processed articles, all or for the label from path
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	articles, err := s.articles.GetArticles(r.Context(), domain.ArticleFilter{Label: label, Limit: rssItemsLimit})
	if err != nil {
		s.logger.Logf("[ERROR] failed to get articles for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	rss, err := s.generator.GenerateRSS(articles, label)
	if err != nil {
		s.logger.Logf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		s.logger.Logf("[WARN] failed to write RSS response: %v", err)
	}
}

// pathID parses the id path value, responds with 400 if it's not a positive integer
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		rest.SendErrorJSON(w, r, s.logger, http.StatusBadRequest, fmt.Errorf("invalid id %q", r.PathValue("id")), "invalid id")
		return 0, false
	}
	return id, true
}

// sendStoreError responds with 404 for missing records and 500 otherwise
func (s *Server) sendStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		rest.SendErrorJSON(w, r, s.logger, http.StatusNotFound, err, "not found")
		return
	}
	rest.SendErrorJSON(w, r, s.logger, http.StatusInternalServerError, err, msg)
}

func parseArticleFilter(r *http.Request) (domain.ArticleFilter, error) {
	q := r.URL.Query()
	filter := domain.ArticleFilter{
		Label:          q.Get("label"),
		BookmarkedOnly: q.Get("bookmarked") == "true" || q.Get("bookmarked") == "1",
		UnreadOnly:     q.Get("unread") == "true" || q.Get("unread") == "1",
		Limit:          defaultPageSize,
	}

	var err error
	if v := q.Get("feed"); v != "" {
		if filter.FeedID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return filter, fmt.Errorf("invalid feed %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit <= 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = min(filter.Limit, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			return filter, fmt.Errorf("invalid offset %q", v)
		}
	}
	return filter, nil
}

func toFeedInfo(f *domain.Feed) feedInfo {
	return feedInfo{
		ID:           f.ID,
		Title:        f.Title,
		URL:          f.URL,
		Description:  f.Description,
		IconURL:      f.IconURL,
		AddedAt:      f.AddedAt,
		LastSyncedAt: f.LastSyncedAt,
	}
}

func toArticleInfo(a *domain.Article) articleInfo {
	return articleInfo{
		ID:           a.ID,
		FeedID:       a.FeedID,
		Title:        a.Title,
		URL:          a.URL,
		Description:  a.Description,
		Summary:      a.Summary,
		Label:        a.Label,
		ImageURL:     a.ImageURL,
		Author:       a.Author,
		FaviconURL:   a.FaviconURL,
		SiteName:     a.SiteName,
		PublishedAt:  a.PublishedAt,
		CreatedAt:    a.CreatedAt,
		IsBookmarked: a.IsBookmarked,
		IsRead:       a.IsRead,
	}
}

// renderJSON sends JSON response
func (s *Server) renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Logf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}
