package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/umputun/sift/pkg/classifier"
	"github.com/umputun/sift/pkg/domain"
	"github.com/umputun/sift/pkg/feed"
	"github.com/umputun/sift/pkg/repository"
)

//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore
//go:generate moq -out mocks/article_store.go -pkg mocks -skip-ensure -fmt goimports . ArticleStore
//go:generate moq -out mocks/parser.go -pkg mocks -skip-ensure -fmt goimports . Parser
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/summarizer.go -pkg mocks -skip-ensure -fmt goimports . Summarizer
//go:generate moq -out mocks/classifier.go -pkg mocks -skip-ensure -fmt goimports . Classifier

// FeedStore provides access to subscribed feeds
type FeedStore interface {
	GetFeeds(ctx context.Context) ([]domain.Feed, error)
	UpdateFeedSyncTime(ctx context.Context, feedID int64, ts time.Time) error
}

// ArticleStore persists processed articles
type ArticleStore interface {
	ExistingURLs(ctx context.Context, feedID int64) (map[string]struct{}, error)
	SaveArticle(ctx context.Context, article *domain.Article, preds []domain.Prediction, syncedAt time.Time) error
}

// Parser fetches and parses feed documents
type Parser interface {
	Parse(ctx context.Context, url string) (feed.Document, error)
}

// Extractor isolates readable content of an article page
type Extractor interface {
	Extract(ctx context.Context, url string) (*domain.ExtractedContent, error)
}

// Summarizer builds a short extractive summary
type Summarizer interface {
	Summarize(title, text string) string
}

// Classifier assigns a label of the active label set to a text
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Prediction, error)
}

// RefresherConfig holds dependencies and settings of the Refresher
type RefresherConfig struct {
	FeedStore          FeedStore
	ArticleStore       ArticleStore
	Parser             Parser
	Extractor          Extractor
	Summarizer         Summarizer
	Classifier         Classifier // optional, no classifier means every article gets the fallback label
	FallbackLabel      string
	MaxConcurrentFeeds int
	Logger             lgr.L
}

// Refresher pulls feeds, extracts, summarizes and classifies new entries and stores them as articles.
// Feeds are refreshed concurrently, entries of one feed strictly in document order.
type Refresher struct {
	feeds         FeedStore
	articles      ArticleStore
	parser        Parser
	extractor     Extractor
	summarizer    Summarizer
	classifier    Classifier
	fallbackLabel string
	maxConcurrent int
	logger        lgr.L
	now           func() time.Time

	inflight singleflight.Group // one pass per feed at a time
	active   atomic.Int32

	runsMu  sync.Mutex
	runsEnd *sync.Cond // signaled whenever a RefreshAll run finishes
	runs    int        // RefreshAll runs in progress, guarded by runsMu
}

// entryOutcome is the result of processing one feed entry
type entryOutcome int

const (
	entryAdded entryOutcome = iota
	entryDuplicate
	entryFailed
)

// NewRefresher creates a refresher with the given collaborators
func NewRefresher(cfg RefresherConfig) *Refresher {
	res := &Refresher{
		feeds:         cfg.FeedStore,
		articles:      cfg.ArticleStore,
		parser:        cfg.Parser,
		extractor:     cfg.Extractor,
		summarizer:    cfg.Summarizer,
		classifier:    cfg.Classifier,
		fallbackLabel: cfg.FallbackLabel,
		maxConcurrent: cfg.MaxConcurrentFeeds,
		logger:        cfg.Logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
	res.runsEnd = sync.NewCond(&res.runsMu)
	if res.classifier == nil {
		res.classifier = classifier.Unavailable{}
	}
	if res.fallbackLabel == "" {
		res.fallbackLabel = domain.FallbackLabel
	}
	if res.maxConcurrent <= 0 {
		res.maxConcurrent = 5
	}
	if res.logger == nil {
		res.logger = lgr.NoOp
	}
	return res
}

// RefreshAll starts a refresh of every feed and returns without waiting for it.
// Failures are logged, one feed failing never affects the others. Use Wait to block until done.
func (r *Refresher) RefreshAll(ctx context.Context) {
	feeds, err := r.feeds.GetFeeds(ctx)
	if err != nil {
		r.logger.Logf("[ERROR] failed to list feeds: %v", err)
		return
	}
	if len(feeds) == 0 {
		r.logger.Logf("[DEBUG] no feeds to refresh")
		return
	}
	r.logger.Logf("[INFO] refreshing %d feeds", len(feeds))

	r.active.Add(1)
	r.runsMu.Lock()
	r.runs++
	r.runsMu.Unlock()
	go func() {
		defer func() {
			r.active.Add(-1)
			r.runsMu.Lock()
			r.runs--
			r.runsEnd.Broadcast()
			r.runsMu.Unlock()
		}()
		started := time.Now()

		var g errgroup.Group
		g.SetLimit(r.maxConcurrent)
		for _, f := range feeds {
			g.Go(func() error {
				r.refreshTask(ctx, f)
				return nil // feed failures stay within the feed
			})
		}
		_ = g.Wait()
		r.logger.Logf("[INFO] refresh of %d feeds completed in %v", len(feeds), time.Since(started).Round(time.Millisecond))
	}()
}

// Wait blocks until all refreshes started by RefreshAll are finished.
// Safe to call concurrently with RefreshAll, runs started while waiting are waited for too.
func (r *Refresher) Wait() {
	r.runsMu.Lock()
	defer r.runsMu.Unlock()
	for r.runs > 0 {
		r.runsEnd.Wait()
	}
}

// IsRefreshing reports whether any feed refresh is in progress
func (r *Refresher) IsRefreshing() bool {
	return r.active.Load() > 0
}

// refreshTask runs one feed refresh and logs its failure
func (r *Refresher) refreshTask(ctx context.Context, f domain.Feed) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Logf("[ERROR] refresh of feed %s panicked: %v", f.URL, rec)
		}
	}()
	if err := r.RefreshFeed(ctx, f); err != nil {
		r.logger.Logf("[ERROR] failed to refresh feed %s: %v", f.URL, err)
	}
}

// RefreshFeed pulls the feed document and stores every new entry. A concurrent call for the same
// feed joins the pass already in flight. Returns an error if the feed document can't be parsed
// or known urls can't be loaded, per-entry failures are logged and skipped.
func (r *Refresher) RefreshFeed(ctx context.Context, f domain.Feed) error {
	_, err, shared := r.inflight.Do(strconv.FormatInt(f.ID, 10), func() (any, error) {
		r.active.Add(1)
		defer r.active.Add(-1)
		return nil, r.refreshFeed(ctx, f)
	})
	if shared {
		r.logger.Logf("[DEBUG] feed %s refresh joined the one in progress", f.URL)
	}
	return err
}

func (r *Refresher) refreshFeed(ctx context.Context, f domain.Feed) error {
	r.logger.Logf("[DEBUG] refreshing feed %d: %s", f.ID, f.URL)

	doc, err := r.parser.Parse(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	// dedup against every stored article, the same link may come from several feeds
	known, err := r.articles.ExistingURLs(ctx, 0)
	if err != nil {
		return fmt.Errorf("load existing urls: %w", err)
	}

	var added, skipped, failed int
	for _, entry := range doc.Entries() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, ok := known[entry.Link]; ok {
			skipped++
			continue
		}

		switch r.processEntry(ctx, f, entry) {
		case entryAdded:
			added++
			known[entry.Link] = struct{}{}
		case entryDuplicate:
			skipped++
			known[entry.Link] = struct{}{}
			r.touch(ctx, f)
		case entryFailed:
			failed++
			r.touch(ctx, f)
		}
	}

	r.touch(ctx, f)
	if added > 0 || failed > 0 {
		r.logger.Logf("[INFO] feed %s: %d added, %d skipped, %d failed", f.URL, added, skipped, failed)
	} else {
		r.logger.Logf("[DEBUG] feed %s: no new entries, %d skipped", f.URL, skipped)
	}
	return nil
}

// processEntry extracts, summarizes, classifies and stores a single entry
func (r *Refresher) processEntry(ctx context.Context, f domain.Feed, entry domain.FeedEntry) entryOutcome {
	extracted, err := r.extractor.Extract(ctx, entry.Link)
	if err != nil {
		r.logger.Logf("[WARN] feed %s: skip entry %s, %v", f.URL, entry.Link, err)
		return entryFailed
	}

	summary := r.summarizer.Summarize(extracted.Title, extracted.TextContent)
	label, preds := r.classify(ctx, entry.Link, summary)

	now := r.now()
	article := &domain.Article{
		FeedID:          f.ID,
		Title:           firstNonEmpty(extracted.Title, entry.Title),
		URL:             entry.Link,
		Description:     firstNonEmpty(entry.Description, extracted.Excerpt),
		HTMLContent:     extracted.HTMLContent,
		TextContent:     extracted.TextContent,
		MarkdownContent: extracted.MarkdownContent,
		Summary:         summary,
		Label:           label,
		ImageURL:        extracted.Image,
		Author:          extracted.Author,
		FaviconURL:      extracted.Favicon,
		SiteName:        extracted.SiteName,
		PublishedAt:     publishedAt(entry, extracted, now),
		CreatedAt:       now,
	}

	err = r.articles.SaveArticle(ctx, article, preds, now)
	switch {
	case errors.Is(err, repository.ErrDuplicateURL):
		r.logger.Logf("[DEBUG] feed %s: entry %s already stored", f.URL, entry.Link)
		return entryDuplicate
	case err != nil:
		r.logger.Logf("[WARN] feed %s: failed to store entry %s, %v", f.URL, entry.Link, err)
		return entryFailed
	}

	r.logger.Logf("[DEBUG] feed %s: stored %q as %s", f.URL, article.Title, label)
	return entryAdded
}

// classify returns the label for the summary and predictions to keep, the fallback label on any failure
func (r *Refresher) classify(ctx context.Context, link, summary string) (string, []domain.Prediction) {
	pred, err := r.classifier.Classify(ctx, summary)
	switch {
	case errors.Is(err, classifier.ErrUnavailable):
		return r.fallbackLabel, nil
	case err != nil:
		r.logger.Logf("[WARN] classification of %s failed, using %q: %v", link, r.fallbackLabel, err)
		return r.fallbackLabel, nil
	case pred.Label == "":
		return r.fallbackLabel, nil
	}

	if len(pred.Scores) == 0 {
		return pred.Label, []domain.Prediction{{Label: pred.Label, Confidence: pred.Confidence}}
	}
	preds := make([]domain.Prediction, 0, len(pred.Scores))
	for name, score := range pred.Scores {
		preds = append(preds, domain.Prediction{Label: name, Confidence: score})
	}
	return pred.Label, preds
}

// touch advances the feed's last sync time, failures are only logged
func (r *Refresher) touch(ctx context.Context, f domain.Feed) {
	if err := r.feeds.UpdateFeedSyncTime(ctx, f.ID, r.now()); err != nil {
		r.logger.Logf("[WARN] failed to update sync time of feed %s: %v", f.URL, err)
	}
}

// publishedAt prefers the feed's date, then the page's one, then the time of processing
func publishedAt(entry domain.FeedEntry, extracted *domain.ExtractedContent, now time.Time) time.Time {
	switch {
	case entry.PublishedAt != nil && !entry.PublishedAt.IsZero():
		return entry.PublishedAt.UTC()
	case extracted.PublishedAt != nil && !extracted.PublishedAt.IsZero():
		return extracted.PublishedAt.UTC()
	default:
		return now
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
