package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sift/pkg/domain"
)

// setupTestDB creates repositories backed by a temporary database file
func setupTestDB(t *testing.T) *Repositories {
	t.Helper()
	cfg := Config{
		DSN:             "file:" + filepath.Join(t.TempDir(), "test.db") + "?_txlock=immediate",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Second,
	}
	repos, err := NewRepositories(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repos.Close()) })
	return repos
}

func createTestFeed(t *testing.T, repos *Repositories, url string) *domain.Feed {
	t.Helper()
	f := &domain.Feed{URL: url, Title: "Feed " + url, Description: "test feed"}
	require.NoError(t, repos.Feed.CreateFeed(context.Background(), f))
	return f
}

func testArticle(feedID int64, url string, published time.Time) *domain.Article {
	return &domain.Article{
		FeedID:      feedID,
		Title:       "Title of " + url,
		URL:         url,
		Description: "description",
		HTMLContent: "<p>body</p>",
		TextContent: "body",
		Summary:     "summary",
		Label:       "Tech",
		PublishedAt: published,
	}
}

func TestRepositories_Integration(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repos.Ping(ctx))

	feed := createTestFeed(t, repos, "https://example.com/feed.xml")
	assert.NotZero(t, feed.ID)
	assert.False(t, feed.AddedAt.IsZero())

	got, err := repos.Feed.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed.xml", got.URL)
	assert.Equal(t, "Feed https://example.com/feed.xml", got.Title)
	assert.Nil(t, got.LastSyncedAt)

	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	article := testArticle(feed.ID, "https://example.com/a1", published)
	preds := []domain.Prediction{{Label: "Tech", Confidence: 0.8}, {Label: "Business", Confidence: 0.2}}
	syncedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Article.SaveArticle(ctx, article, preds, syncedAt))
	assert.NotZero(t, article.ID)

	stored, err := repos.Article.GetArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title of https://example.com/a1", stored.Title)
	assert.Equal(t, "Tech", stored.Label)
	assert.Equal(t, "summary", stored.Summary)
	assert.True(t, published.Equal(stored.PublishedAt))
	assert.False(t, stored.IsBookmarked)
	assert.False(t, stored.IsRead)

	storedPreds, err := repos.Article.GetPredictions(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, storedPreds, 2)
	assert.Equal(t, "Tech", storedPreds[0].Label)
	assert.InDelta(t, 0.8, storedPreds[0].Confidence, 1e-9)

	got, err = repos.Feed.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, syncedAt.Equal(*got.LastSyncedAt))
}

func TestNewRepositories_InvalidDSN(t *testing.T) {
	cfg := Config{DSN: "file:" + filepath.Join(t.TempDir(), "missing", "dir", "test.db") + "?mode=rw"}
	_, err := NewRepositories(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNewRepositories_Reopen(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	repos, err := NewRepositories(ctx, Config{DSN: dsn}, nil)
	require.NoError(t, err)
	_, _, err = repos.Label.ImportLabelSet(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, repos.Close())

	// migrations are already applied, data survives
	repos, err = NewRepositories(ctx, Config{DSN: dsn}, nil)
	require.NoError(t, err)
	defer repos.Close()
	set, err := repos.Label.LatestLabelSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, set.Labels)
}

func TestWithConnPragmas(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"test.db", "test.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:test.db?mode=rwc", "file:test.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:test.db?_pragma=busy_timeout(100)", "file:test.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)"},
		{"x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(1)", "x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(1)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withConnPragmas(tt.dsn), tt.dsn)
	}
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy", errors.New("SQLITE_BUSY: try again"), true},
		{"locked", errors.New("database is locked"), true},
		{"table locked", errors.New("database table is locked"), true},
		{"other", errors.New("no such table"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLockError(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("lock errors are retried", func(t *testing.T) {
		calls := 0
		err := withRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors stop immediately and keep identity", func(t *testing.T) {
		calls := 0
		err := withRetry(ctx, func() error {
			calls++
			return ErrDuplicateURL
		})
		require.ErrorIs(t, err, ErrDuplicateURL)
		assert.Equal(t, 1, calls)
	})
}

func TestFeedRepository(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	t.Run("duplicate url", func(t *testing.T) {
		createTestFeed(t, repos, "https://dup.example.com/rss")
		err := repos.Feed.CreateFeed(ctx, &domain.Feed{URL: "https://dup.example.com/rss"})
		require.ErrorIs(t, err, ErrDuplicateFeed)
	})

	t.Run("get feeds", func(t *testing.T) {
		createTestFeed(t, repos, "https://other.example.com/rss")
		feeds, err := repos.Feed.GetFeeds(ctx)
		require.NoError(t, err)
		assert.Len(t, feeds, 2)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repos.Feed.GetFeed(ctx, 9999)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, repos.Feed.DeleteFeed(ctx, 9999), ErrNotFound)
		require.ErrorIs(t, repos.Feed.UpdateFeedSyncTime(ctx, 9999, time.Now()), ErrNotFound)
	})
}

func TestFeedRepository_UpdateFeedSyncTimeMonotonic(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed := createTestFeed(t, repos, "https://example.com/feed")

	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, repos.Feed.UpdateFeedSyncTime(ctx, feed.ID, t2))
	require.NoError(t, repos.Feed.UpdateFeedSyncTime(ctx, feed.ID, t1)) // older, ignored

	got, err := repos.Feed.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, t2.Equal(*got.LastSyncedAt), "got %v", got.LastSyncedAt)

	// timestamps in other zones are compared as instants
	t3 := t2.Add(time.Minute).In(time.FixedZone("EST", -5*3600))
	require.NoError(t, repos.Feed.UpdateFeedSyncTime(ctx, feed.ID, t3))
	got, err = repos.Feed.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.True(t, t3.Equal(*got.LastSyncedAt))
	assert.Equal(t, time.UTC, got.LastSyncedAt.Location())
}

func TestArticleRepository_InsertDuplicate(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed1 := createTestFeed(t, repos, "https://one.example.com/feed")
	feed2 := createTestFeed(t, repos, "https://two.example.com/feed")

	first := testArticle(feed1.ID, "https://example.com/shared", time.Now())
	first.Title = "original"
	require.NoError(t, repos.Article.InsertArticle(ctx, first))

	// same url from another feed is a duplicate, stored row is not overwritten
	second := testArticle(feed2.ID, "https://example.com/shared", time.Now())
	second.Title = "replacement"
	err := repos.Article.InsertArticle(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateURL)

	stored, err := repos.Article.GetArticle(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Title)
	assert.Equal(t, feed1.ID, stored.FeedID)

	err = repos.Article.SaveArticle(ctx, testArticle(feed2.ID, "https://example.com/shared", time.Now()), nil, time.Now())
	require.ErrorIs(t, err, ErrDuplicateURL)
}

func TestArticleRepository_SaveArticleAtomic(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed := createTestFeed(t, repos, "https://example.com/feed")

	syncedAt := time.Date(2024, 3, 3, 3, 3, 3, 0, time.UTC)
	require.NoError(t, repos.Feed.UpdateFeedSyncTime(ctx, feed.ID, syncedAt))

	// unknown feed fails the sync time step, article insert must be rolled back
	orphan := testArticle(feed.ID, "https://example.com/orphan", time.Now())
	orphan.FeedID = 4242
	err := repos.Article.SaveArticle(ctx, orphan, []domain.Prediction{{Label: "Tech", Confidence: 1}}, time.Now())
	require.Error(t, err)
	assert.Zero(t, orphan.ID)

	urls, err := repos.Article.ExistingURLs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, urls)

	// duplicate labels in predictions are ignored
	a := testArticle(feed.ID, "https://example.com/ok", time.Now())
	preds := []domain.Prediction{{Label: "Tech", Confidence: 0.9}, {Label: "Tech", Confidence: 0.1}}
	require.NoError(t, repos.Article.SaveArticle(ctx, a, preds, syncedAt.Add(-time.Hour)))
	storedPreds, err := repos.Article.GetPredictions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, storedPreds, 1)
	assert.InDelta(t, 0.9, storedPreds[0].Confidence, 1e-9)

	// older sync time did not move the feed backwards
	got, err := repos.Feed.GetFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.True(t, syncedAt.Equal(*got.LastSyncedAt))
}

func TestArticleRepository_ExistingURLs(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed1 := createTestFeed(t, repos, "https://one.example.com/feed")
	feed2 := createTestFeed(t, repos, "https://two.example.com/feed")

	require.NoError(t, repos.Article.InsertArticle(ctx, testArticle(feed1.ID, "https://example.com/1", time.Now())))
	require.NoError(t, repos.Article.InsertArticle(ctx, testArticle(feed1.ID, "https://example.com/2", time.Now())))
	require.NoError(t, repos.Article.InsertArticle(ctx, testArticle(feed2.ID, "https://example.com/3", time.Now())))

	all, err := repos.Article.ExistingURLs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	perFeed, err := repos.Article.ExistingURLs(ctx, feed1.ID)
	require.NoError(t, err)
	assert.Len(t, perFeed, 2)
	assert.Contains(t, perFeed, "https://example.com/1")
	assert.NotContains(t, perFeed, "https://example.com/3")
}

func TestArticleRepository_GetArticlesAndFlags(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed1 := createTestFeed(t, repos, "https://one.example.com/feed")
	feed2 := createTestFeed(t, repos, "https://two.example.com/feed")

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a1 := testArticle(feed1.ID, "https://example.com/1", base)
	a2 := testArticle(feed1.ID, "https://example.com/2", base.Add(time.Hour))
	a2.Label = "Sports"
	a3 := testArticle(feed2.ID, "https://example.com/3", base.Add(2*time.Hour))
	for _, a := range []*domain.Article{a1, a2, a3} {
		require.NoError(t, repos.Article.InsertArticle(ctx, a))
	}

	all, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, a3.ID, all[0].ID, "newest first")
	assert.Equal(t, a1.ID, all[2].ID)

	byFeed, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{FeedID: feed1.ID})
	require.NoError(t, err)
	assert.Len(t, byFeed, 2)

	byLabel, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{Label: "Sports"})
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, a2.ID, byLabel[0].ID)

	paged, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, a2.ID, paged[0].ID)

	require.NoError(t, repos.Article.SetBookmarked(ctx, a1.ID, true))
	require.NoError(t, repos.Article.SetRead(ctx, a3.ID, true))

	bookmarked, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{BookmarkedOnly: true})
	require.NoError(t, err)
	require.Len(t, bookmarked, 1)
	assert.Equal(t, a1.ID, bookmarked[0].ID)
	assert.True(t, bookmarked[0].IsBookmarked)

	unread, err := repos.Article.GetArticles(ctx, domain.ArticleFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	require.NoError(t, repos.Article.SetBookmarked(ctx, a1.ID, false))
	stored, err := repos.Article.GetArticle(ctx, a1.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBookmarked)

	require.ErrorIs(t, repos.Article.SetRead(ctx, 9999, true), ErrNotFound)

	require.NoError(t, repos.Article.DeleteArticle(ctx, a2.ID))
	_, err = repos.Article.GetArticle(ctx, a2.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repos.Article.DeleteArticle(ctx, a2.ID), ErrNotFound)
}

func TestFeedRepository_DeleteCascades(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feed := createTestFeed(t, repos, "https://example.com/feed")

	a := testArticle(feed.ID, "https://example.com/1", time.Now())
	require.NoError(t, repos.Article.SaveArticle(ctx, a, []domain.Prediction{{Label: "Tech", Confidence: 1}}, time.Now()))

	require.NoError(t, repos.Feed.DeleteFeed(ctx, feed.ID))

	_, err := repos.Article.GetArticle(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, repos.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM predictions"))
	assert.Zero(t, count)
}

func TestArticleRepository_ConcurrentSaves(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	feeds := []*domain.Feed{
		createTestFeed(t, repos, "https://one.example.com/feed"),
		createTestFeed(t, repos, "https://two.example.com/feed"),
		createTestFeed(t, repos, "https://three.example.com/feed"),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i, f := range feeds {
		wg.Add(1)
		go func(n int, feedID int64) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				a := testArticle(feedID, "https://example.com/"+string(rune('a'+n))+"/"+string(rune('a'+j)), time.Now())
				errs <- repos.Article.SaveArticle(ctx, a, nil, time.Now())
			}
		}(i, f.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	urls, err := repos.Article.ExistingURLs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, urls, 30)
}
