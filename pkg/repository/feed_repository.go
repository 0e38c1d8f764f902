package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/sift/pkg/domain"
)

// FeedRepository handles feed-related database operations
type FeedRepository struct {
	db *sqlx.DB
}

// feedSQL represents a feed for SQL operations
type feedSQL struct {
	ID           int64        `db:"id"`
	Title        string       `db:"title"`
	URL          string       `db:"url"`
	Description  string       `db:"description"`
	IconURL      string       `db:"icon_url"`
	AddedAt      time.Time    `db:"added_at"`
	LastSyncedAt sql.NullTime `db:"last_synced_at"`
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(database *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: database}
}

// CreateFeed inserts a new feed subscription, returns ErrDuplicateFeed if the url is already subscribed
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	if feed.AddedAt.IsZero() {
		feed.AddedAt = time.Now()
	}
	sqlFeed := &feedSQL{
		Title:       feed.Title,
		URL:         feed.URL,
		Description: feed.Description,
		IconURL:     feed.IconURL,
		AddedAt:     feed.AddedAt.UTC(),
	}

	query := `
		INSERT INTO feeds (title, url, description, icon_url, added_at)
		VALUES (:title, :url, :description, :icon_url, :added_at)
	`
	var id int64
	err := withRetry(ctx, func() error {
		result, err := r.db.NamedExecContext(ctx, query, sqlFeed)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("create feed %s: %w", feed.URL, ErrDuplicateFeed)
	}
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	feed.ID = id
	feed.AddedAt = sqlFeed.AddedAt
	return nil
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	var sqlFeed feedSQL
	err := r.db.GetContext(ctx, &sqlFeed, "SELECT * FROM feeds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get feed %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return sqlFeed.toDomain(), nil
}

// GetFeeds retrieves all subscribed feeds ordered by title
func (r *FeedRepository) GetFeeds(ctx context.Context) ([]domain.Feed, error) {
	var sqlFeeds []feedSQL
	if err := r.db.SelectContext(ctx, &sqlFeeds, "SELECT * FROM feeds ORDER BY title, id"); err != nil {
		return nil, fmt.Errorf("get feeds: %w", err)
	}

	feeds := make([]domain.Feed, len(sqlFeeds))
	for i := range sqlFeeds {
		feeds[i] = *sqlFeeds[i].toDomain()
	}
	return feeds, nil
}

// DeleteFeed removes a feed together with its articles and their predictions
func (r *FeedRepository) DeleteFeed(ctx context.Context, id int64) error {
	var affected int64
	err := withRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete feed %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateFeedSyncTime advances the feed's last sync time, an older timestamp is ignored
func (r *FeedRepository) UpdateFeedSyncTime(ctx context.Context, feedID int64, ts time.Time) error {
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if err := advanceSyncTime(ctx, tx, feedID, ts); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("update feed sync time: %w", err)
	}
	return nil
}

func (f *feedSQL) toDomain() *domain.Feed {
	feed := &domain.Feed{
		ID:          f.ID,
		Title:       f.Title,
		URL:         f.URL,
		Description: f.Description,
		IconURL:     f.IconURL,
		AddedAt:     f.AddedAt.UTC(),
	}
	if f.LastSyncedAt.Valid {
		ts := f.LastSyncedAt.Time.UTC()
		feed.LastSyncedAt = &ts
	}
	return feed
}
