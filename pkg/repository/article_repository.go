package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/sift/pkg/domain"
)

const defaultArticlesLimit = 100

// ArticleRepository handles article and prediction database operations
type ArticleRepository struct {
	db *sqlx.DB
}

// articleSQL represents an article for SQL operations
type articleSQL struct {
	ID              int64     `db:"id"`
	FeedID          int64     `db:"feed_id"`
	Title           string    `db:"title"`
	URL             string    `db:"url"`
	Description     string    `db:"description"`
	HTMLContent     string    `db:"html_content"`
	TextContent     string    `db:"text_content"`
	MarkdownContent string    `db:"markdown_content"`
	Summary         string    `db:"summary"`
	Label           string    `db:"label"`
	ImageURL        string    `db:"image_url"`
	Author          string    `db:"author"`
	FaviconURL      string    `db:"favicon_url"`
	SiteName        string    `db:"site_name"`
	PublishedAt     time.Time `db:"published_at"`
	CreatedAt       time.Time `db:"created_at"`
	IsBookmarked    bool      `db:"is_bookmarked"`
	IsRead          bool      `db:"is_read"`
}

// predictionSQL represents a stored prediction
type predictionSQL struct {
	Label      string  `db:"label"`
	Confidence float64 `db:"confidence"`
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(database *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: database}
}

// ExistingURLs returns urls of stored articles for the feed, feedID 0 returns urls of all feeds
func (r *ArticleRepository) ExistingURLs(ctx context.Context, feedID int64) (map[string]struct{}, error) {
	query := "SELECT url FROM articles"
	args := []any{}
	if feedID != 0 {
		query += " WHERE feed_id = ?"
		args = append(args, feedID)
	}

	var urls []string
	if err := r.db.SelectContext(ctx, &urls, query, args...); err != nil {
		return nil, fmt.Errorf("get existing urls: %w", err)
	}

	res := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		res[u] = struct{}{}
	}
	return res, nil
}

// InsertArticle stores a new article, returns ErrDuplicateURL if the url is already stored.
// Existing rows are never overwritten.
func (r *ArticleRepository) InsertArticle(ctx context.Context, article *domain.Article) error {
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if err := insertArticle(ctx, tx, article); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// SaveArticle stores the article, its predictions and advances the feed sync time in one transaction.
// Nothing is written if any step fails.
func (r *ArticleRepository) SaveArticle(ctx context.Context, article *domain.Article, preds []domain.Prediction,
	syncedAt time.Time) error {
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if err := insertArticle(ctx, tx, article); err != nil {
			return err
		}

		for _, p := range preds {
			_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO predictions (article_id, label, confidence, created_at)
				VALUES (?, ?, ?, ?)`, article.ID, p.Label, p.Confidence, article.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert prediction %q: %w", p.Label, err)
			}
		}

		if err := advanceSyncTime(ctx, tx, article.FeedID, syncedAt); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		article.ID = 0
		return fmt.Errorf("save article: %w", err)
	}
	return nil
}

// insertArticle inserts the article row within the transaction and sets its ID and CreatedAt
func insertArticle(ctx context.Context, tx *sqlx.Tx, article *domain.Article) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	row := fromDomainArticle(article)

	query := `
		INSERT INTO articles (feed_id, title, url, description, html_content, text_content, markdown_content,
			summary, label, image_url, author, favicon_url, site_name, published_at, created_at)
		VALUES (:feed_id, :title, :url, :description, :html_content, :text_content, :markdown_content,
			:summary, :label, :image_url, :author, :favicon_url, :site_name, :published_at, :created_at)
	`
	result, err := tx.NamedExecContext(ctx, query, row)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", article.URL, ErrDuplicateURL)
	}
	if err != nil {
		return fmt.Errorf("insert article row: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insert id: %w", err)
	}
	article.ID = id
	article.CreatedAt = row.CreatedAt
	article.PublishedAt = row.PublishedAt
	return nil
}

// GetArticle retrieves an article by ID
func (r *ArticleRepository) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	var row articleSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM articles WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get article %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return row.toDomain(), nil
}

// GetArticles retrieves articles matching the filter, newest first
func (r *ArticleRepository) GetArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	var conditions []string
	var args []any

	if filter.FeedID != 0 {
		conditions = append(conditions, "feed_id = ?")
		args = append(args, filter.FeedID)
	}
	if filter.Label != "" {
		conditions = append(conditions, "label = ?")
		args = append(args, filter.Label)
	}
	if filter.BookmarkedOnly {
		conditions = append(conditions, "is_bookmarked = 1")
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = 0")
	}

	query := "SELECT * FROM articles"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultArticlesLimit
	}
	args = append(args, limit, max(filter.Offset, 0))

	var rows []articleSQL
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get articles: %w", err)
	}

	articles := make([]domain.Article, len(rows))
	for i := range rows {
		articles[i] = *rows[i].toDomain()
	}
	return articles, nil
}

// SetBookmarked sets or clears the bookmark flag of an article
func (r *ArticleRepository) SetBookmarked(ctx context.Context, id int64, bookmarked bool) error {
	return r.updateFlag(ctx, id, "is_bookmarked", bookmarked)
}

// SetRead sets or clears the read flag of an article
func (r *ArticleRepository) SetRead(ctx context.Context, id int64, read bool) error {
	return r.updateFlag(ctx, id, "is_read", read)
}

// updateFlag sets a boolean column, column is always one of the known flag names
func (r *ArticleRepository) updateFlag(ctx context.Context, id int64, column string, value bool) error {
	var affected int64
	err := withRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, "UPDATE articles SET "+column+" = ? WHERE id = ?", value, id) //nolint:gosec // column is a constant
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s of article %d: %w", column, id, ErrNotFound)
	}
	return nil
}

// DeleteArticle removes an article and its predictions
func (r *ArticleRepository) DeleteArticle(ctx context.Context, id int64) error {
	var affected int64
	err := withRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete article %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetPredictions returns stored predictions of an article, highest confidence first
func (r *ArticleRepository) GetPredictions(ctx context.Context, articleID int64) ([]domain.Prediction, error) {
	var rows []predictionSQL
	query := "SELECT label, confidence FROM predictions WHERE article_id = ? ORDER BY confidence DESC, id"
	if err := r.db.SelectContext(ctx, &rows, query, articleID); err != nil {
		return nil, fmt.Errorf("get predictions: %w", err)
	}

	preds := make([]domain.Prediction, len(rows))
	for i, p := range rows {
		preds[i] = domain.Prediction{Label: p.Label, Confidence: p.Confidence}
	}
	return preds, nil
}

func fromDomainArticle(a *domain.Article) *articleSQL {
	return &articleSQL{
		ID:              a.ID,
		FeedID:          a.FeedID,
		Title:           a.Title,
		URL:             a.URL,
		Description:     a.Description,
		HTMLContent:     a.HTMLContent,
		TextContent:     a.TextContent,
		MarkdownContent: a.MarkdownContent,
		Summary:         a.Summary,
		Label:           a.Label,
		ImageURL:        a.ImageURL,
		Author:          a.Author,
		FaviconURL:      a.FaviconURL,
		SiteName:        a.SiteName,
		PublishedAt:     a.PublishedAt.UTC(),
		CreatedAt:       a.CreatedAt.UTC(),
		IsBookmarked:    a.IsBookmarked,
		IsRead:          a.IsRead,
	}
}

func (a *articleSQL) toDomain() *domain.Article {
	return &domain.Article{
		ID:              a.ID,
		FeedID:          a.FeedID,
		Title:           a.Title,
		URL:             a.URL,
		Description:     a.Description,
		HTMLContent:     a.HTMLContent,
		TextContent:     a.TextContent,
		MarkdownContent: a.MarkdownContent,
		Summary:         a.Summary,
		Label:           a.Label,
		ImageURL:        a.ImageURL,
		Author:          a.Author,
		FaviconURL:      a.FaviconURL,
		SiteName:        a.SiteName,
		PublishedAt:     a.PublishedAt.UTC(),
		CreatedAt:       a.CreatedAt.UTC(),
		IsBookmarked:    a.IsBookmarked,
		IsRead:          a.IsRead,
	}
}
