package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/sift/pkg/domain"
)

// LabelRepository handles versioned label sets. Sets are append-only, a changed vocabulary
// becomes a new version and older versions stay untouched.
type LabelRepository struct {
	db *sqlx.DB
}

// labelSetSQL represents a label set version for SQL operations
type labelSetSQL struct {
	Version    int       `db:"version"`
	LabelsJSON string    `db:"labels_json"`
	CreatedAt  time.Time `db:"created_at"`
}

// labelSQL represents a single label row
type labelSQL struct {
	ID              int64     `db:"id"`
	LabelSetVersion int       `db:"label_set_version"`
	Name            string    `db:"name"`
	Idx             int       `db:"idx"`
	CreatedAt       time.Time `db:"created_at"`
}

// NewLabelRepository creates a new label repository
func NewLabelRepository(database *sqlx.DB) *LabelRepository {
	return &LabelRepository{db: database}
}

// ImportLabelSet stores labels as a new version unless they equal the latest version.
// Returns the active version and whether a new one was created.
func (r *LabelRepository) ImportLabelSet(ctx context.Context, labels []string) (version int, created bool, err error) {
	if len(labels) == 0 {
		return 0, false, errors.New("import label set: empty label list")
	}
	canonical, err := json.Marshal(labels)
	if err != nil {
		return 0, false, fmt.Errorf("marshal labels: %w", err)
	}

	err = withRetry(ctx, func() error {
		created = false
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		var latest labelSetSQL
		err = tx.GetContext(ctx, &latest, "SELECT * FROM label_sets ORDER BY version DESC LIMIT 1")
		switch {
		case errors.Is(err, sql.ErrNoRows):
			latest = labelSetSQL{}
		case err != nil:
			return fmt.Errorf("get latest label set: %w", err)
		}

		if latest.Version > 0 && latest.LabelsJSON == string(canonical) {
			version = latest.Version
			return nil
		}

		version = latest.Version + 1
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, "INSERT INTO label_sets (version, labels_json, created_at) VALUES (?, ?, ?)",
			version, string(canonical), now); err != nil {
			return fmt.Errorf("insert label set: %w", err)
		}
		for i, name := range labels {
			if _, err := tx.ExecContext(ctx, `INSERT INTO labels (label_set_version, name, idx, created_at)
				VALUES (?, ?, ?, ?)`, version, name, i, now); err != nil {
				return fmt.Errorf("insert label %q: %w", name, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("import label set: %w", err)
	}
	return version, created, nil
}

// LatestLabelSet returns the newest label set version, ErrNotFound if none was imported
func (r *LabelRepository) LatestLabelSet(ctx context.Context) (*domain.LabelSet, error) {
	var row labelSetSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM label_sets ORDER BY version DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest label set: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest label set: %w", err)
	}

	var labels []string
	if err := json.Unmarshal([]byte(row.LabelsJSON), &labels); err != nil {
		return nil, fmt.Errorf("decode labels of version %d: %w", row.Version, err)
	}
	return &domain.LabelSet{Version: row.Version, Labels: labels, CreatedAt: row.CreatedAt.UTC()}, nil
}

// GetLabels returns labels of the given version ordered by index
func (r *LabelRepository) GetLabels(ctx context.Context, version int) ([]domain.Label, error) {
	var rows []labelSQL
	query := "SELECT * FROM labels WHERE label_set_version = ? ORDER BY idx"
	if err := r.db.SelectContext(ctx, &rows, query, version); err != nil {
		return nil, fmt.Errorf("get labels: %w", err)
	}

	labels := make([]domain.Label, len(rows))
	for i, l := range rows {
		labels[i] = domain.Label{
			ID:              l.ID,
			LabelSetVersion: l.LabelSetVersion,
			Name:            l.Name,
			Index:           l.Idx,
			CreatedAt:       l.CreatedAt.UTC(),
		}
	}
	return labels, nil
}
