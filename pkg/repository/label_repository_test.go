package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelRepository_ImportLabelSet(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	_, err := repos.Label.LatestLabelSet(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	version, created, err := repos.Label.ImportLabelSet(ctx, []string{"Business", "Sports", "Tech"})
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.True(t, created)

	// identical list is a no-op
	version, created, err = repos.Label.ImportLabelSet(ctx, []string{"Business", "Sports", "Tech"})
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, created)

	// order matters, a reordered list is a new version
	version, created, err = repos.Label.ImportLabelSet(ctx, []string{"Tech", "Business", "Sports"})
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.True(t, created)

	set, err := repos.Label.LatestLabelSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Version)
	assert.Equal(t, []string{"Tech", "Business", "Sports"}, set.Labels)
	assert.False(t, set.CreatedAt.IsZero())

	// previous version is untouched
	labels, err := repos.Label.GetLabels(ctx, 1)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	for i, name := range []string{"Business", "Sports", "Tech"} {
		assert.Equal(t, name, labels[i].Name)
		assert.Equal(t, i, labels[i].Index)
		assert.Equal(t, 1, labels[i].LabelSetVersion)
	}
}

func TestLabelRepository_EmptyList(t *testing.T) {
	repos := setupTestDB(t)
	_, _, err := repos.Label.ImportLabelSet(context.Background(), nil)
	require.Error(t, err)
}

func TestLabelRepository_AppendOnly(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	_, _, err := repos.Label.ImportLabelSet(ctx, []string{"A", "B"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
	}{
		{"update label set", "UPDATE label_sets SET labels_json = '[]' WHERE version = 1"},
		{"delete label set", "DELETE FROM label_sets WHERE version = 1"},
		{"update label", "UPDATE labels SET name = 'C' WHERE label_set_version = 1"},
		{"delete label", "DELETE FROM labels WHERE label_set_version = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repos.DB.ExecContext(ctx, tt.query)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "append-only")
		})
	}

	set, err := repos.Label.LatestLabelSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, set.Labels)
}
