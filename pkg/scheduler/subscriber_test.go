package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sift/pkg/domain"
	"github.com/umputun/sift/pkg/feed"
	"github.com/umputun/sift/pkg/repository"
	"github.com/umputun/sift/pkg/scheduler/mocks"
)

func TestSubscriber_Subscribe(t *testing.T) {
	doc, err := feed.ParseDocument([]byte(`<?xml version="1.0"?><rss version="2.0"><channel>
		<title>Daily News</title><description>all the news</description><link>https://news.example.com</link>
		<image><url>https://news.example.com/logo.png</url></image></channel></rss>`))
	require.NoError(t, err)

	parser := &mocks.ParserMock{ParseFunc: func(ctx context.Context, url string) (feed.Document, error) {
		return doc, nil
	}}
	store := &mocks.FeedCreatorMock{CreateFeedFunc: func(ctx context.Context, f *domain.Feed) error {
		f.ID = 42
		return nil
	}}

	s := NewSubscriber(parser, store, nil)
	f, err := s.Subscribe(context.Background(), " https://news.example.com/rss ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.ID)
	assert.Equal(t, "Daily News", f.Title)
	assert.Equal(t, "all the news", f.Description)
	assert.Equal(t, "https://news.example.com/rss", f.URL)
	assert.Equal(t, "https://news.example.com/rss", parser.ParseCalls()[0].URL)
	require.Len(t, store.CreateFeedCalls(), 1)
}

func TestSubscriber_UntitledFeed(t *testing.T) {
	doc, err := feed.ParseDocument([]byte(`{"version":"https://jsonfeed.org/version/1.1","items":[]}`))
	require.NoError(t, err)
	parser := &mocks.ParserMock{ParseFunc: func(ctx context.Context, url string) (feed.Document, error) {
		return doc, nil
	}}
	store := &mocks.FeedCreatorMock{CreateFeedFunc: func(ctx context.Context, f *domain.Feed) error { return nil }}

	f, err := NewSubscriber(parser, store, nil).Subscribe(context.Background(), "https://blog.example.org/feed.json")
	require.NoError(t, err)
	assert.Equal(t, "blog.example.org", f.Title)
}

func TestSubscriber_Errors(t *testing.T) {
	t.Run("parse failure", func(t *testing.T) {
		parser := &mocks.ParserMock{ParseFunc: func(ctx context.Context, url string) (feed.Document, error) {
			return nil, &feed.ParseError{URL: url, Err: feed.ErrUnknownFormat}
		}}
		store := &mocks.FeedCreatorMock{}
		_, err := NewSubscriber(parser, store, nil).Subscribe(context.Background(), "https://example.com/x")
		require.ErrorIs(t, err, feed.ErrUnknownFormat)
		assert.Empty(t, store.CreateFeedCalls())
	})

	t.Run("already subscribed", func(t *testing.T) {
		doc, err := feed.ParseDocument([]byte(`<rss version="2.0"><channel><title>T</title></channel></rss>`))
		require.NoError(t, err)
		parser := &mocks.ParserMock{ParseFunc: func(ctx context.Context, url string) (feed.Document, error) {
			return doc, nil
		}}
		store := &mocks.FeedCreatorMock{CreateFeedFunc: func(ctx context.Context, f *domain.Feed) error {
			return repository.ErrDuplicateFeed
		}}
		_, err = NewSubscriber(parser, store, nil).Subscribe(context.Background(), "https://example.com/rss")
		require.True(t, errors.Is(err, repository.ErrDuplicateFeed))
	})
}
