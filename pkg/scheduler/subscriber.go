package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/sift/pkg/domain"
	"github.com/umputun/sift/pkg/feed"
)

//go:generate moq -out mocks/feed_creator.go -pkg mocks -skip-ensure -fmt goimports . FeedCreator

// FeedCreator stores new feed subscriptions
type FeedCreator interface {
	CreateFeed(ctx context.Context, f *domain.Feed) error
}

// Subscriber adds feeds, reading their title, description and icon from the feed document
type Subscriber struct {
	parser Parser
	store  FeedCreator
	logger lgr.L
}

// NewSubscriber makes a subscriber
func NewSubscriber(parser Parser, store FeedCreator, logger lgr.L) *Subscriber {
	if logger == nil {
		logger = lgr.NoOp
	}
	return &Subscriber{parser: parser, store: store, logger: logger}
}

// Subscribe fetches the feed document at url and stores the feed
func (s *Subscriber) Subscribe(ctx context.Context, url string) (*domain.Feed, error) {
	url = strings.TrimSpace(url)
	doc, err := s.parser.Parse(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	meta := feed.SubscriptionMeta(doc, url)
	f := &domain.Feed{
		Title:       meta.Title,
		URL:         url,
		Description: meta.Description,
		IconURL:     meta.IconURL,
	}
	if err := s.store.CreateFeed(ctx, f); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s.logger.Logf("[INFO] subscribed to %q, %s", f.Title, f.URL)
	return f, nil
}
