package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/sift/pkg/domain"
	"github.com/umputun/sift/pkg/feed"
)

//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore
//go:generate moq -out mocks/article_store.go -pkg mocks -skip-ensure -fmt goimports . ArticleStore
//go:generate moq -out mocks/refresher.go -pkg mocks -skip-ensure -fmt goimports . Refresher
//go:generate moq -out mocks/subscriber.go -pkg mocks -skip-ensure -fmt goimports . Subscriber
//go:generate moq -out mocks/pinger.go -pkg mocks -skip-ensure -fmt goimports . Pinger

// Server represents HTTP server instance
type Server struct {
	cfg        Config
	feeds      FeedStore
	articles   ArticleStore
	refresher  Refresher
	subscriber Subscriber
	store      Pinger
	generator  *feed.Generator
	logger     lgr.L

	// refreshes started by requests run on this context, canceled when the server shuts down
	baseCtx    context.Context
	cancelBase context.CancelFunc

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Config holds server settings
type Config struct {
	Listen  string
	Timeout time.Duration
	BaseURL string // public url used in generated RSS links
	Version string
	Debug   bool
}

// FeedStore provides feed subscriptions
type FeedStore interface {
	GetFeeds(ctx context.Context) ([]domain.Feed, error)
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	DeleteFeed(ctx context.Context, id int64) error
}

// ArticleStore provides stored articles
type ArticleStore interface {
	GetArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	GetPredictions(ctx context.Context, articleID int64) ([]domain.Prediction, error)
	SetBookmarked(ctx context.Context, id int64, bookmarked bool) error
	SetRead(ctx context.Context, id int64, read bool) error
	DeleteArticle(ctx context.Context, id int64) error
}

// Refresher triggers feed refreshes and reports progress
type Refresher interface {
	RefreshAll(ctx context.Context)
	RefreshFeed(ctx context.Context, f domain.Feed) error
	IsRefreshing() bool
}

// Subscriber adds new feeds
type Subscriber interface {
	Subscribe(ctx context.Context, url string) (*domain.Feed, error)
}

// Pinger checks the store connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups collaborators of the server
type Deps struct {
	Feeds      FeedStore
	Articles   ArticleStore
	Refresher  Refresher
	Subscriber Subscriber
	Store      Pinger // optional, reported by the status endpoint
	Logger     lgr.L
}

// New initializes a new server instance
func New(cfg Config, deps Deps) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = lgr.NoOp
	}
	s := &Server{
		cfg:        cfg,
		feeds:      deps.Feeds,
		articles:   deps.Articles,
		refresher:  deps.Refresher,
		subscriber: deps.Subscriber,
		store:      deps.Store,
		generator:  feed.NewGenerator(cfg.BaseURL),
		logger:     deps.Logger,
		router:     routegroup.New(http.NewServeMux()),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	s.logger.Logf("[INFO] starting server on %s", s.cfg.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Timeout,
		ReadTimeout:       s.cfg.Timeout,
		WriteTimeout:      s.cfg.Timeout,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		s.logger.Logf("[INFO] shutting down server")
		s.cancelBase()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Logf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("sift", "umputun", s.cfg.Version))
	s.router.Use(rest.Ping)

	if s.cfg.Debug {
		s.router.Use(logger.New(logger.Log(s.logger), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(s.logger))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)

		r.HandleFunc("GET /feeds", s.listFeedsHandler)
		r.HandleFunc("POST /feeds", s.subscribeHandler)
		r.HandleFunc("GET /feeds/opml", s.opmlHandler)
		r.HandleFunc("GET /feeds/{id}", s.getFeedHandler)
		r.HandleFunc("DELETE /feeds/{id}", s.deleteFeedHandler)
		r.HandleFunc("POST /feeds/{id}/refresh", s.refreshFeedHandler)

		r.HandleFunc("GET /articles", s.listArticlesHandler)
		r.HandleFunc("GET /articles/{id}", s.getArticleHandler)
		r.HandleFunc("DELETE /articles/{id}", s.deleteArticleHandler)
		r.HandleFunc("POST /articles/{id}/bookmark", s.flagHandler(flagBookmarked, true))
		r.HandleFunc("DELETE /articles/{id}/bookmark", s.flagHandler(flagBookmarked, false))
		r.HandleFunc("POST /articles/{id}/read", s.flagHandler(flagRead, true))
		r.HandleFunc("DELETE /articles/{id}/read", s.flagHandler(flagRead, false))
	})

	// RSS routes
	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /rss/{label}", s.rssHandler)
}
