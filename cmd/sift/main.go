package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/sift/pkg/classifier"
	"github.com/umputun/sift/pkg/config"
	"github.com/umputun/sift/pkg/content"
	"github.com/umputun/sift/pkg/feed"
	"github.com/umputun/sift/pkg/llm"
	"github.com/umputun/sift/pkg/repository"
	"github.com/umputun/sift/pkg/scheduler"
	"github.com/umputun/sift/pkg/summarizer"
	"github.com/umputun/sift/server"
)

// Opts with all CLI options
type Opts struct {
	Config     string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults are used if not set"`
	Listen     string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	RefreshNow bool   `long:"refresh-now" description:"refresh all feeds right after startup"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	SetupLog(opts.Debug)
	log.Printf("[INFO] starting sift version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] shutdown complete")
}

// run wires all components together and blocks until ctx is canceled or the server fails
func run(ctx context.Context, opts Opts) error {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.RefreshNow {
		cfg.Refresh.RunOnStart = true
	}

	logger := lgr.Default()

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close store: %v", err)
		}
	}()

	clf, err := makeClassifier(ctx, cfg, repos.Label, logger)
	if err != nil {
		return fmt.Errorf("failed to set up classifier: %w", err)
	}

	parser := feed.NewParser(cfg.Feed.Timeout, cfg.Feed.UserAgent)
	refresher := scheduler.NewRefresher(scheduler.RefresherConfig{
		FeedStore:    repos.Feed,
		ArticleStore: repos.Article,
		Parser:       parser,
		Extractor: content.NewHTTPExtractor(content.Options{
			Timeout:       cfg.Extraction.Timeout,
			UserAgent:     cfg.Extraction.UserAgent,
			RateLimit:     cfg.Extraction.RateLimit,
			MaxBodySize:   cfg.Extraction.MaxBodySize,
			MinTextLength: cfg.Extraction.MinTextLength,
			Logger:        logger,
		}),
		Summarizer:         summarizer.Summarizer{Sentences: cfg.Refresh.SummarySentences},
		Classifier:         clf,
		FallbackLabel:      cfg.Refresh.FallbackLabel,
		MaxConcurrentFeeds: cfg.Refresh.MaxConcurrentFeeds,
		Logger:             logger,
	})

	sched := scheduler.NewScheduler(refresher, scheduler.Config{
		Schedule:   cfg.Refresh.Schedule,
		RunOnStart: cfg.Refresh.RunOnStart,
		Logger:     logger,
	})
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := server.New(server.Config{
		Listen:  cfg.Server.Listen,
		Timeout: cfg.Server.Timeout,
		BaseURL: cfg.Server.BaseURL,
		Version: revision,
		Debug:   opts.Debug,
	}, server.Deps{
		Feeds:      repos.Feed,
		Articles:   repos.Article,
		Refresher:  refresher,
		Subscriber: scheduler.NewSubscriber(parser, repos.Feed, logger),
		Store:      repos,
		Logger:     logger,
	})

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeClassifier imports the configured label set and builds the classification backend.
// A model that can't be loaded is not fatal, articles get the fallback label instead.
func makeClassifier(ctx context.Context, cfg *config.Config, labels *repository.LabelRepository, logger lgr.L) (scheduler.Classifier, error) {
	if cfg.Classifier.Type == config.ClassifierNone {
		logger.Logf("[INFO] classification disabled, articles get %q label", cfg.Refresh.FallbackLabel)
		return classifier.Unavailable{}, nil
	}

	names, err := classifier.LoadLabels(cfg.Classifier.Labels)
	if err != nil {
		return nil, err
	}
	version, created, err := labels.ImportLabelSet(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("import label set: %w", err)
	}
	if created {
		logger.Logf("[INFO] imported label set version %d with %d labels", version, len(names))
	}
	active, err := labels.LatestLabelSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active label set: %w", err)
	}

	switch cfg.Classifier.Type {
	case config.ClassifierLLM:
		logger.Logf("[INFO] using llm classifier %s, label set version %d", cfg.Classifier.LLM.Model, active.Version)
		return llm.NewClassifier(cfg.Classifier.LLM, active.Labels, logger), nil
	case config.ClassifierModel:
		tokenizer, err := classifier.LoadTokenizer(cfg.Classifier.Tokenizer)
		if err != nil {
			logger.Logf("[WARN] classifier unavailable, can't load tokenizer: %v", err)
			return classifier.Unavailable{}, nil
		}
		model, err := classifier.LoadModel(cfg.Classifier.Model, tokenizer, active.Labels)
		if err != nil {
			logger.Logf("[WARN] classifier unavailable, can't load model: %v", err)
			return classifier.Unavailable{}, nil
		}
		logger.Logf("[INFO] using model classifier, label set version %d", active.Version)
		return model, nil
	}
	return nil, fmt.Errorf("unknown classifier type %q", cfg.Classifier.Type)
}

// SetupLog configures the global logger, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
