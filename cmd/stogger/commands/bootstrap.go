package commands

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wonny/stogger/internal/analysis"
	"github.com/wonny/stogger/internal/contracts"
	"github.com/wonny/stogger/internal/external/finviz"
	"github.com/wonny/stogger/internal/sentiment/encoder"
	"github.com/wonny/stogger/internal/sentiment/lexicon"
	"github.com/wonny/stogger/internal/sentiment/model"
	"github.com/wonny/stogger/internal/store"
	"github.com/wonny/stogger/pkg/config"
	"github.com/wonny/stogger/pkg/database"
	"github.com/wonny/stogger/pkg/httputil"
	"github.com/wonny/stogger/pkg/logger"
	"github.com/wonny/stogger/pkg/redis"
)

// app holds everything a command needs to run the pipeline
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	db       *database.DB            // nil without DATABASE_URL
	reports  *store.ReportRepository // nil without DATABASE_URL
	analyzer *analysis.Analyzer
}

// bootOptions selects the optional parts of the app
type bootOptions struct {
	withDatabase bool
	lexiconOnly  bool
	publisher    contracts.ReportPublisher
}

// loadConfig loads config and builds the logger
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// bootstrap wires clients, scorers and the analyzer
func bootstrap(ctx context.Context, cfg *config.Config, log *logger.Logger, opts bootOptions) (*app, error) {
	a := &app{cfg: cfg, log: log}

	// 1. Redis (optional)
	var err error
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis = redis.Disabled()
	}

	// 2. Database (optional)
	if opts.withDatabase && cfg.Database.URL != "" {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.reports = store.NewReportRepository(a.db.Pool)
		if err := a.reports.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 3. HTTP client & news source
	httpClient := httputil.New(cfg, log).
		WithUserAgent(cfg.News.UserAgent)
	if limiter := newsLimiter(a); limiter != nil {
		httpClient = httpClient.WithLimiter(limiter)
	}
	fetcher := finviz.NewClient(httpClient, cfg.News.BaseURL, log)

	// 4. Scorers
	deps := analysis.Deps{
		Fetcher:   fetcher,
		Location:  cfg.Location(),
		CreatedBy: cfg.Analysis.CreatedBy,
		Logger:    log,
		Publisher: opts.publisher,
	}

	deps.Lexicon = lexicon.New()

	if !opts.lexiconOnly && cfg.NeuralConfigured() {
		vocab, clf, err := loadNeural(cfg, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Encoder = vocab
		deps.Model = clf
	} else {
		log.Info("Neural scorer not configured, running lexicon-only")
	}

	// 5. Analyzer
	a.analyzer, err = analysis.NewAnalyzer(deps)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create analyzer: %w", err)
	}

	return a, nil
}

// newsLimiter prefers the shared Redis limiter over a process-local one
func newsLimiter(a *app) httputil.Limiter {
	if a.cfg.News.RatePerSec <= 0 {
		return nil
	}
	if a.redis.Enabled() {
		return redis.NewRateLimiter(a.redis, "stogger").Bind(redis.NewsRateLimit(a.cfg.News.RatePerSec))
	}
	return rate.NewLimiter(rate.Limit(a.cfg.News.RatePerSec), 1)
}

func loadNeural(cfg *config.Config, log *logger.Logger) (*encoder.Vocabulary, *model.Classifier, error) {
	vocab, err := encoder.LoadVocabulary(cfg.Sentiment.VocabularyPath, cfg.Sentiment.MaxSequenceLength)
	if err != nil {
		return nil, nil, fmt.Errorf("load vocabulary: %w", err)
	}

	clf, err := model.Load(cfg.Sentiment.ModelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}

	// Indices past the embedding table fail at predict time
	if vocab.Size() > clf.VocabularySize() {
		log.WithFields(map[string]interface{}{
			"vocabulary_size": vocab.Size(),
			"embedding_rows":  clf.VocabularySize(),
		}).Warn("Vocabulary is larger than the model embedding")
	}

	log.WithFields(map[string]interface{}{
		"model_version":   clf.Version(),
		"vocabulary_size": vocab.Size(),
		"max_len":         cfg.Sentiment.MaxSequenceLength,
	}).Info("Neural scorer loaded")

	return vocab, clf, nil
}

// reportCache returns nil when Redis is disabled
func (a *app) reportCache() *redis.Cache {
	if !a.redis.Enabled() {
		return nil
	}
	return redis.NewCache(a.redis, "stogger")
}

// reportStore avoids handing a typed nil to interface-typed consumers
func (a *app) reportStore() contracts.ReportStore {
	if a.reports == nil {
		return nil
	}
	return a.reports
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close Redis")
		}
	}
}
