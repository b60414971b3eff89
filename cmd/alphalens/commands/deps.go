package commands

import (
	"errors"
	"fmt"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/external/naver"
	"github.com/wonny/alphalens/internal/marketdata"
	"github.com/wonny/alphalens/internal/sentiment"
	"github.com/wonny/alphalens/pkg/config"
	"github.com/wonny/alphalens/pkg/database"
	"github.com/wonny/alphalens/pkg/httputil"
	"github.com/wonny/alphalens/pkg/logger"
	"github.com/wonny/alphalens/pkg/redis"
)

// deps holds everything a command needs, built from env + analysis YAML
type deps struct {
	cfg         *config.Config
	analysisCfg *analysisconfig.Config
	log         *logger.Logger

	db         *database.DB  // nil when DATABASE_URL is empty
	redis      *redis.Client // disabled client when REDIS_ENABLED=false
	httpClient *httputil.Client

	source contracts.PriceSource // upstream, uncached
	cache  *marketdata.CachedSource
	runner *analysis.Runner
}

// newDeps wires config, logger, stores, sources and the runner
func newDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if analysisConfigPath != "" {
		cfg.AnalysisConfigPath = analysisConfigPath
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	analysisCfg, err := analysisconfig.LoadOrDefault(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load analysis config: %w", err)
	}
	for _, w := range analysisconfig.Warn(analysisCfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	d := &deps{cfg: cfg, analysisCfg: analysisCfg, log: log}

	// 3. Optional stores
	d.db, err = database.New(cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		d.db = nil
	case err != nil:
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		log.Info("Connected to database")
	}

	d.redis, err = redis.New(cfg)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 4. Price source behind the fetch cache
	d.httpClient = httputil.New(cfg, log)
	d.source, err = marketdata.NewSource(cfg, d.httpClient, d.db, log)
	if err != nil {
		d.close()
		return nil, err
	}

	var remote *redis.Cache
	if d.redis.Enabled() {
		remote = redis.NewCache(d.redis, cfg.Redis.Prefix)
	}
	d.cache = marketdata.NewCachedSource(d.source, remote, cfg.MarketData.CacheTTL, log)

	// 5. Sentiment factor
	var headlines contracts.HeadlineSource
	switch analysisCfg.Sentiment.Source {
	case analysisconfig.SentimentNaver:
		headlines = naver.NewClient(d.httpClient, log, cfg.MarketData.NaverBaseURL, cfg.MarketData.NaverNewsBaseURL)
	default:
		headlines = sentiment.NewGenerator(analysisCfg.GeneratorConfig())
	}
	builder := sentiment.NewBuilder(headlines, sentiment.NewScorer(), analysisCfg.Sentiment.SmoothingWindow, log)

	// 6. Runner
	d.runner, err = analysis.NewRunner(d.cache, builder, analysisCfg, log)
	if err != nil {
		d.close()
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"price_source": cfg.MarketData.Source,
		"news_source":  analysisCfg.Sentiment.Source,
		"database":     d.db != nil,
		"redis":        d.redis.Enabled(),
		"cache_ttl":    cfg.MarketData.CacheTTL.String(),
	}).Debug("Dependencies ready")

	return d, nil
}

// store returns the Postgres price store or an error when none is configured
func (d *deps) store() (*marketdata.PostgresStore, error) {
	if d.db == nil {
		return nil, fmt.Errorf("price store: %w (set DATABASE_URL)", database.ErrNotConfigured)
	}
	return marketdata.NewPostgresStore(d.db.Pool, d.log), nil
}

func (d *deps) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
