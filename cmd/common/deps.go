// Package common wires shared dependencies for the CLI commands.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/callwise/scraper/internal/config"
	"github.com/callwise/scraper/internal/crawl"
	"github.com/callwise/scraper/internal/database"
	"github.com/callwise/scraper/internal/fetcher"
	"github.com/callwise/scraper/internal/logger"
	"github.com/callwise/scraper/internal/vectorstore"
)

// Deps holds the constructed dependency graph shared by commands.
type Deps struct {
	Config  *config.Config
	Logger  logger.Interface
	DB      *sqlx.DB
	Pages   *database.PageRepository
	Calls   *database.CallRepository
	Fetcher fetcher.Fetcher
	Driver  *crawl.Driver

	closers []func()
}

// Build constructs the dependency graph: config, logger, database,
// fetcher, optional chunk indexer, driver.
func Build(cfgFile string, debug bool) (*Deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	deps := &Deps{
		Config: cfg,
		Logger: log,
		DB:     db,
		Pages:  database.NewPageRepository(db),
		Calls:  database.NewCallRepository(db),
	}
	deps.closers = append(deps.closers, func() { _ = db.Close() })

	deps.Fetcher = buildFetcher(cfg, deps)

	indexer, err := buildIndexer(cfg, log)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Driver = crawl.NewDriver(
		deps.Pages,
		deps.Calls,
		deps.Fetcher,
		indexer,
		cfg.Frontier.Policy(),
		cfg.Crawler,
		log,
	)

	return deps, nil
}

// Close releases held resources in reverse acquisition order.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildFetcher selects the fetch transport from config.
func buildFetcher(cfg *config.Config, deps *Deps) fetcher.Fetcher {
	if cfg.Fetcher.Mode == fetcher.ModeBrowser {
		browser := fetcher.NewBrowserFetcher(cfg.Fetcher)
		deps.closers = append(deps.closers, browser.Close)
		return browser
	}
	return fetcher.NewHTTPFetcher(cfg.Fetcher)
}

// buildIndexer creates the chunk indexer when Elasticsearch is configured.
// The crawl works without one; completed pages simply are not indexed.
func buildIndexer(cfg *config.Config, log logger.Interface) (crawl.ChunkIndexer, error) {
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Warn("no elasticsearch addresses configured, chunk indexing disabled")
		return nil, nil
	}

	indexer, err := vectorstore.NewIndexer(cfg.Elasticsearch, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk indexer: %w", err)
	}
	return indexer, nil
}
