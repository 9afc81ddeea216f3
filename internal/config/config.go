// Package config loads application configuration from file, environment,
// and defaults, in that order of increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/callwise/scraper/internal/crawl"
	"github.com/callwise/scraper/internal/database"
	"github.com/callwise/scraper/internal/fetcher"
	"github.com/callwise/scraper/internal/frontier"
	"github.com/callwise/scraper/internal/logger"
	"github.com/callwise/scraper/internal/vectorstore"
)

// Default server settings.
const (
	defaultServerAddress      = ":8080"
	defaultReconcileSchedule  = "@every 1m"
	defaultMaxLinksPerPage    = frontier.DefaultMaxNewLinksPerPage
	defaultDatabaseHost       = "localhost"
	defaultDatabasePort       = "5432"
	defaultElasticsearchIndex = vectorstore.DefaultIndex
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// ReconcileSchedule is the cron spec for the stale-claim reconciler.
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
}

// FrontierConfig holds link admission settings.
type FrontierConfig struct {
	SameDomainOnly     bool `mapstructure:"same_domain_only"`
	MaxNewLinksPerPage int  `mapstructure:"max_new_links_per_page"`
}

// Policy converts the config into a frontier policy.
func (c FrontierConfig) Policy() frontier.Policy {
	return frontier.Policy{
		SameDomainOnly:     c.SameDomainOnly,
		MaxNewLinksPerPage: c.MaxNewLinksPerPage,
	}
}

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      database.Config    `mapstructure:"database"`
	Elasticsearch vectorstore.Config `mapstructure:"elasticsearch"`
	Fetcher       fetcher.Config     `mapstructure:"fetcher"`
	Crawler       crawl.Config       `mapstructure:"crawler"`
	Frontier      FrontierConfig     `mapstructure:"frontier"`
	Logging       logger.Config      `mapstructure:"logging"`
}

// Load reads configuration: .env first so its variables are visible to
// Viper, then an optional config file, then environment overrides.
func Load(cfgFile string) (*Config, error) {
	// .env file not found is fine; plain environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("scraper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults and environment cover the rest.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := decode(v.AllSettings(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Fetcher = cfg.Fetcher.WithDefaults()
	cfg.Crawler = cfg.Crawler.WithDefaults()

	return &cfg, nil
}

// setDefaults registers defaults for every section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.reconcile_schedule", defaultReconcileSchedule)

	v.SetDefault("database.host", defaultDatabaseHost)
	v.SetDefault("database.port", defaultDatabasePort)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "scraper")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("elasticsearch.index", defaultElasticsearchIndex)

	v.SetDefault("fetcher.mode", fetcher.ModeHTTP)

	v.SetDefault("crawler.page_budget", crawl.DefaultPageBudget)
	v.SetDefault("crawler.batch_size", crawl.DefaultBatchSize)
	v.SetDefault("crawler.claim_lease", crawl.DefaultClaimLease)

	v.SetDefault("frontier.same_domain_only", true)
	v.SetDefault("frontier.max_new_links_per_page", defaultMaxLinksPerPage)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
}

// decode maps settings into the config struct with duration parsing.
func decode(settings map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(settings)
}
