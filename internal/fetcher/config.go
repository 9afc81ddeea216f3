package fetcher

import "time"

// Fetcher modes.
const (
	ModeHTTP    = "http"
	ModeBrowser = "browser"
)

// Default configuration values.
const (
	defaultUserAgent      = "Mozilla/5.0 (compatible; CallwiseScraper/1.0)"
	defaultRequestTimeout = 30 * time.Second
	defaultRatePerSecond  = 2.0
	defaultRateBurst      = 1
)

// Config holds fetcher configuration.
type Config struct {
	Mode           string        `mapstructure:"mode"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RatePerSecond throttles outbound requests. Negative disables
	// throttling; zero means unset and takes the default.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeHTTP
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RatePerSecond == 0 {
		c.RatePerSecond = defaultRatePerSecond
	}
	if c.RateBurst <= 0 {
		c.RateBurst = defaultRateBurst
	}
	return c
}
