// Package crawl implements the step engine that drives a call's crawl.
package crawl

import "time"

// Default driver settings.
const (
	// DefaultPageBudget is the global cap on completed pages per call.
	DefaultPageBudget = 10
	// DefaultBatchSize bounds how many queued pages one step claims.
	DefaultBatchSize = 50
	// DefaultClaimLease bounds how long a claim may stay in_progress
	// before the reconciler fails it.
	DefaultClaimLease = 5 * time.Minute
)

// Config holds crawl driver configuration.
type Config struct {
	PageBudget int           `mapstructure:"page_budget"`
	BatchSize  int           `mapstructure:"batch_size"`
	ClaimLease time.Duration `mapstructure:"claim_lease"`
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.PageBudget <= 0 {
		c.PageBudget = DefaultPageBudget
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.ClaimLease <= 0 {
		c.ClaimLease = DefaultClaimLease
	}
	return c
}
