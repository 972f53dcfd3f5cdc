package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bookmeta/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DefaultBaseURL is the catalog site queried for book pages.
const DefaultBaseURL = "https://www.goodreads.com"

// ScraperConfig holds settings for resolution and metadata extraction.
type ScraperConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL overrides the catalog site root. Empty uses
	// DefaultBaseURL; tests point it at a local server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts on throttled fetches
	// (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ResolvedBaseURL returns BaseURL or the default when unset.
func (c ScraperConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// CatalogConfig holds settings for the local catalog store.
type CatalogConfig struct {
	// CatalogDir is the directory holding the catalog database and exports.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
