package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validBackends = map[string]bool{
	BackendMemory: true, BackendLRU: true, BackendSQLite: true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
// A missing OMDb key is not an error: lookups degrade to empty results.
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	errs = append(errs, validateURL("omdb.base_url", c.OMDb.BaseURL)...)
	errs = append(errs, validateURL("youtube.base_url", c.YouTube.BaseURL)...)

	if c.OMDb.Timeout.Duration < 0 {
		errs = append(errs, "omdb.timeout: must not be negative")
	}
	if c.OMDb.CacheTTL.Duration < 0 {
		errs = append(errs, "omdb.cache_ttl: must not be negative")
	}
	if c.YouTube.Timeout.Duration < 0 {
		errs = append(errs, "youtube.timeout: must not be negative")
	}
	if c.YouTube.CacheTTL.Duration < 0 {
		errs = append(errs, "youtube.cache_ttl: must not be negative")
	}
	if c.YouTube.MaxResults < 0 || c.YouTube.MaxResults > 50 {
		errs = append(errs, fmt.Sprintf("youtube.max_results: must be between 1 and 50, got %d", c.YouTube.MaxResults))
	}

	if !validBackends[c.Cache.Backend] {
		errs = append(errs, fmt.Sprintf("cache.backend: must be one of memory, lru, sqlite; got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == BackendLRU && c.Cache.MaxEntries < 1 {
		errs = append(errs, "cache.max_entries: must be positive for the lru backend")
	}
	if c.Cache.Backend == BackendSQLite && c.Cache.Path == "" {
		errs = append(errs, "cache.path: required for the sqlite backend")
	}
	if c.Cache.PruneInterval.Duration < 0 {
		errs = append(errs, "cache.prune_interval: must not be negative")
	}

	if c.Batch.Size < 0 {
		errs = append(errs, fmt.Sprintf("batch.size: must be positive, got %d", c.Batch.Size))
	}
	if c.Batch.Delay.Duration < 0 {
		errs = append(errs, "batch.delay: must not be negative")
	}

	return errs
}

func validateURL(field, raw string) []string {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []string{fmt.Sprintf("%s: invalid URL %q", field, raw)}
	}
	return nil
}
