// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	OMDb    OMDbConfig    `toml:"omdb"`
	YouTube YouTubeConfig `toml:"youtube"`
	Cache   CacheConfig   `toml:"cache"`
	Batch   BatchConfig   `toml:"batch"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type OMDbConfig struct {
	APIKey   string   `toml:"api_key"`
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	CacheTTL Duration `toml:"cache_ttl"`
}

type YouTubeConfig struct {
	APIKey     string   `toml:"api_key"`
	BaseURL    string   `toml:"base_url"`
	Timeout    Duration `toml:"timeout"`
	CacheTTL   Duration `toml:"cache_ttl"`
	MaxResults int      `toml:"max_results"`
}

// CacheConfig selects the store behind both caches.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // memory, lru or sqlite
	MaxEntries    int      `toml:"max_entries"`
	Path          string   `toml:"path"`
	PruneInterval Duration `toml:"prune_interval"` // zero disables background pruning
}

type BatchConfig struct {
	Size  int      `toml:"size"`
	Delay Duration `toml:"delay"`
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Cache backends.
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendSQLite = "sqlite"
)

// Environment variables consulted when the config leaves an API key empty.
var (
	omdbKeyEnv    = []string{"OMDB_API_KEY", "VITE_OMDB_API_KEY"}
	youtubeKeyEnv = []string{"YOUTUBE_API_KEY", "VITE_YOUTUBE_API_KEY"}
)

// Default returns a configuration with every default applied and API keys
// taken from the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(nil)
	cfg.applyEnvFallbacks()
	return cfg
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults(&md)
	cfg.applyEnvFallbacks()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}

	return &cfg, nil
}

// applyDefaults fills unset fields. Zero values count as unset, except that
// an explicit zero batch.delay (no pacing) or cache_ttl (nothing stays
// cached) written in the file is kept. md is nil for Default.
func (c *Config) applyDefaults(md *toml.MetaData) {
	defined := func(key ...string) bool {
		return md != nil && md.IsDefined(key...)
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = "https://www.omdbapi.com/"
	}
	if c.OMDb.Timeout.Duration == 0 {
		c.OMDb.Timeout.Duration = 10 * time.Second
	}
	if c.OMDb.CacheTTL.Duration == 0 && !defined("omdb", "cache_ttl") {
		c.OMDb.CacheTTL.Duration = 5 * time.Minute
	}

	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if c.YouTube.Timeout.Duration == 0 {
		c.YouTube.Timeout.Duration = 10 * time.Second
	}
	if c.YouTube.CacheTTL.Duration == 0 && !defined("youtube", "cache_ttl") {
		c.YouTube.CacheTTL.Duration = 7 * 24 * time.Hour
	}
	if c.YouTube.MaxResults == 0 {
		c.YouTube.MaxResults = 5
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.Backend == BackendLRU && c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1000
	}
	if c.Cache.Backend == BackendSQLite && c.Cache.Path == "" {
		c.Cache.Path = "./data/moodflix-cache.db"
	}

	if c.Batch.Size == 0 {
		c.Batch.Size = 3
	}
	if c.Batch.Delay.Duration == 0 && !defined("batch", "delay") {
		c.Batch.Delay.Duration = 100 * time.Millisecond
	}
}

func (c *Config) applyEnvFallbacks() {
	if c.OMDb.APIKey == "" {
		c.OMDb.APIKey = firstEnv(omdbKeyEnv)
	}
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = firstEnv(youtubeKeyEnv)
	}
}

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment references and returns the names
// (or "NAME: message" for the :? form) of the variables it could not resolve.
// Unresolved references are left in place. An empty variable counts as unset
// for the :- and :? forms. Comment text is copied through untouched.
func substituteEnvVars(content string) (string, []string) {
	var (
		b       strings.Builder
		missing []string
	)
	for _, line := range strings.SplitAfter(content, "\n") {
		cut := commentStart(line)
		b.WriteString(envVarPattern.ReplaceAllStringFunc(line[:cut], func(match string) string {
			value, miss := resolveEnvVar(match)
			if miss != "" {
				missing = append(missing, miss)
			}
			return value
		}))
		b.WriteString(line[cut:])
	}
	return b.String(), missing
}

// resolveEnvVar expands one ${...} reference. miss is non-empty when the
// reference could not be resolved, in which case value is the reference.
func resolveEnvVar(match string) (value, miss string) {
	parts := envVarPattern.FindStringSubmatch(match)
	name, op, arg := parts[1], parts[2], parts[3]
	v, ok := os.LookupEnv(name)

	switch op {
	case ":-":
		if v == "" {
			return arg, ""
		}
		return v, ""
	case ":?":
		if v == "" {
			return match, fmt.Sprintf("%s: %s", name, strings.TrimSpace(arg))
		}
		return v, ""
	default:
		if !ok {
			return match, name
		}
		return v, ""
	}
}

// commentStart returns the index of the # that opens a TOML comment on line,
// or len(line) when there is none. A # inside a quoted string is not a comment.
func commentStart(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && c == '#':
			return i
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == '"' && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		}
	}
	return len(line)
}
