package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalvane/signalvane/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit    = 25
	MaxResultLimit        = 1000
	DefaultPrecision      = 1
	DefaultRetention      = 30
	MaxRetention          = 30
	DefaultGitHubLimit    = 15
	DefaultGitHubQuery    = "solana"
	DefaultGitHubBaseURL  = "https://api.github.com"
	DefaultRedditBaseURL  = "https://www.reddit.com"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultListenAddr     = ":8000"
	DefaultDataDir        = "data"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCacheWindow    = 15 * time.Minute
	DefaultFreshWindow    = 10 * time.Minute
	DefaultFetchTTL       = time.Hour
	DefaultLookback       = 14 * 24 * time.Hour
	DefaultRedditLookback = 7 * 24 * time.Hour
)

// Artifact file names inside the data directory.
const (
	HistoryFileName    = "history.json"
	MarkerFileName     = ".last_refresh"
	NarrativesFileName = "narratives.json"
	IdeasFileName      = "ideas.json"
	SignalsFileName    = "signals.json"
	IntelFileName      = "market_intel.json"
)

// CacheGranularity defines the time granularity for fetch cache keys.
// Requests inside the same hour share a cache entry.
const CacheGranularity = time.Hour

// DefaultSubreddits lists the communities scanned when none are configured.
var DefaultSubreddits = []string{"solana", "SolanaDevs"}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	DataDir     string
	Retention   int
	CacheWindow time.Duration // Minimum gap between two upstream refreshes
	FreshWindow time.Duration // Age under which /health reports fresh data
	FetchTTL    time.Duration // Staleness bound for cached upstream responses
	Force       bool

	Lookback       time.Duration
	GitHubQuery    string
	GitHubToken    string // Please use env var as this is plaintext
	GitHubLimit    int
	GitHubBaseURL  string
	Subreddits     []string
	RedditLookback time.Duration
	RedditBaseURL  string
	HTTPTimeout    time.Duration

	GeminiAPIKey  string // Please use env var as this is plaintext
	GeminiModel   string
	GenerateIdeas bool

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Sort            schema.SortMode
	TrendFilter     schema.Trend
	NarrativeFilter string
	EntityName      string

	ListenAddr string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	ArchiveBackend   schema.DatabaseBackend
	ArchiveDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	EntityName string

	// --- Fields from rootCmd.PersistentFlags() ---
	DataDir          string `mapstructure:"data-dir"`
	Retention        int    `mapstructure:"retention"`
	CacheWindow      string `mapstructure:"cache-window"`
	FreshWindow      string `mapstructure:"fresh-window"`
	FetchTTL         string `mapstructure:"fetch-ttl"`
	Limit            int    `mapstructure:"limit"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	ArchiveBackend   string `mapstructure:"archive-backend"`
	ArchiveDBConnect string `mapstructure:"archive-db-connect"`

	// --- Upstream sources ---
	Lookback       string   `mapstructure:"lookback"`
	Query          string   `mapstructure:"query"`
	GitHubToken    string   `mapstructure:"github-token"`
	GitHubLimit    int      `mapstructure:"github-limit"`
	GitHubURL      string   `mapstructure:"github-url"`
	Subreddits     []string `mapstructure:"subreddits"`
	RedditLookback string   `mapstructure:"reddit-lookback"`
	RedditURL      string   `mapstructure:"reddit-url"`
	Timeout        string   `mapstructure:"timeout"`
	GeminiAPIKey   string   `mapstructure:"gemini-api-key"`
	GeminiModel    string   `mapstructure:"gemini-model"`

	// --- Fields from refreshCmd.Flags() ---
	Force bool `mapstructure:"force"`
	Ideas bool `mapstructure:"ideas"`

	// --- Fields from presentation commands ---
	Sort      string `mapstructure:"sort"`
	Trend     string `mapstructure:"trend"`
	Narrative string `mapstructure:"narrative"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Subreddits != nil {
		clone.Subreddits = make([]string, len(c.Subreddits))
		copy(clone.Subreddits, c.Subreddits)
	}
	return &clone
}

// HistoryPath returns the location of the snapshot log.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, HistoryFileName)
}

// MarkerPath returns the location of the last refresh marker.
func (c *Config) MarkerPath() string {
	return filepath.Join(c.DataDir, MarkerFileName)
}

// NarrativesPath returns the location of the latest narratives artifact.
func (c *Config) NarrativesPath() string {
	return filepath.Join(c.DataDir, NarrativesFileName)
}

// IdeasPath returns the location of the latest ideas artifact.
func (c *Config) IdeasPath() string {
	return filepath.Join(c.DataDir, IdeasFileName)
}

// SignalsPath returns the location of the latest raw signals artifact.
func (c *Config) SignalsPath() string {
	return filepath.Join(c.DataDir, SignalsFileName)
}

// IntelPath returns the location of the optional market intelligence override.
func (c *Config) IntelPath() string {
	return filepath.Join(c.DataDir, IntelFileName)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindows(cfg, input); err != nil {
		return err
	}
	if err := processSources(cfg, input); err != nil {
		return err
	}
	if err := processPresentation(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and archive backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Archive Backend Validation ---
	cfg.ArchiveBackend = schema.DatabaseBackend(strings.ToLower(input.ArchiveBackend))
	if cfg.ArchiveBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ArchiveBackend]; !ok {
		return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, none", input.ArchiveBackend)
	}
	cfg.ArchiveDBConnect = input.ArchiveDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ArchiveBackend, cfg.ArchiveDBConnect); err != nil {
		return err
	}

	// Cache and archive must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.ArchiveBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		archiveDBPath := cfg.ArchiveDBConnect
		if archiveDBPath == "" {
			archiveDBPath = GetArchiveDBFilePath()
		}
		if cacheDBPath == archiveDBPath {
			return fmt.Errorf("cache and archive storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the presentation and storage basics.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Force = input.Force
	cfg.GenerateIdeas = input.Ideas
	cfg.EntityName = strings.TrimSpace(input.EntityName)
	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.DataDir = strings.TrimSpace(input.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}

	cfg.Retention = input.Retention
	if cfg.Retention == 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Retention < 2 || cfg.Retention > MaxRetention {
		return fmt.Errorf("retention must be between 2 and %d snapshots (received %d)", MaxRetention, input.Retention)
	}

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	return nil
}

// processWindows parses every duration that governs refresh and freshness.
func processWindows(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.CacheWindow, err = parseDurationOr(input.CacheWindow, DefaultCacheWindow); err != nil {
		return fmt.Errorf("invalid cache window: %w", err)
	}
	if cfg.FreshWindow, err = parseDurationOr(input.FreshWindow, DefaultFreshWindow); err != nil {
		return fmt.Errorf("invalid fresh window: %w", err)
	}
	if cfg.FetchTTL, err = parseDurationOr(input.FetchTTL, DefaultFetchTTL); err != nil {
		return fmt.Errorf("invalid fetch ttl: %w", err)
	}
	if cfg.HTTPTimeout, err = parseDurationOr(input.Timeout, DefaultHTTPTimeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// processSources resolves the upstream fetcher and synthesizer settings.
func processSources(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.Lookback, err = parseDurationOr(input.Lookback, DefaultLookback); err != nil {
		return fmt.Errorf("invalid lookback: %w", err)
	}
	if cfg.RedditLookback, err = parseDurationOr(input.RedditLookback, DefaultRedditLookback); err != nil {
		return fmt.Errorf("invalid reddit lookback: %w", err)
	}

	cfg.GitHubQuery = strings.TrimSpace(input.Query)
	if cfg.GitHubQuery == "" {
		cfg.GitHubQuery = DefaultGitHubQuery
	}
	cfg.GitHubToken = input.GitHubToken
	cfg.GitHubLimit = input.GitHubLimit
	if cfg.GitHubLimit == 0 {
		cfg.GitHubLimit = DefaultGitHubLimit
	}
	if cfg.GitHubLimit < 0 || cfg.GitHubLimit > 100 {
		return fmt.Errorf("github-limit must be between 1 and 100 (received %d)", input.GitHubLimit)
	}
	cfg.GitHubBaseURL = strings.TrimRight(input.GitHubURL, "/")
	if cfg.GitHubBaseURL == "" {
		cfg.GitHubBaseURL = DefaultGitHubBaseURL
	}

	cfg.Subreddits = nil
	for _, sub := range input.Subreddits {
		for part := range strings.SplitSeq(sub, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cfg.Subreddits = append(cfg.Subreddits, trimmed)
			}
		}
	}
	if len(cfg.Subreddits) == 0 {
		cfg.Subreddits = append([]string(nil), DefaultSubreddits...)
	}
	cfg.RedditBaseURL = strings.TrimRight(input.RedditURL, "/")
	if cfg.RedditBaseURL == "" {
		cfg.RedditBaseURL = DefaultRedditBaseURL
	}

	cfg.GeminiAPIKey = input.GeminiAPIKey
	cfg.GeminiModel = input.GeminiModel
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultGeminiModel
	}
	return nil
}

// processPresentation validates sort, trend and narrative filters.
func processPresentation(cfg *Config, input *ConfigRawInput) error {
	return RevalidatePresentation(cfg, input.Sort, input.Trend, input.Narrative)
}

// RevalidatePresentation applies sort, trend and narrative filters to cfg.
// MCP and HTTP handlers use it to re-apply per-request overrides on a cloned config.
func RevalidatePresentation(cfg *Config, sort, trend, narrative string) error {
	cfg.Sort = schema.SortMode(strings.ToLower(strings.TrimSpace(sort)))
	if cfg.Sort == "" {
		cfg.Sort = schema.SortNovelty
	}
	if _, ok := schema.ValidSortModes[cfg.Sort]; !ok {
		return fmt.Errorf("invalid sort '%s'. must be novelty, alphabetical, trend, none", sort)
	}

	cfg.TrendFilter = schema.Trend(strings.ToLower(strings.TrimSpace(trend)))
	if cfg.TrendFilter != "" {
		if _, ok := schema.ValidTrends[cfg.TrendFilter]; !ok {
			return fmt.Errorf("invalid trend '%s'. must be new, rising, falling, stable", trend)
		}
	}

	cfg.NarrativeFilter = strings.TrimSpace(narrative)
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// EnsureDataDir creates the data directory when it does not exist yet.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}
	return nil
}

// parseDurationOr parses s with ParseLookbackDuration, falling back to def when s is empty.
func parseDurationOr(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseLookbackDuration(s)
}
