package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns the raw input produced by the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		DataDir:      "data",
		Limit:        DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       "text",
		Color:        "yes",
		CacheBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "defaults are valid", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: "limit must be greater than 0"},
		{name: "limit over max", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: "cannot exceed"},
		{name: "precision out of range", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: "precision must be 1 or 2"},
		{name: "retention too small", mutate: func(in *ConfigRawInput) { in.Retention = 1 }, expectError: "retention must be between 2 and 30"},
		{name: "retention too large", mutate: func(in *ConfigRawInput) { in.Retention = 100 }, expectError: "retention must be between 2 and 30"},
		{name: "retention at max", mutate: func(in *ConfigRawInput) { in.Retention = MaxRetention }},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "invalid --color value"},
		{name: "invalid cache window", mutate: func(in *ConfigRawInput) { in.CacheWindow = "soon" }, expectError: "invalid cache window"},
		{name: "invalid lookback", mutate: func(in *ConfigRawInput) { in.Lookback = "0 days" }, expectError: "invalid lookback"},
		{name: "invalid sort", mutate: func(in *ConfigRawInput) { in.Sort = "random" }, expectError: "invalid sort"},
		{name: "invalid trend", mutate: func(in *ConfigRawInput) { in.Trend = "sideways" }, expectError: "invalid trend"},
		{name: "trend is case insensitive", mutate: func(in *ConfigRawInput) { in.Trend = "RISING" }},
		{name: "github limit too large", mutate: func(in *ConfigRawInput) { in.GitHubLimit = 101 }, expectError: "github-limit"},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "invalid cache backend"},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: "connection string is required"},
		{name: "invalid archive backend", mutate: func(in *ConfigRawInput) { in.ArchiveBackend = "redis" }, expectError: "invalid archive backend"},
		{
			name: "cache and archive share sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.ArchiveBackend = "sqlite"
				in.CacheDBConnect = "/tmp/same.db"
				in.ArchiveDBConnect = "/tmp/same.db"
			},
			expectError: "different SQLite database files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, DefaultRetention, cfg.Retention)
	assert.Equal(t, 15*time.Minute, cfg.CacheWindow)
	assert.Equal(t, 10*time.Minute, cfg.FreshWindow)
	assert.Equal(t, time.Hour, cfg.FetchTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Lookback)
	assert.Equal(t, 7*24*time.Hour, cfg.RedditLookback)
	assert.Equal(t, DefaultGitHubQuery, cfg.GitHubQuery)
	assert.Equal(t, DefaultGitHubLimit, cfg.GitHubLimit)
	assert.Equal(t, DefaultGitHubBaseURL, cfg.GitHubBaseURL)
	assert.Equal(t, DefaultSubreddits, cfg.Subreddits)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, schema.SortNovelty, cfg.Sort)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Empty(t, cfg.TrendFilter)
	assert.Empty(t, cfg.ArchiveBackend)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	input := validInput()
	input.DataDir = "/srv/signalvane"
	input.CacheWindow = "30 minutes"
	input.FreshWindow = "5m"
	input.Subreddits = []string{"solana, rust", " ", "ethdev"}
	input.GitHubURL = "http://localhost:9999/"
	input.Trend = "Falling"
	input.Sort = "Alphabetical"
	input.EntityName = "  ZK Compression  "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, 30*time.Minute, cfg.CacheWindow)
	assert.Equal(t, 5*time.Minute, cfg.FreshWindow)
	assert.Equal(t, []string{"solana", "rust", "ethdev"}, cfg.Subreddits)
	assert.Equal(t, "http://localhost:9999", cfg.GitHubBaseURL)
	assert.Equal(t, schema.TrendFalling, cfg.TrendFilter)
	assert.Equal(t, schema.SortAlphabetical, cfg.Sort)
	assert.Equal(t, "ZK Compression", cfg.EntityName)
	assert.Equal(t, filepath.Join("/srv/signalvane", "history.json"), cfg.HistoryPath())
	assert.Equal(t, filepath.Join("/srv/signalvane", ".last_refresh"), cfg.MarkerPath())
	assert.Equal(t, filepath.Join("/srv/signalvane", "narratives.json"), cfg.NarrativesPath())
	assert.Equal(t, filepath.Join("/srv/signalvane", "ideas.json"), cfg.IdeasPath())
	assert.Equal(t, filepath.Join("/srv/signalvane", "signals.json"), cfg.SignalsPath())
	assert.Equal(t, filepath.Join("/srv/signalvane", "market_intel.json"), cfg.IntelPath())
}

func TestConfigClone(t *testing.T) {
	original := &Config{DataDir: "data", Subreddits: []string{"solana"}}
	clone := original.Clone()
	clone.Subreddits[0] = "changed"
	clone.DataDir = "other"

	assert.Equal(t, "solana", original.Subreddits[0])
	assert.Equal(t, "data", original.DataDir)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite ignores conn", schema.SQLiteBackend, "", false},
		{"none ignores conn", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/signalvane", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/signalvane", true},
		{"mysql missing db", schema.MySQLBackend, "root:pw@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=signalvane", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=signalvane", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}

func TestRevalidatePresentation(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, RevalidatePresentation(cfg, " Trend ", "RISING", "  AI Agents "))
	assert.Equal(t, schema.SortTrend, cfg.Sort)
	assert.Equal(t, schema.TrendRising, cfg.TrendFilter)
	assert.Equal(t, "AI Agents", cfg.NarrativeFilter)

	require.NoError(t, RevalidatePresentation(cfg, "", "", ""))
	assert.Equal(t, schema.SortNovelty, cfg.Sort)
	assert.Empty(t, cfg.TrendFilter)

	assert.ErrorContains(t, RevalidatePresentation(cfg, "random", "", ""), "invalid sort")
	assert.ErrorContains(t, RevalidatePresentation(cfg, "", "sideways", ""), "invalid trend")
}
