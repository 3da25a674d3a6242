package schema

// Custom string types for type safety.
type (
	// Trend represents the direction of a narrative between its last two observations.
	Trend string

	// OutputMode represents the format of the output.
	OutputMode string

	// SortMode represents how narratives are ordered for presentation.
	SortMode string

	// SignalSource identifies the upstream a signal came from.
	SignalSource string

	// Sentiment represents the market mood attached to a narrative.
	Sentiment string

	// DatabaseBackend represents the database backend for caching and archiving.
	DatabaseBackend string
)

// All trend labels produced by the classifier.
const (
	TrendNew     Trend = "new"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All sort modes supported.
const (
	SortNovelty      SortMode = "novelty" // default
	SortAlphabetical SortMode = "alphabetical"
	SortTrend        SortMode = "trend"
	SortNone         SortMode = "none"
)

// All signal sources supported.
const (
	GitHubSource  SignalSource = "github"
	RedditSource  SignalSource = "reddit"
	OnchainSource SignalSource = "onchain"
	IntelSource   SignalSource = "market_intel"
)

// All sentiment labels supported.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllTrends lists every trend in presentation order.
var AllTrends = []Trend{TrendRising, TrendNew, TrendStable, TrendFalling}

// ValidTrends lists all valid trend labels.
var ValidTrends = map[Trend]struct{}{
	TrendNew:     {},
	TrendRising:  {},
	TrendFalling: {},
	TrendStable:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidSortModes lists all valid sort modes.
var ValidSortModes = map[SortMode]struct{}{
	SortNovelty:      {},
	SortAlphabetical: {},
	SortTrend:        {},
	SortNone:         {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// TrendRank orders trends for sorting, rising first and falling last.
func TrendRank(t Trend) int {
	switch t {
	case TrendRising:
		return 0
	case TrendNew:
		return 1
	case TrendStable:
		return 2
	case TrendFalling:
		return 3
	default:
		return 4
	}
}
