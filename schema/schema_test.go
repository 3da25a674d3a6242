package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrendRank(t *testing.T) {
	for i, trend := range AllTrends {
		assert.Equal(t, i, TrendRank(trend), "AllTrends is in rank order")
		assert.Contains(t, ValidTrends, trend)
	}
	assert.Equal(t, 4, TrendRank(""))
	assert.Equal(t, 4, TrendRank("sideways"))
}

func TestSignalBundle(t *testing.T) {
	var empty SignalBundle
	assert.Zero(t, empty.Count())
	assert.Nil(t, empty.BySource(GitHubSource))

	bundle := SignalBundle{Sources: map[SignalSource][]Signal{
		GitHubSource: {{Name: "a"}, {Name: "b"}},
		RedditSource: {{Name: "c"}},
	}}
	assert.Equal(t, 3, bundle.Count())
	assert.Len(t, bundle.BySource(GitHubSource), 2)
	assert.Empty(t, bundle.BySource(IntelSource))
}
