package sentiment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/pkg/models"
)

func TestScoreHeadline(t *testing.T) {
	tests := []struct {
		name     string
		headline string
		sign     int
	}{
		{"bullish", "Apple shares rally 5% on strong growth and positive results", 1},
		{"bearish", "Market crash: stocks plunge amid fraud investigation concerns", -1},
		{"neutral", "Company announces new office location in Austin", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, conf := ScoreHeadline(tt.headline)
			switch tt.sign {
			case 1:
				assert.Greater(t, score, 0.0)
				assert.Greater(t, conf, 0.2)
			case -1:
				assert.Less(t, score, 0.0)
				assert.Greater(t, conf, 0.2)
			default:
				assert.Zero(t, score)
				assert.LessOrEqual(t, conf, 0.2)
			}
			assert.GreaterOrEqual(t, score, -1.0)
			assert.LessOrEqual(t, score, 1.0)
			assert.LessOrEqual(t, conf, 0.85)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, Bullish, Label(0.5))
	assert.Equal(t, SlightlyBullish, Label(0.2))
	assert.Equal(t, Neutral, Label(0))
	assert.Equal(t, SlightlyBearish, Label(-0.2))
	assert.Equal(t, Bearish, Label(-0.5))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	headlines := []models.Headline{
		{Title: "Stock surges on strong earnings beat", PublishedAt: now},
		{Title: "Positive growth outlook for Q4", PublishedAt: now.Add(-6 * time.Hour)},
		{Title: "Analysts raise concern over supply chain", PublishedAt: now.Add(-72 * time.Hour)},
		{Title: "Company opens new campus"},
	}

	got := Summarize(headlines)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Headlines)
	assert.Equal(t, 2, got.Positive)
	assert.Equal(t, 1, got.Negative)
	assert.Greater(t, got.Score, 0.3)
	assert.Equal(t, Bullish, got.Label)

	// Same input, same answer.
	assert.Equal(t, got, Summarize(headlines))
}

func TestSummarizeOlderHeadlinesWeighLess(t *testing.T) {
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	fresh := Summarize([]models.Headline{
		{Title: "Shares plunge after profit warning", PublishedAt: now},
		{Title: "Analysts upgrade on breakout", PublishedAt: now.Add(-96 * time.Hour)},
	})
	stale := Summarize([]models.Headline{
		{Title: "Shares plunge after profit warning", PublishedAt: now.Add(-96 * time.Hour)},
		{Title: "Analysts upgrade on breakout", PublishedAt: now},
	})
	require.NotNil(t, fresh)
	require.NotNil(t, stale)
	assert.Less(t, fresh.Score, stale.Score)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Nil(t, Summarize(nil))
}
