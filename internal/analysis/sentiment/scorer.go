// Package sentiment scores news headlines with a keyword lexicon. Scoring is
// offline and deterministic: the same headlines always give the same result.
package sentiment

import (
	"math"
	"strings"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Sentiment labels.
const (
	Bullish         = "Bullish"
	SlightlyBullish = "Slightly Bullish"
	Neutral         = "Neutral"
	SlightlyBearish = "Slightly Bearish"
	Bearish         = "Bearish"
)

type keyword struct {
	word   string
	weight float64
}

// Lexicons are slices so that scores sum in a fixed order.
var bullishWords = []keyword{
	{"bullish", 0.7}, {"rally", 0.6}, {"surge", 0.7}, {"upbeat", 0.5},
	{"positive", 0.4}, {"growth", 0.4}, {"upgrade", 0.6}, {"outperform", 0.6},
	{"buy", 0.5}, {"strong", 0.4}, {"recovery", 0.5}, {"breakout", 0.6},
	{"record high", 0.7}, {"all-time high", 0.7}, {"beat", 0.5},
	{"exceeds", 0.5}, {"beats estimate", 0.6}, {"expansion", 0.4},
	{"profit", 0.3}, {"dividend", 0.4}, {"accumulate", 0.5},
}

var bearishWords = []keyword{
	{"bearish", 0.7}, {"crash", 0.8}, {"plunge", 0.7}, {"slump", 0.6},
	{"negative", 0.4}, {"downgrade", 0.6}, {"underperform", 0.6},
	{"sell", 0.5}, {"weak", 0.4}, {"decline", 0.5}, {"loss", 0.4},
	{"selloff", 0.7}, {"fall", 0.4}, {"correction", 0.5},
	{"default", 0.7}, {"fraud", 0.8}, {"scam", 0.8}, {"investigation", 0.5},
	{"cut", 0.3}, {"miss", 0.5}, {"warning", 0.5}, {"concern", 0.3},
}

// halfLifeHours is the age at which a headline's weight halves, measured
// from the newest headline.
const halfLifeHours = 24.0

// ScoreHeadline returns a sentiment score for a single headline.
// Score ranges from -1.0 (very bearish) to +1.0 (very bullish).
func ScoreHeadline(headline string) (score float64, confidence float64) {
	lower := strings.ToLower(headline)

	bullScore, bearScore := 0.0, 0.0
	matches := 0
	for _, k := range bullishWords {
		if strings.Contains(lower, k.word) {
			bullScore += k.weight
			matches++
		}
	}
	for _, k := range bearishWords {
		if strings.Contains(lower, k.word) {
			bearScore += k.weight
			matches++
		}
	}

	total := bullScore + bearScore
	if matches == 0 || total == 0 {
		return 0, 0.1 // no signal
	}

	score = (bullScore - bearScore) / total
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// Label maps an aggregate score to a sentiment label.
func Label(score float64) string {
	switch {
	case score > 0.3:
		return Bullish
	case score > 0.1:
		return SlightlyBullish
	case score < -0.3:
		return Bearish
	case score < -0.1:
		return SlightlyBearish
	default:
		return Neutral
	}
}

// Summarize aggregates headline scores, weighting each by its confidence and
// by age relative to the newest headline. Returns nil for no headlines.
func Summarize(headlines []models.Headline) *models.NewsSentiment {
	if len(headlines) == 0 {
		return nil
	}

	newest := headlines[0].PublishedAt
	for _, h := range headlines[1:] {
		if h.PublishedAt.After(newest) {
			newest = h.PublishedAt
		}
	}

	out := &models.NewsSentiment{Headlines: len(headlines)}
	weightedSum, totalWeight, confSum := 0.0, 0.0, 0.0
	for _, h := range headlines {
		text := h.Title
		if h.Summary != "" {
			text += " " + h.Summary
		}
		score, conf := ScoreHeadline(text)
		switch {
		case score > 0:
			out.Positive++
		case score < 0:
			out.Negative++
		}

		age := 0.0
		if !h.PublishedAt.IsZero() && !newest.IsZero() {
			age = math.Max(newest.Sub(h.PublishedAt).Hours(), 0)
		}
		w := math.Exp(-math.Ln2*age/halfLifeHours) * conf
		weightedSum += score * w
		totalWeight += w
		confSum += conf
	}

	avg := 0.0
	if totalWeight > 0 {
		avg = weightedSum / totalWeight
	}
	out.Score = utils.Round2(avg)
	out.Confidence = utils.Round2(confSum / float64(len(headlines)))
	out.Label = Label(avg)
	return out
}
