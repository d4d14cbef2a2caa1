package technical

import (
	"slices"

	"github.com/seenimoa/finmcp/pkg/models"
)

// Trend labels.
const (
	Bullish = "bullish"
	Bearish = "bearish"
	Neutral = "neutral"
)

// Cross states of the medium vs long simple moving average.
const (
	GoldenCross = "golden_cross"
	DeathCross  = "death_cross"
	NoCross     = "none"
)

// MovingAverage is the latest SMA and EMA for one window.
type MovingAverage struct {
	Window int
	SMA    *float64
	EMA    *float64
}

// Trend is the moving-average structure and momentum of a price series.
type Trend struct {
	Current        float64
	MovingAverages []MovingAverage
	// Momentum is the percentage distance of the last price from the
	// shortest-window SMA.
	Momentum       *float64
	RateOfChange10 *float64
	RateOfChange30 *float64
	Short          string
	Medium         string
	Long           string
	Cross          string
	Overall        string
}

// AnalyzeTrend classifies prices using three moving-average windows
// (short, medium, long; default 20/50/200). Short and medium labels compare
// the last price with the respective SMA. The long label is neutral when the
// series does not cover the long window. prices must hold at least
// minPoints values.
func AnalyzeTrend(prices []float64, windows []int, minPoints int) (*Trend, error) {
	if len(windows) != 3 {
		windows = StandardWindows
	} else if !slices.IsSorted(windows) {
		windows = slices.Sorted(slices.Values(windows))
	}
	if len(prices) == 0 {
		return nil, models.NewError(models.KindNoDataFound, "symbol", "no prices to analyze")
	}
	need := minPoints
	if need < windows[1] {
		need = windows[1]
	}
	if len(prices) < need {
		return nil, models.NewError(models.KindInsufficientHistory, "period",
			"trend analysis needs at least %d bars, got %d", need, len(prices))
	}

	cur := prices[len(prices)-1]
	t := &Trend{Current: cur, MovingAverages: make([]MovingAverage, len(windows))}
	for i, w := range windows {
		t.MovingAverages[i] = MovingAverage{Window: w, SMA: SMALatest(prices, w), EMA: EMALatest(prices, w)}
	}

	short, medium, long := t.MovingAverages[0].SMA, t.MovingAverages[1].SMA, t.MovingAverages[2].SMA
	if short != nil && *short != 0 {
		m := (cur/(*short) - 1) * 100
		t.Momentum = &m
	}
	t.RateOfChange10 = ROCLatest(prices, 10)
	t.RateOfChange30 = ROCLatest(prices, 30)

	t.Short = label(cur, short, Bearish)
	t.Medium = label(cur, medium, Bearish)
	t.Long = label(cur, long, Neutral)

	t.Cross = NoCross
	if medium != nil && long != nil {
		if *medium > *long {
			t.Cross = GoldenCross
		} else {
			t.Cross = DeathCross
		}
	}

	bullish := 0
	for _, l := range []string{t.Short, t.Medium, t.Long} {
		if l == Bullish {
			bullish++
		}
	}
	t.Overall = Bearish
	if bullish >= 2 {
		t.Overall = Bullish
	}
	return t, nil
}

func label(price float64, ma *float64, missing string) string {
	if ma == nil {
		return missing
	}
	if price > *ma {
		return Bullish
	}
	return Bearish
}
