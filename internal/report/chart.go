package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// BarItem is one labelled value of a bar chart.
type BarItem struct {
	Label string
	Value float64
}

const (
	barFull  = "█"
	barEmpty = " "
	barAxis  = "│"
)

// DefaultBarWidth is the number of cells available to the bars.
const DefaultBarWidth = 30

// HorizontalBars draws items as a fixed-width text chart, one row per item.
// Mixed signs get a zero axis with negatives drawn to its left. Values are
// printed as percentages.
func HorizontalBars(items []BarItem, width int) string {
	if len(items) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultBarWidth
	}

	maxVal, minVal := 0.0, 0.0
	labelW := 0
	for _, item := range items {
		v := finite(item.Value)
		maxVal = math.Max(maxVal, v)
		minVal = math.Min(minVal, v)
		labelW = max(labelW, utf8.RuneCountInString(item.Label))
	}

	valRange := maxVal - minVal
	if valRange < 0.001 {
		valRange = 1
	}
	// Cells to the left of the zero axis.
	neg := 0
	if minVal < 0 {
		neg = int(math.Round(-minVal / valRange * float64(width)))
	}
	pos := width - neg

	var sb strings.Builder
	for _, item := range items {
		v := finite(item.Value)
		cells := int(math.Round(math.Abs(v) / valRange * float64(width)))

		sb.WriteString(item.Label)
		sb.WriteString(strings.Repeat(" ", labelW-utf8.RuneCountInString(item.Label)+1))
		if neg > 0 {
			left := 0
			if v < 0 {
				left = min(cells, neg)
			}
			sb.WriteString(strings.Repeat(barEmpty, neg-left))
			sb.WriteString(strings.Repeat(barFull, left))
			sb.WriteString(barAxis)
		}
		right := 0
		if v > 0 {
			right = min(cells, pos)
		}
		sb.WriteString(strings.Repeat(barFull, right))
		sb.WriteString(strings.Repeat(barEmpty, pos-right))
		sb.WriteString(fmt.Sprintf(" %7.2f%%\n", item.Value))
	}
	return sb.String()
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
