package guardrail

import (
	"strings"
	"time"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// CustomPeriod labels windows given as an explicit start/end pair.
const CustomPeriod = "custom"

// ValidPeriods lists the accepted lookback labels in ascending order.
var ValidPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// PeriodRules bounds period resolution.
type PeriodRules struct {
	MaxRangeDays    int // longest explicit start/end window
	MaxHistoryYears int // how far back "max" reaches
}

// ResolvePeriod turns a label or an explicit date pair into a concrete
// window ending at now. Explicit dates take precedence over the label and
// must be supplied together; the end date is inclusive.
func ResolvePeriod(label, startDate, endDate string, now time.Time, rules PeriodRules) (models.AnalysisPeriod, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate != "" || endDate != "" {
		return resolveExplicit(startDate, endDate, now, rules)
	}

	label = strings.ToLower(strings.TrimSpace(label))
	today := utils.DateOf(now.UTC())
	end := today.AddDate(0, 0, 1)

	p := models.AnalysisPeriod{Label: label, End: end}
	switch label {
	case "1d":
		// Padded so a weekend or holiday still yields a trading day; the
		// service keeps only the trailing bars.
		p.Start, p.TradingDays = today.AddDate(0, 0, -7), 1
	case "5d":
		p.Start, p.TradingDays = today.AddDate(0, 0, -14), 5
	case "1mo":
		p.Start = today.AddDate(0, -1, 0)
	case "3mo":
		p.Start = today.AddDate(0, -3, 0)
	case "6mo":
		p.Start = today.AddDate(0, -6, 0)
	case "1y":
		p.Start = today.AddDate(-1, 0, 0)
	case "2y":
		p.Start = today.AddDate(-2, 0, 0)
	case "5y":
		p.Start = today.AddDate(-5, 0, 0)
	case "10y":
		p.Start = today.AddDate(-10, 0, 0)
	case "ytd":
		p.Start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case "max":
		years := rules.MaxHistoryYears
		if years <= 0 {
			years = 20
		}
		p.Start = today.AddDate(-years, 0, 0)
	default:
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "period",
			"unsupported period %q, expected one of %s", label, strings.Join(ValidPeriods, ", "))
	}
	return p, nil
}

func resolveExplicit(startDate, endDate string, now time.Time, rules PeriodRules) (models.AnalysisPeriod, error) {
	if startDate == "" {
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "start_date", "start_date is required when end_date is set")
	}
	if endDate == "" {
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "end_date", "end_date is required when start_date is set")
	}
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return models.AnalysisPeriod{}, models.WrapError(models.KindInvalidPeriod, "start_date", err)
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return models.AnalysisPeriod{}, models.WrapError(models.KindInvalidPeriod, "end_date", err)
	}

	today := utils.DateOf(now.UTC())
	switch {
	case !end.After(start):
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "start_date",
			"start_date %s must be before end_date %s", startDate, endDate)
	case end.After(today):
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "end_date",
			"end_date %s is in the future", endDate)
	case rules.MaxRangeDays > 0 && end.Sub(start) > time.Duration(rules.MaxRangeDays)*24*time.Hour:
		return models.AnalysisPeriod{}, models.NewError(models.KindInvalidPeriod, "start_date",
			"date range exceeds %d days", rules.MaxRangeDays)
	}

	return models.AnalysisPeriod{
		Label: CustomPeriod,
		Start: start,
		End:   end.AddDate(0, 0, 1),
	}, nil
}
