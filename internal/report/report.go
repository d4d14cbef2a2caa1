// Package report renders tool reports for people: Markdown for chat hosts
// and files, and styled terminal output for the CLI.
package report

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPretty   Format = "pretty"
)

// ErrUnsupported is returned for values that have no Markdown template.
var ErrUnsupported = errors.New("report: no template for value")

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMarkdown, FormatPretty:
		return f, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want json, markdown or pretty)", s)
	}
}

// Options tune terminal rendering.
type Options struct {
	// Style is a glamour style name ("auto", "dark", "light", "notty", ...).
	Style string
	// Width is the word-wrap column. Zero means 100.
	Width int
}

//go:embed templates/*.md
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(funcs).ParseFS(templateFS, "templates/*.md"))

var funcs = template.FuncMap{
	"num":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":     func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"signed":  func(v float64) string { return fmt.Sprintf("%+.2f", v) },
	"spct":    func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
	"opt":     optional("%.2f"),
	"optPct":  optional("%.2f%%"),
	"volume":  utils.FormatVolume,
	"compact": compact,
	"level":   func(c float64) string { return fmt.Sprintf("%g%%", utils.Round2(c*100)) },
	"date":    func(t time.Time) string { return models.FormatDate(t) },
	"join":    strings.Join,
	"bars":    HorizontalBars,
	"weightBars": func(ws []models.WeightEntry) string {
		items := make([]BarItem, len(ws))
		for i, w := range ws {
			items[i] = BarItem{Label: w.Symbol, Value: w.Weight}
		}
		return HorizontalBars(items, DefaultBarWidth)
	},
	"returnBars": func(es []models.ComparisonEntry) string {
		var items []BarItem
		for _, e := range es {
			if e.Metrics != nil {
				items = append(items, BarItem{Label: e.Symbol, Value: e.Metrics.TotalReturn})
			}
		}
		return HorizontalBars(items, DefaultBarWidth)
	},
	"corr": func(m map[string]map[string]float64, a, b string) string {
		if v, ok := m[a][b]; ok {
			return fmt.Sprintf("%.2f", v)
		}
		return "n/a"
	},
}

func optional(format string) func(*float64) string {
	return func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf(format, *v)
	}
}

func compact(v *float64, currency string) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatCompact(*v, currency)
}

// templateFor picks the template for a tool report.
func templateFor(v any) (string, bool) {
	switch v.(type) {
	case *models.PriceReport:
		return "price.md", true
	case *models.VolatilityReport:
		return "volatility.md", true
	case *models.TrendReport:
		return "trend.md", true
	case *models.RiskReport:
		return "risk.md", true
	case *models.ComparisonReport:
		return "compare.md", true
	case *models.FinancialSummary:
		return "summary.md", true
	case *models.PortfolioReport:
		return "portfolio.md", true
	case *models.IndicesReport:
		return "indices.md", true
	case *models.SearchReport:
		return "search.md", true
	case *models.Error:
		return "error.md", true
	}
	return "", false
}

// Markdown renders a tool report (or a tool error) as Markdown.
func Markdown(v any) (string, error) {
	name, ok := templateFor(v)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, v); err != nil {
		return "", fmt.Errorf("report: render %s: %w", name, err)
	}
	return b.String(), nil
}

// Pretty styles Markdown for a terminal.
func Pretty(md string, opts Options) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = 100
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" && opts.Style != "auto" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("report: terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("report: terminal render: %w", err)
	}
	return out, nil
}

// Render formats v in the requested format. JSON accepts any value; the
// other formats need a tool report or *models.Error.
func Render(v any, f Format, opts Options) (string, error) {
	switch f {
	case FormatJSON, "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("report: encode json: %w", err)
		}
		return string(b) + "\n", nil
	case FormatMarkdown:
		return Markdown(v)
	case FormatPretty:
		md, err := Markdown(v)
		if err != nil {
			return "", err
		}
		return Pretty(md, opts)
	default:
		return "", fmt.Errorf("report: unknown format %q", f)
	}
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
