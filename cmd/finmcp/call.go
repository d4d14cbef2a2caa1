package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/PaesslerAG/jsonpath"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finmcp/internal/report"
	"github.com/seenimoa/finmcp/internal/service"
	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/models"
)

// cliCaller is the rate-limit identity of one-shot CLI calls.
const cliCaller = "cli"

// --- Tools Command ---

var toolsCmd = &cobra.Command{
	Use:   "tools [name]",
	Short: "List the tool catalogue, or print one tool's schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		registry := newApp().registry

		if len(args) == 1 {
			tool, ok := registry.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", tools.ErrToolNotFound, args[0])
			}
			b, err := json.MarshalIndent(tool, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, t := range registry.List() {
			fmt.Fprintf(tw, "%s\t%s\n", t.Name, firstSentence(t.Description))
		}
		return tw.Flush()
	},
}

// --- Call Command ---

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-args]",
	Short: "Run one tool and print its report",
	Long: `Run one tool with JSON arguments and print the report.

Examples:
  finmcp call get_stock_price '{"symbol":"AAPL","period":"1mo"}'
  finmcp call compare_stocks '{"symbols":["AAPL","MSFT"]}' --format pretty
  finmcp call get_risk_analysis '{"symbol":"TSLA"}' --select '$.value_at_risk[0].value_at_risk'
  echo '{"query":"apple"}' | finmcp call search_stocks -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		selector, _ := cmd.Flags().GetString("select")
		style, _ := cmd.Flags().GetString("style")
		width, _ := cmd.Flags().GetInt("width")
		opts := report.Options{Style: style, Width: width}

		raw, err := callArgs(cmd.InOrStdin(), args[1:])
		if err != nil {
			return err
		}

		registry := newApp().registry
		ctx := service.WithCaller(cmd.Context(), cliCaller)
		result, err := registry.Execute(ctx, args[0], raw)
		if err != nil {
			if errors.Is(err, tools.ErrToolNotFound) {
				return fmt.Errorf("%w (run 'finmcp tools' for the list)", err)
			}
			text, rerr := report.Render(models.AsError(err), format, opts)
			if rerr != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return errToolFailed
		}

		if selector != "" {
			v, err := selectPath(result, selector)
			if err != nil {
				return err
			}
			result, format = v, report.FormatJSON
		}
		text, err := report.Render(result, format, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	callCmd.Flags().StringP("format", "f", "json", "output format: json, markdown or pretty")
	callCmd.Flags().StringP("select", "s", "", "JSONPath expression applied to the JSON report, e.g. '$.entries[*].symbol'")
	callCmd.Flags().String("style", "auto", "terminal style for --format pretty (auto, dark, light, notty)")
	callCmd.Flags().Int("width", 100, "word-wrap width for --format pretty")
}

// callArgs returns the raw JSON arguments: "{}" when absent, stdin for "-".
func callArgs(stdin io.Reader, args []string) (json.RawMessage, error) {
	if len(args) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if args[0] != "-" {
		return json.RawMessage(args[0]), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read arguments from stdin: %w", err)
	}
	return json.RawMessage(b), nil
}

// selectPath evaluates a JSONPath expression against the JSON form of v.
func selectPath(v any, path string) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	out, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", path, err)
	}
	return out, nil
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
