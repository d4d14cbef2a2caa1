// Command finmcp serves finance analytics tools for LLM hosts.
//
// Main CLI entrypoint using cobra command framework. With no subcommand the
// binary speaks MCP on stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finmcp/api"
	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/datasource"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/mcpserver"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/internal/report"
	"github.com/seenimoa/finmcp/internal/service"
	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set before any command runs.
var (
	cfg *config.Config
	log zerolog.Logger
)

// errToolFailed marks a tool error that has already been printed.
var errToolFailed = errors.New("tool call failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finmcp",
	Short: "finmcp: finance analytics tools over MCP and HTTP",
	Long: `finmcp serves guarded quantitative finance tools (prices, volatility,
trend, risk, comparisons, portfolios, market indices and symbol search) to
LLM hosts over the Model Context Protocol, and to everything else over HTTP.

Run without a subcommand to start the MCP stdio server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		log = logger.New(logger.Config{Level: level, Format: cfg.Logging.Format})
		logger.SetGlobalLogger(log)
		return nil
	},
	RunE: runMCP,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(statusCmd)
}

// app is the wired tool stack shared by every command.
type app struct {
	metrics  *metrics.Metrics
	registry *tools.Registry
	guard    *guardrail.Guard
}

func newApp() *app {
	m := metrics.New()
	guard := guardrail.NewFromConfig(cfg, guardrail.WithMetrics(m), guardrail.WithLogger(log))
	market := datasource.NewYFinance(cfg.Provider,
		datasource.WithFetchMetrics(m),
		datasource.WithFetchLogger(log),
	)
	news := datasource.NewNews(cfg.Provider, m, log)
	svc := service.New(cfg, guard, market,
		service.WithNews(news),
		service.WithMetrics(m),
		service.WithLogger(log),
	)
	return &app{metrics: m, registry: tools.Catalogue(svc), guard: guard}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "finmcp %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- MCP Command ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools over MCP on stdio (default)",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a := newApp()
	srv, err := mcpserver.New(cfg.MCP.Name, version, a.registry,
		mcpserver.WithLogger(log),
		mcpserver.WithMarkdown(cfg.MCP.Markdown),
	)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()
	return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, port := cfg.API.Host, cfg.API.Port
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		a := newApp()
		srv := api.NewServer(cfg, a.registry,
			api.WithMetrics(a.metrics),
			api.WithGuard(a.guard),
			api.WithLogger(log),
			api.WithVersion(version),
		)
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return srv.ListenAndServe(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		a := newApp()
		g := a.guard.Rules()

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  finmcp System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time (UTC):    %s\n", time.Now().UTC().Format(time.RFC3339))
		fmt.Fprintf(out, "  Tools:         %d\n", a.registry.Count())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Rate limit:    %d calls / %s per caller\n", g.RateCapacity, g.RateWindow)
		fmt.Fprintf(out, "    Compare:       %d..%d symbols\n", g.CompareMinSymbols, g.CompareMaxSymbols)
		fmt.Fprintf(out, "    Portfolio:     %d..%d symbols\n", g.PortfolioMinSymbols, g.PortfolioMaxSymbols)
		fmt.Fprintf(out, "    Benchmark:     %s\n", cfg.Analysis.DefaultBenchmark)
		fmt.Fprintf(out, "    Provider:      %s\n", cfg.Provider.BaseURL)
		fmt.Fprintf(out, "    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(out, "    MCP Name:      %s\n", cfg.MCP.Name)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Host:")
		if info, err := host.InfoWithContext(cmd.Context()); err == nil {
			fmt.Fprintf(out, "    OS:            %s %s (%s)\n", info.Platform, info.PlatformVersion, info.KernelArch)
			fmt.Fprintf(out, "    Uptime:        %s\n", report.FormatDuration(time.Duration(info.Uptime)*time.Second))
		}
		if n, err := cpu.Counts(true); err == nil {
			fmt.Fprintf(out, "    CPUs:          %d\n", n)
		}
		if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
			fmt.Fprintf(out, "    CPU load:      %.1f%%\n", pct[0])
		}
		if vm, err := mem.VirtualMemory(); err == nil {
			fmt.Fprintf(out, "    Memory:        %s / %s (%.1f%%)\n",
				humanize.IBytes(vm.Used), humanize.IBytes(vm.Total), vm.UsedPercent)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
