// Package cli wires the leadlens commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/leadlens/internal/config"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
	"github.com/MikeSquared-Agency/leadlens/internal/pipeline"
	"github.com/MikeSquared-Agency/leadlens/internal/rollup"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:   "leadlens",
		Short: "LeadLens - chat-log sales analytics",
		Long: `LeadLens turns exported WhatsApp chat logs into lead scores, funnel stages,
response-time quality and dashboard KPIs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
			cfg = config.Load()
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.LogLevel = "debug"
			}
			setupLogging(cfg.LogLevel)
		},
	}

	rootCmd.AddCommand(newServeCmd(&cfg))
	rootCmd.AddCommand(newAnalyzeCmd(&cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfg)
		},
	}
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [CSV]",
		Short: "Analyse a chat export and print the KPIs",
		Long: `Analyse an exported chat CSV (columns Chats, Type, Date, Name, Content)
and print the dashboard KPIs, insights and period comparison.
Example: leadlens analyze chats.csv --start=2024-01-01 --end=2024-01-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			ignore, _ := cmd.Flags().GetString("ignore")
			period, _ := cmd.Flags().GetString("period")
			asJSON, _ := cmd.Flags().GetBool("json")

			return runAnalyze(cmd, *cfg, analyzeOptions{
				path:   args[0],
				start:  start,
				end:    end,
				ignore: ignore,
				period: period,
				json:   asJSON,
			})
		},
	}

	cmd.Flags().String("start", "", "First day to include, YYYY-MM-DD")
	cmd.Flags().String("end", "", "Last day to include, YYYY-MM-DD")
	cmd.Flags().String("ignore", "", "Comma-separated chat ids to leave out")
	cmd.Flags().String("period", "month", "Comparison period: week or month")
	cmd.Flags().Bool("json", false, "Print JSON instead of the summary")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leadlens %s\n", Version)
		},
	}
}

type analyzeOptions struct {
	path   string
	start  string
	end    string
	ignore string
	period string
	json   bool
}

type analysis struct {
	KPIs       kpi.Result    `json:"kpis"`
	Insights   []kpi.Insight `json:"insights"`
	Finance    kpi.Finance   `json:"finance"`
	Comparison []rollup.Row  `json:"comparison"`
	Rows       int           `json:"rows"`
	Dropped    int           `json:"dropped"`
}

func runAnalyze(cmd *cobra.Command, cfg config.Config, opts analyzeOptions) error {
	period, err := rollup.ParsePeriod(opts.period)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.path)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	parser := dates.NewParser(cfg.Location())
	out, err := pipeline.Run(f, parser)
	if err != nil {
		return fmt.Errorf("analyse %s: %w", opts.path, err)
	}

	filter := kpi.Filter{Ignored: kpi.ParseIgnored(opts.ignore)}
	if opts.start != "" || opts.end != "" {
		rng, err := kpi.NewDateRange(parser, opts.start, opts.end)
		if err != nil {
			return fmt.Errorf("date range: %w", err)
		}
		filter.Range = rng
	}

	chats := kpi.Apply(out.Chats, filter, parser)
	res := kpi.NewAggregator(parser).Aggregate(chats)
	a := analysis{
		KPIs:       res,
		Insights:   kpi.Insights(res),
		Finance:    kpi.ProjectFinance(res, cfg.AvgTicket),
		Comparison: rollup.Compare(chats, period, parser),
		Rows:       out.Rows,
		Dropped:    out.Dropped,
	}

	w := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	fmt.Fprintln(w, renderAnalysis(a))
	return nil
}
