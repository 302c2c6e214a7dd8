// Package cli provides the command-line interface for council.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/perimetric/council/internal/agents"
	"github.com/perimetric/council/internal/config"
	"github.com/perimetric/council/internal/db"
	"github.com/perimetric/council/internal/jobstore"
	"github.com/perimetric/council/internal/llm"
	"github.com/perimetric/council/internal/metrics"
	"github.com/perimetric/council/internal/ratelimit"
	"github.com/perimetric/council/internal/review"
	"github.com/perimetric/council/internal/source"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and backends
	cfg       config.Config
	dbClient  *db.Client
	limiter   ratelimit.Limiter
	store     jobstore.Store
	collector *metrics.Collector

	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "Multi-agent code review engine",
	Long: `Council reviews a codebase with a panel of specialized LLM agents.

Security, performance, quality, and architecture agents analyze the files
independently and their findings are merged into one per-file report.
Reviews run as background jobs whose state lives in Redis, so a running
review can be detached from and picked up again later.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip backend setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load config
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// Setup logger (dual output: stderr text + file JSON)
		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		closeLogger = cleanup

		collector = metrics.NewCollector()

		// Connect to Redis. Without it the limiter and job store fall back
		// to in-process backends, which only this invocation can see.
		ctx := context.Background()
		client, err := db.NewClient(ctx, db.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			slog.Warn("Redis unavailable, using in-process backends",
				"addr", cfg.RedisAddr,
				"error", err,
			)
			limiter = ratelimit.NewMemoryLimiter()
			store = jobstore.NewMemoryStore()
			return nil
		}

		dbClient = client
		limiter = ratelimit.NewRedisLimiter(client.Redis())
		store = jobstore.NewRedisStore(client.Redis(), cfg.JobTTL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(); err != nil {
				slog.Warn("failed to close Redis connection", "error", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// getService assembles the review service over the active backends.
// Commands that only read job state pass a nil roster.
func getService(roster []agents.Analyzer) *review.Service {
	providers := []source.Provider{source.NewDir()}
	return review.NewService(limiter, store, providers, roster, review.Options{
		MaxRequests: cfg.RateLimitRequests,
		Window:      cfg.RateLimitWindow,
		MaxWorkers:  cfg.MaxWorkers,
		Metrics:     collector,
	})
}

// newGenerator builds the LLM backend for one agent. A non-empty model is a
// per-agent override from the roster file.
func newGenerator(model string) (agents.Generator, error) {
	modelCfg := cfg
	if model != "" {
		modelCfg.LLMModel = model
	}
	gen, err := llm.NewModel(modelCfg)
	if err != nil {
		return nil, err
	}
	gen.WithMetrics(collector)
	return gen, nil
}

// clientKey identifies this invocation to the rate limiter. All invocations
// from one host share a quota.
func clientKey() string {
	host, err := os.Hostname()
	if err != nil {
		return "cli:local"
	}
	return "cli:" + host
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(agentsCmd)
}
