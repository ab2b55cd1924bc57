package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/finagent-ai/finagent/pkg/pipeline"
	"github.com/finagent-ai/finagent/pkg/stategraph"
	"github.com/finagent-ai/finagent/pkg/stategraph/checkpoint"
	"github.com/finagent-ai/finagent/pkg/stategraph/config"
)

var rootCmd = &cobra.Command{
	Use:   "finagent",
	Short: "Financial research workflows with human-in-the-loop approval",
	Long: `finagent runs a multi-stage financial research pipeline: query planning,
data gathering, analysis, report drafting with quality review, and risk
assessment. Interactive runs suspend before publishing so an operator can
approve or reject the report.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db", "finagent.db", "SQLite checkpoint database path")
	rootCmd.PersistentFlags().String("config", "", "YAML config file (pipeline and store settings)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log run progress to stderr")
}

// loadConfig reads the --config file, or returns an empty config when the
// flag is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.New(nil), nil
	}
	return config.FromFile(path)
}

// openStore builds the checkpoint store. The config's store.driver wins over
// the --db flag: memory and redis are available for setups that do not want
// a local database file.
func openStore(cmd *cobra.Command, cfg config.Config) (checkpoint.Store, error) {
	switch driver := cfg.String("store.driver", "sqlite"); driver {
	case "sqlite":
		path, _ := cmd.Flags().GetString("db")
		path = cfg.String("store.sqlite.path", path)
		return checkpoint.NewSQLiteStore(path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.String("store.redis.addr", "localhost:6379"),
			Password: cfg.String("store.redis.password", ""),
			DB:       cfg.Int("store.redis.db", 0),
		})
		return checkpoint.NewRedisStore(client,
			checkpoint.WithKeyPrefix(cfg.String("store.redis.key_prefix", "finagent:run:")),
			checkpoint.WithTTL(cfg.Duration("store.redis.ttl", 0)),
		), nil
	case "memory":
		return checkpoint.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// newEngine assembles the pipeline engine for one CLI invocation. The caller
// must call the returned cleanup to close the store.
func newEngine(cmd *cobra.Command, interactive bool) (*stategraph.Engine, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := pipeline.OptionsFromConfig(cfg)
	provider := pipeline.NewStaticProvider(pipeline.DefaultUniverse()...).
		AddAlias("goldman", "GS").
		AddAlias("jpmorgan", "JPM").
		AddAlias("jp morgan", "JPM")
	p := pipeline.New(provider,
		pipeline.WithMaxRevisions(opts.MaxRevisions),
		pipeline.WithPassScore(opts.PassScore),
	)
	graph, err := p.Graph(interactive)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	engine := stategraph.NewEngine(graph, store,
		stategraph.WithLogger(logger),
		stategraph.WithMaxSteps(cfg.Int("engine.max_steps", 100)),
	)
	return engine, func() { store.Close() }, nil
}

// printRun renders a run snapshot for the terminal.
func printRun(run *stategraph.Run) {
	switch run.Status {
	case stategraph.StatusCompleted:
		fmt.Println(run.State.String(pipeline.FieldFinalReport))
	case stategraph.StatusSuspended:
		fmt.Printf("Run %s is awaiting approval at %q.\n\n", run.ID, run.Node)
		fmt.Println("Draft report:")
		fmt.Println()
		fmt.Println(run.State.String(pipeline.FieldReportDraft))
		fmt.Println()
		fmt.Printf("Approve with:  finagent resume %s --approve\n", run.ID)
		fmt.Printf("Reject with:   finagent resume %s --reject\n", run.ID)
	case stategraph.StatusFailed:
		fmt.Printf("Run %s failed at %q.\n", run.ID, run.Node)
		for _, e := range run.Errors() {
			fmt.Println("  -", e)
		}
	default:
		fmt.Printf("Run %s is %s at %q.\n", run.ID, run.Status, run.Node)
	}
}
