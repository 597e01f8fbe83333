package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
	"github.com/timmy/memeverse/internal/service"
	"github.com/timmy/memeverse/internal/source/imgflip"
	"github.com/timmy/memeverse/internal/source/staging"
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration

	stagingSource string
	topLimit      int
	searchSort    string

	cfg       *config.Config
	appLogger *logger.Logger
	trending  *imgflip.Adapter
	store     *service.MemeStore
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Feed and inspect the memeverse store",
	Long: `ingest pulls trending memes into the memeverse store and inspects what is there.

It talks to the same key-value backend as the API server, so run it against the
database configured in config.yaml (or CONFIG_PATH).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		appLogger = logger.New(&logger.Config{
			Level:       level,
			Format:      "text",
			Output:      os.Stderr,
			ServiceName: "memeverse-ingest",
		})
		logger.SetDefaultLogger(appLogger)

		kv, err := repository.NewKVStore(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize key-value store: %w", err)
		}

		trending = imgflip.NewAdapter(&imgflip.Config{
			BaseURL:    cfg.Trending.BaseURL,
			Timeout:    cfg.Trending.Timeout,
			RetryCount: cfg.Trending.RetryCount,
		})
		store = service.NewMemeStore(kv, trending, appLogger, &service.MemeStoreConfig{
			MaxSeedLikes: cfg.Trending.MaxLikes,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// trendingCmd pulls the live trending feed
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Pull the trending feed into the store",
	Long: `Fetches the trending source once and appends every item as a Trending meme.
A failed pull is reported and nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

// stagingCmd seeds the store from a local manifest
var stagingCmd = &cobra.Command{
	Use:   "staging",
	Short: "Seed the store from a staging manifest",
	Long: `Reads <staging base>/<source>/manifest.jsonl and appends every item as a
Trending meme. Without --source the available staging sources are listed.

Example:
  ingest staging
  ingest staging --source imgflip-2024`,
	Args: cobra.NoArgs,
	RunE: runStaging,
}

// topCmd prints the leaderboard
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most liked memes",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

// searchCmd searches titles
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search memes by title",
	Long: `Case-insensitive substring search over meme titles.

Example:
  ingest search drake
  ingest search "two buttons" --sort comments`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	stagingCmd.Flags().StringVar(&stagingSource, "source", "", "Staging source directory name")
	topCmd.Flags().IntVar(&topLimit, "limit", service.DefaultTopLimit, "Number of memes to list")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort by likes, date or comments")

	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(stagingCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext honours --timeout and cancels on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runTrending(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	memes, err := store.IngestFrom(ctx, trending)
	if err != nil {
		return err
	}
	appLogger.WithFields(logger.Fields{
		logger.FieldSource: trending.GetSourceID(),
		logger.FieldCount:  len(memes),
	}).Info("Trending ingestion completed")
	printMemes(cmd, memes)
	return nil
}

func runStaging(cmd *cobra.Command, args []string) error {
	basePath := cfg.Sources.Staging.BasePath
	if stagingSource == "" {
		ids, err := staging.ListStagingSources(basePath)
		if err != nil {
			return fmt.Errorf("failed to list staging sources: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No staging sources under %s\n", basePath)
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()

	src := staging.NewAdapter(basePath, stagingSource)
	memes, err := store.IngestFrom(ctx, src)
	if err != nil {
		return err
	}
	appLogger.WithFields(logger.Fields{
		logger.FieldSource: src.GetSourceID(),
		logger.FieldCount:  len(memes),
	}).Info("Staging ingestion completed")
	printMemes(cmd, memes)
	return nil
}

func runTop(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	memes, err := store.TopByLikes(ctx, topLimit)
	if err != nil {
		return err
	}
	printMemes(cmd, memes)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	memes, err := store.SearchByTitle(ctx, args[0])
	if err != nil {
		return err
	}
	if searchSort != "" {
		memes = service.SortMemes(memes, domain.SortOption(searchSort))
	}
	printMemes(cmd, memes)
	return nil
}

func printMemes(cmd *cobra.Command, memes []domain.Meme) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tLIKES\tCOMMENTS")
	for _, m := range memes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", m.ID, m.Title, m.Category, m.Likes, len(m.Comments))
	}
	w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "%d meme(s)\n", len(memes))
}
