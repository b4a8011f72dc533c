package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prizma/internal/app"
	"prizma/internal/domain/config"
	"prizma/internal/feed"
	"prizma/internal/index"
	"prizma/internal/logger"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "prizma",
	Short: "Serve or export a Blogger-backed blog",
	Long: `prizma loads posts from a Blogger feed, normalizes embedded video and
sanitizes the markup, then serves the result or writes it out as a static site.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "./site.yaml", "site config file")
	rootCmd.AddCommand(serveCmd, buildCmd, fetchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openSite reads the config, sets up logging and opens the snapshot store.
// The caller closes the store.
func openSite() (*app.Site, *index.Store, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", flagConfig, err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, nil, err
	}

	st, err := index.Open(index.OpenOptions{Path: cfg.Cache.Path})
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	s, err := app.New(app.Options{
		Config: cfg,
		Feed:   feed.NewFromConfig(cfg.Feed),
		Store:  st,
	})
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return s, st, nil
}
