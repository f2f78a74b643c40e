package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cacheDir     string
	cacheBackend string
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the solution cache",
		Long: `Manage the solution cache.

The cache stores solutions so repeated solves of the same instance return
immediately. Entries are keyed by algorithm, solver options, truck and the
full pallet list. Brute force runs stopped by the time budget are never cached.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the solution cache",
		Long: `Clear all cached solutions from the configured backend (disk or redis).

The next solve re-runs every algorithm from scratch.`,
		Args: cobra.NoArgs,
		RunE: cacheClearE,
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default from config)")
	cmd.Flags().StringVar(&cacheBackend, "backend", "", "Cache backend: disk or redis (default from config)")

	return cmd
}

func cacheClearE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if cacheBackend != "" {
		cfg.Cache.Backend = cacheBackend
	}

	ctx := cmd.Context()
	store, closeCache, err := openCache(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeCache()
	if store == nil {
		return fmt.Errorf("%s cache is unavailable", cfg.Cache.Backend)
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	target := cfg.Cache.RedisAddr
	if cfg.Cache.Backend != "redis" {
		target = cfg.Cache.Dir
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", target) //nolint:errcheck
	return nil
}
