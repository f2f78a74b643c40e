package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/spboyer/loadout/internal/cache"
	"github.com/spboyer/loadout/internal/dataset"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/projectconfig"
	"github.com/spboyer/loadout/internal/solver"
)

// instanceFlags selects the pallets and the truck for a command.
type instanceFlags struct {
	capacity   float64
	maxItems   int
	trucksPath string
	truckID    int
	rows       string
}

func (f *instanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.capacity, "capacity", "c", 0, "Truck weight capacity")
	cmd.Flags().IntVarP(&f.maxItems, "max-items", "k", 0, "Maximum number of pallets on the truck (default: unlimited)")
	cmd.Flags().StringVar(&f.trucksPath, "trucks", "", "CSV file of trucks (truck,capacity,pallets)")
	cmd.Flags().IntVar(&f.truckID, "truck", 0, "Truck id to use from --trucks (default: the only or first truck)")
	cmd.Flags().StringVar(&f.rows, "rows", "", "Only load pallet rows in this range, e.g. 1:20 (1-based, inclusive)")
}

// load reads the pallets file and resolves the truck from the flags.
func (f *instanceFlags) load(cmd *cobra.Command, itemsPath string) ([]models.Item, models.Container, error) {
	var (
		items []models.Item
		err   error
	)
	if f.rows != "" {
		start, end, rerr := dataset.ParseRange(f.rows)
		if rerr != nil {
			return nil, models.Container{}, fmt.Errorf("--rows: %w", rerr)
		}
		items, err = dataset.LoadItemsRange(itemsPath, start, end)
	} else {
		items, err = dataset.LoadItems(itemsPath)
	}
	if err != nil {
		return nil, models.Container{}, fmt.Errorf("loading pallets: %w", err)
	}

	c, err := f.container(cmd)
	if err != nil {
		return nil, models.Container{}, err
	}
	return items, c, nil
}

func (f *instanceFlags) container(cmd *cobra.Command) (models.Container, error) {
	var c models.Container
	switch {
	case f.trucksPath != "":
		trucks, err := dataset.LoadContainers(f.trucksPath)
		if err != nil {
			return c, fmt.Errorf("loading trucks: %w", err)
		}
		if len(trucks) == 0 {
			return c, fmt.Errorf("%s contains no trucks", f.trucksPath)
		}
		if cmd.Flags().Changed("truck") {
			c, err = dataset.FindContainer(trucks, f.truckID)
			if err != nil {
				return c, err
			}
		} else {
			c = trucks[0]
		}
		if cmd.Flags().Changed("capacity") {
			c.Capacity = f.capacity
		}
	case cmd.Flags().Changed("capacity"):
		c = models.Unlimited(f.capacity)
	default:
		return c, errors.New("either --capacity or --trucks is required")
	}

	if cmd.Flags().Changed("max-items") {
		k := f.maxItems
		c.MaxItems = &k
	}
	if err := models.ValidateContainer(c); err != nil {
		return c, err
	}
	return c, nil
}

func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	if configPath != "" {
		return projectconfig.LoadFile(configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// openCache returns the configured solution cache, or nil when caching is
// off. The returned close function is never nil.
func openCache(ctx context.Context, cfg *projectconfig.ProjectConfig, enabled bool) (cache.Store, func(), error) {
	noop := func() {}
	if !enabled && !cfg.CacheEnabled() {
		return nil, noop, nil
	}

	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "disk":
		dir, err := filepath.Abs(cfg.Cache.Dir)
		if err != nil {
			return nil, noop, fmt.Errorf("resolving cache directory: %w", err)
		}
		return cache.New(dir), noop, nil
	case "redis":
		ttl, err := cfg.CacheTTL()
		if err != nil {
			return nil, noop, err
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		closeFn := func() { _ = client.Close() }
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			slog.Warn("redis cache unavailable, continuing without cache", "addr", cfg.Cache.RedisAddr, "error", err)
			closeFn()
			return nil, noop, nil
		}
		return cache.NewRedis(client, ttl), closeFn, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// newRunner builds a runner whose solver options come from the config, with
// a non-zero timeLimit flag taking precedence.
func newRunner(cfg *projectconfig.ProjectConfig, store cache.Store, workers int, timeLimit time.Duration) *orchestration.Runner {
	if workers <= 0 {
		workers = cfg.Defaults.Workers
	}
	opts := []orchestration.RunnerOption{
		orchestration.WithWorkers(workers),
		orchestration.WithOptions(solverOptions(cfg, timeLimit)),
	}
	if store != nil {
		opts = append(opts, orchestration.WithCache(store))
	}
	return orchestration.NewRunner(opts...)
}

func solverOptions(cfg *projectconfig.ProjectConfig, timeLimit time.Duration) orchestration.OptionsFunc {
	return func(alg solver.Algorithm) (solver.Options, error) {
		opts, err := cfg.SolverOptions(alg)
		if err != nil {
			return opts, err
		}
		if timeLimit > 0 {
			opts.TimeLimit = timeLimit
		}
		return opts, nil
	}
}

// algorithmsOrDefault parses names, falling back to the configured set.
func algorithmsOrDefault(cfg *projectconfig.ProjectConfig, names []string) ([]solver.Algorithm, error) {
	if len(names) == 0 {
		return cfg.Algorithms()
	}
	var split []string
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if part = strings.TrimSpace(part); part != "" {
				split = append(split, part)
			}
		}
	}
	return projectconfig.ParseAlgorithms(split)
}
