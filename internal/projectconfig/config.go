// Package projectconfig provides the ProjectConfig struct and loader for
// .loadout.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/spboyer/loadout/internal/solver"
	"github.com/spboyer/loadout/internal/validation"
)

// FileName is the configuration file looked up by Load.
const FileName = ".loadout.yaml"

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultResultsDir = "results/"

	DefaultAlgorithm = string(solver.DynamicProgramming)
	DefaultFormat    = "table"
	DefaultWorkers   = 4
	DefaultTolerance = 1e-6
	DefaultRuns      = 10

	DefaultCacheBackend = "disk"
	DefaultCacheDir     = ".loadout-cache"
	DefaultRedisAddr    = "localhost:6379"
	DefaultCacheTTL     = "168h"
)

// PathsConfig holds directory paths.
type PathsConfig struct {
	Results string `yaml:"results,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	Algorithm  string   `yaml:"algorithm,omitempty"`
	Algorithms []string `yaml:"algorithms,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	Workers    int      `yaml:"workers,omitempty"`
	Tolerance  float64  `yaml:"tolerance,omitempty"`
	Runs       int      `yaml:"runs,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Backend   string `yaml:"backend,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	TTL       string `yaml:"ttl,omitempty"`
}

// UploadConfig holds result upload settings.
type UploadConfig struct {
	ContainerURL string `yaml:"container_url,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .loadout.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Upload   UploadConfig   `yaml:"upload,omitempty"`
	// Solvers maps an algorithm name (or alias) to its option map, decoded
	// into solver.Options by SolverOptions.
	Solvers map[string]map[string]any `yaml:"solvers,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Results: DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Algorithm:  DefaultAlgorithm,
			Algorithms: algorithmNames(solver.Algorithms()),
			Format:     DefaultFormat,
			Workers:    DefaultWorkers,
			Tolerance:  DefaultTolerance,
			Runs:       DefaultRuns,
		},
		Cache: CacheConfig{
			Enabled:   boolPtr(false),
			Backend:   DefaultCacheBackend,
			Dir:       DefaultCacheDir,
			RedisAddr: DefaultRedisAddr,
			TTL:       DefaultCacheTTL,
		},
		Solvers: map[string]map[string]any{},
	}
}

// Load finds .loadout.yaml by walking up from startDir (max 10 levels),
// validates it against the config schema, unmarshals it, and fills in missing
// fields with defaults. If no config file is found, returns defaults with a
// nil error. Real I/O errors (e.g. permission denied) are returned to the
// caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	return parse(cfg, data)
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(New(), data)
}

func parse(cfg *ProjectConfig, data []byte) (*ProjectConfig, error) {
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s:\n  %s", FileName, strings.Join(errs, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .loadout.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Defaults
	if src.Defaults.Algorithm != "" {
		dst.Defaults.Algorithm = src.Defaults.Algorithm
	}
	if len(src.Defaults.Algorithms) > 0 {
		dst.Defaults.Algorithms = src.Defaults.Algorithms
	}
	if src.Defaults.Format != "" {
		dst.Defaults.Format = src.Defaults.Format
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.Tolerance != 0 {
		dst.Defaults.Tolerance = src.Defaults.Tolerance
	}
	if src.Defaults.Runs != 0 {
		dst.Defaults.Runs = src.Defaults.Runs
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Backend != "" {
		dst.Cache.Backend = src.Cache.Backend
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.RedisAddr != "" {
		dst.Cache.RedisAddr = src.Cache.RedisAddr
	}
	if src.Cache.TTL != "" {
		dst.Cache.TTL = src.Cache.TTL
	}

	// Upload
	if src.Upload.ContainerURL != "" {
		dst.Upload.ContainerURL = src.Upload.ContainerURL
	}

	// Solvers merge per algorithm key.
	for name, opts := range src.Solvers {
		dst.Solvers[name] = opts
	}
}

// Algorithm returns the configured default algorithm.
func (c *ProjectConfig) Algorithm() (solver.Algorithm, error) {
	return solver.ParseAlgorithm(c.Defaults.Algorithm)
}

// Algorithms returns the configured comparison set in order, without
// duplicates.
func (c *ProjectConfig) Algorithms() ([]solver.Algorithm, error) {
	return ParseAlgorithms(c.Defaults.Algorithms)
}

// CacheEnabled reports whether solution caching is switched on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// CacheTTL parses the cache TTL. An empty value means no expiry.
func (c *ProjectConfig) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	return d, nil
}

// SolverOptions decodes the option map configured for alg. Keys in the
// solvers section may be canonical names or aliases; when several keys
// resolve to the same algorithm the canonical name wins.
func (c *ProjectConfig) SolverOptions(alg solver.Algorithm) (solver.Options, error) {
	var opts solver.Options

	raw, ok := c.Solvers[string(alg)]
	if !ok {
		for name, m := range c.Solvers {
			if a, err := solver.ParseAlgorithm(name); err == nil && a == alg {
				raw = m
				break
			}
		}
	}
	if raw == nil {
		return opts, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("solvers.%s: %w", alg, err)
	}
	return opts, nil
}

// ParseAlgorithms parses names in order, dropping duplicates.
func ParseAlgorithms(names []string) ([]solver.Algorithm, error) {
	var out []solver.Algorithm
	seen := map[solver.Algorithm]bool{}
	for _, n := range names {
		a, err := solver.ParseAlgorithm(n)
		if err != nil {
			return nil, err
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out, nil
}

func algorithmNames(algs []solver.Algorithm) []string {
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = string(a)
	}
	return names
}

func boolPtr(b bool) *bool {
	return &b
}
