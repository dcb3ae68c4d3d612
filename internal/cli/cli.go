package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/celltower/pkg/buildinfo"
	"github.com/matzehuels/celltower/pkg/cache"
	"github.com/matzehuels/celltower/pkg/config"
	"github.com/matzehuels/celltower/pkg/httputil"
	"github.com/matzehuels/celltower/pkg/pipeline"
	"github.com/matzehuels/celltower/pkg/source/ofcom"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "celltower"

	// pipelineCacheDir and httpCacheDir live under cacheDir.
	pipelineCacheDir = "pipeline"
	httpCacheDir     = "http"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "celltower",
		Short: "Celltower maps Swiss mobile antenna sites",
		Long: `Celltower converts the OFCOM antenna export from Swiss LV95 coordinates to
WGS84, nudges overlapping sites apart and renders an interactive map with
one togglable layer per operator.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/celltower/config.toml)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.declutterCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default path when it exists.
func (c *CLI) loadConfig() error {
	path, optional := c.configPath, false
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path, optional = p, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "operators", cfg.OperatorNames())
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)

	if dir, err := cacheDir(); err == nil && !noCache {
		if hc, err := httputil.NewCache(filepath.Join(dir, httpCacheDir), httputil.DefaultTTL); err == nil {
			runner.Fetcher = ofcom.NewFetcher(nil, hc, c.Logger)
		}
	} else {
		runner.Fetcher = ofcom.NewFetcher(nil, nil, c.Logger)
	}
	return runner, nil
}

// newCache picks Redis when configured, else the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url, c.Config.Cache.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.pipelineCacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) pipelineCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, pipelineCacheDir), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/celltower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns options carrying the CLI's logger and config.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		URL:    c.Config.Source.URL,
		Config: c.Config,
		Logger: c.Logger,
	}
}

// inputOptions fills Input, URL or Data from a positional argument.
// "-" reads standard input; an explicit --url wins over the configured one.
func inputOptions(opts *pipeline.Options, args []string, url string, stdin io.Reader) error {
	if url != "" {
		opts.URL = url
	}
	if len(args) == 0 {
		if opts.URL == "" {
			return errors.New("an input file, '-' or --url is required")
		}
		return nil
	}
	opts.URL = ""
	if args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		opts.Data = data
		return nil
	}
	opts.Input = args[0]
	return nil
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps a writer that must not be closed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeFile writes data to path, or stdout for "" and "-".
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
