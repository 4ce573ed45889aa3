package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/flamechart/pkg/buildinfo"
	"github.com/matzehuels/flamechart/pkg/cache"
	"github.com/matzehuels/flamechart/pkg/config"
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
	"github.com/matzehuels/flamechart/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flamechart"

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

	// Config is loaded before any subcommand runs. Flags override it.
	Config     config.Config
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
		Use:          appName,
		Short:        "Flamechart renders and explores profiles as flame charts",
		Long:         `Flamechart lays out CPU, allocation and trace profiles as flame charts and renders them to images, call-tree diagrams or an interactive terminal view.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flamechart/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// setup loads the config file and attaches the logger to the command
// context. The drawing library logs through the same logger.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	gg.SetLogger(slog.New(c.Logger))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
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
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version)
	c.Logger.Debug("cache keys scoped", "scope", keyer.Scope())
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// layoutProfile loads the profile at opts.Path and lays it out, without
// rendering. The cache only serves profile downloads here.
func (c *CLI) layoutProfile(ctx context.Context, opts pipeline.Options) (*pipeline.Loaded, *flamechart.Flamechart, error) {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	loaded, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	prog.stage("profile loaded", "input", loaded.Input, "frames", loaded.Profile.Frames().Len())
	chart, err := runner.Layout(ctx, loaded, opts)
	if err != nil {
		return nil, nil, err
	}
	prog.stage("layout built", "kind", opts.Kind, "layers", len(chart.Layers()))
	return loaded, chart, nil
}

// addProfileFlags registers the flags shared by every command that loads
// and lays out a profile.
func addProfileFlags(f *pflag.FlagSet, opts *pipeline.Options) {
	f.StringVar(&opts.Input, "input", "", "input format: collapsed, pprof, interval (default: detect)")
	f.StringVar(&opts.SampleType, "sample-type", "", "pprof sample type (default: the profile's default)")
	f.StringVar(&opts.Unit, "unit", "", "value unit of collapsed stacks: ns, us, ms, s, bytes")
	f.StringVarP(&opts.Kind, "kind", "k", "", "layout: default, left-heavy, network, grouped, timing")
	f.StringVar(&opts.RootFilter, "root-filter", "", "only lay out top-level frames whose name contains this")
}

// newCache builds the configured artifact cache. A cache that cannot be
// opened is logged and replaced by a NullCache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc := c.Config.Cache.Redis
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", rc.Addr, "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		store, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// cacheDir returns the file cache directory.
func (c *CLI) cacheDir() (string, error) {
	return c.Config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyConfig fills pipeline options the user left unset from the config.
func (c *CLI) applyConfig(opts *pipeline.Options) error {
	if opts.Width == 0 {
		opts.Width = c.Config.View.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Config.View.Height
	}
	if opts.DPR == 0 {
		opts.DPR = c.Config.View.DPR
	}
	if opts.Kind == "" {
		opts.Kind = c.Config.View.Kind
	}
	if opts.Theme == "" {
		opts.Theme = c.Config.Theme.Name
		if colors := c.Config.Theme.Colors; colors != (render.Theme{}) {
			opts.ThemeColors = &colors
		}
	}
	opts.Logger = c.Logger
	return opts.Validate()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
