package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"movie-finder-cli/browser"
	"movie-finder-cli/config"
	"movie-finder-cli/logging"
	"movie-finder-cli/metrics"
	"movie-finder-cli/service"
	"movie-finder-cli/store"
	"movie-finder-cli/tui"
)

const appName = "movie-finder-cli"

var (
	version = "dev"
	commit  = "none"
)

// SetVersion records build metadata injected through main.
func SetVersion(v, c string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
}

func versionString() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("%s %s (%s)", appName, version, commit)
	}
	return fmt.Sprintf("%s %s", appName, version)
}

// Execute runs the command tree with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	cfgFile     string
	logLevel    string
	metricsAddr string

	// isTerminal decides between the TUI and plain table output.
	isTerminal func() bool

	app *app
}

// app holds the wired dependencies for one command invocation.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *service.Client
	details  *service.DetailAggregator
	backend  store.TrendingStore
	runner   *browser.Runner

	closers     []io.Closer
	stopMetrics context.CancelFunc
}

func newRootCmd() *cobra.Command {
	opts := &options{isTerminal: stdoutIsTerminal}

	root := &cobra.Command{
		Use:   appName,
		Short: "Search, browse and inspect movies from the terminal",
		Long: `movie-finder-cli browses a movie catalog: popular titles, debounced search,
trending searches and per-movie details with certification and trailers.`,
		Version:           versionString(),
		SilenceUsage:      true,
		PersistentPreRunE: opts.initializeApp,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.shutdown()
		},
		RunE: opts.runRoot,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	root.AddCommand(
		newSearchCmd(opts),
		newDiscoverCmd(opts),
		newTrendingCmd(opts),
		newDetailCmd(opts),
		newPickCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) initializeApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if cmd == cmd.Root() && o.isTerminal() {
		useTUILogFile(cfg)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	o.app = a
	return nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, logCloser := logging.New(cfg.Logging)
	a := &app{
		cfg:     cfg,
		logger:  logger,
		closers: []io.Closer{logCloser},
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector())
	a.metrics = metrics.New(a.registry)

	client, err := service.NewClient(service.Options{
		BaseURL:      cfg.Catalog.BaseURL,
		APIKey:       cfg.Catalog.APIKey,
		ImageBaseURL: cfg.Catalog.ImageBaseURL,
		HTTPClient:   &http.Client{Timeout: cfg.Catalog.Timeout},
		Logger:       logger,
		Metrics:      a.metrics,
	})
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}
	a.client = client

	a.details = service.NewDetailAggregator(client,
		service.WithCacheSize(cfg.Detail.CacheSize),
		service.WithDetailLogger(logger),
		service.WithDetailMetrics(a.metrics),
	)

	backend, err := store.Open(cfg.Backend, logger, store.WithImageURL(client.ImageURL))
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Driver, err)
	}
	a.backend = backend
	a.closers = append(a.closers, backend)

	a.runner = browser.NewRunner(client, a.details, backend,
		browser.WithLogger(logger),
		browser.WithMetrics(a.metrics),
	)

	if cfg.Metrics.Addr != "" {
		if ctx == nil {
			ctx = context.Background()
		}
		metricsCtx, cancel := context.WithCancel(ctx)
		a.stopMetrics = cancel
		go func() {
			if err := metrics.Serve(metricsCtx, cfg.Metrics.Addr, a.registry, logger); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
			}
		}()
	}

	return a, nil
}

func (a *app) newBrowser() *browser.Browser {
	return browser.New(browser.Config{
		MaxPages:      a.cfg.Browser.MaxPages,
		Debounce:      a.cfg.Browser.Debounce,
		TrendingLimit: a.cfg.Trending.Limit,
	}, a.runner)
}

func (a *app) close() error {
	if a.stopMetrics != nil {
		a.stopMetrics()
	}
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (o *options) shutdown() error {
	if o.app == nil {
		return nil
	}
	err := o.app.close()
	o.app = nil
	return err
}

func (o *options) runRoot(cmd *cobra.Command, args []string) error {
	a := o.app
	if !o.isTerminal() {
		return runDiscover(cmd.Context(), cmd.OutOrStdout(), a, 1)
	}

	if a.cfg.Logging.File == "" {
		// No writable log file: stderr output would corrupt the alt screen.
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
	program := tea.NewProgram(
		tui.New(tui.Deps{Browser: a.newBrowser(), Context: cmd.Context()}),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

// useTUILogFile points logging at the default file when none is configured,
// since the TUI owns stderr's terminal.
func useTUILogFile(cfg *config.Config) {
	if strings.TrimSpace(cfg.Logging.File) != "" {
		return
	}
	path, err := logging.DefaultFile()
	if err != nil {
		return
	}
	cfg.Logging.File = path
}

var stdoutIsTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Version needs no config or clients.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}
