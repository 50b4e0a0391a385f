package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Kamar-Folarin/migration-monitor/internal/client"
	"github.com/Kamar-Folarin/migration-monitor/internal/config"
	"github.com/Kamar-Folarin/migration-monitor/internal/dashboard"
)

// App carries the I/O and configuration shared by every command
type App struct {
	v      *viper.Viper
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *logrus.Logger
}

// AppOption configures an App
type AppOption func(*App)

// WithIO replaces the standard streams
func WithIO(in io.Reader, out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

// NewRootCommand builds the dashboard command tree
func NewRootCommand(opts ...AppOption) *cobra.Command {
	app := &App{
		v:      viper.New(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(app)
	}

	rootCmd := &cobra.Command{
		Use:   "migmon",
		Short: "Repository migration dashboard client",
		Long: `A command line client for a repository migration dashboard.

It mirrors the server's live repository state, controls the background
workers and compares or applies organization settings between the source
and target of a sync configuration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}
	rootCmd.SetIn(app.in)
	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.errOut)

	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "dashboard server URL (default http://localhost:3000)")
	flags.Duration("timeout", 0, "request timeout (default 30s)")
	flags.String("log-level", "", "log level (default info)")
	flags.Bool("json", false, "output in JSON format")
	flags.Bool("no-color", false, "disable colored output")

	for _, name := range []string{"url", "timeout", "log-level", "json", "no-color"} {
		_ = app.v.BindPFlag(name, flags.Lookup(name))
	}
	app.v.SetEnvPrefix("MIGMON")
	app.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	app.v.AutomaticEnv()

	rootCmd.AddCommand(
		newReposCommand(app),
		newWatchCommand(app),
		newStatsCommand(app),
		newWorkersCommand(app),
		newRetryCommand(app),
		newLogsCommand(app),
		newSyncsCommand(app),
		newSettingsCommand(app),
		newServeCommand(app),
		newHistoryCommand(app),
	)
	return rootCmd
}

func (a *App) setup() error {
	a.logger.SetOutput(a.errOut)
	a.logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	// commands stay quiet unless asked; serve switches to LOG_LEVEL
	if err := a.setLevel(a.v.GetString("log-level"), logrus.WarnLevel); err != nil {
		return err
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	return nil
}

func (a *App) setLevel(name string, fallback logrus.Level) error {
	if name == "" {
		a.logger.SetLevel(fallback)
		return nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return &config.ConfigError{Field: "log-level", Message: err.Error()}
	}
	a.logger.SetLevel(level)
	return nil
}

// config resolves flags and MIGMON_* variables over config.Load defaults
func (a *App) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if url := a.v.GetString("url"); url != "" {
		cfg.ServerURL = strings.TrimRight(url, "/")
		cfg.Client.BaseURL = cfg.ServerURL
	}
	if timeout := a.v.GetDuration("timeout"); timeout > 0 {
		cfg.Client.Timeout = timeout
	}
	if level := a.v.GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if port := a.v.GetString("port"); port != "" {
		cfg.Port = port
	}
	if db := a.v.GetString("db"); db != "" {
		cfg.DBConnectionString = db
	}
	return cfg, nil
}

func (a *App) jsonOutput() bool {
	return a.v.GetBool("json")
}

func (a *App) newSession(opts ...dashboard.Option) (*dashboard.Session, *config.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	c := client.NewClient(cfg.Client, a.logger)
	return dashboard.NewSession(c, cfg.Sync, a.logger, opts...), cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
