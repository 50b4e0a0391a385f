package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/migration-monitor/internal/api"
	"github.com/Kamar-Folarin/migration-monitor/internal/dashboard"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/history"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live session behind a JSON read-model API",
		Long: `Keep a live session against the dashboard server and expose the projected
state over HTTP under /api/v1, with Swagger UI at /swagger/index.html. When a
database is configured every applied snapshot is journaled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}

			app.logger.SetFormatter(&logrus.JSONFormatter{
				TimestampFormat: time.RFC3339,
			})
			if err := app.setLevel(cfg.LogLevel, logrus.InfoLevel); err != nil {
				return err
			}

			var (
				opts   []dashboard.Option
				reader api.HistoryReader
			)
			if cfg.DBConnectionString != "" {
				store, err := app.openHistory(cfg.DBConnectionString)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, dashboard.WithJournal(store))
				reader = store
			}

			session, _, err := app.newSession(opts...)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      api.SetupRouter(api.NewHandler(session, reader, app.logger)),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				app.logger.Infof("Server starting on port %s", cfg.Port)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serveErr <- err
				}
				close(serveErr)
			}()

			sessionDone := make(chan error, 1)
			go func() {
				sessionDone <- session.Run(ctx)
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if err != nil {
					stop()
					<-sessionDone
					return fmt.Errorf("server failed: %w", err)
				}
			}

			app.logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				app.logger.Errorf("Server shutdown failed: %v", err)
			}
			err = <-sessionDone
			app.logger.Info("Server exited properly")
			return err
		},
	}
	cmd.Flags().String("port", "", "listen port (default 8081)")
	cmd.Flags().String("db", "", "Postgres connection string of the statistics journal")
	cmd.PreRunE = app.bindFlags("port", "db")
	return cmd
}

func newHistoryCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled snapshot statistics, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			if cfg.DBConnectionString == "" {
				return apperrors.NewValidationError("no database configured (set DB_CONNECTION_STRING or --db)", nil)
			}

			store, err := app.openHistory(cfg.DBConnectionString)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(commandContext(cmd), limit)
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(app.out, entries)
			}
			renderHistory(app.out, entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	cmd.Flags().String("db", "", "Postgres connection string of the statistics journal")
	cmd.PreRunE = app.bindFlags("db")
	return cmd
}

// bindFlags binds the named local flags once the command is chosen;
// serve and history share the db key
func (a *App) bindFlags(names ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for _, name := range names {
			if err := a.v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (a *App) openHistory(connectionString string) (*history.PostgresStore, error) {
	store, err := history.Open(connectionString, a.logger)
	if err != nil {
		return nil, err
	}
	if err := retry(3, 5*time.Second, store.Migrate); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}
	return store, nil
}

// retry retries fn up to attempts times with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
