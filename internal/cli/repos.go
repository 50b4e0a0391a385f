package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/migration-monitor/internal/dashboard"
	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
)

type queryFlags struct {
	statuses []string
	name     string
	sort     string
	desc     bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "only show these statuses (repeatable or comma separated)")
	cmd.Flags().StringVar(&f.name, "name", "", "only show repositories whose name contains this text")
	cmd.Flags().StringVar(&f.sort, "sort", string(projection.SortName), "sort column (name, status, lastUpdate, lastChecked, startedAt, lastPushed, duration, size)")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *queryFlags) query() (projection.Query, error) {
	q := projection.DefaultQuery()
	q.Name = f.name

	col, ok := projection.ParseSortColumn(f.sort)
	if !ok {
		return q, apperrors.NewValidationError("unknown sort column: "+f.sort, nil)
	}
	q.Sort = col
	if f.desc {
		q.Direction = projection.Descending
	}

	if len(f.statuses) > 0 {
		statuses := make([]models.RepoStatus, 0, len(f.statuses))
		for _, raw := range f.statuses {
			status, ok := models.ParseStatus(raw)
			if !ok {
				return q, apperrors.NewValidationError("unknown status: "+raw, nil)
			}
			statuses = append(statuses, status)
		}
		q.Statuses = projection.NewStatusSet(statuses...)
	}
	return q, nil
}

func newReposCommand(app *App) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories of the current migration",
		Long:  `Fetch the current state once and print the filtered, sorted repository table.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			if err := session.Refresh(commandContext(cmd)); err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}

			view := session.ViewFor(q)
			if app.jsonOutput() {
				return writeJSON(app.out, view)
			}
			renderHeader(app.out, session.Header())
			renderView(app.out, view)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCommand(app *App) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live repository state",
		Long: `Subscribe to the server's event stream and redraw the repository table,
statistics and worker states whenever they change. Elapsed times of syncing
repositories (marked *) advance locally every tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			session.SetQuery(q)

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			done := make(chan error, 1)
			go func() {
				done <- session.Run(ctx)
			}()

			for {
				select {
				case err := <-done:
					return err
				case <-session.Updates():
					app.redraw(session)
				}
			}
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *App) redraw(s *dashboard.Session) {
	// clear screen, cursor home
	fmt.Fprint(a.out, "\033[H\033[2J")
	renderHeader(a.out, s.Header())
	renderConnection(a.out, s.Connection())
	renderStats(a.out, s.Stats(), s.Summary())
	renderWorkers(a.out, s.WorkerSnapshots())
	renderView(a.out, s.View())
}

func newStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-status counts and migration totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			if err := session.Refresh(commandContext(cmd)); err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}

			if app.jsonOutput() {
				return writeJSON(app.out, map[string]interface{}{
					"header":  session.Header(),
					"stats":   session.Stats(),
					"summary": session.Summary(),
				})
			}
			renderHeader(app.out, session.Header())
			renderStats(app.out, session.Stats(), session.Summary())
			return nil
		},
	}
}

func newRetryCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retry NAME",
		Short: "Retry the migration of a repository",
		Long:  `Ask the server to retry a repository. The new status arrives with a later snapshot.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if err := session.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			if err := session.RetryRepo(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Retry requested for %s\n", args[0])
			return nil
		},
	}
}

func newLogsCommand(app *App) *cobra.Command {
	var download bool
	cmd := &cobra.Command{
		Use:   "logs NAME",
		Short: "Print the migration logs of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}

			fetch := session.Logs
			if download {
				fetch = session.DownloadLogs
			}
			logs, err := fetch(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(app.out, logs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&download, "download", false, "have the server fetch fresh logs first")
	return cmd
}
