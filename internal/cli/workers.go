package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/worker"
)

func newWorkersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Show the status, migration and progress workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			// one failing worker must not hide the others
			if err := session.Workers().PollAll(commandContext(cmd)); err != nil {
				app.logger.WithError(err).Debug("Worker poll failed")
			}

			snaps := session.WorkerSnapshots()
			if app.jsonOutput() {
				return writeJSON(app.out, snaps)
			}
			renderWorkers(app.out, snaps)
			return nil
		},
	}
	cmd.AddCommand(newWorkerToggleCommand(app))
	return cmd
}

func newWorkerToggleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "toggle KIND",
		Short:     "Stop a running worker or start a stopped one",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(worker.KindStatus), string(worker.KindMigration), string(worker.KindProgress)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := worker.ParseKind(args[0])
			if !ok {
				return apperrors.NewValidationError("unknown worker: "+args[0], nil)
			}
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			tracker, err := session.Workers().Get(kind)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			if err := tracker.Poll(ctx); err != nil {
				return fmt.Errorf("failed to read %s worker status: %w", kind, err)
			}
			if err := session.ToggleWorker(ctx, kind); err != nil {
				return err
			}

			snap := tracker.Snapshot()
			if app.jsonOutput() {
				return writeJSON(app.out, snap)
			}
			fmt.Fprintf(app.out, "%s worker is now %s\n", kind, workerState(snap))
			return nil
		},
	}
}
