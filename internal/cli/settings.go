package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "github.com/Kamar-Folarin/migration-monitor/internal/errors"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/settings"
)

func newSyncsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "syncs",
		Short: "List sync configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			syncs, err := session.SyncConfigs(commandContext(cmd))
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(app.out, syncs)
			}
			renderSyncs(app.out, syncs)
			return nil
		},
	}
}

func newSettingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Compare and apply organization settings",
	}
	cmd.AddCommand(newSettingsCompareCommand(app), newSettingsApplyCommand(app))
	return cmd
}

func newSettingsCompareCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compare SYNC_ID",
		Short: "Compare source and target settings of a sync configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			report, err := session.LoadSettings(commandContext(cmd), models.SyncID(args[0]))
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(app.out, report)
			}
			renderReport(app.out, report, nil)
			return nil
		},
	}
}

func newSettingsApplyCommand(app *App) *cobra.Command {
	var (
		allDifferent bool
		yes          bool
	)
	cmd := &cobra.Command{
		Use:   "apply SYNC_ID [KEY...]",
		Short: "Copy selected settings from the source to the target",
		Long: `Select settings by key, or every syncable difference with --all-different,
and write the source values to the target. Settings that failed stay
selected and are listed so the apply can be retried.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args[1:]
			if len(keys) == 0 && !allDifferent {
				return apperrors.NewValidationError("name at least one setting key or pass --all-different", nil)
			}

			session, _, err := app.newSession()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if _, err := session.LoadSettings(ctx, models.SyncID(args[0])); err != nil {
				return err
			}

			selection := session.Selection()
			if allDifferent {
				selection.SelectAllDifferent()
			}
			for _, key := range keys {
				if !selection.Has(key) && !selection.Toggle(key) {
					fmt.Fprintf(app.errOut, "%s %s cannot be applied (equal, read-only or unknown)\n", color.YellowString("skipping"), key)
				}
			}
			if selection.Len() == 0 {
				fmt.Fprintln(app.out, "Nothing to apply.")
				return nil
			}

			var confirm settings.Confirmer = promptConfirmer(app.in, app.out)
			if yes {
				confirm = settings.ConfirmFunc(func(context.Context, settings.ConfirmRequest) (bool, error) {
					return true, nil
				})
			}

			outcome, err := selection.Apply(ctx, confirm)
			if stderrors.Is(err, settings.ErrDeclined) {
				fmt.Fprintln(app.out, "Cancelled.")
				return nil
			}
			if outcome == nil {
				return err
			}

			if app.jsonOutput() {
				if jsonErr := writeJSON(app.out, outcome); jsonErr != nil {
					return jsonErr
				}
			} else {
				renderNotice(app.out, outcome.Notice())
			}
			if outcome.ReloadErr != nil {
				fmt.Fprintf(app.errOut, "%s could not refresh the comparison: %s\n",
					color.YellowString("warning:"), apperrors.UserMessage(outcome.ReloadErr))
			}
			if outcome.Kind == settings.OutcomePartial {
				return outcome.Err
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&allDifferent, "all-different", false, "select every setting that differs and can be applied")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply without asking for confirmation")
	return cmd
}

// promptConfirmer asks on out and reads a y/N answer from in
func promptConfirmer(in io.Reader, out io.Writer) settings.Confirmer {
	reader := bufio.NewReader(in)
	return settings.ConfirmFunc(func(ctx context.Context, req settings.ConfirmRequest) (bool, error) {
		fmt.Fprintf(out, "%s\n  %s\n[y/N] ", req.Prompt(), strings.Join(req.Keys, "\n  "))
		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}
