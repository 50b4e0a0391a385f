package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Kamar-Folarin/migration-monitor/internal/history"
	"github.com/Kamar-Folarin/migration-monitor/internal/live"
	"github.com/Kamar-Folarin/migration-monitor/internal/models"
	"github.com/Kamar-Folarin/migration-monitor/internal/projection"
	"github.com/Kamar-Folarin/migration-monitor/internal/settings"
	"github.com/Kamar-Folarin/migration-monitor/internal/worker"
)

var statusColors = map[models.RepoStatus]*color.Color{
	models.StatusSynced:   color.New(color.FgGreen),
	models.StatusSyncing:  color.New(color.FgCyan),
	models.StatusQueued:   color.New(color.FgYellow),
	models.StatusFailed:   color.New(color.FgRed, color.Bold),
	models.StatusUnsynced: color.New(color.FgWhite),
	models.StatusDeleted:  color.New(color.Faint),
	models.StatusUnknown:  color.New(color.Faint),
}

func colorStatus(status models.RepoStatus) string {
	if c, ok := statusColors[status]; ok {
		return c.Sprint(string(status))
	}
	return string(status)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderHeader(w io.Writer, h projection.Header) {
	source := joinNonEmpty(h.SourceEnt, h.SourceOrg)
	target := joinNonEmpty(h.TargetEnt, h.TargetOrg)
	if source == "" && target == "" {
		return
	}
	fmt.Fprintf(w, "%s -> %s\n", color.New(color.Bold).Sprint(source), color.New(color.Bold).Sprint(target))
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

func renderView(w io.Writer, view projection.View) {
	switch {
	case view.Waiting:
		fmt.Fprintln(w, "Waiting for the first snapshot...")
		return
	case view.Empty:
		fmt.Fprintln(w, "No repositories.")
		return
	case view.NoResults:
		fmt.Fprintln(w, "No repositories match the current filters.")
		return
	}

	table := newTable(w, "Repository", "Status", "Elapsed", "Size", "Last Update", "Last Checked", "Started", "Last Pushed")
	for _, row := range view.Rows {
		elapsed := row.Elapsed
		if row.Live {
			elapsed += "*"
		}
		table.Append([]string{
			row.Name,
			colorStatus(row.Status),
			elapsed,
			row.Size,
			row.LastUpdate,
			row.LastChecked,
			row.StartedAt,
			row.LastPushed,
		})
	}
	table.Render()

	for _, row := range view.Rows {
		if row.Title != "" {
			fmt.Fprintf(w, "%s %s: %s\n", color.RedString("!"), row.Name, row.Title)
		}
	}
}

func renderStats(w io.Writer, stats projection.Stats, summary projection.SummaryDisplay) {
	table := newTable(w, "Status", "Repositories")
	for _, status := range models.Statuses {
		if status == models.StatusDeleted {
			continue
		}
		if n := stats.Count(status); n > 0 {
			table.Append([]string{colorStatus(status), strconv.Itoa(n)})
		}
	}
	table.SetFooter([]string{"Total", strconv.Itoa(stats.Total)})
	table.Render()

	fmt.Fprintf(w, "Oldest check: %s  Total size: %s  Total duration: %s  Wall clock: %s  Per MB: %s\n",
		summary.SyncRecency, summary.TotalSize, summary.TotalDuration, summary.WallClock, summary.PerMB)
}

func renderConnection(w io.Writer, status live.Status) {
	var c *color.Color
	switch status.State {
	case live.Connected:
		c = color.New(color.FgGreen)
	case live.Connecting:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}
	fmt.Fprintf(w, "Live: %s", c.Sprint(status.StateName))
	if status.Reconnects > 0 {
		fmt.Fprintf(w, " (%d reconnects)", status.Reconnects)
	}
	fmt.Fprintln(w)
}

func renderWorkers(w io.Writer, snaps []worker.Snapshot) {
	table := newTable(w, "Worker", "State", "Current", "In Progress", "Error")
	for _, snap := range snaps {
		table.Append([]string{
			string(snap.Name),
			workerState(snap),
			workerCurrent(snap),
			workerProgress(snap),
			snap.LastError,
		})
	}
	table.Render()
}

func workerState(snap worker.Snapshot) string {
	switch {
	case snap.Busy:
		return color.YellowString("busy")
	case snap.Status == nil:
		return color.New(color.Faint).Sprint("unknown")
	case snap.Status.Running:
		return color.GreenString("running")
	default:
		return color.RedString("stopped")
	}
}

func workerCurrent(snap worker.Snapshot) string {
	if snap.Status == nil {
		return ""
	}
	return snap.Status.Current()
}

func workerProgress(snap worker.Snapshot) string {
	if snap.Status == nil || snap.Status.InProgress == nil {
		return ""
	}
	if snap.Status.MaxConcurrent == nil {
		return strconv.Itoa(*snap.Status.InProgress)
	}
	return fmt.Sprintf("%d/%d", *snap.Status.InProgress, *snap.Status.MaxConcurrent)
}

func renderSyncs(w io.Writer, syncs []models.SyncConfigSummary) {
	table := newTable(w, "ID", "Name", "Source", "Target", "Archived")
	for _, s := range syncs {
		archived := ""
		if s.Archived {
			archived = "yes"
		}
		table.Append([]string{string(s.ID), s.Name, s.Source.Org, s.Target.Org, archived})
	}
	table.Render()
}

func renderReport(w io.Writer, report settings.Report, selection *settings.Selection) {
	fmt.Fprintf(w, "%s -> %s\n", color.New(color.Bold).Sprint(report.Source.Org), color.New(color.Bold).Sprint(report.Target.Org))
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("warning:"), warning)
	}

	for _, group := range report.Groups {
		fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(group.Name))
		table := newTable(w, "", "Setting", "Key", "Source", "Target")
		for _, row := range group.Rows {
			table.Append([]string{settingMark(row, selection), settingLabel(row), row.Key, row.Source, row.Target})
		}
		table.Render()
	}

	renderReadOnly(w, "Enterprise", report.Enterprise)
	renderReadOnly(w, "Copilot", report.Copilot)

	c := report.Counts
	fmt.Fprintf(w, "\n%d settings: %d equal, %d different, %d can be applied\n",
		c.Total, c.Equal, c.Different, c.SyncableDifferent)
}

func settingMark(row settings.Row, selection *settings.Selection) string {
	switch {
	case selection != nil && selection.Has(row.Key):
		return color.CyanString("[x]")
	case row.IsEqual:
		return color.GreenString("=")
	case row.CanSync:
		return color.YellowString("~")
	default:
		return color.New(color.Faint).Sprint("~")
	}
}

func settingLabel(row settings.Row) string {
	if row.Deprecated {
		return row.Label + " (deprecated)"
	}
	return row.Label
}

func renderReadOnly(w io.Writer, title string, rows []settings.ReadOnlyRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (read-only)\n", color.New(color.Bold).Sprint(title))
	table := newTable(w, "", "Setting", "Source", "Target")
	for _, row := range rows {
		mark := color.YellowString("~")
		if row.IsEqual {
			mark = color.GreenString("=")
		}
		table.Append([]string{mark, row.Label, row.Source, row.Target})
	}
	table.Render()
}

func renderNotice(w io.Writer, n settings.Notice) {
	switch n.Level {
	case settings.NoticeInfo:
		fmt.Fprintln(w, color.GreenString(n.Message))
	case settings.NoticeWarning:
		fmt.Fprintln(w, color.YellowString(n.Message))
	default:
		fmt.Fprintln(w, color.RedString(n.Message))
	}
}

func renderHistory(w io.Writer, entries []history.Entry) {
	table := newTable(w, "Recorded", "Source", "Target", "Version", "Total", "Synced", "Failed", "Size (KB)")
	for _, e := range entries {
		version := ""
		if e.Version != nil {
			version = strconv.FormatUint(*e.Version, 10)
		}
		table.Append([]string{
			e.RecordedAt.Format("2006-01-02 15:04:05"),
			e.SourceOrg,
			e.TargetOrg,
			version,
			strconv.Itoa(e.Total),
			strconv.Itoa(e.Counts[models.StatusSynced]),
			strconv.Itoa(e.Counts[models.StatusFailed]),
			strconv.FormatInt(e.TotalSizeKB, 10),
		})
	}
	table.Render()
}
