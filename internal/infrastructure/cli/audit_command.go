package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/ansi"
)

func newAuditCommand(opts *Options) *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditReport(cmd, opts)
		},
	}

	auditCmd.AddCommand(
		newAuditReportCommand(opts),
		newAuditRecentCommand(opts),
		newAuditSecurityCommand(opts),
	)
	return auditCmd
}

func newAuditReportCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Aggregate the full audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditReport(cmd, opts)
		},
	}
}

func newAuditRecentCommand(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recently executed commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			records, err := container.Audit.RecentCommands(limit)
			if err != nil {
				return err
			}
			renderRecentCommands(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Max entries to show")
	return cmd
}

func newAuditSecurityCommand(opts *Options) *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "security",
		Short: "Show recent security events",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			events, err := container.Audit.SecurityEvents(hours)
			if err != nil {
				return err
			}
			renderSecurityEvents(cmd.OutOrStdout(), events, hours)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Look-back window in hours")
	return cmd
}

func runAuditReport(cmd *cobra.Command, opts *Options) error {
	container, err := buildContainer(cmd, opts)
	if err != nil {
		return err
	}
	report, err := container.Audit.Report()
	if err != nil {
		return err
	}
	renderAuditReport(cmd.OutOrStdout(), report)
	return nil
}

func renderAuditReport(out io.Writer, report domain.AuditReport) {
	fmt.Fprintln(out, ansi.Info("=== Audit Report ==="))
	fmt.Fprintf(out, "Total commands executed: %d\n", report.TotalCommands)
	fmt.Fprintf(out, "  Successful: %d\n", report.SuccessfulCommands)
	fmt.Fprintf(out, "  Failed:     %d\n", report.FailedCommands)
	fmt.Fprintf(out, "Blocked commands: %d\n", report.BlockedCommands)
	fmt.Fprintf(out, "Security events:  %d\n", report.SecurityEvents)
	if len(report.UniqueUsers) > 0 {
		fmt.Fprintf(out, "Users: %v\n", report.UniqueUsers)
	}
	if report.MostRecentActivity != "" {
		fmt.Fprintf(out, "Most recent activity: %s\n", relativeTime(report.MostRecentActivity))
	}
	if len(report.TopCommands) > 0 {
		fmt.Fprintln(out, "\nTop commands:")
		for _, entry := range report.TopCommands {
			fmt.Fprintf(out, "  %4d  %s\n", entry.Count, entry.Command)
		}
	}
}

func renderRecentCommands(out io.Writer, records []domain.ExecutionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No commands recorded yet.")
		return
	}
	for _, rec := range records {
		status := ansi.Success("ok")
		if !rec.Success {
			status = ansi.Error(fmt.Sprintf("exit %d", rec.ExitCode))
		}
		fmt.Fprintf(out, "%s  %s  %s\n", relativeTime(rec.Timestamp), status, rec.Command)
	}
}

func renderSecurityEvents(out io.Writer, events []domain.SecurityEvent, hours int) {
	if len(events) == 0 {
		fmt.Fprintf(out, "No security events in the last %d hours.\n", hours)
		return
	}
	for _, event := range events {
		fmt.Fprintf(out, "%s  %s  %s\n", relativeTime(event.Timestamp), ansi.Warning(event.SecurityType), event.Command)
	}
}

// relativeTime renders an RFC3339 timestamp the way people read it ("3 hours
// ago"), falling back to the raw string for anything unparsable.
func relativeTime(stamp string) string {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return humanize.Time(t)
	}
	return stamp
}
