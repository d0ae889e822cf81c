package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/aish/internal/domain"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	return NewLogger(filepath.Join(t.TempDir(), "audit", "audit.jsonl"), true)
}

func TestRecentCommandsNewestFirst(t *testing.T) {
	logger := newTestLogger(t)

	logger.LogCommandExecution("ls", "list files", 0, 10*time.Millisecond, true)
	logger.LogCommandExecution("pwd", "where am i", 0, 5*time.Millisecond, true)
	logger.LogCommandExecution("whoami", "who am i", 0, 5*time.Millisecond, true)

	records, err := logger.RecentCommands(2)
	if err != nil {
		t.Fatalf("RecentCommands: %v", err)
	}
	got := []string{}
	for _, rec := range records {
		got = append(got, rec.Command)
	}
	if diff := cmp.Diff([]string{"whoami", "pwd"}, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestExecutionRecordSuccessImpliesZeroExit(t *testing.T) {
	logger := newTestLogger(t)

	logger.LogCommandExecution("ls", "p", 0, time.Millisecond, true)
	logger.LogCommandExecution("cat missing", "p", 1, time.Millisecond, true)

	records, err := logger.RecentCommands(0)
	if err != nil {
		t.Fatalf("RecentCommands: %v", err)
	}
	for _, rec := range records {
		if rec.Success != (rec.ExitCode == 0) {
			t.Errorf("record %q: success=%v with exit code %d", rec.Command, rec.Success, rec.ExitCode)
		}
		if rec.EventType != domain.EntryCommandExecution {
			t.Errorf("record %q: event type %q", rec.Command, rec.EventType)
		}
	}
}

func TestSecurityEventsWindow(t *testing.T) {
	logger := newTestLogger(t)

	old := time.Now().Add(-48 * time.Hour)
	logger.now = func() time.Time { return old }
	logger.LogSecurityEvent(domain.EventBlockedCommand, "rm -rf /", map[string]any{"reason": "dangerous"})

	logger.now = time.Now
	logger.LogSecurityEvent(domain.EventSuspiciousPattern, "ls | grep x", map[string]any{"reason": "pipe"})

	events, err := logger.SecurityEvents(24)
	if err != nil {
		t.Fatalf("SecurityEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event inside the 24h window, got %d", len(events))
	}
	if events[0].SecurityType != domain.EventSuspiciousPattern {
		t.Fatalf("wrong event survived the filter: %+v", events[0])
	}
}

func TestReportAggregates(t *testing.T) {
	logger := newTestLogger(t)

	logger.LogCommandAttempt("ls", "p", domain.StatusAllowed, "")
	logger.LogCommandAttempt("rm -rf /", "p", domain.StatusBlocked, "dangerous")
	logger.LogSecurityEvent(domain.EventBlockedCommand, "rm -rf /", nil)
	logger.LogCommandExecution("ls -la", "p", 0, time.Millisecond, true)
	logger.LogCommandExecution("ls /tmp", "p", 0, time.Millisecond, true)
	logger.LogCommandExecution("cat missing", "p", 1, time.Millisecond, true)

	report, err := logger.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalCommands != 3 || report.SuccessfulCommands != 2 || report.FailedCommands != 1 {
		t.Fatalf("command counts wrong: %+v", report)
	}
	if report.BlockedCommands != 1 || report.SecurityEvents != 1 {
		t.Fatalf("security counts wrong: %+v", report)
	}
	if len(report.TopCommands) == 0 || report.TopCommands[0].Command != "ls" || report.TopCommands[0].Count != 2 {
		t.Fatalf("top commands wrong: %+v", report.TopCommands)
	}
	if report.MostRecentActivity == "" {
		t.Fatal("most recent activity not recorded")
	}
}

func TestCorruptLinesAreSkipped(t *testing.T) {
	logger := newTestLogger(t)
	logger.LogCommandExecution("ls", "p", 0, time.Millisecond, true)

	file, err := os.OpenFile(logger.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := file.WriteString("{truncated\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	file.Close()
	logger.LogCommandExecution("pwd", "p", 0, time.Millisecond, true)

	records, err := logger.RecentCommands(0)
	if err != nil {
		t.Fatalf("RecentCommands: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records around the corrupt line, got %d", len(records))
	}
}

func TestDisabledLoggerNeverTouchesDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger := NewLogger(path, false)

	logger.LogCommandAttempt("ls", "p", domain.StatusAllowed, "")
	logger.LogCommandExecution("ls", "p", 0, time.Millisecond, true)
	logger.LogSecurityEvent(domain.EventBlockedCommand, "rm -rf /", nil)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("audit file was created while disabled (stat err: %v)", err)
	}
}

func TestMissingFileYieldsEmptyQueries(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "never-written.jsonl"), true)

	if records, err := logger.RecentCommands(5); err != nil || len(records) != 0 {
		t.Fatalf("RecentCommands on missing file = (%v, %v)", records, err)
	}
	if events, err := logger.SecurityEvents(24); err != nil || len(events) != 0 {
		t.Fatalf("SecurityEvents on missing file = (%v, %v)", events, err)
	}
}
