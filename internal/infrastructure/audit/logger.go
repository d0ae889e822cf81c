// Package audit persists the append-only JSON-Lines audit trail.
//
// One JSON object per line, append-only, human-greppable. Writers swallow
// I/O failures (audit logging must never abort command execution); readers
// stream the file and skip lines that fail to parse, so a corrupt or partial
// line is tolerated rather than fatal.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

// Logger appends audit records to a JSONL file.
type Logger struct {
	path    string
	enabled bool
	errOut  io.Writer
	mu      sync.Mutex

	now func() time.Time
}

// NewLogger builds an audit logger for the given file. When enabled is
// false every write is a no-op and the file is never touched.
func NewLogger(path string, enabled bool) *Logger {
	return &Logger{
		path:    path,
		enabled: enabled,
		errOut:  os.Stderr,
		now:     time.Now,
	}
}

// Path returns the backing file path.
func (l *Logger) Path() string { return l.path }

// LogCommandAttempt records that a command reached validation, with its
// security status (allowed, warning, blocked) and any warning message.
func (l *Logger) LogCommandAttempt(command, userPrompt, securityStatus, warningMessage string) {
	if !l.enabled {
		return
	}
	ts := l.now()
	l.append(domain.AttemptRecord{
		ID:             uuid.NewString(),
		Timestamp:      ts.Format(time.RFC3339),
		UnixTimestamp:  unixSeconds(ts),
		EventType:      domain.EntryCommandAttempt,
		Command:        command,
		UserPrompt:     userPrompt,
		SecurityStatus: securityStatus,
		WarningMessage: warningMessage,
		User:           currentUser(),
		WorkingDir:     workingDir(),
	})
}

// LogCommandExecution records a completed execution attempt.
func (l *Logger) LogCommandExecution(command, userPrompt string, exitCode int, duration time.Duration, userConfirmed bool) {
	if !l.enabled {
		return
	}
	ts := l.now()
	l.append(domain.ExecutionRecord{
		ID:            uuid.NewString(),
		Timestamp:     ts.Format(time.RFC3339),
		UnixTimestamp: unixSeconds(ts),
		EventType:     domain.EntryCommandExecution,
		Command:       command,
		UserPrompt:    userPrompt,
		ExitCode:      exitCode,
		Success:       exitCode == 0,
		ExecutionTime: duration.Seconds(),
		UserConfirmed: userConfirmed,
		User:          currentUser(),
		WorkingDir:    workingDir(),
	})
}

// LogSecurityEvent records a classifier block or warning.
func (l *Logger) LogSecurityEvent(eventType, command string, details map[string]any) {
	if !l.enabled {
		return
	}
	ts := l.now()
	l.append(domain.SecurityEvent{
		ID:            uuid.NewString(),
		Timestamp:     ts.Format(time.RFC3339),
		UnixTimestamp: unixSeconds(ts),
		EventType:     domain.EntrySecurityEvent,
		SecurityType:  eventType,
		Command:       command,
		Details:       details,
		User:          currentUser(),
		WorkingDir:    workingDir(),
	})
}

func (l *Logger) append(entry any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.errOut, "Failed to encode audit entry: %v\n", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		fmt.Fprintf(l.errOut, "Failed to write audit log: %v\n", err)
		return
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(l.errOut, "Failed to write audit log: %v\n", err)
		return
	}
	defer file.Close()
	if _, err := file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(l.errOut, "Failed to write audit log: %v\n", err)
	}
}

// RecentCommands returns the last limit command_execution entries, most
// recent first.
func (l *Logger) RecentCommands(limit int) ([]domain.ExecutionRecord, error) {
	var records []domain.ExecutionRecord
	err := l.scan(func(line []byte, kind string) {
		if kind != domain.EntryCommandExecution {
			return
		}
		var rec domain.ExecutionRecord
		if json.Unmarshal(line, &rec) == nil {
			records = append(records, rec)
		}
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	// newest first
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// SecurityEvents returns security_event entries from the last sinceHours
// hours.
func (l *Logger) SecurityEvents(sinceHours int) ([]domain.SecurityEvent, error) {
	cutoff := unixSeconds(l.now()) - float64(sinceHours)*3600
	var events []domain.SecurityEvent
	err := l.scan(func(line []byte, kind string) {
		if kind != domain.EntrySecurityEvent {
			return
		}
		var event domain.SecurityEvent
		if json.Unmarshal(line, &event) == nil && event.UnixTimestamp > cutoff {
			events = append(events, event)
		}
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Report aggregates the whole log in a single pass.
func (l *Logger) Report() (domain.AuditReport, error) {
	report := domain.AuditReport{}
	users := map[string]bool{}
	frequency := map[string]int{}

	err := l.scan(func(line []byte, kind string) {
		var probe struct {
			EventType      string `json:"event_type"`
			SecurityStatus string `json:"security_status"`
			Success        bool   `json:"success"`
			Command        string `json:"command"`
			User           string `json:"user"`
			Timestamp      string `json:"timestamp"`
		}
		if json.Unmarshal(line, &probe) != nil {
			return
		}
		if probe.User != "" {
			users[probe.User] = true
		}
		if probe.Timestamp != "" {
			report.MostRecentActivity = probe.Timestamp
		}
		switch probe.EventType {
		case domain.EntryCommandExecution:
			report.TotalCommands++
			if probe.Success {
				report.SuccessfulCommands++
			} else {
				report.FailedCommands++
			}
			frequency[firstToken(probe.Command)]++
		case domain.EntrySecurityEvent:
			report.SecurityEvents++
		default:
			if probe.SecurityStatus == domain.StatusBlocked {
				report.BlockedCommands++
			}
		}
	})
	if err != nil {
		return domain.AuditReport{}, err
	}

	for user := range users {
		report.UniqueUsers = append(report.UniqueUsers, user)
	}
	sort.Strings(report.UniqueUsers)
	report.TopCommands = topCommands(frequency, 10)
	return report, nil
}

// scan streams the log line by line. Lines are handed to fn together with
// their event_type; unparsable lines are skipped. A missing file yields an
// empty scan, not an error.
func (l *Logger) scan(fn func(line []byte, kind string)) error {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var probe struct {
			EventType string `json:"event_type"`
		}
		if json.Unmarshal(line, &probe) != nil {
			continue
		}
		// Hand fn a stable copy; scanner reuses its buffer.
		copied := make([]byte, len(line))
		copy(copied, line)
		fn(copied, probe.EventType)
	}
	return scanner.Err()
}

func topCommands(frequency map[string]int, limit int) []domain.CommandCount {
	counts := make([]domain.CommandCount, 0, len(frequency))
	for command, count := range frequency {
		counts = append(counts, domain.CommandCount{Command: command, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Command < counts[j].Command
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func firstToken(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

func workingDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return ""
}

var _ ports.AuditRecorder = (*Logger)(nil)
