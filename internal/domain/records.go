package domain

// Audit log entry kinds, one per JSONL line.
const (
	EntryCommandAttempt   = "command_attempt"
	EntryCommandExecution = "command_execution"
	EntrySecurityEvent    = "security_event"
)

// AttemptRecord logs that a command passed (or failed) validation before any
// confirmation or execution happened.
type AttemptRecord struct {
	ID             string  `json:"id,omitempty"`
	Timestamp      string  `json:"timestamp"`
	UnixTimestamp  float64 `json:"unix_timestamp"`
	EventType      string  `json:"event_type"`
	Command        string  `json:"command"`
	UserPrompt     string  `json:"user_prompt"`
	SecurityStatus string  `json:"security_status"`
	WarningMessage string  `json:"warning_message,omitempty"`
	User           string  `json:"user"`
	WorkingDir     string  `json:"working_directory"`
}

// ExecutionRecord logs one completed execution attempt. Appended once per
// run; never mutated afterwards. Success implies ExitCode == 0.
type ExecutionRecord struct {
	ID            string  `json:"id,omitempty"`
	Timestamp     string  `json:"timestamp"`
	UnixTimestamp float64 `json:"unix_timestamp"`
	EventType     string  `json:"event_type"`
	Command       string  `json:"command"`
	UserPrompt    string  `json:"user_prompt"`
	ExitCode      int     `json:"exit_code"`
	Success       bool    `json:"success"`
	ExecutionTime float64 `json:"execution_time_seconds"`
	UserConfirmed bool    `json:"user_confirmed"`
	User          string  `json:"user"`
	WorkingDir    string  `json:"working_directory"`
}

// SecurityEvent logs a classifier block or warning the gate chose to record.
type SecurityEvent struct {
	ID            string         `json:"id,omitempty"`
	Timestamp     string         `json:"timestamp"`
	UnixTimestamp float64        `json:"unix_timestamp"`
	EventType     string         `json:"event_type"`
	SecurityType  string         `json:"security_event_type"`
	Command       string         `json:"command"`
	Details       map[string]any `json:"details"`
	User          string         `json:"user"`
	WorkingDir    string         `json:"working_directory"`
}

// FeedbackPair is one (prompt, completion, judgment) triple destined for a
// future fine-tuning dataset.
type FeedbackPair struct {
	Prompt     string  `json:"prompt"`
	Completion string  `json:"completion"`
	Feedback   string  `json:"feedback"`
	Timestamp  float64 `json:"timestamp"`
}

// Feedback judgments.
const (
	FeedbackPositive   = "positive"
	FeedbackNegative   = "negative"
	FeedbackCorrection = "correction"
)

// CommandCount is one row of the audit report frequency table.
type CommandCount struct {
	Command string
	Count   int
}

// AuditReport aggregates a full pass over the audit log.
type AuditReport struct {
	TotalCommands      int
	SuccessfulCommands int
	FailedCommands     int
	BlockedCommands    int
	SecurityEvents     int
	UniqueUsers        []string
	MostRecentActivity string
	TopCommands        []CommandCount
}
