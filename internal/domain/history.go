package domain

import "time"

// HistoryRecord captures one gate invocation for the local command history.
type HistoryRecord struct {
	Timestamp       time.Time   `json:"timestamp"`
	Prompt          string      `json:"prompt"`
	Command         string      `json:"command"`
	Verdict         VerdictKind `json:"verdict"`
	Executed        bool        `json:"executed"`
	Success         bool        `json:"success"`
	ExitCode        int         `json:"exit_code"`
	ExecutionTimeMS int64       `json:"execution_time_ms"`
}
