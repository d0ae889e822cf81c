// Package domain defines core business entities and value objects for aish.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures shared between the gate, the classifier, and the
// persistence adapters.
package domain

// VerdictKind enumerates security classifier outcomes.
type VerdictKind string

const (
	VerdictClear   VerdictKind = "clear"
	VerdictWarned  VerdictKind = "warned"
	VerdictBlocked VerdictKind = "blocked"
)

// Verdict is the classifier's decision about a single command string.
// It is computed purely from the command text and carries no side effects.
type Verdict struct {
	Kind   VerdictKind
	Reason string
}

// Blocked reports whether the command must not run.
func (v Verdict) Blocked() bool { return v.Kind == VerdictBlocked }

// Warned reports whether the command may run but deserves review.
func (v Verdict) Warned() bool { return v.Kind == VerdictWarned }

// Security event types recorded in the audit log.
const (
	EventBlockedCommand    = "blocked_command"
	EventSuspiciousPattern = "suspicious_pattern"
)

// Security statuses stamped on command_attempt entries.
const (
	StatusAllowed = "allowed"
	StatusWarning = "warning"
	StatusBlocked = "blocked"
)
