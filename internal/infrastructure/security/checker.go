// Package security implements the command classifier.
//
// Classification is a pure substring predicate over the command text,
// deliberately simple and auditable instead of a full shell parser. That
// trades some false negatives (obfuscated payloads) for predictability and
// zero parsing-bug surface; the trade is accepted, not accidental. Because
// matching is substring-based rather than word-boundary based, chained
// injections like "ls; rm -rf /" are still caught: the dangerous substring
// appears regardless of the metacharacters around it.
package security

import (
	"strings"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

const (
	blockedMessage  = "This command is potentially dangerous and has been blocked"
	advancedMessage = "This command contains advanced shell features - please review carefully"
	emptyMessage    = "Empty command"
)

// advancedPatterns flag chaining, redirection, pipes and substitution.
var advancedPatterns = []string{"&&", "||", ";", ">", ">>", "<", "|", "$(", "`"}

// Checker matches commands against a configured dangerous-pattern list.
type Checker struct {
	dangerous []string
}

// NewChecker builds a checker from the configured pattern list, falling back
// to the defaults when the list is empty. Patterns are matched
// case-insensitively.
func NewChecker(patterns []string) *Checker {
	if len(patterns) == 0 {
		patterns = DefaultDangerousCommands()
	}
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Checker{dangerous: lowered}
}

// DefaultDangerousCommands is the built-in block list.
func DefaultDangerousCommands() []string {
	return []string{
		"rm -rf",
		"format",
		"dd if=",
		"mkfs",
		"fdisk",
		"parted",
		"wipefs",
		"shred",
		"chmod 777",
		"chown -R root",
	}
}

// IsDangerous reports whether the command contains any configured dangerous
// substring. Empty or all-whitespace commands are never dangerous.
func (c *Checker) IsDangerous(command string) bool {
	lowered := strings.ToLower(strings.TrimSpace(command))
	if lowered == "" {
		return false
	}
	for _, pattern := range c.dangerous {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// Classify maps a command to Blocked, Warned or Clear. The danger check
// short-circuits: a command matching both a dangerous substring and an
// advanced-shell pattern reports only the block.
func (c *Checker) Classify(command string) domain.Verdict {
	if strings.TrimSpace(command) == "" {
		return domain.Verdict{Kind: domain.VerdictClear}
	}
	if c.IsDangerous(command) {
		return domain.Verdict{Kind: domain.VerdictBlocked, Reason: blockedMessage}
	}
	if hasAdvancedPattern(command) {
		return domain.Verdict{Kind: domain.VerdictWarned, Reason: advancedMessage}
	}
	return domain.Verdict{Kind: domain.VerdictClear}
}

// Validate returns (is_valid, warning). Invalid means the command must not
// run: empty, or dangerous. A valid command may still carry a review warning.
func (c *Checker) Validate(command string) (bool, string) {
	if strings.TrimSpace(command) == "" {
		return false, emptyMessage
	}
	if c.IsDangerous(command) {
		return false, blockedMessage
	}
	if hasAdvancedPattern(command) {
		return true, advancedMessage
	}
	return true, ""
}

func hasAdvancedPattern(command string) bool {
	for _, pattern := range advancedPatterns {
		if strings.Contains(command, pattern) {
			return true
		}
	}
	return false
}

var _ ports.SecurityService = (*Checker)(nil)
