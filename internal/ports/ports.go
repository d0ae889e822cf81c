// Package ports defines the interfaces between the application core and the
// infrastructure adapters. The gate and the CLI depend only on these
// abstractions, so tests can supply isolated in-memory implementations
// instead of process-wide shared state.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/doeshing/aish/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProviderFactory builds provider instances for configured models.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// ProviderRequest carries one prompt to the model, with the mode deciding
// whether the reply is a bare command or conversational prose.
type ProviderRequest struct {
	Prompt       string
	Mode         domain.ProviderMode
	SystemPrompt string
	Session      *domain.ChatSession
}

// ProviderResponse holds the raw model text and the session state carried
// forward for conversational mode.
type ProviderResponse struct {
	Text    string
	Session *domain.ChatSession
}

// Provider turns a prompt into model-generated text. The core treats it as
// an opaque oracle; it does not care whether the call is remote or local.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// SecurityService classifies command strings. Pure text predicates, no side
// effects.
type SecurityService interface {
	Classify(command string) domain.Verdict
	Validate(command string) (bool, string)
}

// CommandRunner spawns a subprocess for one command, streaming merged
// stdout/stderr to output line by line as it arrives.
type CommandRunner interface {
	Run(ctx context.Context, command string, output io.Writer) domain.RunResult
}

// ConfirmationPrompter reads interactive answers from the user.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
	ReadLine(prompt string) (string, error)
	Enabled() bool
}

// AuditRecorder appends audit entries. Implementations must swallow write
// failures: audit logging never aborts command execution.
type AuditRecorder interface {
	LogCommandAttempt(command, userPrompt, securityStatus, warningMessage string)
	LogCommandExecution(command, userPrompt string, exitCode int, duration time.Duration, userConfirmed bool)
	LogSecurityEvent(eventType, command string, details map[string]any)
}

// FeedbackRecorder appends (prompt, completion, judgment) training pairs.
// Write failures are reported and swallowed like audit failures.
type FeedbackRecorder interface {
	LogPair(prompt, completion, feedback string)
}

// HistoryRepository persists gate invocations for later inspection.
type HistoryRepository interface {
	Save(domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
}

// Logger provides verbose-gated diagnostics for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
