package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/infrastructure/security"
	"github.com/doeshing/aish/internal/pkg/ansi"
)

func TestMain(m *testing.M) {
	ansi.SetEnabled(false)
	m.Run()
}

func TestGateExecutesConfirmedClearCommand(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 0, Duration: 12 * time.Millisecond}}
	audit := &stubAudit{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            &stubPrompter{confirmAnswer: true},
		Audit:               audit,
		RequireConfirmation: true,
		Out:                 &out,
	}

	if !gate.Execute(context.Background(), "ls -la", "list files") {
		t.Fatal("expected success")
	}
	if runner.command != "ls -la" {
		t.Fatalf("runner got %q", runner.command)
	}
	if len(audit.executions) != 1 {
		t.Fatalf("expected one execution record, got %d", len(audit.executions))
	}
	exec := audit.executions[0]
	if exec.exitCode != 0 || !exec.confirmed {
		t.Fatalf("execution record wrong: %+v", exec)
	}
	if len(audit.events) != 0 {
		t.Fatalf("no security event expected, got %+v", audit.events)
	}
	if !strings.Contains(out.String(), "I am about to execute this command: ls -la") {
		t.Fatalf("confirmation preamble missing: %q", out.String())
	}
}

func TestGateBlocksDangerousCommandWithoutPrompting(t *testing.T) {
	runner := &stubRunner{}
	audit := &stubAudit{}
	prompter := &stubPrompter{confirmAnswer: true}

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            prompter,
		Audit:               audit,
		RequireConfirmation: true,
		Out:                 io.Discard,
	}

	if gate.Execute(context.Background(), "rm -rf /", "delete everything") {
		t.Fatal("blocked command must not succeed")
	}
	if runner.called {
		t.Fatal("blocked command must never reach the runner")
	}
	if prompter.confirmCalls != 0 {
		t.Fatal("blocked command must not prompt for confirmation")
	}
	if len(audit.executions) != 0 {
		t.Fatal("blocked command must not produce an execution record")
	}
	if len(audit.events) != 1 || audit.events[0].eventType != domain.EventBlockedCommand {
		t.Fatalf("expected one blocked_command event, got %+v", audit.events)
	}
	if len(audit.attempts) != 1 || audit.attempts[0].status != domain.StatusBlocked {
		t.Fatalf("expected one blocked attempt, got %+v", audit.attempts)
	}
}

func TestGateBlocksChainedInjection(t *testing.T) {
	audit := &stubAudit{}
	gate := &Gate{
		Security: security.NewChecker(nil),
		Runner:   &stubRunner{},
		Audit:    audit,
		Out:      io.Discard,
	}

	if gate.Execute(context.Background(), "ls; rm -rf /tmp", "clean up") {
		t.Fatal("chained dangerous command must be blocked")
	}
	if len(audit.events) != 1 {
		t.Fatalf("expected a security event, got %+v", audit.events)
	}
}

func TestGateWarnsButRunsAdvancedShellCommand(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 0}}
	audit := &stubAudit{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            &stubPrompter{confirmAnswer: true},
		Audit:               audit,
		RequireConfirmation: true,
		Out:                 &out,
	}

	if !gate.Execute(context.Background(), "ls | grep go", "find go files") {
		t.Fatal("warned command should still run after confirmation")
	}
	if !strings.Contains(out.String(), "advanced shell features") {
		t.Fatalf("warning not shown: %q", out.String())
	}
	if len(audit.attempts) != 1 || audit.attempts[0].status != domain.StatusWarning {
		t.Fatalf("expected warning attempt, got %+v", audit.attempts)
	}
}

func TestGateCancelsWhenUserDeclines(t *testing.T) {
	runner := &stubRunner{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            &stubPrompter{confirmAnswer: false},
		Audit:               &stubAudit{},
		RequireConfirmation: true,
		Out:                 &out,
	}

	if gate.Execute(context.Background(), "ls", "list") {
		t.Fatal("declined command must not succeed")
	}
	if runner.called {
		t.Fatal("declined command must never run")
	}
	if !strings.Contains(out.String(), "Execution cancelled.") {
		t.Fatalf("cancellation message missing: %q", out.String())
	}
}

func TestGateSkipsConfirmationWhenDisabled(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 0}}
	prompter := &stubPrompter{}
	audit := &stubAudit{}

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            prompter,
		Audit:               audit,
		RequireConfirmation: false,
		Out:                 io.Discard,
	}

	if !gate.Execute(context.Background(), "ls", "list") {
		t.Fatal("expected success")
	}
	if prompter.confirmCalls != 0 {
		t.Fatal("confirmation prompt shown despite require_confirmation=false")
	}
	if len(audit.executions) != 1 || audit.executions[0].confirmed {
		t.Fatalf("record should note the user never confirmed: %+v", audit.executions)
	}
}

func TestGateLogsCorrectionAfterFailure(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 1, Duration: time.Millisecond}}
	audit := &stubAudit{}
	feedback := &stubFeedback{}

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            &stubPrompter{confirmAnswer: true, lines: []string{"cat existing.txt"}},
		Audit:               audit,
		Feedback:            feedback,
		RequireConfirmation: true,
		Out:                 io.Discard,
	}

	if gate.Execute(context.Background(), "cat missing.txt", "show the file") {
		t.Fatal("non-zero exit must return false")
	}
	if len(audit.executions) != 1 || audit.executions[0].exitCode != 1 {
		t.Fatalf("expected execution record with exit 1, got %+v", audit.executions)
	}
	if len(feedback.pairs) != 1 {
		t.Fatalf("expected one correction pair, got %+v", feedback.pairs)
	}
	pair := feedback.pairs[0]
	if pair.completion != "cat existing.txt" || pair.feedback != domain.FeedbackCorrection {
		t.Fatalf("correction pair wrong: %+v", pair)
	}
}

func TestGateRejectsDangerousCorrection(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 1}}
	feedback := &stubFeedback{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              runner,
		Prompter:            &stubPrompter{confirmAnswer: true, lines: []string{"rm -rf /"}},
		Audit:               &stubAudit{},
		Feedback:            feedback,
		RequireConfirmation: true,
		Out:                 &out,
	}

	gate.Execute(context.Background(), "cat missing.txt", "show the file")

	if len(feedback.pairs) != 0 {
		t.Fatalf("dangerous correction must not be logged: %+v", feedback.pairs)
	}
	if !strings.Contains(out.String(), "Correction rejected") {
		t.Fatalf("rejection message missing: %q", out.String())
	}
}

func TestGateLogsPositiveFeedback(t *testing.T) {
	feedback := &stubFeedback{}

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 0}},
		Prompter:            &stubPrompter{confirmAnswer: true, lines: []string{"y"}},
		Audit:               &stubAudit{},
		Feedback:            feedback,
		RequireConfirmation: true,
		Out:                 io.Discard,
	}

	gate.Execute(context.Background(), "ls", "list files")

	if len(feedback.pairs) != 1 || feedback.pairs[0].feedback != domain.FeedbackPositive {
		t.Fatalf("expected positive pair, got %+v", feedback.pairs)
	}
}

func TestGateIgnoresAmbiguousFeedback(t *testing.T) {
	feedback := &stubFeedback{}

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              &stubRunner{result: domain.RunResult{Status: domain.RunOK, ExitCode: 0}},
		Prompter:            &stubPrompter{confirmAnswer: true, lines: []string{"maybe"}},
		Audit:               &stubAudit{},
		Feedback:            feedback,
		RequireConfirmation: true,
		Out:                 io.Discard,
	}

	gate.Execute(context.Background(), "ls", "list files")

	if len(feedback.pairs) != 0 {
		t.Fatalf("ambiguous answer must log nothing, got %+v", feedback.pairs)
	}
}

func TestGateReportsCommandNotFoundWithoutExecutionRecord(t *testing.T) {
	audit := &stubAudit{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              &stubRunner{result: domain.RunResult{Status: domain.RunNotFound, Program: "frobnicate"}},
		Prompter:            &stubPrompter{confirmAnswer: true, lines: []string{""}},
		Audit:               audit,
		Feedback:            &stubFeedback{},
		RequireConfirmation: true,
		Out:                 &out,
	}

	if gate.Execute(context.Background(), "frobnicate now", "do the thing") {
		t.Fatal("not-found must return false")
	}
	if !strings.Contains(out.String(), "Command not found: 'frobnicate'") {
		t.Fatalf("not-found report missing: %q", out.String())
	}
	if len(audit.executions) != 0 {
		t.Fatalf("not-found must not pretend to have an exit code: %+v", audit.executions)
	}
}

func TestGateAbsorbsRunnerFault(t *testing.T) {
	audit := &stubAudit{}
	var out bytes.Buffer

	gate := &Gate{
		Security:            security.NewChecker(nil),
		Runner:              &stubRunner{result: domain.RunResult{Status: domain.RunFault, Err: fmt.Errorf("pipe burst")}},
		Prompter:            &stubPrompter{confirmAnswer: true},
		Audit:               audit,
		RequireConfirmation: true,
		Out:                 &out,
	}

	if gate.Execute(context.Background(), "ls", "list") {
		t.Fatal("fault must return false")
	}
	if !strings.Contains(out.String(), "An unexpected error occurred") {
		t.Fatalf("fault report missing: %q", out.String())
	}
	if len(audit.executions) != 1 || audit.executions[0].exitCode != -1 {
		t.Fatalf("fault should leave a failed execution record: %+v", audit.executions)
	}
}

func TestGateWarnsOnEmptyCommand(t *testing.T) {
	audit := &stubAudit{}
	var out bytes.Buffer

	gate := &Gate{
		Security: security.NewChecker(nil),
		Runner:   &stubRunner{},
		Audit:    audit,
		Out:      &out,
	}

	if gate.Execute(context.Background(), "   ", "prompt") {
		t.Fatal("empty command must return false")
	}
	if !strings.Contains(out.String(), "No command to execute") {
		t.Fatalf("warning missing: %q", out.String())
	}
	if len(audit.attempts)+len(audit.executions)+len(audit.events) != 0 {
		t.Fatal("empty command must write no records")
	}
}

// --- stubs -----------------------------------------------------------------

type stubRunner struct {
	result  domain.RunResult
	command string
	called  bool
}

func (s *stubRunner) Run(_ context.Context, command string, _ io.Writer) domain.RunResult {
	s.called = true
	s.command = command
	return s.result
}

type stubPrompter struct {
	confirmAnswer bool
	confirmCalls  int
	lines         []string
}

func (s *stubPrompter) Confirm(string) (bool, error) {
	s.confirmCalls++
	return s.confirmAnswer, nil
}

func (s *stubPrompter) ReadLine(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *stubPrompter) Enabled() bool { return true }

type attemptCall struct {
	command string
	status  string
	warning string
}

type executionCall struct {
	command   string
	exitCode  int
	confirmed bool
}

type eventCall struct {
	eventType string
	command   string
}

type stubAudit struct {
	attempts   []attemptCall
	executions []executionCall
	events     []eventCall
}

func (s *stubAudit) LogCommandAttempt(command, _, status, warning string) {
	s.attempts = append(s.attempts, attemptCall{command: command, status: status, warning: warning})
}

func (s *stubAudit) LogCommandExecution(command, _ string, exitCode int, _ time.Duration, confirmed bool) {
	s.executions = append(s.executions, executionCall{command: command, exitCode: exitCode, confirmed: confirmed})
}

func (s *stubAudit) LogSecurityEvent(eventType, command string, _ map[string]any) {
	s.events = append(s.events, eventCall{eventType: eventType, command: command})
}

type pairCall struct {
	prompt     string
	completion string
	feedback   string
}

type stubFeedback struct {
	pairs []pairCall
}

func (s *stubFeedback) LogPair(prompt, completion, feedback string) {
	s.pairs = append(s.pairs, pairCall{prompt: prompt, completion: completion, feedback: feedback})
}
