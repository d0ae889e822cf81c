// Package services orchestrates the confirmed-execution pipeline.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/ports"
)

// Gate sits between "the model produced text" and "a command runs on this
// machine". It classifies the command, collects explicit user confirmation,
// runs the subprocess, and records the outcome. Invariants it owns:
//
//   - a command the user did not approve never runs;
//   - a Blocked command never runs and always leaves a SecurityEvent;
//   - every completed run leaves exactly one ExecutionRecord.
//
// One command is in flight at a time; Execute blocks until the subprocess
// finishes.
type Gate struct {
	Security ports.SecurityService
	Runner   ports.CommandRunner
	Prompter ports.ConfirmationPrompter
	Audit    ports.AuditRecorder
	Feedback ports.FeedbackRecorder
	History  ports.HistoryRepository
	Logger   ports.Logger

	// RequireConfirmation mirrors security.require_confirmation.
	RequireConfirmation bool

	// Out receives all human-facing status lines; nil means stdout.
	Out io.Writer
}

// Execute runs one command through the full validate/confirm/run/record
// pipeline. It returns true iff the process ran and exited zero. Faults are
// reported and absorbed; the interactive loop must survive a bad command.
func (g *Gate) Execute(ctx context.Context, command, userPrompt string) bool {
	if err := g.checkDeps(); err != nil {
		fmt.Fprintln(g.out(), ansi.Error(err.Error()))
		return false
	}
	if strings.TrimSpace(command) == "" {
		fmt.Fprintln(g.out(), ansi.Warning("No command to execute"))
		return false
	}

	verdict := g.Security.Classify(command)
	switch verdict.Kind {
	case domain.VerdictBlocked:
		fmt.Fprintln(g.out(), ansi.Error(verdict.Reason))
		g.Audit.LogCommandAttempt(command, userPrompt, domain.StatusBlocked, verdict.Reason)
		g.Audit.LogSecurityEvent(domain.EventBlockedCommand, command, map[string]any{
			"reason":      verdict.Reason,
			"user_prompt": userPrompt,
		})
		g.saveHistory(userPrompt, command, verdict.Kind, domain.RunResult{}, false)
		return false
	case domain.VerdictWarned:
		fmt.Fprintln(g.out(), ansi.Warning(verdict.Reason))
		g.Audit.LogCommandAttempt(command, userPrompt, domain.StatusWarning, verdict.Reason)
		g.Audit.LogSecurityEvent(domain.EventSuspiciousPattern, command, map[string]any{
			"reason":      verdict.Reason,
			"user_prompt": userPrompt,
		})
	default:
		g.Audit.LogCommandAttempt(command, userPrompt, domain.StatusAllowed, "")
	}

	fmt.Fprintf(g.out(), "\nI am about to execute this command: %s\n", ansi.Command(command))
	if strings.HasPrefix(strings.TrimSpace(command), "sudo") {
		fmt.Fprintln(g.out(), ansi.Warning("This command requires administrator privileges"))
	}

	// confirmed records whether the user explicitly approved, as opposed
	// to confirmation being switched off in config.
	confirmed := false
	if g.RequireConfirmation {
		ok, err := g.Prompter.Confirm("Do you want to proceed? [y/n] ")
		if err != nil || !ok {
			fmt.Fprintln(g.out(), "Execution cancelled.")
			return false
		}
		confirmed = true
	}

	return g.run(ctx, command, userPrompt, verdict.Kind, confirmed)
}

func (g *Gate) run(ctx context.Context, command, userPrompt string, verdict domain.VerdictKind, confirmed bool) bool {
	out := g.out()
	fmt.Fprintf(out, "\n%s\n", ansi.Info("--- Command Output ---"))
	result := g.Runner.Run(ctx, command, out)
	fmt.Fprintf(out, "\n%s\n", ansi.Info("----------------------"))

	switch result.Status {
	case domain.RunNotFound:
		// Reported distinctly: nothing ran, so there is no exit code to
		// record and no ExecutionRecord to append.
		fmt.Fprintln(out, ansi.Errorf("Command not found: '%s'", result.Program))
		g.saveHistory(userPrompt, command, verdict, result, false)
		g.collectCorrection(userPrompt)
		return false

	case domain.RunFault:
		fmt.Fprintln(out, ansi.Errorf("An unexpected error occurred: %v", result.Err))
		g.Audit.LogCommandExecution(command, userPrompt, -1, result.Duration, confirmed)
		g.saveHistory(userPrompt, command, verdict, result, false)
		return false
	}

	g.Audit.LogCommandExecution(command, userPrompt, result.ExitCode, result.Duration, confirmed)
	g.saveHistory(userPrompt, command, verdict, result, true)

	if result.ExitCode == 0 {
		fmt.Fprintln(out, ansi.Success("Command executed successfully"))
		g.collectSuccessFeedback(userPrompt, command)
		return true
	}

	fmt.Fprintln(out, ansi.Errorf("Command finished with exit code: %d", result.ExitCode))
	g.collectCorrection(userPrompt)
	return false
}

// collectSuccessFeedback asks the user to rate the command. "y" logs a
// positive pair, "n" a negative one, anything else logs nothing.
func (g *Gate) collectSuccessFeedback(userPrompt, command string) {
	if g.Feedback == nil || g.Prompter == nil || !g.Prompter.Enabled() {
		return
	}
	answer, err := g.Prompter.ReadLine("Was this command correct and useful? [y/n] ")
	if err != nil {
		return
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
		g.Feedback.LogPair(userPrompt, command, domain.FeedbackPositive)
	case "n":
		g.Feedback.LogPair(userPrompt, command, domain.FeedbackNegative)
	}
}

// collectCorrection asks for a corrected command after a failure. The
// correction is re-validated; a correction that is itself rejected is never
// logged.
func (g *Gate) collectCorrection(userPrompt string) {
	if g.Feedback == nil || g.Prompter == nil || !g.Prompter.Enabled() {
		return
	}
	fmt.Fprintln(g.out(), ansi.Warning("If you know the correct command, please enter it to improve the AI"))
	correction, err := g.Prompter.ReadLine("Correct command (or press Enter to skip): ")
	if err != nil {
		return
	}
	correction = strings.TrimSpace(correction)
	if correction == "" {
		return
	}
	valid, warning := g.Security.Validate(correction)
	if !valid {
		fmt.Fprintln(g.out(), ansi.Errorf("Correction rejected: %s", warning))
		return
	}
	g.Feedback.LogPair(userPrompt, correction, domain.FeedbackCorrection)
}

func (g *Gate) saveHistory(prompt, command string, verdict domain.VerdictKind, result domain.RunResult, executed bool) {
	if g.History == nil {
		return
	}
	record := domain.HistoryRecord{
		Timestamp:       time.Now(),
		Prompt:          prompt,
		Command:         command,
		Verdict:         verdict,
		Executed:        executed,
		Success:         executed && result.Succeeded(),
		ExitCode:        result.ExitCode,
		ExecutionTimeMS: result.Duration.Milliseconds(),
	}
	if err := g.History.Save(record); err != nil && g.Logger != nil {
		g.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

func (g *Gate) checkDeps() error {
	if g.Security == nil || g.Runner == nil || g.Audit == nil {
		return errors.New("services.Gate dependencies not satisfied")
	}
	if g.RequireConfirmation && g.Prompter == nil {
		return errors.New("services.Gate: confirmation required but no prompter wired")
	}
	return nil
}

func (g *Gate) out() io.Writer {
	if g.Out != nil {
		return g.Out
	}
	return os.Stdout
}
