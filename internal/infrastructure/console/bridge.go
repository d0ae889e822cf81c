// Package console runs an interactive tool inside a pseudoterminal with an
// AI copilot attached. Lines starting with "?" go to the model; everything
// else passes straight through to the tool.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creack/pty"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/infrastructure/sanitize"
	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/ports"
)

// Bridge wires stdin, a pty-hosted subprocess and the AI assistant together.
// Commands the assistant suggests are classified and confirmed before they
// are typed into the tool; a Blocked verdict never reaches the pty.
type Bridge struct {
	Provider ports.Provider
	Security ports.SecurityService
	Audit    ports.AuditRecorder

	// SystemPrompt overrides the default assistant framing, e.g. to
	// specialize the copilot for the hosted tool.
	SystemPrompt string

	In  io.Reader
	Out io.Writer

	session *domain.ChatSession
}

// Run starts argv under a pty and bridges it until the tool exits or the
// input stream closes.
func (b *Bridge) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		argv = []string{shell}
	}

	out := b.out()
	fmt.Fprintf(out, "\n--- %s Assistant Mode ---\n", capitalize(argv[0]))
	fmt.Fprintf(out, "To ask the AI for commands, start your line with %s\n", ansi.Prompt("?"))
	fmt.Fprintf(out, "Example: %s\n", ansi.Prompt("? find large files in /var/log"))
	fmt.Fprintf(out, "To exit, type %s at the tool prompt.\n\n", ansi.Command("exit"))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	defer ptmx.Close()

	b.forwardResize(ptmx)

	// Tool output is pumped to the terminal independently of the input
	// loop; the copy ends when the tool exits and closes its side.
	done := make(chan struct{})
	go func() {
		defer close(done)
		io.Copy(out, ptmx)
	}()

	scanner := bufio.NewScanner(b.in())
	for scanner.Scan() {
		select {
		case <-done:
			return cmd.Wait()
		default:
		}
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "?") {
			b.handleAIInteraction(ctx, ptmx, strings.TrimSpace(trimmed[1:]), scanner)
			continue
		}
		if _, err := ptmx.Write([]byte(line + "\n")); err != nil {
			break
		}
	}

	<-done
	return cmd.Wait()
}

// forwardResize keeps the pty window size in sync with the terminal.
func (b *Bridge) forwardResize(ptmx *os.File) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		for range ch {
			pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	ch <- syscall.SIGWINCH
}

func (b *Bridge) handleAIInteraction(ctx context.Context, ptmx io.Writer, prompt string, scanner *bufio.Scanner) {
	out := b.out()
	if prompt == "" {
		fmt.Fprintln(out, ansi.Warning("Empty question"))
		return
	}
	fmt.Fprintln(out, ansi.Info("\nAssistant is thinking..."))

	resp, err := b.Provider.Generate(ctx, ports.ProviderRequest{
		Prompt:       prompt,
		Mode:         domain.ModeConversational,
		SystemPrompt: b.SystemPrompt,
		Session:      b.session,
	})
	if err != nil {
		fmt.Fprintln(out, ansi.Errorf("Assistant error: %v", err))
		return
	}
	b.session = resp.Session

	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		fmt.Fprintln(out, ansi.Warning("The assistant did not provide a response"))
		return
	}
	fmt.Fprintf(out, "\n%s\n%s\n", ansi.Prompt("Assistant:"), reply)

	command := sanitize.ExtractFencedCommand(reply)
	if command == "" {
		return
	}

	verdict := b.Security.Classify(command)
	if verdict.Blocked() {
		fmt.Fprintln(out, ansi.Error(verdict.Reason))
		if b.Audit != nil {
			b.Audit.LogSecurityEvent(domain.EventBlockedCommand, command, map[string]any{
				"reason":      verdict.Reason,
				"user_prompt": prompt,
			})
		}
		return
	}
	if verdict.Warned() {
		fmt.Fprintln(out, ansi.Warning(verdict.Reason))
	}

	fmt.Fprintf(out, "\nI am about to run this command in the shell: %s\n", ansi.Command(command))
	fmt.Fprint(out, "Do you want to proceed? [y/n] ")
	if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
		fmt.Fprintln(out, "Execution cancelled.")
		return
	}
	if b.Audit != nil {
		b.Audit.LogCommandAttempt(command, prompt, verdictStatus(verdict), verdict.Reason)
	}
	ptmx.Write([]byte(command + "\n"))
}

func capitalize(name string) string {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if base == "" {
		return base
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

func verdictStatus(v domain.Verdict) string {
	if v.Warned() {
		return domain.StatusWarning
	}
	return domain.StatusAllowed
}

func (b *Bridge) in() io.Reader {
	if b.In != nil {
		return b.In
	}
	return os.Stdin
}

func (b *Bridge) out() io.Writer {
	if b.Out != nil {
		return b.Out
	}
	return os.Stdout
}
