// Package executor spawns shell commands and streams their output.
package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

// shellChars force execution through the shell so pipes, redirection and
// chaining keep their meaning.
const shellChars = "|><&;"

// StreamRunner runs one command at a time, merging stdout and stderr and
// forwarding each line to the caller's writer as it arrives. No timeout is
// imposed; cancellation comes from the context only.
type StreamRunner struct {
	shell string
}

// NewStreamRunner builds a runner. The shell defaults to $SHELL, then
// /bin/sh.
func NewStreamRunner(shell string) *StreamRunner {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &StreamRunner{shell: shell}
}

// Run implements ports.CommandRunner.
func (r *StreamRunner) Run(ctx context.Context, command string, output io.Writer) domain.RunResult {
	start := time.Now()

	cmd, program, result := r.prepare(ctx, command)
	if result != nil {
		result.Duration = time.Since(start)
		return *result
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fault(program, err, start)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return domain.RunResult{Status: domain.RunNotFound, Program: program, Duration: time.Since(start)}
		}
		return fault(program, err, start)
	}

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(output, scanner.Text())
	}

	err = cmd.Wait()
	duration := time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return domain.RunResult{Status: domain.RunOK, ExitCode: 0, Program: program, Duration: duration}
	case errors.As(err, &exitErr):
		return domain.RunResult{Status: domain.RunOK, ExitCode: exitErr.ExitCode(), Program: program, Duration: duration}
	default:
		return domain.RunResult{Status: domain.RunFault, Program: program, Duration: duration, Err: err}
	}
}

// prepare decides between the shell-interpreting path and a tokenized argv.
// A non-nil result short-circuits the run (unresolvable program, bad
// quoting).
func (r *StreamRunner) prepare(ctx context.Context, command string) (*exec.Cmd, string, *domain.RunResult) {
	if strings.ContainsAny(command, shellChars) {
		return exec.CommandContext(ctx, r.shell, "-c", command), r.shell, nil
	}

	argv, err := SplitArgs(command)
	if err != nil || len(argv) == 0 {
		res := domain.RunResult{Status: domain.RunFault, Err: err}
		if err == nil {
			res.Err = errors.New("empty command")
		}
		return nil, "", &res
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		res := domain.RunResult{Status: domain.RunNotFound, Program: argv[0]}
		return nil, argv[0], &res
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...), argv[0], nil
}

func fault(program string, err error, start time.Time) domain.RunResult {
	return domain.RunResult{
		Status:   domain.RunFault,
		Program:  program,
		Duration: time.Since(start),
		Err:      err,
	}
}

// SplitArgs tokenizes a command line respecting single quotes, double
// quotes and backslash escapes, close enough to POSIX word splitting for
// commands that carry no shell metacharacters (those take the shell path
// instead).
func SplitArgs(command string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range command {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				current.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %q quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}

var _ ports.CommandRunner = (*StreamRunner)(nil)
