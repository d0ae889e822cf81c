package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/aish/internal/app"
	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/services"
)

func newTranslateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [prompt]",
		Short: "Translate natural language to a shell command",
		Long: "With a prompt argument, translates and offers to execute it once.\n" +
			"Without arguments, starts an interactive translator loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runTranslateREPL(cmd, container)
			}
			return runTranslateOnce(cmd, container, strings.Join(args, " "))
		},
	}
}

// runTranslateOnce handles `aish "list files"`: one prompt, one command, one
// gate pass.
func runTranslateOnce(cmd *cobra.Command, container *app.Container, prompt string) error {
	out := cmd.OutOrStdout()
	translator, err := newTranslator(container)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ansi.Info("Translating prompt..."))
	command, err := translator.Translate(cmd.Context(), prompt)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	container.Gate.Execute(cmd.Context(), command, prompt)
	return nil
}

// runTranslateREPL is the interactive translator loop: prompt in, command
// through the gate, repeat until exit/quit or EOF.
func runTranslateREPL(cmd *cobra.Command, container *app.Container) error {
	out := cmd.OutOrStdout()
	translator, err := newTranslator(container)
	if err != nil {
		return err
	}

	// The banner is terminal furniture; keep piped sessions clean.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		printBanner(out)
	}
	fmt.Fprintln(out, "\n--- Command Translator Mode ---")
	fmt.Fprintln(out, "Enter a prompt, and I'll give you a shell command.")
	fmt.Fprintln(out, "Type 'exit' or 'quit' to close.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprintf(out, "\n%s ", ansi.Prompt(">"))
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nExiting...")
			return scanner.Err()
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if isExit(prompt) {
			return nil
		}

		fmt.Fprintln(out, ansi.Info("Translating prompt..."))
		command, err := translator.Translate(cmd.Context(), prompt)
		if err != nil {
			fmt.Fprintln(out, ansi.Errorf("%v", err))
			continue
		}
		container.Gate.Execute(cmd.Context(), command, prompt)
	}
}

func newTranslator(container *app.Container) (*services.Translator, error) {
	provider, err := container.Provider()
	if err != nil {
		return nil, err
	}
	return &services.Translator{Provider: provider, Logger: container.Logger}, nil
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out, ansi.Success(strings.Join([]string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║                    AI-Powered Shell Assistant                ║",
		"║              Your Command-Line Copilot v" + Version + "                ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}, "\n")))
}
