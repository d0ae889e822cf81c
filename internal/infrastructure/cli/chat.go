package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/services"
)

func newChatCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Conversational assistant mode",
		Long: "Holds a conversation with the model. Commands the assistant wraps\n" +
			"in ```bash fences are offered for execution through the normal\n" +
			"confirmation gate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			provider, err := container.Provider()
			if err != nil {
				return err
			}
			assistant := &services.Assistant{Provider: provider}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "\n--- AI Assistant Mode ---")
			fmt.Fprintln(out, "Ask me anything, or describe a task. I can explain concepts or provide commands.")
			fmt.Fprintln(out, "Type 'exit' or 'quit' to close.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprintf(out, "\n%s", ansi.Prompt("You: "))
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

				fmt.Fprintln(out, ansi.Info("Assistant is thinking..."))
				reply, command, err := assistant.Ask(cmd.Context(), prompt)
				if err != nil {
					fmt.Fprintln(out, ansi.Errorf("%v", err))
					continue
				}
				fmt.Fprintf(out, "\n%s\n%s\n", ansi.Prompt("Assistant:"), reply)
				if command != "" {
					container.Gate.Execute(cmd.Context(), command, prompt)
				}
			}
		},
	}
}
