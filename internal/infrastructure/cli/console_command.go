package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/infrastructure/console"
)

func newConsoleCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "console [command...]",
		Short: "Run a tool in a pty with the assistant attached",
		Long: "Starts the given command (default: your shell) inside a\n" +
			"pseudoterminal. Lines starting with '?' are sent to the assistant;\n" +
			"suggested commands are confirmed before being typed into the tool.",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			provider, err := container.Provider()
			if err != nil {
				return err
			}
			bridge := &console.Bridge{
				Provider: provider,
				Security: container.Security,
				Audit:    container.Audit,
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
			}
			return bridge.Run(cmd.Context(), args)
		},
	}
}
