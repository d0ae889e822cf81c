// Package cli wires the cobra command tree around the application container.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/app"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

// Options holds CLI-level configuration gathered from flags and env.
type Options struct {
	ConfigPath     string
	Verbose        bool
	NoConfirmation bool
	Model          string
}

// NewRootCmd wires the cobra root command. Container construction is
// deferred to command execution so --config and --no-confirmation take
// effect first.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "aish [prompt]",
		Short: "aish - AI-powered shell assistant",
		Long: "aish converts natural language to shell commands, with a security\n" +
			"classifier and explicit confirmation between the model and your shell.",
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
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.NoConfirmation, "no-confirmation", false, "Skip command confirmation (classifier still blocks dangerous commands)")
	root.PersistentFlags().StringVarP(&opts.Model, "model", "m", "", "Override model name (default from config)")

	root.AddCommand(
		newTranslateCommand(opts),
		newChatCommand(opts),
		newConsoleCommand(opts),
		newAuditCommand(opts),
		newHistoryCommand(opts),
		newConfigCommand(opts),
		newDoctorCommand(opts),
		newVersionCommand(),
	)
	return root
}

// buildContainer constructs the dependency graph and attaches the
// interactive prompter.
func buildContainer(cmd *cobra.Command, opts *Options) (*app.Container, error) {
	container, err := app.BuildContainer(cmd.Context(), app.Options{
		ConfigPath:     opts.ConfigPath,
		Verbose:        opts.Verbose,
		NoConfirmation: opts.NoConfirmation,
		ModelOverride:  opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	container.Gate.Prompter = NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	container.Gate.Out = cmd.OutOrStdout()
	return container, nil
}
