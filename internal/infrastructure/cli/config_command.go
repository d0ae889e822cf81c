package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/aish/internal/infrastructure/config"
	"github.com/doeshing/aish/internal/pkg/ansi"
)

func newConfigCommand(opts *Options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit aish configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, opts)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(opts),
		newConfigGetCommand(opts),
		newConfigSetCommand(opts),
		newConfigPathCommand(opts),
	)
	return configCmd
}

func newConfigShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, opts)
		},
	}
}

func newConfigGetCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value by dotted key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			value, ok := config.Path(container.Config, args[0])
			if !ok {
				return fmt.Errorf("unknown key: %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return nil
		},
	}
}

func newConfigSetCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value by dotted key",
		Long:  "Example: aish config set security.require_confirmation false",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			updated, err := config.SetPath(container.Config, args[0], args[1])
			if err != nil {
				return err
			}
			if err := container.ConfigLoader.Save(updated); err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ansi.Success(fmt.Sprintf("%s = %s", args[0], args[1])))
			return nil
		},
	}
}

func newConfigPathCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}
}

func showConfiguration(cmd *cobra.Command, opts *Options) error {
	container, err := buildContainer(cmd, opts)
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(container.Config)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", container.ConfigLoader.Path(), raw)
	return nil
}
