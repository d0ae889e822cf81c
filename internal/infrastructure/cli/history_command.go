package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aish/internal/app"
	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/pkg/ansi"
	"github.com/doeshing/aish/internal/ports"
)

const msgNoHistoryRecorded = "No history recorded yet."

func newHistoryCommand(opts *Options) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local command history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(opts),
		newHistorySearchCommand(opts),
		newHistoryClearCommand(opts),
	)
	return historyCmd
}

func newHistoryListCommand(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, opts, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(opts *Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search history for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, opts, limit, args[0])
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Limit search results")
	return cmd
}

func newHistoryClearCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			store, err := historyStore(container)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ansi.Success("History cleared"))
			return nil
		},
	}
}

func listHistory(cmd *cobra.Command, opts *Options, limit int, search string) error {
	container, err := buildContainer(cmd, opts)
	if err != nil {
		return err
	}
	store, err := historyStore(container)
	if err != nil {
		return err
	}
	records, err := store.Records(limit, search)
	if err != nil {
		return err
	}
	renderHistory(cmd.OutOrStdout(), records)
	return nil
}

func historyStore(container *app.Container) (ports.HistoryRepository, error) {
	if container.History == nil {
		return nil, fmt.Errorf("history is disabled in configuration")
	}
	return container.History, nil
}

func renderHistory(out io.Writer, records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return
	}
	for _, rec := range records {
		status := "-"
		switch {
		case rec.Verdict == domain.VerdictBlocked:
			status = ansi.Error("blocked")
		case !rec.Executed:
			status = "skipped"
		case rec.Success:
			status = ansi.Success("ok")
		default:
			status = ansi.Error(fmt.Sprintf("exit %d", rec.ExitCode))
		}
		fmt.Fprintf(out, "%s  %s  %s\n", humanize.Time(rec.Timestamp), status, rec.Command)
		fmt.Fprintf(out, "      prompt: %s\n", rec.Prompt)
	}
}
