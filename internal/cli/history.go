package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <name>",
		Short: "Show a flag's audit history, newest first",
		Example: `  flaggraph history checkout-v2
  flaggraph history checkout-v2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.engine.History(cmd.Context(), name)
	if err != nil {
		return formatter.Reject("history failed", err)
	}

	return formatter.Success(records, func(w io.Writer) {
		for _, rec := range records {
			fmt.Fprintf(w, "%6d  %s  %-14s %-10s %s\n",
				rec.Seq, rec.CreatedAt.UTC().Format(time.RFC3339), rec.Action, rec.Actor, rec.Reason)
		}
	})
}
