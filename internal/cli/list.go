package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all flags with their state and dependencies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	flags, err := sess.engine.ListFlags(cmd.Context())
	if err != nil {
		return formatter.Reject("list failed", err)
	}

	return formatter.Success(flags, func(w io.Writer) {
		if len(flags) == 0 {
			fmt.Fprintln(w, "No flags.")
			return
		}
		for _, f := range flags {
			fmt.Fprintf(w, "%-9s %s", onOff(f.Enabled), f.Name)
			if len(f.DependsOn) > 0 {
				fmt.Fprintf(w, " -> %s", strings.Join(f.DependsOn, ", "))
			}
			fmt.Fprintln(w)
		}
	})
}
