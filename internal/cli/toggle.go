package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/flaggraph/internal/model"
)

// ToggleOptions holds flags for the toggle command.
type ToggleOptions struct {
	*RootOptions
	Enable  bool
	Disable bool
	Actor   string
}

// ToggleResult is the JSON payload of a toggle: the flag and every audit
// record the call wrote, cascade included.
type ToggleResult struct {
	Flag    model.Flag          `json:"flag"`
	Records []model.AuditRecord `json:"records"`
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToggleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "toggle <name> (--enable | --disable)",
		Short: "Enable or disable a flag",
		Long: `Enable or disable a flag.

Enabling fails unless every direct dependency is enabled. Disabling always
succeeds and also disables every enabled flag that depends on this one.

Exit codes:
  0 - State changed
  1 - Rejected (unknown flag, unsatisfied dependencies)
  2 - Command error

Examples:
  flaggraph toggle auth --enable
  flaggraph toggle auth --disable --actor oncall`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Enable, "enable", false, "enable the flag")
	cmd.Flags().BoolVar(&opts.Disable, "disable", false, "disable the flag and its dependents")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor recorded on the audit records")
	cmd.MarkFlagsMutuallyExclusive("enable", "disable")
	cmd.MarkFlagsOneRequired("enable", "disable")

	return cmd
}

func runToggle(opts *ToggleOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	sess, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	flag, records, err := sess.engine.ToggleFlagWithRecords(ctx, name, opts.Enable, opts.Actor)
	if err != nil {
		return formatter.Reject("toggle failed", err)
	}

	return formatter.Success(ToggleResult{Flag: flag, Records: records}, func(w io.Writer) {
		for _, rec := range records {
			fmt.Fprintf(w, "%-14s %s (%s)\n", rec.Action, rec.FlagName, rec.Reason)
		}
	})
}
