package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	DependsOn []string
	Actor     string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a disabled flag",
		Long: `Create a new flag in the disabled state.

Every dependency must already exist. The flag and its dependency edges are
created together or not at all.

Examples:
  flaggraph create auth
  flaggraph create payments-api --depends-on auth
  flaggraph create checkout-v2 --depends-on payments-api,auth --actor deploy-bot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.DependsOn, "depends-on", nil, "comma-separated dependency names")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor recorded on the audit record")

	return cmd
}

func runCreate(opts *CreateOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	sess, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	flag, err := sess.engine.CreateFlag(cmd.Context(), name, opts.DependsOn, opts.Actor)
	if err != nil {
		return formatter.Reject("create failed", err)
	}

	return formatter.Success(flag, func(w io.Writer) {
		fmt.Fprintf(w, "created %s (disabled)", flag.Name)
		if len(opts.DependsOn) > 0 {
			fmt.Fprintf(w, " depends on %s", strings.Join(opts.DependsOn, ", "))
		}
		fmt.Fprintln(w)
	})
}
