package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	Name       string   `json:"name"`
	Enabled    bool     `json:"enabled"`
	DependsOn  []string `json:"depends_on"`
	Dependents []string `json:"dependents"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "Show a flag's state and direct edges",
		Example: `  flaggraph status payments-api
  flaggraph status payments-api --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], cmd)
		},
	}
}

func runStatus(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	status, err := sess.engine.Status(ctx, name)
	if err != nil {
		return formatter.Reject("status failed", err)
	}
	deps, err := sess.engine.Dependencies(ctx, name)
	if err != nil {
		return formatter.Reject("status failed", err)
	}
	dependents, err := sess.engine.Dependents(ctx, name)
	if err != nil {
		return formatter.Reject("status failed", err)
	}

	result := StatusResult{
		Name:       status.Name,
		Enabled:    status.Enabled,
		DependsOn:  make([]string, len(deps)),
		Dependents: make([]string, len(dependents)),
	}
	for i, d := range deps {
		result.DependsOn[i] = d.Name
	}
	for i, d := range dependents {
		result.Dependents[i] = d.Name
	}

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s\n", result.Name, onOff(result.Enabled))
		if len(deps) > 0 {
			fmt.Fprintln(w, "depends on:")
			for _, d := range deps {
				fmt.Fprintf(w, "  %s (%s)\n", d.Name, onOff(d.Enabled))
			}
		}
		if len(dependents) > 0 {
			fmt.Fprintln(w, "required by:")
			for _, d := range dependents {
				fmt.Fprintf(w, "  %s (%s)\n", d.Name, onOff(d.Enabled))
			}
		}
	})
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
