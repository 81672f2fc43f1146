package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flaggraph/internal/manifest"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Actor  string
	DryRun bool
}

// ApplyResult is the JSON payload of the apply command.
type ApplyResult struct {
	Manifest string             `json:"manifest"`
	DryRun   bool               `json:"dry_run"`
	Order    []string           `json:"order"`
	Warnings []manifest.Problem `json:"warnings"`
	Report   *manifest.Report   `json:"report,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Create and enable the flags declared in a manifest",
		Long: `Apply a YAML (.yaml, .yml) or CUE (.cue) flag manifest.

The manifest is checked before anything is written: duplicate names, empty
names and dependency cycles are rejected. Flags are created dependencies
first; flags that already exist are skipped. Flags declared enabled are then
enabled in the same order. Apply never disables a flag.

Examples:
  flaggraph apply flags.yaml
  flaggraph apply flags.cue --dry-run
  flaggraph apply flags.yaml --actor release-bot --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor recorded on the audit records")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "check the manifest and print the order without writing")

	return cmd
}

func runApply(opts *ApplyOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	m, err := manifest.Load(path)
	if err != nil {
		if outErr := formatter.Error(ErrCodeManifest, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}

	analysis := manifest.Analyze(m)
	if problems := analysis.Errors(); len(problems) > 0 {
		if outErr := formatter.Error(ErrCodeManifest, problems[0].Message, problems); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, fmt.Sprintf("manifest %s has %d problem(s)", path, len(problems)))
	}

	warnings := []manifest.Problem{}
	for _, p := range analysis.Problems {
		if p.Kind == manifest.ProblemExternal {
			slog.Warn("manifest dependency not declared", "flag", p.Flag, "message", p.Message)
			warnings = append(warnings, p)
		}
	}

	ordered, err := manifest.Order(m)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to order manifest", err)
	}
	result := ApplyResult{
		Manifest: path,
		DryRun:   opts.DryRun,
		Order:    make([]string, len(ordered)),
		Warnings: warnings,
	}
	for i, decl := range ordered {
		result.Order[i] = decl.Name
	}

	if !opts.DryRun {
		sess, err := openSession(cmd, opts.RootOptions)
		if err != nil {
			return err
		}
		defer sess.Close()

		report, err := manifest.Apply(cmd.Context(), sess.engine, m, opts.Actor)
		if err != nil {
			return formatter.Reject("apply failed", err)
		}
		result.Report = &report
	}

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "order: %s\n", strings.Join(result.Order, ", "))
		if result.Report == nil {
			fmt.Fprintln(w, "dry run: nothing written")
			return
		}
		fmt.Fprintf(w, "created: %d, skipped: %d, enabled: %d\n",
			len(result.Report.Created), len(result.Report.Skipped), len(result.Report.Enabled))
	})
}
