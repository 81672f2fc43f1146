package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/flaggraph/internal/model"
)

// VerifyResult is the JSON payload of a successful verify.
type VerifyResult struct {
	Flag     string `json:"flag"`
	Verified int    `json:"verified"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <name>",
		Short: "Check a flag's audit hash chain",
		Long: `Recompute the hash chain over a flag's audit history.

Each audit record stores the hash of the flag's previous record and a hash
of its own contents. Any edited, reordered or removed record breaks the
chain.

Exit codes:
  0 - Chain intact
  1 - Chain broken
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], cmd)
		},
	}
}

func runVerify(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	n, err := sess.engine.VerifyHistory(cmd.Context(), name)
	var chainErr *model.ChainError
	if errors.As(err, &chainErr) {
		if outErr := formatter.Error(ErrCodeChain, chainErr.Error(), map[string]any{"seq": chainErr.Seq}); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "verify failed", err)
	}
	if err != nil {
		return formatter.Reject("verify failed", err)
	}

	return formatter.Success(VerifyResult{Flag: name, Verified: n}, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d records, chain intact\n", name, n)
	})
}
