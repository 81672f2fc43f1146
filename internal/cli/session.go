package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/store"
)

// session is an open store and the engine over it.
type session struct {
	store  *store.Store
	engine *engine.Engine
}

// openSession opens the configured database and builds an engine with the
// configured default actors. Extra options are appended last.
func openSession(cmd *cobra.Command, opts *RootOptions, extra ...engine.Option) (*session, error) {
	cfg := opts.Config

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	engineOpts := append([]engine.Option{
		engine.WithDefaultActors(cfg.DefaultSystemActor, cfg.DefaultUserActor),
		engine.WithLogger(slog.Default()),
	}, extra...)

	eng, err := engine.New(cmd.Context(), st, engineOpts...)
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	return &session{store: st, engine: eng}, nil
}

// Close releases the database.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
