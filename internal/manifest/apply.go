package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
)

// Applier is the slice of the engine Apply drives. Satisfied by *engine.Engine.
type Applier interface {
	CreateFlag(ctx context.Context, name string, dependsOn []string, actor string) (model.Flag, error)
	ToggleFlag(ctx context.Context, name string, enable bool, actor string) (model.Flag, error)
	Status(ctx context.Context, name string) (model.Status, error)
}

// Report summarizes what Apply did.
type Report struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"` // Already existed; left untouched
	Enabled []string `json:"enabled"`
}

// ErrManifestInvalid wraps blocking Analyze problems.
var ErrManifestInvalid = errors.New("manifest invalid")

// Apply creates every declared flag that does not exist yet, dependencies
// first, then enables the flags declared enabled in the same order.
//
// Existing flags are skipped rather than rejected, so applying a manifest
// twice is a no-op. Apply never disables a flag. It stops at the first engine
// error and returns the report of what was done so far; engine errors are
// returned unwrapped so callers can use the engine's Is* predicates.
func Apply(ctx context.Context, a Applier, m *Manifest, actor string) (Report, error) {
	report := Report{Created: []string{}, Skipped: []string{}, Enabled: []string{}}

	analysis := Analyze(m)
	if problems := analysis.Errors(); len(problems) > 0 {
		return report, fmt.Errorf("%w: %s", ErrManifestInvalid, problems[0].Message)
	}

	ordered, err := Order(m)
	if err != nil {
		return report, err
	}

	for _, decl := range ordered {
		status, err := a.Status(ctx, decl.Name)
		switch {
		case err == nil:
			report.Skipped = append(report.Skipped, decl.Name)
			slog.Debug("manifest flag exists", "flag", decl.Name, "enabled", status.Enabled)
			continue
		case !engine.IsNotFound(err):
			return report, err
		}

		if _, err := a.CreateFlag(ctx, decl.Name, decl.DependsOn, actor); err != nil {
			return report, err
		}
		report.Created = append(report.Created, decl.Name)
	}

	for _, decl := range ordered {
		if !decl.Enabled {
			continue
		}
		status, err := a.Status(ctx, decl.Name)
		if err != nil {
			return report, err
		}
		if status.Enabled {
			continue
		}
		if _, err := a.ToggleFlag(ctx, decl.Name, true, actor); err != nil {
			return report, err
		}
		report.Enabled = append(report.Enabled, decl.Name)
	}

	slog.Info("manifest applied",
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"enabled", len(report.Enabled))
	return report, nil
}
