package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// LoadCUE compiles a CUE manifest. Flags are read from the top-level
// "flag" struct in source order; filename is used in error positions.
func LoadCUE(data []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	flagsVal := v.LookupPath(cue.ParsePath("flag"))
	if !flagsVal.Exists() {
		return m, nil
	}

	iter, err := flagsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		decl, err := parseFlag(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Flags = append(m.Flags, decl)
	}

	return m, nil
}

// parseFlag extracts one flag declaration.
func parseFlag(name string, v cue.Value) (FlagDecl, error) {
	decl := FlagDecl{Name: name, Pos: v.Pos()}

	depsVal := v.LookupPath(cue.ParsePath("depends_on"))
	if depsVal.Exists() {
		if err := depsVal.Decode(&decl.DependsOn); err != nil {
			return FlagDecl{}, &LoadError{
				Field:   fmt.Sprintf("flag.%s.depends_on", name),
				Message: "must be a list of flag names",
				Pos:     depsVal.Pos(),
			}
		}
	}

	enabledVal := v.LookupPath(cue.ParsePath("enabled"))
	if enabledVal.Exists() {
		enabled, err := enabledVal.Bool()
		if err != nil {
			return FlagDecl{}, &LoadError{
				Field:   fmt.Sprintf("flag.%s.enabled", name),
				Message: "must be a boolean",
				Pos:     enabledVal.Pos(),
			}
		}
		decl.Enabled = enabled
	}

	return decl, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
