// Package manifest declares flag graphs in YAML or CUE files and applies
// them through the engine.
//
// A manifest lists flags with their dependencies and an optional initial
// enabled state:
//
//	flags:
//	  - name: db
//	    enabled: true
//	  - name: api
//	    depends_on: [db]
//
// The CUE form keys flags by name under a top-level "flag" struct:
//
//	flag: {
//		db: enabled: true
//		api: depends_on: ["db"]
//	}
//
// Analyze checks a manifest without touching the store; Apply creates the
// flags that do not exist yet, dependencies first.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"
)

// FlagDecl declares one flag.
type FlagDecl struct {
	Name      string    `yaml:"name" json:"name"`
	DependsOn []string  `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Enabled   bool      `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Pos       token.Pos `yaml:"-" json:"-"` // Source position (CUE only)
}

// Manifest is a declared flag graph in declaration order.
type Manifest struct {
	Flags []FlagDecl `yaml:"flags" json:"flags"`
}

// LoadError reports a malformed manifest.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a manifest file, choosing the format by extension
// (.yaml, .yml or .cue).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("read manifest %s: unsupported extension %q", path, ext)
	}
}
