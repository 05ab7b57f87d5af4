package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/params"
)

// DefaultMaxIncludeDepth bounds Include nesting
const DefaultMaxIncludeDepth = 64

// Env is the context shared by the parser and the scene builder during one
// top level parse: diagnostics, the directory relative paths resolve
// against, and the options that change how files are read.
type Env struct {
	Diag diag.Reporter

	// DirHierarchy makes every included file resolve relative paths against
	// its own directory. Otherwise the directory of the top level file is
	// used for everything.
	DirHierarchy bool
	// AutoFlat and AutoEdge are passed to the mesh providers
	AutoFlat bool
	AutoEdge float32

	// DisableInclude rejects Include directives
	DisableInclude bool
	// IncludeRoot, when set, confines Include to files below it
	IncludeRoot     string
	MaxIncludeDepth int

	dir    string
	dirSet bool
	depth  int
}

// NewEnv creates a context reporting to reporter
func NewEnv(reporter diag.Reporter) *Env {
	if reporter == nil {
		reporter = diag.Discard()
	}
	return &Env{Diag: reporter, AutoEdge: 360, MaxIncludeDepth: DefaultMaxIncludeDepth}
}

// Dir returns the current directory for relative paths
func (e *Env) Dir() string { return e.dir }

// SetDir changes the current directory. Only the first call takes effect
// unless DirHierarchy is set.
func (e *Env) SetDir(dir string) {
	if e.dirSet && !e.DirHierarchy {
		return
	}
	e.dir = dir
	e.dirSet = true
}

// Resolve resolves name against the current directory
func (e *Env) Resolve(name string) string {
	return params.ResolvePath(e.dir, name)
}

// checkInclude validates an include target against the include policy
func (e *Env) checkInclude(path string) error {
	if e.DisableInclude {
		return fmt.Errorf("Include is disabled: %s", path)
	}
	if e.depth >= e.MaxIncludeDepth {
		return fmt.Errorf("Include nested deeper than %d levels: %s", e.MaxIncludeDepth, path)
	}
	if e.IncludeRoot != "" {
		rel, err := filepath.Rel(filepath.Clean(e.IncludeRoot), path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("Include outside of scene root: %s", path)
		}
	}
	return nil
}
