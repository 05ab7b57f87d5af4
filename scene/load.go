package scene

import (
	"github.com/df07/pbrt-scene/parser"
)

// ParseFile parses the scene file at path into a new State. ok is false
// if the file could not be read.
func ParseFile(path string, env *parser.Env) (st *State, ok bool) {
	st = New(env)
	ok = parser.ParseFile(path, st, st.env)
	return st, ok
}

// ParseText parses an in-memory scene description. name labels the
// diagnostics; dir resolves relative paths.
func ParseText(text, name, dir string, env *parser.Env) (*State, error) {
	st := New(env)
	err := parser.Parse([]byte(text), name, dir, st, st.env)
	return st, err
}
