package params

import "fmt"

// MissingParameterError reports a required parameter that was not supplied
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// ArgMismatchError reports correlated arrays whose lengths disagree
type ArgMismatchError struct {
	Name string
}

func (e *ArgMismatchError) Error() string {
	return fmt.Sprintf("argument count mismatch for %s", e.Name)
}

// TrailingValuesError is returned by the spectrum constructors when the
// value count is not a multiple of the group size. The complete groups are
// still stored; callers report it as a warning.
type TrailingValuesError struct {
	Kind string
	Name string
}

func (e *TrailingValuesError) Error() string {
	return fmt.Sprintf("invalid number of %s pairs supplied: %s", e.Kind, e.Name)
}
