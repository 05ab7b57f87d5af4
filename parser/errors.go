package parser

import "fmt"

// PositionalError is implemented by syntax errors that know the byte
// offset at which scanning failed
type PositionalError interface {
	error
	Position() int
}

// InvalidTokenError reports an unexpected character
type InvalidTokenError struct {
	Offset   int
	Found    string
	Expected string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token, found: %s expected: %s", e.Found, e.Expected)
}

func (e *InvalidTokenError) Position() int { return e.Offset }

// InvalidArgCountError reports a wrong number of values
type InvalidArgCountError struct {
	Offset   int
	Found    int
	Expected int
}

func (e *InvalidArgCountError) Error() string {
	return fmt.Sprintf("invalid number of argument, found: %d expected: %d", e.Found, e.Expected)
}

func (e *InvalidArgCountError) Position() int { return e.Offset }

// InvalidArgumentError reports a value or type keyword that is not allowed
type InvalidArgumentError struct {
	Offset int
	Arg    string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument found: %s", e.Arg)
}

func (e *InvalidArgumentError) Position() int { return e.Offset }

// ConversionError reports a token that is not a valid number
type ConversionError struct {
	Offset int
	Number string
	Type   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.Number, e.Type)
}

func (e *ConversionError) Position() int { return e.Offset }

// FileError is the error that stopped the scan of a file, located by line
type FileError struct {
	Filename string
	Line     int
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("line: %d : %v in file: %s", e.Line, e.Err, e.Filename)
}

func (e *FileError) Unwrap() error { return e.Err }

// OpenError reports a scene file that could not be read
type OpenError struct {
	Filename string
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open file %s", e.Filename)
}

func (e *OpenError) Unwrap() error { return e.Err }
