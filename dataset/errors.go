package dataset

import (
	"fmt"
	"strings"
)

// MissingInputError reports a source that is absent, unreadable, empty, or
// lacks a required column. It is fatal: no datasets are produced.
type MissingInputError struct {
	Source  string
	Path    string
	Columns []string
	Err     error
}

func (e *MissingInputError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing input %s", e.Source)
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": missing required columns %s", strings.Join(e.Columns, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// MalformedValueError reports a cell that cannot be parsed where no
// recovery is allowed (dates of the workspace series).
type MalformedValueError struct {
	Source string
	Column string
	Row    int // 1-based data row, header excluded
	Value  string
	Err    error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed %s.%s at row %d: %q: %v", e.Source, e.Column, e.Row, e.Value, e.Err)
}

func (e *MalformedValueError) Unwrap() error { return e.Err }
