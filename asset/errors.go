package asset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedDataRow    = errors.New("asset: malformed data row")
	ErrUnbalancedBrackets  = errors.New("asset: unbalanced brackets")
	ErrEmptyMeshResult     = errors.New("asset: no usable mesh fragments")
	ErrMissingSkeletonFile = errors.New("asset: missing skeleton file")
	ErrIo                  = errors.New("asset: i/o error")

	// Non-fatal structural issues (dropped fragments, count mismatches, truncated triangle lists).
	ErrStructure = errors.New("asset: structural warning")
)

// A Diagnostic records a recoverable problem found while reading or
// assembling a file. Line is 0 when the problem is not tied to a line.
type Diagnostic struct {
	Err     error
	File    string
	Line    int
	Message string
}

// Implements error.
func (d *Diagnostic) Error() string {
	var prefix string
	switch {
	case d.File != "" && d.Line > 0:
		prefix = fmt.Sprintf("[%s: %d] ", d.File, d.Line)
	case d.File != "":
		prefix = fmt.Sprintf("[%s] ", d.File)
	case d.Line > 0:
		prefix = fmt.Sprintf("[line %d] ", d.Line)
	}

	if d.Message == "" {
		return prefix + d.Err.Error()
	}
	return fmt.Sprintf("%s%s: %s", prefix, d.Err.Error(), d.Message)
}

// Unwrap allows errors.Is to match the diagnostic kind.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// An ordered list of diagnostics.
type Diagnostics []*Diagnostic

// Append a new diagnostic to the list.
func (dl *Diagnostics) Add(kind error, file string, line int, msgFormat string, args ...interface{}) *Diagnostic {
	d := &Diagnostic{
		Err:     kind,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(msgFormat, args...),
	}
	*dl = append(*dl, d)
	return d
}

// Count the diagnostics of a particular kind.
func (dl Diagnostics) Count(kind error) int {
	count := 0
	for _, d := range dl {
		if errors.Is(d, kind) {
			count++
		}
	}
	return count
}

// Filter the diagnostics of a particular kind.
func (dl Diagnostics) Filter(kind error) Diagnostics {
	var out Diagnostics
	for _, d := range dl {
		if errors.Is(d, kind) {
			out = append(out, d)
		}
	}
	return out
}

func (dl Diagnostics) String() string {
	lines := make([]string, len(dl))
	for idx, d := range dl {
		lines[idx] = d.Error()
	}
	return strings.Join(lines, "\n")
}
