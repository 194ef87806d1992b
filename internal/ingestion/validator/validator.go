// Package validator checks record lines before they are written to a shared
// record store.
package validator

import (
	"fmt"
	"sort"
	"strings"
)

// MaxLineLength bounds a single record in bytes.
const MaxLineLength = 4096

// ValidationError maps offending line positions to what is wrong with them.
type ValidationError struct {
	Lines map[int]string
}

func (e *ValidationError) Error() string {
	positions := make([]int, 0, len(e.Lines))
	for pos := range e.Lines {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	parts := make([]string, 0, len(positions))
	for _, pos := range positions {
		parts = append(parts, fmt.Sprintf("line %d: %s", pos, e.Lines[pos]))
	}
	return strings.Join(parts, "; ")
}

// ValidateLines rejects lines that would not survive a round trip through
// the postgres or redis sources. Empty lines are valid records.
func ValidateLines(lines []string) error {
	errs := make(map[int]string)
	for i, line := range lines {
		switch {
		case len(line) > MaxLineLength:
			errs[i] = fmt.Sprintf("longer than %d bytes", MaxLineLength)
		case strings.ContainsAny(line, "\r\n"):
			errs[i] = "contains a line break"
		case strings.ContainsRune(line, 0):
			errs[i] = "contains a NUL byte"
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Lines: errs}
	}
	return nil
}
