package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		bad   []int
	}{
		{"ok", []string{"Alice Smith", "", "bob@x.com"}, nil},
		{"line break", []string{"a", "b\nc"}, []int{1}},
		{"carriage return", []string{"a\r"}, []int{0}},
		{"nul", []string{"ok", "x\x00y"}, []int{1}},
		{"too long", []string{strings.Repeat("a", MaxLineLength+1), strings.Repeat("a", MaxLineLength)}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if tt.bad == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if len(verr.Lines) != len(tt.bad) {
				t.Errorf("bad lines = %v, want %v", verr.Lines, tt.bad)
			}
			for _, pos := range tt.bad {
				if _, ok := verr.Lines[pos]; !ok {
					t.Errorf("line %d not reported", pos)
				}
			}
		})
	}
}

func TestValidationErrorIsOrdered(t *testing.T) {
	err := &ValidationError{Lines: map[int]string{3: "c", 1: "a"}}
	if got := err.Error(); got != "line 1: a; line 3: c" {
		t.Errorf("Error() = %q", got)
	}
}
