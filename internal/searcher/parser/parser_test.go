package parser

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
	"github.com/google/go-cmp/cmp"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		token   string
		want    Strategy
		wantErr bool
	}{
		{"ALL", StrategyAll, false},
		{"ANY", StrategyAny, false},
		{"NONE", StrategyNone, false},
		{"all", 0, true},
		{" ANY", 0, true},
		{"ANY ", 0, true},
		{"", 0, true},
		{"SOME", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseStrategy(tt.token)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidStrategy) {
					t.Fatalf("ParseStrategy(%q) error = %v, want ErrInvalidStrategy", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q): %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		lowered string
		keys    []string
	}{
		{"empty", "", "", []string{}},
		{"single", "Alice", "alice", []string{"alice"}},
		{"two keys", "Bob Jones", "bob jones", []string{"bob", "jones"}},
		{"doubled space", "bob  jones ", "bob  jones ", []string{"bob", "jones"}},
		{"repeated keys", "x x", "x x", []string{"x", "x"}},
		{"tab is not a separator", "a\tb", "a\tb", []string{"a\tb"}},
		{"email", "ALICE@X.COM", "alice@x.com", []string{"alice@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse(tt.query, StrategyAny)
			if plan.RawQuery != tt.query {
				t.Errorf("RawQuery = %q", plan.RawQuery)
			}
			if plan.Lowered != tt.lowered {
				t.Errorf("Lowered = %q, want %q", plan.Lowered, tt.lowered)
			}
			if diff := cmp.Diff(tt.keys, plan.Keys); diff != "" {
				t.Errorf("Keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrategyJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Strategy{"s": StrategyNone})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"s":"NONE"}` {
		t.Errorf("marshal = %s", data)
	}

	var out struct{ S Strategy }
	if err := json.Unmarshal([]byte(`{"S":"ALL"}`), &out); err != nil || out.S != StrategyAll {
		t.Errorf("unmarshal = %v, %v", out.S, err)
	}
	if err := json.Unmarshal([]byte(`{"S":"MOST"}`), &out); err == nil {
		t.Errorf("expected an error for an unknown strategy")
	}
}
