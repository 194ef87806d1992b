// Package parser turns the raw strategy token and query line into a
// QueryPlan for the executor.
package parser

import (
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
)

// Strategy selects how per-key candidates are combined.
type Strategy int

const (
	StrategyAll Strategy = iota + 1
	StrategyAny
	StrategyNone
)

var strategyNames = map[Strategy]string{
	StrategyAll:  "ALL",
	StrategyAny:  "ANY",
	StrategyNone: "NONE",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy accepts exactly "ALL", "ANY" or "NONE". Case and surrounding
// whitespace are significant.
func ParseStrategy(token string) (Strategy, error) {
	for s, name := range strategyNames {
		if token == name {
			return s, nil
		}
	}
	return 0, apperrors.Newf(apperrors.ErrInvalidStrategy, http.StatusBadRequest,
		"%q is not one of ALL, ANY, NONE", token)
}

type QueryPlan struct {
	RawQuery string
	// Lowered is the whole query lowercased; ALL matches it as one phrase.
	Lowered  string
	Keys     []string
	Strategy Strategy
}

// Parse lowercases query and splits it on single spaces into search keys.
// Empty keys from leading, trailing or doubled spaces are dropped, so an
// empty query has no keys. Keys keep any other punctuation or whitespace.
func Parse(query string, strategy Strategy) *QueryPlan {
	lowered := strings.ToLower(query)
	plan := &QueryPlan{
		RawQuery: query,
		Lowered:  lowered,
		Keys:     make([]string, 0),
		Strategy: strategy,
	}
	for _, key := range strings.Split(lowered, " ") {
		if key == "" {
			continue
		}
		plan.Keys = append(plan.Keys, key)
	}
	return plan
}
