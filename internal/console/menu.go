// Package console implements the interactive front end: the menu loop, the
// result display and the shared line reader.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
)

const menuText = `=== Menu ===
1. Find a person
2. Print all people
0. Exit
`

const (
	strategyPrompt     = "Select a matching strategy: ALL, ANY, NONE"
	queryPrompt        = "Enter a name or email to search all matching people."
	invalidStrategyMsg = "Not a valid strategy to search people."
	invalidChoiceMsg   = "Incorrect option! Try again."
)

type Choice int

const (
	ChoiceExit     Choice = 0
	ChoiceFind     Choice = 1
	ChoicePrintAll Choice = 2
)

// ParseChoice accepts "0", "1" or "2", ignoring surrounding whitespace.
func ParseChoice(line string) (Choice, error) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidMenuChoice, line)
	}
	switch c := Choice(n); c {
	case ChoiceExit, ChoiceFind, ChoicePrintAll:
		return c, nil
	}
	return 0, fmt.Errorf("%w: %d is out of range", apperrors.ErrInvalidMenuChoice, n)
}

type Searcher interface {
	Evaluate(ctx context.Context, query, strategy string) (*executor.SearchResult, error)
}

type Menu struct {
	in       *LineReader
	out      io.Writer
	searcher Searcher
	store    *record.Store
	logger   *slog.Logger
}

func NewMenu(in *LineReader, out io.Writer, searcher Searcher, store *record.Store) *Menu {
	return &Menu{
		in:       in,
		out:      out,
		searcher: searcher,
		store:    store,
		logger:   slog.Default().With("component", "menu"),
	}
}

// Run shows the menu until the user picks exit or input ends. Invalid menu
// choices and strategies are reported and the loop continues; only read
// failures and context cancellation end it with an error.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(m.out, menuText)
		line, err := m.in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading menu choice: %w", err)
		}

		choice, err := ParseChoice(line)
		if err != nil {
			m.logger.Debug("menu choice rejected", "input", line, "error", err)
			fmt.Fprintln(m.out, invalidChoiceMsg)
			continue
		}
		switch choice {
		case ChoiceExit:
			return nil
		case ChoicePrintAll:
			PrintAll(m.out, m.store.All())
		case ChoiceFind:
			done, err := m.find(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// find runs one search. done reports that input ended mid-prompt.
func (m *Menu) find(ctx context.Context) (done bool, err error) {
	fmt.Fprintln(m.out, strategyPrompt)
	strategy, err := m.in.ReadLine()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading strategy: %w", err)
	}
	fmt.Fprintln(m.out, queryPrompt)
	query, err := m.in.ReadLine()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading query: %w", err)
	}

	res, err := m.searcher.Evaluate(ctx, query, strategy)
	if errors.Is(err, apperrors.ErrInvalidStrategy) {
		m.logger.Debug("strategy rejected", "strategy", strategy)
		fmt.Fprintln(m.out, invalidStrategyMsg)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("evaluating query %q: %w", query, err)
	}
	DisplayResult(m.out, res)
	return false, nil
}
