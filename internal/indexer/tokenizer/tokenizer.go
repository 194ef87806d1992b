// Package tokenizer turns record text into index tokens. Normalisation is
// case folding only: no stemming, no stop-words, no punctuation stripping, so
// "alice@x.com" stays one token.
package tokenizer

import "strings"

// Token represents a single lowercased word and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Tokenize lowercases text and splits it on whitespace. Runs of whitespace
// never produce empty tokens.
func Tokenize(text string) []Token {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]Token, 0, len(words))
	for pos, word := range words {
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
	}
	return tokens
}

// Terms is Tokenize without positions.
func Terms(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
