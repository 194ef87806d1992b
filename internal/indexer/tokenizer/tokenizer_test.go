package tokenizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Token
	}{
		{"empty", "", []Token{}},
		{"only spaces", "   \t ", []Token{}},
		{"case folding", "Alice SMITH", []Token{{"alice", 0}, {"smith", 1}}},
		{"repeated whitespace", "bob   jones\tx", []Token{{"bob", 0}, {"jones", 1}, {"x", 2}}},
		{"punctuation kept", "carol@y.com,", []Token{{"carol@y.com,", 0}}},
		{"duplicates kept", "a a", []Token{{"a", 0}, {"a", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestTermsMatchesTokenize(t *testing.T) {
	text := "Dwight Joseph djo@gmail.com"
	terms := Terms(text)
	tokens := Tokenize(text)
	if len(terms) != len(tokens) {
		t.Fatalf("len mismatch: %d vs %d", len(terms), len(tokens))
	}
	for i := range terms {
		if terms[i] != tokens[i].Term {
			t.Errorf("term %d: %q vs %q", i, terms[i], tokens[i].Term)
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 1000, 5000}
	baseWord := "Alice Smith alice@x.com "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = Tokenize(text)
			}
		})
	}
}
