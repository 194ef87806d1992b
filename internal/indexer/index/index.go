// Package index builds the substring inverted index over a record.Store.
//
// A record is listed under a token when the record's lowercase text contains
// the token anywhere, not only as a whole word: with records "al smith" and
// "alice", the token "al" lists both. Every token is checked against every
// record, so a build costs O(tokens × records × record length).
package index

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
)

// Index is the frozen token → positions mapping produced by Build. It has no
// mutating methods and is safe for concurrent readers. Positions refer into
// the Store it was built from; the two must be kept together.
type Index struct {
	terms    map[string]Postings
	postings int
}

// builder accumulates entries during Build and is discarded afterwards.
type builder struct {
	terms map[string]Postings
}

// Build indexes every whitespace-delimited lowercase token of every record.
// An empty store yields an empty index.
func Build(store *record.Store) *Index {
	b := &builder{terms: make(map[string]Postings)}
	records := store.All()
	for _, r := range records {
		for _, term := range tokenizer.Terms(r.Text) {
			b.add(term, scan(records, term))
		}
	}
	return b.freeze()
}

// scan returns the positions, ascending, of every record containing term.
func scan(records []record.Record, term string) Postings {
	var found Postings
	for _, r := range records {
		if strings.Contains(r.Lower(), term) {
			found = append(found, r.Position)
		}
	}
	return found
}

func (b *builder) add(term string, found Postings) {
	b.terms[term] = mergePostings(b.terms[term], found)
}

func (b *builder) freeze() *Index {
	idx := &Index{terms: b.terms}
	for _, p := range b.terms {
		idx.postings += len(p)
	}
	b.terms = nil
	return idx
}

// Lookup returns a copy of the positions stored under term. The term must
// match an index key exactly.
func (idx *Index) Lookup(term string) (Postings, bool) {
	p, ok := idx.terms[term]
	if !ok {
		return nil, false
	}
	out := make(Postings, len(p))
	copy(out, p)
	return out, true
}

// Len returns the number of distinct tokens.
func (idx *Index) Len() int {
	return len(idx.terms)
}

// PostingsCount returns the total number of (token, position) pairs.
func (idx *Index) PostingsCount() int {
	return idx.postings
}

// Snapshot returns every entry sorted by term.
func (idx *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(idx.terms))
	for term, p := range idx.terms {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: append(Postings(nil), p...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
