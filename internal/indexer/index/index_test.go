package index

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/google/go-cmp/cmp"
)

var people = []string{
	"Alice Smith alice@x.com",
	"Bob Jones bob@x.com",
	"Carol White carol@y.com",
}

func TestBuildPeople(t *testing.T) {
	idx := Build(record.NewStore(people))

	tests := []struct {
		term string
		want Postings
	}{
		{"alice", Postings{0}},
		{"smith", Postings{0}},
		{"alice@x.com", Postings{0}},
		{"bob", Postings{1}},
		{"jones", Postings{1}},
		{"carol@y.com", Postings{2}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := idx.Lookup(tt.term)
			if !ok {
				t.Fatalf("term %q missing", tt.term)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", tt.term, diff)
			}
		})
	}

	for _, missing := range []string{"x.com", "Alice", "", "a"} {
		if _, ok := idx.Lookup(missing); ok {
			t.Errorf("%q should not be an index key", missing)
		}
	}
	if idx.Len() != 9 {
		t.Errorf("Len = %d, want 9", idx.Len())
	}
}

func TestBuildIndexesBySubstring(t *testing.T) {
	idx := Build(record.NewStore([]string{"al smith", "Alice", "ALBERT al"}))

	got, _ := idx.Lookup("al")
	if diff := cmp.Diff(Postings{0, 1, 2}, got); diff != "" {
		t.Errorf("substring postings mismatch (-want +got):\n%s", diff)
	}
	got, _ = idx.Lookup("alice")
	if diff := cmp.Diff(Postings{1}, got); diff != "" {
		t.Errorf("alice postings mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDeduplicatesRepeatedTokens(t *testing.T) {
	idx := Build(record.NewStore([]string{"foo foo", "foo", "FOO bar foo"}))
	got, _ := idx.Lookup("foo")
	if diff := cmp.Diff(Postings{0, 1, 2}, got); diff != "" {
		t.Errorf("postings mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIdenticalLinesAreDistinctRecords(t *testing.T) {
	idx := Build(record.NewStore([]string{"same line", "same line"}))
	got, _ := idx.Lookup("same")
	if diff := cmp.Diff(Postings{0, 1}, got); diff != "" {
		t.Errorf("postings mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptyStore(t *testing.T) {
	idx := Build(record.NewStore(nil))
	if idx.Len() != 0 || idx.PostingsCount() != 0 || len(idx.Snapshot()) != 0 {
		t.Errorf("empty store produced a non-empty index")
	}
}

func TestBuildSoundness(t *testing.T) {
	lines := []string{
		"Dwight Joseph djo@gmail.com",
		"Rene Webb webb@gmail.com",
		"Katie Jacobs",
		"Erick Harrington harrington@gmail.com",
		"Myrtle Medina",
		"Erick Burgess",
		"  spaced   out  ",
		"",
	}
	store := record.NewStore(lines)
	idx := Build(store)

	for _, entry := range idx.Snapshot() {
		if entry.Term == "" {
			t.Fatalf("empty token indexed")
		}
		for i, pos := range entry.Postings {
			if !strings.Contains(store.At(pos).Lower(), entry.Term) {
				t.Errorf("record %d listed under %q does not contain it", pos, entry.Term)
			}
			if i > 0 && entry.Postings[i-1] >= pos {
				t.Errorf("postings for %q not strictly ascending: %v", entry.Term, entry.Postings)
			}
		}
	}

	// completeness: every record containing a key is listed under it
	for _, entry := range idx.Snapshot() {
		for pos := 0; pos < store.Len(); pos++ {
			if strings.Contains(store.At(pos).Lower(), entry.Term) && !contains(entry.Postings, pos) {
				t.Errorf("record %d contains %q but is not listed", pos, entry.Term)
			}
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	idx := Build(record.NewStore(people))
	got, _ := idx.Lookup("bob")
	got[0] = 99
	again, _ := idx.Lookup("bob")
	if again[0] != 1 {
		t.Errorf("index mutated through Lookup result: %v", again)
	}
}

func TestMergePostings(t *testing.T) {
	tests := []struct {
		a, b, want Postings
	}{
		{nil, Postings{1, 2}, Postings{1, 2}},
		{Postings{1, 2}, nil, Postings{1, 2}},
		{Postings{0, 2, 4}, Postings{1, 2, 5}, Postings{0, 1, 2, 4, 5}},
		{Postings{3}, Postings{3}, Postings{3}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v+%v", tt.a, tt.b), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, mergePostings(tt.a, tt.b)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func contains(p Postings, pos int) bool {
	for _, v := range p {
		if v == pos {
			return true
		}
	}
	return false
}

func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = fmt.Sprintf("Person%d Surname%d person%d@example.com", i, i%17, i)
		}
		store := record.NewStore(lines)
		b.Run(fmt.Sprintf("records_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Build(store)
			}
		})
	}
}
