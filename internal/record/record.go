// Package record holds the ordered, immutable set of text lines that the
// search tool indexes and queries.
package record

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one input line. Position is its 0-based index in the Store and is
// the record's identity; two lines with identical text are distinct records.
type Record struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
	lower    string
}

// Lower returns the lowercased text used for matching.
func (r Record) Lower() string {
	return r.lower
}

// UnmarshalJSON restores the matching text so decoded records behave like
// records taken from a Store.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	r.lower = strings.ToLower(r.Text)
	return nil
}

// Store owns every Record. It is never mutated after NewStore returns.
type Store struct {
	records     []Record
	fingerprint string
}

// NewStore copies lines into a new Store, preserving their order.
func NewStore(lines []string) *Store {
	records := make([]Record, len(lines))
	h := sha256.New()
	for i, line := range lines {
		records[i] = Record{
			Position: i,
			Text:     line,
			lower:    strings.ToLower(line),
		}
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return &Store{
		records:     records,
		fingerprint: fmt.Sprintf("%x", h.Sum(nil)[:8]),
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// At returns the record at position pos. It panics when pos is out of range,
// like a slice index.
func (s *Store) At(pos int) Record {
	return s.records[pos]
}

// All returns a copy of every record in position order.
func (s *Store) All() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Fingerprint identifies the store's contents; stores built from the same
// lines in the same order share a fingerprint.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}
