package index

// Postings is the ascending, duplicate-free list of record positions stored
// under one token.
type Postings []int

// TermEntry pairs a token with its postings.
type TermEntry struct {
	Term     string
	Postings Postings
}

// mergePostings returns the sorted union of two ascending postings lists.
func mergePostings(a, b Postings) Postings {
	if len(a) == 0 {
		return append(Postings(nil), b...)
	}
	if len(b) == 0 {
		return a
	}
	merged := make(Postings, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}
