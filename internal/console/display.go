package console

import (
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/record"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/internal/searcher/executor"
)

// Display reports one result set: a no-match line, or the count followed by
// each record's original text.
func Display(w io.Writer, records []record.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No matching people found.")
		return
	}
	fmt.Fprintf(w, "%d persons found:\n", len(records))
	for _, r := range records {
		fmt.Fprintln(w, r.Text)
	}
}

// DisplayResult writes every section of res in order. NONE results carry two
// sections when there were candidates.
func DisplayResult(w io.Writer, res *executor.SearchResult) {
	for _, section := range res.Sections {
		Display(w, section)
	}
}

// PrintAll writes each record's text on its own line.
func PrintAll(w io.Writer, records []record.Record) {
	for _, r := range records {
		fmt.Fprintln(w, r.Text)
	}
}
