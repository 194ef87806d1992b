package console

import (
	"bufio"
	"io"
	"strings"
)

// LineReader reads newline-terminated input one line at a time. The menu and
// the console record source share one LineReader so neither buffers input
// the other needs.
type LineReader struct {
	scanner *bufio.Scanner
}

func NewLineReader(r io.Reader) *LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineReader{scanner: scanner}
}

// ReadLine returns the next line without its line ending, or io.EOF once
// input is exhausted.
func (l *LineReader) ReadLine() (string, error) {
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(l.scanner.Text(), "\r"), nil
}
