// Package ingestion loads the ordered record lines the search core indexes.
// Sources only read; they never see the index.
package ingestion

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/errors"
)

// Source yields every record line, in order.
type Source interface {
	Kind() string
	Load(ctx context.Context) ([]string, error)
}

// LineReader is the interactive input shared with the menu.
type LineReader interface {
	ReadLine() (string, error)
}

// FileSource reads a line-delimited text file. A trailing newline does not
// add an empty record; blank lines elsewhere do.
type FileSource struct {
	Path string
}

func (s *FileSource) Kind() string { return config.SourceFile }

func (s *FileSource) Load(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Newf(apperrors.ErrMissingInputFile, http.StatusNotFound, "%s", s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(lines)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return lines, nil
}

// ConsoleSource asks for a record count and then reads that many lines.
type ConsoleSource struct {
	In  LineReader
	Out io.Writer
}

func (s *ConsoleSource) Kind() string { return config.SourceConsole }

func (s *ConsoleSource) Load(ctx context.Context) ([]string, error) {
	fmt.Fprintln(s.Out, "Enter the number of people:")
	line, err := s.In.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("%w: reading record count: %v", apperrors.ErrInvalidInput, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: record count %q is not a non-negative number", apperrors.ErrInvalidInput, line)
	}
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := s.In.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("%w: expected %d records, got %d: %v", apperrors.ErrInvalidInput, count, i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
