// Package logstore exposes a header-prefixed CSV log file as both a
// streaming text source (for grep-style tools) and a source of small
// materialized working sets.
package logstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Sentinel errors for the two caller-distinguishable failure classes.
var (
	// ErrLogFile marks failures to open or read the underlying file.
	ErrLogFile = errors.New("log file error")
	// ErrValidation marks bad user input (unknown column, invalid regex)
	// detected before any scanning happens.
	ErrValidation = errors.New("validation error")
)

// payloadConventions are header names (case-insensitive) probed when no
// payload column is configured explicitly.
var payloadConventions = []string{"payload", "message", "raw", "content", "log"}

// ctxCheckInterval is how many rows are scanned between context checks.
const ctxCheckInterval = 256

// Store provides read-only access to a single CSV log file.
// Safe for concurrent use: every search opens its own reader.
type Store struct {
	path       string
	header     []string
	payloadCol string
}

// Open reads the CSV header and resolves the payload column.
// payloadColumn may be empty, in which case a conventional header name is
// probed and the last column is used as a fallback.
func Open(path, payloadColumn string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLogFile, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrLogFile, path, err)
	}

	s := &Store{path: path, header: append([]string(nil), header...)}
	if payloadColumn != "" {
		col, ok := resolveColumn(payloadColumn, header)
		if !ok {
			return nil, fmt.Errorf("%w: payload column %q not in header %v", ErrValidation, payloadColumn, header)
		}
		s.payloadCol = col
	} else {
		s.payloadCol = conventionPayloadColumn(header)
	}
	return s, nil
}

// Header returns the ordered column names discovered from the file.
func (s *Store) Header() []string {
	return append([]string(nil), s.header...)
}

// PayloadColumn returns the resolved payload column name.
func (s *Store) PayloadColumn() string { return s.payloadCol }

// Path returns the underlying file path.
func (s *Store) Path() string { return s.path }

// SearchOptions controls a streaming search.
type SearchOptions struct {
	Columns       []string // subset of columns to match against; empty = all
	CaseSensitive bool
	Regex         bool
	MaxMatches    int // stop after this many matches; 0 = unlimited
}

// matcher is the compiled per-search predicate.
type matcher func(string) bool

func compileMatcher(pattern string, opts SearchOptions) (matcher, error) {
	if opts.Regex {
		prefix := "(?i)"
		if opts.CaseSensitive {
			prefix = ""
		}
		re, err := regexp.Compile(prefix + pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrValidation, pattern, err)
		}
		return re.MatchString, nil
	}
	if opts.CaseSensitive {
		return func(s string) bool { return strings.Contains(s, pattern) }, nil
	}
	lower := strings.ToLower(pattern)
	return func(s string) bool { return strings.Contains(strings.ToLower(s), lower) }, nil
}

// Search streams the file row by row and returns rows where any selected
// column matches the pattern. Memory stays O(one row) plus the matched set.
// Row order is preserved. Returns the working set and the number of data
// rows scanned.
func (s *Store) Search(ctx context.Context, pattern string, opts SearchOptions) (*WorkingSet, int, error) {
	match, err := compileMatcher(pattern, opts)
	if err != nil {
		return nil, 0, err
	}
	colIdx, err := s.columnIndices(opts.Columns)
	if err != nil {
		return nil, 0, err
	}

	var rows []Row
	scanned, err := s.scan(ctx, func(ordinal int, record []string) bool {
		if matchRecord(record, colIdx, match) {
			rows = append(rows, s.newRow(ordinal, record))
			if opts.MaxMatches > 0 && len(rows) >= opts.MaxMatches {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, scanned, err
	}
	return NewWorkingSet(s.header, s.payloadCol, rows), scanned, nil
}

// CountMatches streams the file and counts matching rows without
// materializing them. Returns the match count and the rows scanned.
func (s *Store) CountMatches(ctx context.Context, pattern string, opts SearchOptions) (int, int, error) {
	match, err := compileMatcher(pattern, opts)
	if err != nil {
		return 0, 0, err
	}
	colIdx, err := s.columnIndices(opts.Columns)
	if err != nil {
		return 0, 0, err
	}

	count := 0
	scanned, err := s.scan(ctx, func(_ int, record []string) bool {
		if matchRecord(record, colIdx, match) {
			count++
		}
		return true
	})
	return count, scanned, err
}

// scan streams all data rows, invoking visit with the 1-based ordinal and
// the raw record. visit returns false to stop early. The record slice is
// reused between calls; visit must copy anything it keeps.
func (s *Store) scan(ctx context.Context, visit func(ordinal int, record []string) bool) (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrLogFile, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	r.LazyQuotes = true

	// Skip header.
	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("%w: read header: %v", ErrLogFile, err)
	}

	scanned := 0
	for {
		if scanned%ctxCheckInterval == 0 && ctx.Err() != nil {
			return scanned, ctx.Err()
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return scanned, nil
		}
		if err != nil {
			// Malformed rows are tolerated: csv surfaces per-record parse
			// errors we can skip without aborting the stream.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				scanned++
				continue
			}
			return scanned, fmt.Errorf("%w: read row %d: %v", ErrLogFile, scanned+1, err)
		}
		scanned++
		if !visit(scanned, record) {
			return scanned, nil
		}
	}
}

// columnIndices resolves the requested column subset (case-insensitive)
// against the header. nil means "match all columns".
func (s *Store) columnIndices(columns []string) ([]int, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	idx := make([]int, 0, len(columns))
	for _, c := range columns {
		found := -1
		for i, h := range s.header {
			if strings.EqualFold(h, c) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("%w: unknown column %q, available: %s",
				ErrValidation, c, strings.Join(s.header, ", "))
		}
		idx = append(idx, found)
	}
	return idx, nil
}

func matchRecord(record []string, colIdx []int, match matcher) bool {
	if colIdx == nil {
		for _, v := range record {
			if match(v) {
				return true
			}
		}
		return false
	}
	for _, i := range colIdx {
		if i < len(record) && match(record[i]) {
			return true
		}
	}
	return false
}

func (s *Store) newRow(ordinal int, record []string) Row {
	values := make(map[string]string, len(s.header))
	for i, h := range s.header {
		if i < len(record) {
			values[h] = record[i]
		}
	}
	return Row{Ordinal: ordinal, Values: values}
}

func resolveColumn(name string, header []string) (string, bool) {
	for _, h := range header {
		if strings.EqualFold(h, name) {
			return h, true
		}
	}
	return "", false
}

func conventionPayloadColumn(header []string) string {
	for _, want := range payloadConventions {
		for _, h := range header {
			if strings.EqualFold(h, want) {
				return h
			}
		}
	}
	if len(header) == 0 {
		return ""
	}
	return header[len(header)-1]
}
