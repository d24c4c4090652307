// Package csvfile stores each voting as a comma-separated file with one
// submission per line: voter followed by the item slots, no header row.
// Fields are quoted per RFC 4180, so labels may contain commas. Unquoted
// rows with stray quote characters are still accepted on read.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/godilite/voting-tool/internal/domain"
)

const ext = ".csv"

// Store keeps voting files in a single directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", domain.ErrConnection, dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(voting string) string {
	return filepath.Join(s.dir, voting+ext)
}

// ListVotings returns the voting names in lexical order.
func (s *Store) ListVotings(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read data dir: %v", domain.ErrConnection, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// CreateVoting creates an empty file. O_EXCL makes collisions atomic.
func (s *Store) CreateVoting(ctx context.Context, name string) error {
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %q", domain.ErrNameCollision, name)
	}
	if err != nil {
		return fmt.Errorf("%w: create %q: %v", domain.ErrStoreWrite, name, err)
	}
	return f.Close()
}

// Append encodes the submission as one line and writes it with a single
// write on an O_APPEND descriptor.
func (s *Store) Append(ctx context.Context, voting string, sub domain.Submission) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sub.Row()); err != nil {
		return fmt.Errorf("%w: encode row: %v", domain.ErrStoreWrite, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encode row: %v", domain.ErrStoreWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(voting), os.O_WRONLY|os.O_APPEND, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err != nil {
		return fmt.Errorf("%w: open %q: %v", domain.ErrStoreWrite, voting, err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("%w: append to %q: %v", domain.ErrStoreWrite, voting, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %v", domain.ErrStoreWrite, voting, err)
	}
	return nil
}

// ReadAll parses every line of the voting file in file order.
func (s *Store) ReadAll(ctx context.Context, voting string) ([]domain.Submission, error) {
	f, err := os.Open(s.path(voting))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", domain.ErrConnection, voting, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	// Rows written before quoting was introduced may hold bare quotes.
	r.LazyQuotes = true

	subs := []domain.Submission{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: %q: %v", domain.ErrParse, voting, perr)
			}
			return nil, fmt.Errorf("%w: read %q: %v", domain.ErrConnection, voting, err)
		}

		line, _ := r.FieldPos(0)
		sub, err := domain.ParseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%q line %d: %w", voting, line, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Clear truncates the voting file.
func (s *Store) Clear(ctx context.Context, voting string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(voting)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err := os.Truncate(s.path(voting), 0); err != nil {
		return fmt.Errorf("%w: truncate %q: %v", domain.ErrStoreWrite, voting, err)
	}
	return nil
}

// Delete removes the voting file.
func (s *Store) Delete(ctx context.Context, voting string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(voting))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, voting)
	}
	if err != nil {
		return fmt.Errorf("%w: remove %q: %v", domain.ErrStoreWrite, voting, err)
	}
	return nil
}
