package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

// DefaultHistoryLimit is the number of entries kept by a [History].
const DefaultHistoryLimit = 1000

// History is the list of submitted lines, oldest first, optionally persisted
// to a file with one entry per line. Resubmitting a line moves it to the end.
type History struct {
	path    string
	limit   int
	entries []string
	mu      sync.RWMutex
}

// NewHistory returns an empty History persisted at path. An empty path keeps
// the history in memory only.
func NewHistory(path string) *History {
	return &History{path: path, limit: DefaultHistoryLimit}
}

// Load replaces the entries with the contents of the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			h.push(line)
		}
	}

	h.trim()

	return sc.Err()
}

// Add appends line, removing an earlier copy of it.
func (h *History) Add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return nil
	}

	removed := h.push(line)
	trimmed := h.trim()

	if h.path == "" {
		return nil
	}

	if removed || trimmed {
		return h.rewrite()
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	_, err = f.WriteString(line + "\n")

	return errors.Join(err, f.Close())
}

// Entry returns the entry at i; 0 is the oldest.
func (h *History) Entry(i int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return "", ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// push appends line and reports whether an earlier copy was removed.
// h.mu must be held.
func (h *History) push(line string) bool {
	i := slices.Index(h.entries, line)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, line)

	return i >= 0
}

// trim drops the oldest entries beyond the limit and reports whether any
// were dropped. h.mu must be held.
func (h *History) trim() bool {
	if h.limit <= 0 || len(h.entries) <= h.limit {
		return false
	}

	h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.limit)

	return true
}

// rewrite replaces the history file with the entries. h.mu must be held.
func (h *History) rewrite() error {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		_, _ = w.WriteString(e + "\n")
	}

	return errors.Join(w.Flush(), f.Close())
}
