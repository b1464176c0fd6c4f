package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store persists monitoring entries to a single JSON file. Writes go through
// a read-modify-write cycle under a mutex, trimming to the configured
// capacity so the file always holds the most recent entries.
type Store struct {
	path string
	max  int
	mu   sync.Mutex
}

// NewStore creates a file-backed entry store. The parent directory is
// created on first append if it does not exist.
func NewStore(path string, max int) *Store {
	return &Store{
		path: path,
		max:  max,
	}
}

// Append adds an entry to the store, evicting the oldest entries once the
// capacity is exceeded.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// A corrupt store file should not stop monitoring. Start over and
		// keep the new entry.
		log.Warn().Err(err).Str("path", s.path).Msg("Monitoring store unreadable, resetting")
		entries = nil
	}

	entries = append(entries, entry)
	if len(entries) > s.max {
		entries = entries[len(entries)-s.max:]
	}

	return s.save(entries)
}

// All returns every persisted entry, oldest first.
func (s *Store) All() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Clear erases the persisted entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(nil)
}

// load reads the store file. A missing file yields an empty slice.
func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read monitoring store: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse monitoring store: %w", err)
	}

	return entries, nil
}

// save writes the entries back to the store file. Entries may carry user
// identifiers, so the file is not world readable.
func (s *Store) save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode monitoring store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create monitoring store directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write monitoring store: %w", err)
	}

	return nil
}
