// Package store persists the per-feed sets of already-notified entry ids.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"feedbot/pkg/logx"
)

// Store maps feed URL -> ordered list of delivered entry ids. Membership is
// what matters; insertion order is kept only to make the persisted file
// stable. Ids are never removed, the store only grows.
type Store struct {
	path string
	log  logx.Logger

	seen  map[string][]string
	index map[string]map[string]struct{}
}

// Load reads the persisted store. A missing or malformed file yields an
// empty store; state loss only risks re-notification, never a crash.
func Load(path string, log logx.Logger) *Store {
	s := &Store{
		path:  path,
		log:   log,
		seen:  map[string][]string{},
		index: map[string]map[string]struct{}{},
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("history read failed; starting empty", logx.Err(err), logx.String("path", path))
		}
		return s
	}
	var seen map[string][]string
	if err := json.Unmarshal(b, &seen); err != nil {
		log.Warn("history malformed; starting empty", logx.Err(err), logx.String("path", path))
		return s
	}
	// A file holding the literal "null" unmarshals into a nil map without
	// an error; keep the empty maps so MarkSeen can write.
	if seen == nil {
		return s
	}

	s.seen = seen
	for feed, ids := range seen {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		s.index[feed] = set
	}
	return s
}

func (s *Store) HasSeen(feedURL, id string) bool {
	_, ok := s.index[feedURL][id]
	return ok
}

// MarkSeen records id for feedURL. Idempotent.
func (s *Store) MarkSeen(feedURL, id string) {
	set, ok := s.index[feedURL]
	if !ok {
		set = map[string]struct{}{}
		s.index[feedURL] = set
	}
	if _, dup := set[id]; dup {
		return
	}
	set[id] = struct{}{}
	s.seen[feedURL] = append(s.seen[feedURL], id)
}

// Count returns the number of recorded ids for feedURL.
func (s *Store) Count(feedURL string) int {
	return len(s.seen[feedURL])
}

// Save rewrites the whole store: write a temp file in the same directory,
// then rename over the target so a well-formed file always exists after a
// successful call.
func (s *Store) Save() error {
	b, err := json.Marshal(s.seen)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create history temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close history temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
