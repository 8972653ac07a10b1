// Package state persists pipeline progress as a flat json file of string
// keys so a restarted process resumes where the previous one stopped
package state

import (
	"encoding/json"
	stderrs "errors"
	"io/fs"
	"os"
	"sync"

	perr "github.com/SamMeown/ETL/internal/platform/errors"
)

// Store is a file backed string map
//
// SetAll rewrites the whole file through a temp file, fsync, and rename so a
// concurrent reader observes either the previous snapshot or the next one,
// never a torn write
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// Open loads the snapshot at path
//
// a missing file is an empty store (cold start); an unreadable or malformed
// file is an error the caller should treat as fatal
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]string{}}
	b, err := os.ReadFile(path)
	if stderrs.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.KindStorage, "read state file %s", path)
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		return nil, perr.Wrapf(err, perr.KindParse, "parse state file %s", path)
	}
	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string { return s.path }

// Get returns the value for key and whether it is present
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// SetAll merges kv into the snapshot and persists the whole snapshot
// atomically; on write failure the in-memory state is left unchanged
func (s *Store) SetAll(kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]string, len(s.data)+len(kv))
	for k, v := range s.data {
		merged[k] = v
	}
	for k, v := range kv {
		merged[k] = v
	}
	if err := writeSnapshot(s.path, merged); err != nil {
		return err
	}
	s.data = merged
	return nil
}

func writeSnapshot(path string, data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.KindParse, "encode state")
	}

	tmp := path + ".part"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return perr.Wrapf(err, perr.KindStorage, "create %s", tmp)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.KindStorage, "write %s", tmp)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.KindStorage, "fsync %s", tmp)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.KindStorage, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.KindStorage, "rename %s to %s", tmp, path)
	}
	return nil
}
