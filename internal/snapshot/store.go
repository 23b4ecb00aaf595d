package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pumon/pkg/logx"
)

// Store reads and writes the snapshot file. The whole file is read at start
// and rewritten at end; there is no partial update and no concurrent-writer
// protection (single-process, single-invocation assumption).
type Store struct {
	path string
	log  logx.Logger
}

func NewStore(path string, log logx.Logger) *Store {
	return &Store{path: path, log: log.With(logx.String("component", "snapshot"))}
}

// Load returns the persisted state, or an empty state when the file is
// missing or unreadable. It never fails the run.
func (s *Store) Load() *State {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("snapshot unreadable, starting empty", logx.Err(err))
		}
		return NewState()
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		s.log.Warn("snapshot corrupt, starting empty", logx.Err(err))
		return NewState()
	}
	st.init()
	return &st
}

// Save writes the whole state atomically (temp file + rename). It must run
// before any notification attempt so a failed delivery never causes
// reprocessing of already-reflected state.
func (s *Store) Save(st *State) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp snapshot: %w", err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", werr)
	}
	if serr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("sync snapshot: %w", serr)
	}
	if cerr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", cerr)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
