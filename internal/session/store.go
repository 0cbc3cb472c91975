package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession is returned by Load when no journal exists on disk.
var ErrNoSession = errors.New("no recorded session")

const journalFile = "session.json"

// Store persists the journal of the last watch session.
type Store interface {
	Save(s *Session) error
	Load() (*Session, error) // returns ErrNoSession if none exists
	Delete() error
	Path() string
}

// diskStore is the concrete Store that writes a single JSON file.
type diskStore struct {
	path string
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/autopilot/session.json or ~/.local/share/autopilot/session.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, journalFile))
}

// NewStoreAt returns a Store writing to path, creating its directory.
func NewStoreAt(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: path}, nil
}

// dataDir returns the autopilot XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "autopilot"), nil
}

func (d *diskStore) Path() string { return d.path }

// Save writes s atomically via a temp file in the same directory and a rename.
func (d *diskStore) Save(s *Session) (err error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session journal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "session-*.json.tmp")
	if err != nil {
		return fmt.Errorf("writing session journal: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session journal: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing session journal: %w", err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("writing session journal: %w", err)
	}
	return nil
}

// Load reads the journal. Returns ErrNoSession if the file does not exist.
func (d *diskStore) Load() (*Session, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session journal: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session journal %s: %w", d.path, err)
	}
	return &s, nil
}

// Delete removes the journal from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting session journal: %w", err)
	}
	return nil
}
