package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

// Journal appends entries to a session and persists it after each one.
type Journal struct {
	mu      sync.Mutex
	store   Store
	session *Session
}

// Start opens a new session journal for repos and saves it right away.
func Start(store Store, id string, repos []string) (*Journal, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		ID:        id,
		StartTime: time.Now().UTC(),
		Repos:     append([]string(nil), repos...),
		Entries:   []Entry{},
	}
	if err := store.Save(s); err != nil {
		return nil, err
	}
	logger.WithField("session", id).Debugf("Session journal at %s", store.Path())
	return &Journal{store: store, session: s}, nil
}

// Record appends e, filling its ID and timestamp when empty, and saves.
func (j *Journal) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.session.Entries = append(j.session.Entries, e)
	return j.store.Save(j.session)
}

// Stop marks the session as finished and saves it.
func (j *Journal) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now().UTC()
	j.session.StopTime = &now
	return j.store.Save(j.session)
}

// Snapshot returns a copy of the session as recorded so far.
func (j *Journal) Snapshot() Session {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := *j.session
	s.Entries = append([]Entry(nil), j.session.Entries...)
	return s
}
