package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/credentials"
)

// Session represents an active or completed watch session.
type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	StopTime  *time.Time `json:"stop_time,omitempty"`
	Repos     []string   `json:"repos"`
	Entries   []Entry    `json:"entries"`
}

// Entry records one handled change, acted on or failed.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Repository string    `json:"repository"`
	Path       string    `json:"path"`
	OldPath    string    `json:"old_path,omitempty"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	Insertions int       `json:"insertions"`
	Deletions  int       `json:"deletions"`
	CommitID   string    `json:"commit_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	Pushed     bool      `json:"pushed"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the entry ended in an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Context carries the read-only state of one watch session. It is passed
// explicitly to the components that need it.
type Context struct {
	ID          string
	Config      *config.Config
	Credentials credentials.Credentials
}

// NewContext returns a Context with a fresh session ID.
func NewContext(cfg *config.Config, creds credentials.Credentials) *Context {
	return &Context{
		ID:          uuid.NewString(),
		Config:      cfg,
		Credentials: creds,
	}
}
