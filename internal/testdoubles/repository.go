// Package testdoubles provides hand-written spies and stubs for the
// interfaces of the watch pipeline. No mock frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/fakeyudi/autopilot/internal/vcs"
)

// ---------------------------------------------------------------------------
// SpyRepository
// ---------------------------------------------------------------------------

// SpyRepository implements vcs.Repository as a configurable spy.
// Configure the response fields for the methods a test exercises, then
// inspect the call-tracking fields.
type SpyRepository struct {
	mu sync.Mutex

	// --- Root ---
	RootPath string

	// --- Statuses ---
	StatusMap   map[string]vcs.Status
	StatusesErr error

	// --- FileStatus ---
	// FileStatuses overrides StatusMap for single-path lookups when set.
	FileStatuses  map[string]vcs.Status
	FileStatusErr error

	// --- DiffStats ---
	Diff     vcs.DiffStat
	DiffErr  error
	DiffCall int

	// --- Stage ---
	StageErr error
	// spy: staged paths in call order
	Staged []StageCall

	// --- Commit ---
	CommitID  string
	CommitErr error
	// spy: commits received
	Commits []CommitCall

	// --- Push ---
	PushErr error
	// spy: pushes received
	Pushes []PushCall

	// --- CurrentBranch ---
	Branch    string
	BranchErr error
}

// StageCall records one Stage invocation.
type StageCall struct {
	Path     string
	Deletion bool
}

// CommitCall records one Commit invocation.
type CommitCall struct {
	Message     string
	Description string
	Author      vcs.Signature
}

// PushCall records one Push invocation.
type PushCall struct {
	Remote   string
	Branch   string
	Username string
	Password string
}

var _ vcs.Repository = (*SpyRepository)(nil)

func (r *SpyRepository) Root() string { return r.RootPath }

func (r *SpyRepository) Statuses() (map[string]vcs.Status, error) {
	if r.StatusesErr != nil {
		return nil, r.StatusesErr
	}
	out := make(map[string]vcs.Status, len(r.StatusMap))
	for p, s := range r.StatusMap {
		if !s.IsClean() {
			out[p] = s
		}
	}
	return out, nil
}

func (r *SpyRepository) FileStatus(path string) (vcs.Status, error) {
	if r.FileStatusErr != nil {
		return vcs.StatusUnknown, r.FileStatusErr
	}
	if s, ok := r.FileStatuses[path]; ok {
		return s, nil
	}
	if s, ok := r.StatusMap[path]; ok {
		return s, nil
	}
	return vcs.StatusCurrent, nil
}

func (r *SpyRepository) DiffStats() (vcs.DiffStat, error) {
	r.mu.Lock()
	r.DiffCall++
	r.mu.Unlock()
	return r.Diff, r.DiffErr
}

func (r *SpyRepository) Stage(path string, deletion bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Staged = append(r.Staged, StageCall{Path: path, Deletion: deletion})
	return r.StageErr
}

func (r *SpyRepository) Commit(message, description string, author vcs.Signature) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commits = append(r.Commits, CommitCall{Message: message, Description: description, Author: author})
	if r.CommitErr != nil {
		return "", r.CommitErr
	}
	if r.CommitID != "" {
		return r.CommitID, nil
	}
	return fmt.Sprintf("%040d", len(r.Commits)), nil
}

func (r *SpyRepository) Push(_ context.Context, remote, branch, username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pushes = append(r.Pushes, PushCall{Remote: remote, Branch: branch, Username: username, Password: password})
	return r.PushErr
}

func (r *SpyRepository) CurrentBranch() (string, error) {
	if r.BranchErr != nil {
		return "", r.BranchErr
	}
	if r.Branch == "" {
		return vcs.DefaultBranch, nil
	}
	return r.Branch, nil
}
