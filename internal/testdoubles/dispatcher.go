package testdoubles

import (
	"context"
	"sync"

	"github.com/fakeyudi/autopilot/internal/classifier"
	"github.com/fakeyudi/autopilot/internal/dispatcher"
	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

// ---------------------------------------------------------------------------
// SpyDispatcher
// ---------------------------------------------------------------------------

// SpyDispatcher records every Dispatch call and returns the configured result.
type SpyDispatcher struct {
	mu sync.Mutex

	Result dispatcher.Result
	Err    error
	// spy: calls received
	Calls []DispatchCall
}

// DispatchCall records one Dispatch invocation.
type DispatchCall struct {
	Root      string
	Record    classifier.FileChangeRecord
	ShortName string
	FullPath  string
}

func (d *SpyDispatcher) Dispatch(
	_ context.Context,
	repo vcs.Repository,
	rec classifier.FileChangeRecord,
	shortName, fullPath string,
) (dispatcher.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, DispatchCall{Root: repo.Root(), Record: rec, ShortName: shortName, FullPath: fullPath})
	return d.Result, d.Err
}

// CallCount returns the number of Dispatch calls so far.
func (d *SpyDispatcher) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// ---------------------------------------------------------------------------
// SpyRecorder
// ---------------------------------------------------------------------------

// SpyRecorder collects journal entries in memory.
type SpyRecorder struct {
	mu sync.Mutex

	Err     error
	Entries []session.Entry
}

func (r *SpyRecorder) Record(e session.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, e)
	return r.Err
}
