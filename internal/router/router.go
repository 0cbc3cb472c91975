// Package router feeds filesystem events through a single bounded queue,
// drops the ones that do not concern a tracked repository, and hands each
// remaining change to the dispatcher.
package router

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/fakeyudi/autopilot/internal/classifier"
	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/dispatcher"
	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

// Kind is the kind of a filesystem event.
type Kind int

const (
	KindOther Kind = iota
	KindCreate
	KindModify
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindModify:
		return "modify"
	case KindRemove:
		return "remove"
	default:
		return "other"
	}
}

// Event is one filesystem notification.
type Event struct {
	Paths []string
	Kind  Kind
}

// Opener opens the repository rooted at a configured path.
type Opener func(root string) (vcs.Repository, error)

// ClassifyFunc scans a repository for pending changes.
type ClassifyFunc func(repo vcs.Repository) (classifier.ChangeSet, error)

// Dispatcher acts on one classified change.
type Dispatcher interface {
	Dispatch(ctx context.Context, repo vcs.Repository, rec classifier.FileChangeRecord, shortName, fullPath string) (dispatcher.Result, error)
}

// Recorder keeps a journal of handled changes.
type Recorder interface {
	Record(e session.Entry) error
}

// Option customizes a Router.
type Option func(*Router)

// WithOpener replaces the go-git repository opener.
func WithOpener(open Opener) Option {
	return func(r *Router) { r.open = open }
}

// WithClassifier replaces classifier.Classify.
func WithClassifier(classify ClassifyFunc) Option {
	return func(r *Router) { r.classify = classify }
}

// WithRecorder journals every dispatched or failed change.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) { r.recorder = rec }
}

// Router is the single consumer of the event queue.
type Router struct {
	repos    []string
	ignored  []string
	queue    chan Event
	open     Opener
	classify ClassifyFunc
	dispatch Dispatcher
	recorder Recorder
	log      *logger.Entry

	mu      sync.Mutex
	handles map[string]vcs.Repository

	closeOnce sync.Once
}

// New returns a Router for the repositories and ignored directories of the
// session config.
func New(sess *session.Context, d Dispatcher, opts ...Option) *Router {
	cfg := sess.Config
	size := cfg.QueueSize
	if size <= 0 {
		size = config.DefaultQueueSize
	}
	r := &Router{
		repos:    append([]string(nil), cfg.Repos...),
		ignored:  append([]string(nil), cfg.IgnoredDirs...),
		queue:    make(chan Event, size),
		open:     func(root string) (vcs.Repository, error) { return vcs.Open(root) },
		classify: classifier.Classify,
		dispatch: d,
		log:      logger.WithField("session", sess.ID),
		handles:  make(map[string]vcs.Repository),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enqueue adds ev to the queue. When the queue is full it logs a warning and
// waits for room or for ctx to end. It must not be called after Close.
func (r *Router) Enqueue(ctx context.Context, ev Event) error {
	select {
	case r.queue <- ev:
		return nil
	default:
	}

	r.log.Warnf("Event queue full (%d pending), waiting", cap(r.queue))
	select {
	case r.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the queue. Run drains what is left and returns.
func (r *Router) Close() {
	r.closeOnce.Do(func() { close(r.queue) })
}

// Run handles queued events in order until ctx ends or the queue is closed.
// A failing event is logged and the loop moves on.
func (r *Router) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-r.queue:
			if !ok {
				return nil
			}
			if err := r.Handle(ctx, ev); err != nil {
				r.log.WithField("paths", ev.Paths).Errorf("Event failed: %v", err)
			}
		}
	}
}

// Handle routes one event. Discarded events return nil.
func (r *Router) Handle(ctx context.Context, ev Event) error {
	log := r.log.WithFields(logger.Fields{"kind": ev.Kind, "paths": ev.Paths})

	switch ev.Kind {
	case KindCreate, KindModify, KindRemove:
	default:
		log.Trace("Ignoring event kind")
		return nil
	}
	if len(ev.Paths) == 0 {
		return nil
	}
	if r.isIgnored(ev.Paths) {
		log.Trace("Ignoring event under an ignored directory")
		return nil
	}

	path := ev.Paths[0]
	root, ok := MatchRepository(path, r.repos)
	if !ok {
		log.Debug("No matching repository")
		return nil
	}

	repo, err := r.repository(root)
	if err != nil {
		r.journal(session.Entry{Repository: root, Path: path, Error: err.Error()})
		return err
	}
	log = log.WithField("repo", repo.Root())

	cs, err := r.classify(repo)
	if err != nil {
		r.journal(session.Entry{Repository: repo.Root(), Path: path, Error: err.Error()})
		return err
	}
	if len(cs) == 0 {
		log.Debug("No changes to act on")
		return nil
	}

	shortName := ShortName(repo.Root(), path)
	rec, found := cs.Record(shortName)
	if !found {
		var sole string
		if sole, rec, found = cs.Sole(); found {
			log.Debugf("Using sole change %s for %s", sole, shortName)
			shortName = sole
		}
	}
	if !found {
		log.Debugf("No change recorded for %s among %d", shortName, len(cs))
		return nil
	}
	fullPath := filepath.Join(repo.Root(), filepath.FromSlash(shortName))

	res, err := r.dispatch.Dispatch(ctx, repo, rec, shortName, fullPath)
	entry := session.Entry{
		Repository: repo.Root(),
		Path:       shortName,
		OldPath:    rec.OldPath,
		Operation:  rec.Operation.String(),
		Status:     rec.Status.String(),
		Insertions: rec.LinesAdded,
		Deletions:  rec.LinesDeleted,
		CommitID:   res.CommitID,
		Message:    res.Message,
		Pushed:     res.Pushed,
	}
	if err != nil {
		entry.Error = err.Error()
		r.journal(entry)
		return fmt.Errorf("dispatching %s: %w", shortName, err)
	}
	r.journal(entry)
	return nil
}

func (r *Router) journal(e session.Entry) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(e); err != nil {
		r.log.Warnf("Failed to record journal entry: %v", err)
	}
}

// repository returns the cached handle for root, opening it on first use.
func (r *Router) repository(root string) (vcs.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if repo, ok := r.handles[root]; ok {
		return repo, nil
	}
	repo, err := r.open(root)
	if err != nil {
		return nil, &classifier.RepositoryAccessError{Root: root, Err: err}
	}
	r.handles[root] = repo
	return repo, nil
}

func (r *Router) isIgnored(paths []string) bool {
	for _, p := range paths {
		if IsIgnored(p, r.ignored) {
			return true
		}
	}
	return false
}

// IsIgnored reports whether path contains "/<name>" for any ignored name.
// The match is on the raw string, so ".git" also covers ".github".
func IsIgnored(path string, ignored []string) bool {
	p := filepath.ToSlash(path)
	for _, name := range ignored {
		if name != "" && strings.Contains(p, "/"+name) {
			return true
		}
	}
	return false
}

// MatchRepository returns the first repository whose path is a substring of
// path.
func MatchRepository(path string, repos []string) (string, bool) {
	for _, repo := range repos {
		if repo != "" && strings.Contains(path, repo) {
			return repo, true
		}
	}
	return "", false
}

// ShortName returns path relative to root with forward slashes. A path that
// cannot be made relative is returned as is.
func ShortName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
