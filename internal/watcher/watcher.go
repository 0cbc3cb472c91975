// Package watcher turns recursive fsnotify notifications on the tracked
// repositories into router events.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
	logger "github.com/sirupsen/logrus"

	"github.com/fakeyudi/autopilot/internal/router"
)

// Sink receives every translated event.
type Sink func(ctx context.Context, ev router.Event) error

// KindOf maps an fsnotify operation to an event kind. A rename reports the
// old name; the new name arrives as a separate Create.
func KindOf(op fsnotify.Op) router.Kind {
	switch {
	case op.Has(fsnotify.Create):
		return router.KindCreate
	case op.Has(fsnotify.Write):
		return router.KindModify
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return router.KindRemove
	default:
		return router.KindOther
	}
}

// Watch adds a recursive watch on every root and forwards events to sink
// until ctx is cancelled. Directories named in ignored are not descended
// into, and directories created later are watched as they appear.
func Watch(ctx context.Context, roots, ignored []string, sink Sink) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, root := range roots {
		if err := addTree(w, root, ignored); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		logger.WithField("repo", root).Info("Watching repository")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			kind := KindOf(event.Op)
			logger.WithField("path", event.Name).Tracef("fsnotify %s -> %s", event.Op, kind)

			if kind == router.KindCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !slices.Contains(ignored, info.Name()) {
					if err := addTree(w, event.Name, ignored); err != nil {
						logger.WithField("path", event.Name).Warnf("Cannot watch new directory: %v", err)
					}
				}
			}

			if err := sink(ctx, router.Event{Paths: []string{event.Name}, Kind: kind}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("Watcher error: %v", err)
		}
	}
}

// addTree watches root and every directory below it except ignored ones.
func addTree(w *fsnotify.Watcher, root string, ignored []string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(ignored, d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
