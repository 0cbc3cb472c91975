// Package classifier turns a repository's status snapshot into a ChangeSet
// and folds a deleted/new pair with matching statistics into a rename.
package classifier

import (
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/fakeyudi/autopilot/internal/vcs"
)

// RepositoryAccessError is returned when the status of a repository cannot
// be enumerated.
type RepositoryAccessError struct {
	Root string
	Err  error
}

func (e *RepositoryAccessError) Error() string {
	return "cannot read repository " + e.Root + ": " + e.Err.Error()
}

func (e *RepositoryAccessError) Unwrap() error {
	return e.Err
}

// Classify scans repo and returns every pending change.
//
// The diff statistics cover the whole working tree, so every record of a pass
// carries the same counts. They are exact only when a single file is dirty.
// A failing diff skips the entries of this pass; the next event retries.
func Classify(repo vcs.Repository) (ChangeSet, error) {
	statuses, err := repo.Statuses()
	if err != nil {
		return nil, &RepositoryAccessError{Root: repo.Root(), Err: err}
	}

	cs := make(ChangeSet, len(statuses))
	if len(statuses) == 0 {
		return cs, nil
	}

	stat, err := repo.DiffStats()
	if err != nil {
		logger.WithFields(logger.Fields{"repo": repo.Root(), "entries": len(statuses)}).
			Debugf("Skipping entries, diff failed: %v", err)
		return cs, nil
	}

	for path, status := range statuses {
		if status.IsClean() {
			continue
		}
		logger.WithField("repo", repo.Root()).Tracef("Processing path %s: %s", path, status)
		cs[path] = append(cs[path], NewRecord(stat.Insertions, stat.Deletions, status))
	}

	cs = CollapseRenames(repo, cs)
	logger.WithField("repo", repo.Root()).Debugf("Repository changes found: %d", len(cs))
	return cs, nil
}

// CollapseRenames replaces a two-entry set whose paths read as deleted and new
// in the working tree, with equal statistics, by one Renamed entry keyed by
// the new path. Any other set is returned unchanged.
//
// Two unrelated changes that happen to share statistics are taken for a
// rename; nothing at this layer can tell them apart.
func CollapseRenames(repo vcs.Repository, cs ChangeSet) ChangeSet {
	if len(cs) != 2 {
		return cs
	}

	paths := make([]string, 0, 2)
	for p := range cs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	first, ok1 := cs.Record(paths[0])
	second, ok2 := cs.Record(paths[1])
	if !ok1 || !ok2 || !first.sameStats(second) {
		return cs
	}

	s0, err0 := repo.FileStatus(paths[0])
	s1, err1 := repo.FileStatus(paths[1])
	if err0 != nil || err1 != nil {
		logger.WithField("repo", repo.Root()).Debugf("Rename check skipped: %v %v", err0, err1)
		return cs
	}

	var oldPath, newPath string
	var stats FileChangeRecord
	switch {
	case s0 == vcs.StatusWTDeleted && s1 == vcs.StatusWTNew:
		oldPath, newPath, stats = paths[0], paths[1], first
	case s1 == vcs.StatusWTDeleted && s0 == vcs.StatusWTNew:
		oldPath, newPath, stats = paths[1], paths[0], second
	default:
		return cs
	}

	logger.WithField("repo", repo.Root()).Debugf("Changes are a rename: %s -> %s", oldPath, newPath)
	renamed := NewRecord(stats.LinesAdded, stats.LinesDeleted, vcs.StatusWTRenamed)
	renamed.OldPath = oldPath
	return ChangeSet{newPath: {renamed}}
}
