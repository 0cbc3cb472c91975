// Package vcs holds the version-control primitives the pipeline drives:
// status enumeration, working tree diff statistics, staging, committing and
// pushing. GitRepository implements them on top of go-git.
package vcs

import "context"

// DefaultBranch is reported by CurrentBranch when HEAD does not name a branch.
const DefaultBranch = "master"

// Repository is one tracked working directory.
type Repository interface {
	// Root returns the absolute path of the working tree.
	Root() string
	// Statuses returns every path whose status is neither clean nor ignored,
	// untracked files included. Keys use forward slashes, relative to Root.
	Statuses() (map[string]Status, error)
	// FileStatus returns the live status of a single path.
	FileStatus(path string) (Status, error)
	// DiffStats returns the zero-context index-to-working-tree line counts of
	// the whole working tree. Untracked files do not contribute.
	DiffStats() (DiffStat, error)
	// Stage adds path to the index, or removes it when deletion is true.
	Stage(path string, deletion bool) error
	// Commit records the index. description becomes the commit body.
	Commit(message, description string, author Signature) (string, error)
	// Push sends branch to the named remote.
	Push(ctx context.Context, remote, branch, username, password string) error
	// CurrentBranch returns the short name of the checked out branch.
	CurrentBranch() (string, error)
}

// DiffStat counts changed lines.
type DiffStat struct {
	Insertions int
	Deletions  int
}

// Signature identifies a commit author.
type Signature struct {
	Name  string
	Email string
}
