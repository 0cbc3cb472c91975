package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitRepository is a Repository backed by an on-disk go-git repository.
type GitRepository struct {
	root string
	repo *git.Repository
}

// Open opens the repository whose working tree is root.
func Open(root string) (*GitRepository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", abs, err)
	}
	return &GitRepository{root: abs, repo: repo}, nil
}

func (g *GitRepository) Root() string {
	return g.root
}

func (g *GitRepository) status() (git.Status, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	return st, nil
}

func (g *GitRepository) Statuses() (map[string]Status, error) {
	st, err := g.status()
	if err != nil {
		return nil, err
	}
	result := make(map[string]Status, len(st))
	for path, fs := range st {
		s := fromFileStatus(fs)
		if s.IsClean() {
			continue
		}
		result[path] = s
	}
	return result, nil
}

// FileStatus looks path up in a fresh status scan. go-git's Status.File
// reports unknown paths as untracked, so the map is read directly.
func (g *GitRepository) FileStatus(path string) (Status, error) {
	st, err := g.status()
	if err != nil {
		return StatusUnknown, err
	}
	fs, ok := st[filepath.ToSlash(path)]
	if !ok {
		return StatusCurrent, nil
	}
	return fromFileStatus(fs), nil
}

func (g *GitRepository) DiffStats() (DiffStat, error) {
	st, err := g.status()
	if err != nil {
		return DiffStat{}, err
	}
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return DiffStat{}, fmt.Errorf("failed to read index: %w", err)
	}

	var total DiffStat
	for path, fs := range st {
		if fs.Worktree != git.Modified && fs.Worktree != git.Deleted {
			continue
		}
		before, err := g.indexContent(idx, path)
		if err != nil {
			return DiffStat{}, fmt.Errorf("reading index blob for %s: %w", path, err)
		}
		var after string
		if fs.Worktree == git.Modified {
			data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(path)))
			if err != nil {
				return DiffStat{}, fmt.Errorf("reading %s: %w", path, err)
			}
			after = string(data)
		}
		s := CountLines(before, after)
		total.Insertions += s.Insertions
		total.Deletions += s.Deletions
	}
	return total, nil
}

// indexContent returns the staged content of path, or "" when path is not in
// the index.
func (g *GitRepository) indexContent(idx *index.Index, path string) (string, error) {
	entry, err := idx.Entry(path)
	if errors.Is(err, index.ErrEntryNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	blob, err := g.repo.BlobObject(entry.Hash)
	if err != nil {
		return "", err
	}
	r, err := blob.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *GitRepository) Stage(path string, deletion bool) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get working tree: %w", err)
	}
	path = filepath.ToSlash(path)
	if deletion {
		// Remove tolerates a file that is already gone from disk.
		if _, err := wt.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s from index: %w", path, err)
		}
		return nil
	}
	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("failed to add %s to index: %w", path, err)
	}
	return nil
}

func (g *GitRepository) Commit(message, description string, author Signature) (string, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get working tree: %w", err)
	}
	full := message
	if description != "" {
		full = message + "\n\n" + description
	}
	hash, err := wt.Commit(full, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

func (g *GitRepository) Push(ctx context.Context, remote, branch, username, password string) error {
	ref := plumbing.NewBranchReferenceName(branch)
	opts := &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
	}
	var auth transport.AuthMethod
	if username != "" || password != "" {
		auth = &http.BasicAuth{Username: username, Password: password}
	}
	opts.Auth = auth

	err := g.repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	}
	return nil
}

// CurrentBranch falls back to the symbolic HEAD target for an unborn branch
// and to DefaultBranch when HEAD is detached.
func (g *GitRepository) CurrentBranch() (string, error) {
	head, err := g.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		sym, symErr := g.repo.Storer.Reference(plumbing.HEAD)
		if symErr != nil {
			return "", fmt.Errorf("failed to read HEAD: %w", symErr)
		}
		if sym.Type() == plumbing.SymbolicReference && sym.Target().IsBranch() {
			return sym.Target().Short(), nil
		}
		return DefaultBranch, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get repository head: %w", err)
	}
	if !head.Name().IsBranch() {
		return DefaultBranch, nil
	}
	return head.Name().Short(), nil
}
