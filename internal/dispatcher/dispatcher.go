// Package dispatcher turns one classified change into a stage, commit and
// push on its repository.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/fakeyudi/autopilot/internal/classifier"
	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/message"
	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

// ErrMissingCredentials is wrapped by MissingCredentialsError.
var ErrMissingCredentials = errors.New("missing push credentials")

// MissingCredentialsError is returned when a push is needed but no login is
// available. The commit it follows stays in the local history.
type MissingCredentialsError struct {
	Repository string
	CommitID   string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("cannot push %s (commit %s kept locally): %v", e.Repository, e.CommitID, ErrMissingCredentials)
}

func (e *MissingCredentialsError) Unwrap() error {
	return ErrMissingCredentials
}

// VcsOperationError is returned when a stage, commit or push fails.
type VcsOperationError struct {
	Op   string
	Path string
	Err  error
}

func (e *VcsOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *VcsOperationError) Unwrap() error {
	return e.Err
}

// Result describes what a dispatch did.
type Result struct {
	Branch      string
	Message     string
	Description string
	CommitID    string
	Pushed      bool
}

// Dispatcher commits and pushes classified changes.
type Dispatcher struct {
	sess *session.Context
}

// New returns a Dispatcher bound to the session's config and credentials.
func New(sess *session.Context) *Dispatcher {
	return &Dispatcher{sess: sess}
}

// Templates returns the message and description templates for op.
func Templates(cfg *config.Config, op classifier.Operation) (message.Message, message.Message) {
	switch op {
	case classifier.New:
		return cfg.Message.Create, cfg.Description.Create
	case classifier.Renamed:
		return cfg.Message.Rename, cfg.Description.Rename
	case classifier.Deleted:
		return cfg.Message.Remove, cfg.Description.Remove
	default:
		return cfg.Message.Modify, cfg.Description.Modify
	}
}

// Dispatch stages the change described by rec, commits it and pushes the
// current branch. The returned Result is filled as far as the sequence got.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	repo vcs.Repository,
	rec classifier.FileChangeRecord,
	shortName, fullPath string,
) (Result, error) {
	cfg := d.sess.Config
	log := logger.WithFields(logger.Fields{
		"session": d.sess.ID,
		"repo":    repo.Root(),
		"path":    shortName,
		"op":      rec.Operation,
	})

	var res Result
	branch, err := repo.CurrentBranch()
	if err != nil {
		return res, &VcsOperationError{Op: "branch", Path: repo.Root(), Err: err}
	}
	res.Branch = branch

	vars := message.ResolveVariables(branch, shortName, fullPath, rec, cfg.StringVariables())
	msgTmpl, descTmpl := Templates(cfg, rec.Operation)
	res.Message = msgTmpl.Render(vars)
	res.Description = descTmpl.Render(vars)

	if err := d.stage(repo, rec, shortName); err != nil {
		return res, err
	}

	author := vcs.Signature{Name: d.sess.Credentials.Username, Email: d.sess.Credentials.Email}
	id, err := repo.Commit(res.Message, res.Description, author)
	if err != nil {
		return res, &VcsOperationError{Op: "commit", Path: shortName, Err: err}
	}
	res.CommitID = id
	log.WithField("commit", id).Infof("Committed: %s", res.Message)

	creds := d.sess.Credentials
	if !creds.CanPush() {
		return res, &MissingCredentialsError{Repository: repo.Root(), CommitID: id}
	}

	pushCtx, cancel := context.WithTimeout(ctx, cfg.PushTimeout())
	defer cancel()
	remote := cfg.Remote
	if remote == "" {
		remote = config.DefaultRemote
	}
	if err := repo.Push(pushCtx, remote, branch, creds.LoginUsername, creds.Password); err != nil {
		return res, &VcsOperationError{Op: "push", Path: remote + "/" + branch, Err: err}
	}
	res.Pushed = true
	log.Infof("Pushed %s to %s", branch, remote)
	return res, nil
}

func (d *Dispatcher) stage(repo vcs.Repository, rec classifier.FileChangeRecord, shortName string) error {
	switch rec.Operation {
	case classifier.Renamed:
		if rec.OldPath != "" {
			if err := repo.Stage(rec.OldPath, true); err != nil {
				return &VcsOperationError{Op: "stage", Path: rec.OldPath, Err: err}
			}
		}
		if err := repo.Stage(shortName, false); err != nil {
			return &VcsOperationError{Op: "stage", Path: shortName, Err: err}
		}
	case classifier.Deleted:
		if err := repo.Stage(shortName, true); err != nil {
			return &VcsOperationError{Op: "stage", Path: shortName, Err: err}
		}
	default:
		if err := repo.Stage(shortName, false); err != nil {
			return &VcsOperationError{Op: "stage", Path: shortName, Err: err}
		}
	}
	return nil
}
