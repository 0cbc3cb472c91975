package dispatcher_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/autopilot/internal/classifier"
	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/credentials"
	"github.com/fakeyudi/autopilot/internal/dispatcher"
	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/testdoubles"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

var fullCredentials = credentials.Credentials{
	Username:      "Octo Cat",
	Email:         "octo@example.com",
	LoginUsername: "octo",
	Password:      "s3cret",
}

func newDispatcher(creds credentials.Credentials) *dispatcher.Dispatcher {
	cfg := config.Defaults()
	return dispatcher.New(session.NewContext(&cfg, creds))
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("should stage, commit and push a new file with the create templates", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{RootPath: "/work/repo", Branch: "main"}
		rec := classifier.NewRecord(5, 0, vcs.StatusWTNew)

		// when
		res, err := newDispatcher(fullCredentials).Dispatch(context.Background(), repo, rec, "src/a.txt", "/work/repo/src/a.txt")

		// then
		require.NoError(t, err)
		assert.Equal(t, []testdoubles.StageCall{{Path: "src/a.txt"}}, repo.Staged)
		require.Len(t, repo.Commits, 1)
		assert.Equal(t, "New File Created: src/a.txt", repo.Commits[0].Message)
		assert.Contains(t, repo.Commits[0].Description, "No. of lines inserted: 5")
		assert.Equal(t, vcs.Signature{Name: "Octo Cat", Email: "octo@example.com"}, repo.Commits[0].Author)
		assert.Equal(t, []testdoubles.PushCall{{Remote: "origin", Branch: "main", Username: "octo", Password: "s3cret"}}, repo.Pushes)
		assert.True(t, res.Pushed)
		assert.Equal(t, "main", res.Branch)
		assert.NotEmpty(t, res.CommitID)
	})

	t.Run("should stage the old path as a deletion before the new path on rename", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{}
		rec := classifier.NewRecord(3, 1, vcs.StatusWTRenamed)
		rec.OldPath = "old.txt"

		// when
		res, err := newDispatcher(fullCredentials).Dispatch(context.Background(), repo, rec, "new.txt", "/r/new.txt")

		// then
		require.NoError(t, err)
		assert.Equal(t, []testdoubles.StageCall{
			{Path: "old.txt", Deletion: true},
			{Path: "new.txt"},
		}, repo.Staged)
		assert.Equal(t, "File Renamed: old.txt -> new.txt", res.Message)
	})

	t.Run("should stage a deletion with the remove templates", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{}
		rec := classifier.NewRecord(0, 2, vcs.StatusWTDeleted)

		// when
		res, err := newDispatcher(fullCredentials).Dispatch(context.Background(), repo, rec, "gone.txt", "/r/gone.txt")

		// then
		require.NoError(t, err)
		assert.Equal(t, []testdoubles.StageCall{{Path: "gone.txt", Deletion: true}}, repo.Staged)
		assert.Equal(t, "File Removed: gone.txt", res.Message)
	})

	t.Run("should use the modify templates for any other operation", func(t *testing.T) {
		for _, status := range []vcs.Status{vcs.StatusWTModified, vcs.StatusWTTypeChange, vcs.StatusConflicted} {
			repo := &testdoubles.SpyRepository{}
			res, err := newDispatcher(fullCredentials).Dispatch(
				context.Background(), repo, classifier.NewRecord(1, 1, status), "a.txt", "/r/a.txt")
			require.NoError(t, err)
			assert.Equal(t, "File Modified: a.txt", res.Message, status.String())
		}
	})

	t.Run("should commit but fail the push without login credentials", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{RootPath: "/work/repo"}
		identityOnly := credentials.Credentials{Username: "Octo Cat", Email: "octo@example.com"}

		// when
		res, err := newDispatcher(identityOnly).Dispatch(
			context.Background(), repo, classifier.NewRecord(1, 0, vcs.StatusWTNew), "a.txt", "/work/repo/a.txt")

		// then
		require.ErrorIs(t, err, dispatcher.ErrMissingCredentials)
		var credErr *dispatcher.MissingCredentialsError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, "/work/repo", credErr.Repository)
		assert.Len(t, repo.Commits, 1)
		assert.Empty(t, repo.Pushes)
		assert.False(t, res.Pushed)
		assert.NotEmpty(t, res.CommitID)
	})

	t.Run("should wrap a stage failure in a vcs operation error", func(t *testing.T) {
		// given
		cause := errors.New("index locked")
		repo := &testdoubles.SpyRepository{StageErr: cause}

		// when
		_, err := newDispatcher(fullCredentials).Dispatch(
			context.Background(), repo, classifier.NewRecord(1, 0, vcs.StatusWTNew), "a.txt", "/r/a.txt")

		// then
		var opErr *dispatcher.VcsOperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "stage", opErr.Op)
		assert.Equal(t, "a.txt", opErr.Path)
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, repo.Commits)
	})

	t.Run("should wrap a push failure in a vcs operation error", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{PushErr: errors.New("rejected")}

		// when
		res, err := newDispatcher(fullCredentials).Dispatch(
			context.Background(), repo, classifier.NewRecord(1, 0, vcs.StatusWTModified), "a.txt", "/r/a.txt")

		// then
		var opErr *dispatcher.VcsOperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "push", opErr.Op)
		assert.Equal(t, "origin/master", opErr.Path)
		assert.NotEmpty(t, res.CommitID)
	})

	t.Run("should fail before staging when the branch cannot be read", func(t *testing.T) {
		// given
		repo := &testdoubles.SpyRepository{BranchErr: errors.New("corrupt HEAD")}

		// when
		_, err := newDispatcher(fullCredentials).Dispatch(
			context.Background(), repo, classifier.NewRecord(1, 0, vcs.StatusWTModified), "a.txt", "/r/a.txt")

		// then
		var opErr *dispatcher.VcsOperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "branch", opErr.Op)
		assert.Empty(t, repo.Staged)
	})
}

func TestTemplates(t *testing.T) {
	cfg := config.Defaults()
	msg, desc := dispatcher.Templates(&cfg, classifier.New)
	assert.Equal(t, cfg.Message.Create, msg)
	assert.Equal(t, cfg.Description.Create, desc)

	msg, _ = dispatcher.Templates(&cfg, classifier.Unknown)
	assert.Equal(t, cfg.Message.Modify, msg)
}
