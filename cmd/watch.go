package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autopilot/internal/router"
	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/tui"
	"github.com/fakeyudi/autopilot/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the configured repositories and commit every change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := GetConfig()
		if len(c.Repos) == 0 {
			return errors.New("no repositories configured (add one with: autopilot repos add <path>)")
		}
		repos, err := absRepos(c.Repos)
		if err != nil {
			return err
		}
		c.Repos = repos

		store, err := session.NewStore()
		if err != nil {
			return err
		}
		container, err := newContainer(&c, store)
		if err != nil {
			return err
		}
		return container.Invoke(func(sess *session.Context, r *router.Router, j *session.Journal) error {
			return runWatch(ctx, cmd, sess, r, j)
		})
	},
}

// runWatch feeds watcher events into r until ctx ends, then closes the journal.
func runWatch(ctx context.Context, cmd *cobra.Command, sess *session.Context, r *router.Router, j *session.Journal) error {
	cmd.Printf("Watching %d repositories (session %s). Press Ctrl+C to stop.\n", len(sess.Config.Repos), sess.ID)

	routerDone := make(chan error, 1)
	go func() {
		routerDone <- r.Run(ctx)
	}()

	watchErr := watcher.Watch(ctx, sess.Config.Repos, sess.Config.IgnoredDirs, r.Enqueue)
	r.Close()
	routerErr := <-routerDone
	if ctx.Err() != nil && errors.Is(routerErr, ctx.Err()) {
		routerErr = nil
	}

	if err := j.Stop(); err != nil {
		logger.WithField("session", sess.ID).Errorf("Cannot close session journal: %v", err)
	}
	snapshot := j.Snapshot()
	counts := tui.Count(&snapshot)
	cmd.Printf("Session stopped: %d changes (%d pushed, %d local, %d failed).\n",
		len(snapshot.Entries), counts.Pushed, counts.Local, counts.Failed)

	if watchErr != nil {
		return fmt.Errorf("watching: %w", watchErr)
	}
	return routerErr
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
