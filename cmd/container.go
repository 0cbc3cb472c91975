package cmd

import (
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/credentials"
	"github.com/fakeyudi/autopilot/internal/dispatcher"
	"github.com/fakeyudi/autopilot/internal/router"
	"github.com/fakeyudi/autopilot/internal/session"
)

// newContainer registers the providers of a watch session for c.
func newContainer(c *config.Config, store session.Store) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() *config.Config { return c },
		func() session.Store { return store },
		newResolver,
		resolveCredentials,
		session.NewContext,
		startJournal,
		dispatcher.New,
		newRouter,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}
	return container, nil
}

func newResolver(c *config.Config) (*credentials.Resolver, error) {
	return credentials.NewResolver(c.CredentialHost)
}

// resolveCredentials fills the configured credentials from the git stores.
// A missing identity is fatal; missing push credentials only warn since
// commits can still be made locally.
func resolveCredentials(c *config.Config, r *credentials.Resolver) (credentials.Credentials, error) {
	creds, err := r.Resolve(c.Credentials)
	if !creds.HasIdentity() {
		if err == nil {
			err = errors.New("name or email not set")
		}
		return creds, fmt.Errorf("no git identity (set user.name and user.email in %s or git_credentials in the config): %w", r.GitConfigPath, err)
	}
	if err != nil {
		logger.Debugf("Credential lookup: %v", err)
	}
	if !creds.CanPush() {
		logger.Warnf("No push credentials for %s in %s; changes will be committed but not pushed", r.Host, r.CredentialsPath)
	}
	return creds, nil
}

func startJournal(sess *session.Context, store session.Store) (*session.Journal, error) {
	return session.Start(store, sess.ID, sess.Config.Repos)
}

func newRouter(sess *session.Context, d *dispatcher.Dispatcher, j *session.Journal) *router.Router {
	return router.New(sess, d, router.WithRecorder(j))
}
