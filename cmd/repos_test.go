package cmd

import (
	"strings"
	"testing"

	"github.com/fakeyudi/autopilot/internal/config"
)

func TestReposCommands(t *testing.T) {
	t.Run("add then list", func(t *testing.T) {
		isolate(t)
		root := initRepo(t)

		if out, err := executeCommand(rootCmd, "repos", "add", root); err != nil {
			t.Fatalf("repos add: %v\n%s", err, out)
		}
		out, err := executeCommand(rootCmd, "repos", "list")
		if err != nil {
			t.Fatalf("repos list: %v", err)
		}
		if !strings.Contains(out, root) {
			t.Errorf("expected %s in list, got:\n%s", root, out)
		}
	})

	t.Run("adding twice keeps one entry", func(t *testing.T) {
		isolate(t)
		root := initRepo(t)

		for i := 0; i < 2; i++ {
			if _, err := executeCommand(rootCmd, "repos", "add", root); err != nil {
				t.Fatalf("repos add: %v", err)
			}
		}
		global, err := config.LoadGlobal()
		if err != nil {
			t.Fatalf("LoadGlobal: %v", err)
		}
		if len(global.Repos) != 1 {
			t.Errorf("expected one repo, got %v", global.Repos)
		}
	})

	t.Run("rejects a directory that is not a repository", func(t *testing.T) {
		isolate(t)

		_, err := executeCommand(rootCmd, "repos", "add", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "not a git working tree") {
			t.Fatalf("expected a not a git working tree error, got %v", err)
		}
	})

	t.Run("remove drops the entry from the explicit config", func(t *testing.T) {
		isolate(t)
		root := initRepo(t)
		path := writeConfig(t, root)

		if out, err := executeCommand(rootCmd, "--config", path, "repos", "remove", root); err != nil {
			t.Fatalf("repos remove: %v\n%s", err, out)
		}
		loaded, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(loaded.Repos) != 0 {
			t.Errorf("expected no repos, got %v", loaded.Repos)
		}
	})
}
