package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/autopilot/internal/message"
)

// Feature: autopilot, Property 11: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	// Generator for a non-empty string field value.
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	// Each field is independently either empty or a non-empty value.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasRemote") {
			cfg.Remote = nonEmptyString.Draw(t, "remote")
		}
		if rapid.Bool().Draw(t, "hasHost") {
			cfg.CredentialHost = nonEmptyString.Draw(t, "host")
		}
		if rapid.Bool().Draw(t, "hasCreate") {
			cfg.Message.Create = message.Message{Comment: nonEmptyString.Draw(t, "create")}
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "Remote",
			global.Remote, project.Remote, defaults.Remote,
			merged.Remote)

		checkStringField(t, "CredentialHost",
			global.CredentialHost, project.CredentialHost, defaults.CredentialHost,
			merged.CredentialHost)

		checkStringField(t, "Message.Create",
			global.Message.Create.Comment, project.Message.Create.Comment, defaults.Message.Create.Comment,
			merged.Message.Create.Comment)
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set, expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestMergeExtendsVariablesAndRepos(t *testing.T) {
	global := &Config{
		Variables: map[string]any{"team": "core", "shared": "global"},
		Repos:     []string{"/src/a", "/src/b"},
	}
	project := &Config{
		Variables: map[string]any{"shared": "project"},
		Repos:     []string{"/src/b", "/src/c"},
	}

	merged := Merge(global, project)

	if got := merged.Variables["shared"]; got != "project" {
		t.Errorf("shared: want %q, got %v", "project", got)
	}
	if got := merged.Variables["team"]; got != "core" {
		t.Errorf("team: want %q, got %v", "core", got)
	}
	if got := merged.Variables["example_var"]; got != "example_value" {
		t.Errorf("example_var: want default kept, got %v", got)
	}
	want := []string{"/src/a", "/src/b", "/src/c"}
	if len(merged.Repos) != len(want) {
		t.Fatalf("Repos: want %v, got %v", want, merged.Repos)
	}
	for i := range want {
		if merged.Repos[i] != want[i] {
			t.Errorf("Repos[%d]: want %q, got %q", i, want[i], merged.Repos[i])
		}
	}
}

func TestStringVariablesDropsNonStrings(t *testing.T) {
	cfg := Config{Variables: map[string]any{
		"name":   "value",
		"number": 42.0,
		"flag":   true,
		"nested": map[string]any{"a": "b"},
	}}

	got := cfg.StringVariables()

	if len(got) != 1 || got["name"] != "value" {
		t.Errorf("want only the string variable, got %v", got)
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.Message.Create.Comment != "New File Created: {{FILE_NAME_SHORT}}" {
		t.Errorf("Message.Create: got %q", d.Message.Create.Comment)
	}
	if d.Message.Rename.IsZero() || d.Description.Rename.IsZero() {
		t.Error("rename templates should have a default")
	}
	if len(d.IgnoredDirs) != 1 || d.IgnoredDirs[0] != ".git" {
		t.Errorf("IgnoredDirs: want [.git], got %v", d.IgnoredDirs)
	}
	if d.Remote != "origin" {
		t.Errorf("Remote: want %q, got %q", "origin", d.Remote)
	}
	if d.PushTimeout() != DefaultPushTimeout {
		t.Errorf("PushTimeout: want %v, got %v", DefaultPushTimeout, d.PushTimeout())
	}
	if d.Repos == nil || len(d.Repos) != 0 {
		t.Errorf("Repos: want empty slice, got %v", d.Repos)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	defaults := Defaults()
	if cfg.Message.Modify != defaults.Message.Modify {
		t.Errorf("Message.Modify: want %+v, got %+v", defaults.Message.Modify, cfg.Message.Modify)
	}
	if cfg.QueueSize != defaults.QueueSize {
		t.Errorf("QueueSize: want %d, got %d", defaults.QueueSize, cfg.QueueSize)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	// Write an invalid JSON file where LoadGlobal expects it.
	cfgDir := filepath.Join(tmp, ".config", "autopilot")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autopilot.yaml")
	content := `message:
  create:
    prefix: "[add] "
    comment: "{{FILE_NAME_SHORT}}"
    suffix: ""
repos:
  - /work/project
variables:
  team: core
  retries: 3
git_credentials:
  username: alice
  email: alice@example.com
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Message.Create.Prefix != "[add] " {
		t.Errorf("Message.Create.Prefix: got %q", cfg.Message.Create.Prefix)
	}
	if len(cfg.Repos) != 1 || cfg.Repos[0] != "/work/project" {
		t.Errorf("Repos: got %v", cfg.Repos)
	}
	if cfg.Credentials.Username != "alice" {
		t.Errorf("Credentials.Username: got %q", cfg.Credentials.Username)
	}
	vars := cfg.StringVariables()
	if vars["team"] != "core" {
		t.Errorf("team: got %q", vars["team"])
	}
	if _, ok := vars["retries"]; ok {
		t.Error("non-string variable should be dropped")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Defaults()
			cfg.Repos = []string{"/work/a"}

			if err := Save(path, &cfg); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Message != cfg.Message || got.Description != cfg.Description {
				t.Errorf("templates differ after round trip")
			}
			if len(got.Repos) != 1 || got.Repos[0] != "/work/a" {
				t.Errorf("Repos: got %v", got.Repos)
			}
			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("temp files left behind: %v", entries)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
