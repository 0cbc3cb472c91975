package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/autopilot/internal/credentials"
	"github.com/fakeyudi/autopilot/internal/message"
)

const (
	appName        = "autopilot"
	globalFileName = "config.json"
	projectFile    = ".autopilot.json"

	DefaultRemote      = "origin"
	DefaultQueueSize   = 64
	DefaultPushTimeout = 60 * time.Second
)

// Config holds all configurable autopilot settings.
type Config struct {
	Message            message.TemplateSet     `json:"message" yaml:"message"`
	Description        message.TemplateSet     `json:"description" yaml:"description"`
	Variables          map[string]any          `json:"variables" yaml:"variables"`
	Repos              []string                `json:"repos" yaml:"repos"`
	IgnoredDirs        []string                `json:"ignored_dirs" yaml:"ignored_dirs"`
	CredentialHost     string                  `json:"credential_host,omitempty" yaml:"credential_host,omitempty"`
	Remote             string                  `json:"remote,omitempty" yaml:"remote,omitempty"`
	PushTimeoutSeconds int                     `json:"push_timeout_seconds,omitempty" yaml:"push_timeout_seconds,omitempty"`
	QueueSize          int                     `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
	Credentials        credentials.Credentials `json:"git_credentials" yaml:"git_credentials"`
}

const descriptionBody = "File short name: {{FILE_NAME_SHORT}}\n" +
	"File full name: {{FILE_NAME_FULL}}\n" +
	"No. of lines inserted: {{INSERTIONS}}\n" +
	"No. of lines deleted: {{DELETIONS}}\n" +
	"No. of lines modified: {{LINES_MODIFIED}}"

// Defaults returns the default templates and settings.
func Defaults() Config {
	return Config{
		Message: message.TemplateSet{
			Create: message.Message{Comment: "New File Created: {{FILE_NAME_SHORT}}"},
			Modify: message.Message{Comment: "File Modified: {{FILE_NAME_SHORT}}"},
			Remove: message.Message{Comment: "File Removed: {{FILE_NAME_SHORT}}"},
			Rename: message.Message{Comment: "File Renamed: {{FILE_OLD_NAME}} -> {{FILE_NAME_SHORT}}"},
		},
		Description: message.TemplateSet{
			Create: message.Message{Comment: "New File Created\n" + descriptionBody},
			Modify: message.Message{Comment: "File Modified\n" + descriptionBody},
			Remove: message.Message{Comment: "File Removed\n" + descriptionBody},
			Rename: message.Message{Comment: "File Renamed from {{FILE_OLD_NAME}}\n" + descriptionBody},
		},
		Variables:          map[string]any{"example_var": "example_value"},
		Repos:              []string{},
		IgnoredDirs:        []string{".git"},
		CredentialHost:     credentials.DefaultHost,
		Remote:             DefaultRemote,
		PushTimeoutSeconds: int(DefaultPushTimeout / time.Second),
		QueueSize:          DefaultQueueSize,
	}
}

// StringVariables returns the user variables whose value is a string. Other
// values are dropped.
func (c *Config) StringVariables() map[string]string {
	out := make(map[string]string, len(c.Variables))
	for k, v := range c.Variables {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// PushTimeout returns the push deadline.
func (c *Config) PushTimeout() time.Duration {
	if c.PushTimeoutSeconds <= 0 {
		return DefaultPushTimeout
	}
	return time.Duration(c.PushTimeoutSeconds) * time.Second
}

// ConfigDir returns ~/.config/autopilot, creating it when missing.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// GlobalPath returns the location of the global config file.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, globalFileName), nil
}

// LoadGlobal reads ~/.config/autopilot/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .autopilot.json in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(projectFile, false)
}

// Load reads the config file at path. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(path, data)
}

// loadFile reads and parses a config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	return decode(path, data)
}

func decode(path string, data []byte) (*Config, error) {
	var cfg Config
	var err error
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Save writes cfg to path atomically, as YAML or indented JSON depending on
// the extension.
func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Merge combines global and project configs, with project taking precedence.
// Templates are replaced only by ones with a comment, variables are extended
// and repositories are appended without duplicates.
func Merge(global, project *Config) Config {
	result := Defaults()
	overlay(&result, global)
	overlay(&result, project)
	return result
}

func overlay(dst, src *Config) {
	if src == nil {
		return
	}

	mergeTemplates(&dst.Message, src.Message)
	mergeTemplates(&dst.Description, src.Description)

	if dst.Variables == nil {
		dst.Variables = make(map[string]any, len(src.Variables))
	}
	for k, v := range src.Variables {
		dst.Variables[k] = v
	}

	for _, repo := range src.Repos {
		if !slices.Contains(dst.Repos, repo) {
			dst.Repos = append(dst.Repos, repo)
		}
	}

	if len(src.IgnoredDirs) > 0 {
		dst.IgnoredDirs = src.IgnoredDirs
	}
	if src.CredentialHost != "" {
		dst.CredentialHost = src.CredentialHost
	}
	if src.Remote != "" {
		dst.Remote = src.Remote
	}
	if src.PushTimeoutSeconds > 0 {
		dst.PushTimeoutSeconds = src.PushTimeoutSeconds
	}
	if src.QueueSize > 0 {
		dst.QueueSize = src.QueueSize
	}

	if src.Credentials.Username != "" {
		dst.Credentials.Username = src.Credentials.Username
	}
	if src.Credentials.Email != "" {
		dst.Credentials.Email = src.Credentials.Email
	}
	if src.Credentials.LoginUsername != "" {
		dst.Credentials.LoginUsername = src.Credentials.LoginUsername
	}
	if src.Credentials.Password != "" {
		dst.Credentials.Password = src.Credentials.Password
	}
}

func mergeTemplates(dst *message.TemplateSet, src message.TemplateSet) {
	if !src.Create.IsZero() {
		dst.Create = src.Create
	}
	if !src.Modify.IsZero() {
		dst.Modify = src.Modify
	}
	if !src.Remove.IsZero() {
		dst.Remove = src.Remove
	}
	if !src.Rename.IsZero() {
		dst.Rename = src.Rename
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
