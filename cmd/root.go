package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autopilot/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	verbosity  int
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "autopilot",
	Short:        "Watch git working trees and commit and push every change as it happens",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbosity)

		// init must work even when the existing config is broken.
		if cmd.Name() == "init" {
			return nil
		}

		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = config.Merge(loaded, nil)
			return nil
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file to use instead of the global and project ones (.json, .yaml or .yml)")
}

// setupLogging configures the process-wide logger for the given -v count.
func setupLogging(v int) {
	level := logger.WarnLevel
	switch {
	case v >= 3:
		level = logger.TraceLevel
	case v == 2:
		level = logger.DebugLevel
	case v == 1:
		level = logger.InfoLevel
	}
	if os.Getenv("DEBUG") == "true" && level < logger.DebugLevel {
		level = logger.DebugLevel
	}
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
		ForceColors:   term.IsTerminal(os.Stderr.Fd()),
	})
	logger.SetLevel(level)
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// targetPath is the file that init and repos write to.
func targetPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GlobalPath()
}

// absRepos returns repos as cleaned absolute paths.
func absRepos(repos []string) ([]string, error) {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", r, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
