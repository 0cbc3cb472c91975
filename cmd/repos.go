package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autopilot/internal/config"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage the watched repositories",
}

var reposAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add git working trees to the watch list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absRepos(args)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if _, err := vcs.Open(p); err != nil {
				return fmt.Errorf("%s is not a git working tree: %w", p, err)
			}
		}
		return updateRepos(cmd, func(repos []string) []string {
			for _, p := range paths {
				if slices.Contains(repos, p) {
					cmd.Printf("Already watching %s\n", p)
					continue
				}
				repos = append(repos, p)
				cmd.Printf("Added %s\n", p)
			}
			return repos
		})
	},
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <path>...",
	Short: "Remove repositories from the watch list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absRepos(args)
		if err != nil {
			return err
		}
		return updateRepos(cmd, func(repos []string) []string {
			return slices.DeleteFunc(repos, func(r string) bool {
				abs, err := absRepos([]string{r})
				return err == nil && slices.Contains(paths, abs[0])
			})
		})
	},
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the watched repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos := GetConfig().Repos
		if len(repos) == 0 {
			cmd.Println("no repositories configured")
			return nil
		}
		for _, r := range repos {
			cmd.Println(r)
		}
		return nil
	},
}

// updateRepos applies edit to the repository list of the target config file
// and saves it. Only that file is rewritten, never the merged view.
func updateRepos(cmd *cobra.Command, edit func([]string) []string) error {
	path, err := targetPath()
	if err != nil {
		return err
	}
	var target *config.Config
	if configPath != "" {
		target, err = config.Load(path)
	} else {
		target, err = config.LoadGlobal()
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	target.Repos = edit(target.Repos)
	if err := config.Save(path, target); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cmd.Printf("Saved %s\n", path)
	return nil
}

func init() {
	reposCmd.AddCommand(reposAddCmd, reposRemoveCmd, reposListCmd)
	rootCmd.AddCommand(reposCmd)
}
