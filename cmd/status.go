package cmd

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autopilot/internal/classifier"
	"github.com/fakeyudi/autopilot/internal/vcs"
)

var (
	repoStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	opStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the changes watch would act on in each repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := absRepos(GetConfig().Repos)
		if err != nil {
			return err
		}
		if len(repos) == 0 {
			cmd.Println("no repositories configured")
			return nil
		}

		var result error
		for _, root := range repos {
			if err := printRepoStatus(cmd, root); err != nil {
				cmd.Println("  " + errStyle.Render("error: "+err.Error()))
				result = multierror.Append(result, err)
			}
			cmd.Println()
		}
		return result
	},
}

// printRepoStatus classifies the pending changes of root without acting on them.
func printRepoStatus(cmd *cobra.Command, root string) error {
	repo, err := vcs.Open(root)
	if err != nil {
		cmd.Println(repoStyle.Render(root))
		return &classifier.RepositoryAccessError{Root: root, Err: err}
	}
	branch, err := repo.CurrentBranch()
	if err != nil {
		branch = vcs.DefaultBranch
	}
	cmd.Println(repoStyle.Render(root) + cleanStyle.Render(" ("+branch+")"))

	cs, err := classifier.Classify(repo)
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		cmd.Println("  " + cleanStyle.Render("clean"))
		return nil
	}

	paths := make([]string, 0, len(cs))
	for p := range cs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		rec, _ := cs.Record(p)
		name := p
		if rec.OldPath != "" {
			name = rec.OldPath + " -> " + p
		}
		cmd.Printf("  %s %s  +%d -%d\n", opStyle.Render(fmt.Sprintf("%-10s", rec.Operation)), name, rec.LinesAdded, rec.LinesDeleted)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
