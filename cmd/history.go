package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autopilot/internal/session"
	"github.com/fakeyudi/autopilot/internal/tui"
)

var (
	historyPlain bool
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the journal of the last watch session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewStore()
		if err != nil {
			return err
		}
		s, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no recorded session")
				return nil
			}
			return err
		}

		switch {
		case historyJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		case historyPlain || !term.IsTerminal(os.Stdout.Fd()):
			printSession(cmd, s)
			return nil
		}
		return tui.Run(s, store.Path())
	},
}

// printSession writes a plain-text summary of s.
func printSession(cmd *cobra.Command, s *session.Session) {
	cmd.Println("## Summary")
	cmd.Printf("  Session:   %s\n", s.ID)
	cmd.Printf("  Started:   %s\n", s.StartTime.Local().Format("2006-01-02 15:04:05 MST"))
	if s.StopTime != nil {
		cmd.Printf("  Stopped:   %s\n", s.StopTime.Local().Format("2006-01-02 15:04:05 MST"))
	}
	for _, r := range s.Repos {
		cmd.Printf("  Repo:      %s\n", r)
	}
	c := tui.Count(s)
	cmd.Printf("  Changes: %d\n", len(s.Entries))
	cmd.Printf("  Pushed: %d\n", c.Pushed)
	cmd.Printf("  Local: %d\n", c.Local)
	cmd.Printf("  Failed: %d\n", c.Failed)
	cmd.Println()

	cmd.Println("## Changes")
	if len(s.Entries) == 0 {
		cmd.Println("  (none)")
		return
	}
	for _, e := range s.Entries {
		outcome := "local"
		switch {
		case e.Failed():
			outcome = "failed"
		case e.Pushed:
			outcome = "pushed"
		}
		path := e.Path
		if e.OldPath != "" {
			path = e.OldPath + " -> " + e.Path
		}
		cmd.Printf("  [%s] %-6s %-10s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), outcome, e.Operation, path)
		if e.Error != "" {
			cmd.Printf("      %s\n", e.Error)
		}
	}
}

func init() {
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "print plain text instead of launching TUI")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print the session journal as JSON")
	rootCmd.AddCommand(historyCmd)
}
