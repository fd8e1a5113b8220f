package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baawa1/AI-SEO-Web-Crawler/internal/config"
	"github.com/baawa1/AI-SEO-Web-Crawler/internal/database"
)

// NewSessionsCmd creates the sessions command.
func NewSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored crawl sessions",
		Long: `Sessions lists every crawl session stored in the local database,
newest first. Use the session ID with "seocrawl export --id" to
re-export a past crawl.`,
		RunE: runSessionsCmd,
	}
}

// runSessionsCmd executes the sessions command.
func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl sessions stored yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tSTATE\tPAGES\tCREATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			s.ID, s.SiteDomain, s.State, s.Analyzed,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
