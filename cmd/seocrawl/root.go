package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for seocrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seocrawl",
		Short: "AI-assisted SEO crawler for small business websites",
		Long: `seocrawl crawls a website breadth-first and analyzes every page with a
generative model, reporting SEO issues such as missing titles, thin
content, broken pages, and duplicate content.

Crawl sessions are stored locally so results can be re-exported later
in CSV, JSON, or Markdown format without re-crawling.

Set GEMINI_API_KEY in the environment (or pass --api-key) before
running a crawl.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
