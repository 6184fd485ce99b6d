package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for citronspam.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citronspam",
		Short: "Review Citron/Spam reports on Wikimedia wikis",
		Long: `citronspam works with the daily Citron/Spam reports, the JSON pages that
list hostnames suspected of link spam together with the revisions that
added them.

It shows a report, records GOOD or BAD feedback on its hostnames, opens an
interactive review dialog in the terminal and syncs accumulated feedback
back into the report pages.

The wiki is chosen with --wiki, either as a wiki ID from the configuration
file or as a server name such as vi.wikipedia.org.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .citronspam in current or home directory)")
	cmd.PersistentFlags().StringP("wiki", "w", "",
		"Wiki ID from the configuration file or a server name (default: viwiki)")

	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewFeedbackCmd())
	cmd.AddCommand(NewReviewCmd())
	cmd.AddCommand(NewLinksCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewStoreCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
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
