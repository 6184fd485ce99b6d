package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/database"
	"github.com/spf13/cobra"
)

// NewStoreCmd creates the store command and its subcommands.
func NewStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the local feedback store",
		Long: `Store prints what the feedback sync has recorded in the local database:
the feedback collected from each report and the hostnames ignored after
being marked good.

Examples:
  citronspam store feedbacks --date 2025-03-01
  citronspam store ignored --wiki enwiki`,
	}

	feedbacks := &cobra.Command{
		Use:   "feedbacks",
		Short: "List the feedback stored for a report",
		Args:  cobra.NoArgs,
		RunE:  runStoreFeedbacksCmd,
	}
	feedbacks.Flags().StringP("date", "d", "",
		"Report date in YYYY-MM-DD (default: yesterday, UTC)")

	ignored := &cobra.Command{
		Use:   "ignored",
		Short: "List the ignored hostnames of a wiki",
		Args:  cobra.NoArgs,
		RunE:  runStoreIgnoredCmd,
	}

	cmd.AddCommand(feedbacks, ignored)
	return cmd
}

// openStore builds the config and opens the database, which must exist.
func openStore(cmd *cobra.Command) (*config.Config, *database.FeedbackDB, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg.SaveToDB = true
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	db, err := openDB(cfg, setupLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runStoreFeedbacksCmd(cmd *cobra.Command, _ []string) error {
	dateFlag, err := cmd.Flags().GetString("date")
	if err != nil {
		return err
	}
	day, err := reportDay(dateFlag, time.Now())
	if err != nil {
		return err
	}

	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return writeStoredFeedbacks(cmd.Context(), cmd.OutOrStdout(), db, cfg.WikiID, day.Format(time.DateOnly))
}

func runStoreIgnoredCmd(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return writeIgnored(cmd.Context(), cmd.OutOrStdout(), db, cfg.WikiID)
}

// writeStoredFeedbacks prints the feedback stored for one report.
func writeStoredFeedbacks(ctx context.Context, w io.Writer, db *database.FeedbackDB, wikiID, reportDate string) error {
	records, err := db.ListFeedbacks(ctx, wikiID, reportDate)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No feedback stored for %s on %s.\n", wikiID, reportDate)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tUSER\tHOSTNAME\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt, r.User, r.Hostname, r.Status)
	}
	return tw.Flush()
}

// writeIgnored prints the ignored hostnames of wikiID, one per line.
func writeIgnored(ctx context.Context, w io.Writer, db *database.FeedbackDB, wikiID string) error {
	hostnames, err := db.IgnoredHostnames(ctx, wikiID)
	if err != nil {
		return err
	}
	if len(hostnames) == 0 {
		_, err := fmt.Fprintf(w, "No ignored hostnames on %s.\n", wikiID)
		return err
	}
	for _, h := range hostnames {
		if _, err := fmt.Fprintln(w, h); err != nil {
			return err
		}
	}
	return nil
}
