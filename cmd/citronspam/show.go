package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/database"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a Citron/Spam report",
		Long: `Show fetches the Citron/Spam report of a day and renders it.

The report lists the hostnames suspected of spam with their score, the
revisions that added them and the feedback recorded so far. Every fetched
report is kept in the local database so it can be shown again with
--offline.

Examples:
  # Show yesterday's report on the default wiki
  citronspam show

  # Show the report of a given day on English Wikipedia
  citronspam show --wiki en.wikipedia.org --date 2025-03-01

  # Write a Markdown report to a file
  citronspam show --markdown -o reports/2025-03-01.md

  # Show the last fetched copy without network access
  citronspam show --offline --date 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: runShowCmd,
	}

	cmd.Flags().StringP("date", "d", "",
		"Report date in YYYY-MM-DD (default: yesterday, UTC)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("offline", false,
		"Show the last fetched copy from the local database")
	cmd.Flags().Bool("no-db", false,
		"Do not store the fetched report in the local database")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	cfg.SaveToDB = offline || !noDB

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	dateFlag, err := cmd.Flags().GetString("date")
	if err != nil {
		return err
	}
	day, err := reportDay(dateFlag, time.Now())
	if err != nil {
		return err
	}
	title := model.ReportTitle(cfg.ReportPrefix, day)

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var r *model.Report
	if offline {
		r, err = loadSnapshot(ctx, db, cfg.WikiID, title)
	} else {
		r, err = fetchReport(ctx, cfg, db, logger, title)
	}
	if err != nil {
		return err
	}

	return outputReport(cfg, cmd.OutOrStdout(), title, r)
}

// fetchReport fetches title and stores a snapshot when db is set.
func fetchReport(ctx context.Context, cfg *config.Config, db *database.FeedbackDB, logger *slog.Logger, title string) (*model.Report, error) {
	client, err := newWikiClient(ctx, cfg, logger, false)
	if err != nil {
		return nil, err
	}
	service := spam.NewService(client, spam.WithLogger(logger))

	r, err := service.FetchReport(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", title, err)
	}

	if db != nil {
		if err := db.SaveSnapshot(ctx, cfg.WikiID, title, r); err != nil {
			logger.Error("failed to save report snapshot", "title", title, "error", err)
		}
	}
	return r, nil
}

func loadSnapshot(ctx context.Context, db *database.FeedbackDB, wikiID, title string) (*model.Report, error) {
	snap, err := db.LoadSnapshot(ctx, wikiID, title)
	if err != nil {
		return nil, fmt.Errorf("no local copy of %s: %w", title, err)
	}
	return snap.Report, nil
}
