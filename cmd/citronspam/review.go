package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/plantaest/citronspam/internal/tui"
	"github.com/plantaest/citronspam/internal/wiki"
	"github.com/spf13/cobra"
)

// NewReviewCmd creates the review command.
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review a report in an interactive dialog",
		Long: `Review opens the Citron/Spam dialog in the terminal.

The dialog lists the hostnames of the report. Mark each one good or bad and
save; the decisions are recorded as the logged-in user. Without bot
credentials the report can be browsed but not saved.

With --page the dialog is attached to a wiki page: the support links on the
page are counted and the hostnames linked from it are highlighted.

Examples:
  # Review yesterday's report
  citronspam review

  # Review a given day while looking at an article
  citronspam review --date 2025-03-01 --page "Hà Nội"`,
		Args: cobra.NoArgs,
		RunE: runReviewCmd,
	}

	cmd.Flags().StringP("date", "d", "",
		"Report date in YYYY-MM-DD (default: yesterday, UTC)")
	cmd.Flags().StringP("page", "p", "",
		"Wiki page the dialog is opened from")

	return cmd
}

// runReviewCmd executes the review command.
func runReviewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	dateFlag, err := cmd.Flags().GetString("date")
	if err != nil {
		return err
	}
	page, err := cmd.Flags().GetString("page")
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

	client, err := newWikiClient(ctx, cfg, logger, cfg.Authenticated())
	if err != nil {
		return err
	}

	user := wiki.UserInfo{Anon: true}
	if cfg.Authenticated() {
		if user, err = client.UserInfo(ctx); err != nil {
			return fmt.Errorf("failed to get user info: %w", err)
		}
	}

	var html string
	if page != "" {
		if html, err = client.ParsePage(ctx, page); err != nil {
			return fmt.Errorf("failed to render %s: %w", page, err)
		}
	}

	service := spam.NewService(client, spam.WithLogger(logger))
	app, err := tui.Bootstrap(ctx, client, service, tui.BootstrapOptions{
		AppConfig: tui.AppConfig{
			Title: title,
			Skin:  cfg.Skin,
			User:  user,
		},
		Language: cfg.Language,
		PageHTML: html,
	})
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
