package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/spf13/cobra"
)

// NewFeedbackCmd creates the feedback command.
func NewFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <hostname> <good|bad> [<hostname> <good|bad>...]",
		Short: "Record feedback on reported hostnames",
		Long: `Feedback marks hostnames of a report as good (a legitimate site) or bad
(spam) and saves the report as the logged-in bot user.

A later decision by the same user on the same hostname replaces the earlier
one. Hostnames that are not in the report are rejected.

Examples:
  # Mark a hostname of yesterday's report as spam
  citronspam feedback spam.example bad

  # Record two decisions on the report of a given day
  citronspam feedback --date 2025-03-01 spam.example bad news.example good`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <hostname> <good|bad> pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: runFeedbackCmd,
	}

	cmd.Flags().StringP("date", "d", "",
		"Report date in YYYY-MM-DD (default: yesterday, UTC)")

	return cmd
}

// parseDecisions turns hostname/status argument pairs into decisions.
// Hostnames are matched case-insensitively, as the report stores them in
// lower case.
func parseDecisions(args []string) (map[string]model.FeedbackStatus, error) {
	decisions := make(map[string]model.FeedbackStatus, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		hostname := strings.ToLower(strings.TrimSpace(args[i]))
		if hostname == "" {
			return nil, fmt.Errorf("empty hostname at argument %d", i+1)
		}
		status, err := model.ParseFeedbackStatus(args[i+1])
		if err != nil {
			return nil, err
		}
		decisions[hostname] = status
	}
	return decisions, nil
}

// runFeedbackCmd executes the feedback command.
func runFeedbackCmd(cmd *cobra.Command, args []string) error {
	decisions, err := parseDecisions(args)
	if err != nil {
		return err
	}

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
	day, err := reportDay(dateFlag, time.Now())
	if err != nil {
		return err
	}
	title := model.ReportTitle(cfg.ReportPrefix, day)

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	client, err := newWikiClient(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	user, err := client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	service := spam.NewService(client, spam.WithLogger(logger))
	result, err := service.SubmitFeedback(ctx, title, user, decisions)
	if err != nil {
		return fmt.Errorf("failed to save feedback on %s: %w", title, err)
	}

	out := cmd.OutOrStdout()
	for _, f := range result.Feedbacks {
		fmt.Fprintf(out, "%s: %s\n", f.Hostname, f.Status)
	}
	if result.Edit.Edit.NoChange {
		fmt.Fprintf(out, "%s unchanged\n", title)
	} else {
		fmt.Fprintf(out, "Saved %s (revision %d)\n", title, result.Edit.Edit.NewRevID)
	}
	return nil
}
