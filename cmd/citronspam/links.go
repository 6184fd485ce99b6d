package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/plantaest/citronspam/internal/database"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/plantaest/citronspam/internal/wiki"
	"github.com/spf13/cobra"
)

// NewLinksCmd creates the links command.
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <page>",
		Short: "List reported hostnames linked from a page",
		Long: `Links renders a wiki page, collects the hostnames of its external links
and prints the ones that appear in the report, with their score and the
feedback recorded on them.

Hostnames already on the local ignore list (marked good by a previous sync)
are flagged.

Examples:
  citronspam links "Hà Nội"
  citronspam links --date 2025-03-01 --wiki enwiki "Example"`,
		Args: cobra.ExactArgs(1),
		RunE: runLinksCmd,
	}

	cmd.Flags().StringP("date", "d", "",
		"Report date in YYYY-MM-DD (default: yesterday, UTC)")
	cmd.Flags().Bool("no-db", false,
		"Do not consult the local ignore list")

	return cmd
}

// linkedHostname is a report hostname that a page links to.
type linkedHostname struct {
	model.Hostname
	Good    int
	Bad     int
	Ignored bool
}

// reportedLinks returns the hostnames of linked that are in the report, in
// page order, with the feedback tallied per status.
func reportedLinks(r *model.Report, linked []string) []linkedHostname {
	var out []linkedHostname
	for _, name := range linked {
		h := r.Hostname(name)
		if h == nil {
			continue
		}
		entry := linkedHostname{Hostname: *h}
		for _, f := range r.Feedbacks {
			if f.Hostname != name {
				continue
			}
			switch f.Status {
			case model.FeedbackGood:
				entry.Good++
			case model.FeedbackBad:
				entry.Bad++
			}
		}
		out = append(out, entry)
	}
	return out
}

// markIgnored flags the entries whose hostname is on the ignore list.
func markIgnored(ctx context.Context, db *database.FeedbackDB, wikiID string, entries []linkedHostname) error {
	if db == nil || len(entries) == 0 {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Hostname.Hostname
	}
	ignored, err := db.CheckHostnames(ctx, wikiID, names)
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].Ignored = ignored[entries[i].Hostname.Hostname]
	}
	return nil
}

func writeLinks(w io.Writer, page string, entries []linkedHostname) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No reported hostnames are linked from %s.\n", page)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOSTNAME\tSCORE\tREVISIONS\tGOOD\tBAD\tIGNORED")
	for _, e := range entries {
		ignored := ""
		if e.Ignored {
			ignored = "yes"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\t%d\t%s\n",
			e.Hostname.Hostname, e.Score, len(e.RevisionIDs), e.Good, e.Bad, ignored)
	}
	return tw.Flush()
}

// runLinksCmd executes the links command.
func runLinksCmd(cmd *cobra.Command, args []string) error {
	page := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noDB
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

	client, err := newWikiClient(ctx, cfg, logger, false)
	if err != nil {
		return err
	}

	html, err := client.ParsePage(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	links, err := wiki.ExtractLinks(html)
	if err != nil {
		return fmt.Errorf("failed to read links of %s: %w", page, err)
	}

	r, err := spam.NewService(client, spam.WithLogger(logger)).FetchReport(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", title, err)
	}

	entries := reportedLinks(r, links.Hostnames)

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := markIgnored(ctx, db, cfg.WikiID, entries); err != nil {
			logger.Warn("failed to check ignore list", "error", err)
		}
	}

	return writeLinks(cmd.OutOrStdout(), page, entries)
}
