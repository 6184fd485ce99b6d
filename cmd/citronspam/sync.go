package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/database"
	"github.com/plantaest/citronspam/internal/pipeline"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [wiki...]",
		Short: "Sync feedback of yesterday's reports",
		Long: `Sync processes yesterday's (UTC) report of each wiki:

- the feedback is stored in the local database
- hostnames marked only good are added to the local ignore list
- every feedback entry is marked synced and the report is saved as a bot edit

Reports that are missing or carry no feedback are skipped. A failing wiki
does not stop the others. Without arguments all wikis of the configuration
file are synced. Run it once a day, shortly after midnight UTC.

Examples:
  # Sync every configured wiki
  citronspam sync

  # Sync two wikis, one at a time
  citronspam sync --concurrency 1 viwiki enwiki`,
		Args: cobra.ArbitraryArgs,
		RunE: runSyncCmd,
	}

	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of wikis synced at the same time")

	return cmd
}

// syncTargets returns the wikis to sync: the arguments, else every wiki of
// the config file, else the selected wiki.
func syncTargets(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	if cfg.Wikis != nil && len(cfg.Wikis.Wikis) > 0 {
		return cfg.Wikis.WikiIDs()
	}
	return []string{cfg.WikiID}
}

// runSyncCmd executes the sync command.
func runSyncCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return err
	}
	cfg.SaveToDB = true
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if !cfg.Authenticated() {
		return errNoCredentials
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	targets := syncTargets(cfg, args)
	return runSync(ctx, cmd.OutOrStdout(), cfg, db, targets, logger)
}

// runSync syncs targets and prints one line per wiki as it finishes.
func runSync(ctx context.Context, out io.Writer, cfg *config.Config, db *database.FeedbackDB, targets []string, logger *slog.Logger) error {
	factory := func(wikiID string) (*pipeline.FeedbackSync, error) {
		wcfg, err := cfg.ForWiki(wikiID)
		if err != nil {
			return nil, err
		}
		client, err := newWikiClient(ctx, wcfg, logger, true)
		if err != nil {
			return nil, err
		}
		service := spam.NewService(client, spam.WithLogger(logger))
		return pipeline.NewFeedbackSync(service, db,
			pipeline.WithSyncLogger(logger),
			pipeline.WithReportPrefix(wcfg.ReportPrefix),
		), nil
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(out, "Syncing %d wikis (concurrency: %d)...\n\n", len(targets), cfg.Concurrency)
	startTime := time.Now()

	var (
		mu     sync.Mutex
		failed int
	)
	err := bp.ProcessBatchWithCallback(ctx, targets, func(job *pipeline.SyncJob, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(out, "[%d/%d] %s\n", index+1, len(targets), describeJob(job))
		if job.Error != nil {
			failed++
		}
	})

	fmt.Fprintf(out, "\nSync completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d wikis", errSyncFailed, failed, len(targets))
	}
	return nil
}

// errSyncFailed is returned when at least one wiki could not be synced.
var errSyncFailed = errors.New("sync failed")

// describeJob summarises a finished job in one line.
func describeJob(job *pipeline.SyncJob) string {
	switch {
	case job.Error != nil:
		return fmt.Sprintf("%s: failed: %s", job.WikiID, job.ErrorMessage)
	case job.Skipped:
		return fmt.Sprintf("%s: skipped %s: %s", job.WikiID, job.Title, job.SkipReason)
	default:
		return fmt.Sprintf("%s: synced %s: %d feedbacks stored, %d hostnames ignored (revision %d)",
			job.WikiID, job.Title, job.StoredFeedbacks, len(job.NewIgnored), job.Edit.Edit.NewRevID)
	}
}
