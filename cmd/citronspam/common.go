package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/database"
	"github.com/plantaest/citronspam/internal/log"
	"github.com/plantaest/citronspam/internal/model"
	"github.com/plantaest/citronspam/internal/report"
	"github.com/plantaest/citronspam/internal/wiki"
	"github.com/spf13/cobra"
)

// getPersistentBool retrieves a bool flag from the command or its root.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getPersistentString retrieves a string flag from the command or its root.
func getPersistentString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// buildConfig creates a Config from the global flags and the config file.
// Commands set their own fields on the result before calling Validate.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getPersistentBool(cmd, "verbose")
	cfg.JSONLogs = getPersistentBool(cmd, "json-logs")
	cfg.ConfigFilePath = getPersistentString(cmd, "config")

	// An explicit config path must exist; otherwise a missing file just
	// means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := cfg.SelectWiki(getPersistentString(cmd, "wiki")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger creates the masked logger for cfg and installs it as the
// slog default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.New(os.Stderr, log.Options{Verbose: cfg.Verbose, JSON: cfg.JSONLogs})
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on interrupt or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newWikiClient creates an API client for the wiki of cfg. When login is
// true the client signs in with the bot credentials, which must be set.
func newWikiClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, login bool) (*wiki.Client, error) {
	client, err := wiki.NewClient(wiki.EndpointFor(cfg.ServerName),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithProxy(cfg.ProxyAddress),
		wiki.WithLogger(logger.With("wiki", cfg.WikiID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if !login {
		return client, nil
	}
	if !cfg.Authenticated() {
		return nil, errNoCredentials
	}
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return nil, fmt.Errorf("failed to log in to %s: %w", cfg.ServerName, err)
	}
	logger.Info("logged in", "wiki", cfg.WikiID, "user", cfg.Username)
	return client, nil
}

// errNoCredentials is returned by commands that edit the wiki when no bot
// password is configured.
var errNoCredentials = errors.New("this command edits the wiki: configure bot credentials in the config file")

// openDB opens the local feedback store when cfg enables it. It returns nil
// when storage is disabled.
func openDB(cfg *config.Config, logger *slog.Logger) (*database.FeedbackDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())
	return db, nil
}

// reportDay parses a --date value. An empty value means yesterday in UTC,
// the newest report that is complete.
func reportDay(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC().AddDate(0, 0, -1), nil
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return day, nil
}

// newReportWriter returns the writer selected by cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport renders the report in the requested format to the report
// file, or to stdout when none is set.
func outputReport(cfg *config.Config, stdout io.Writer, title string, r *model.Report) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg, output).Write(title, r)
	return err
}
