package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/server"
	"github.com/plantaest/citronspam/internal/spam"
	"github.com/plantaest/citronspam/internal/wiki"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and feedback over HTTP",
		Long: `Serve starts an HTTP service for the configured wikis.

Endpoints:
  GET  /health
  GET  /metrics                                   Prometheus metrics
  GET  /api/wikis/{wiki}/reports/{date}           report of a day
  POST /api/wikis/{wiki}/reports/{date}/feedbacks {"decisions":{"host":"bad"}}

Feedback is recorded as the bot user of the configuration file. Without
bot credentials the service is read-only.

Examples:
  citronspam serve
  citronspam serve --listen :8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")

	return cmd
}

// wikiPool builds wikis on first use and keeps them. A failed build is not
// kept, so the next request retries it. Concurrent requests for one wiki
// share a single build; the lock only guards the map, so a slow login on one
// wiki does not hold up requests for the others.
type wikiPool struct {
	mu     sync.Mutex
	wikis  map[string]*server.Wiki
	builds singleflight.Group
	build  func(ctx context.Context, wikiID string) (*server.Wiki, error)
}

func newWikiPool(build func(ctx context.Context, wikiID string) (*server.Wiki, error)) *wikiPool {
	return &wikiPool{
		wikis: make(map[string]*server.Wiki),
		build: build,
	}
}

func (p *wikiPool) cached(wikiID string) (*server.Wiki, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.wikis[wikiID]
	return w, ok
}

// Resolve implements server.Resolver. The shared build does not inherit the
// cancellation of the request that started it.
func (p *wikiPool) Resolve(ctx context.Context, wikiID string) (*server.Wiki, error) {
	if w, ok := p.cached(wikiID); ok {
		return w, nil
	}

	v, err, _ := p.builds.Do(wikiID, func() (any, error) {
		if w, ok := p.cached(wikiID); ok {
			return w, nil
		}
		w, err := p.build(context.WithoutCancel(ctx), wikiID)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.wikis[wikiID] = w
		p.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*server.Wiki), nil
}

// servedWiki returns the configuration of wikiID if the service serves it:
// a wiki of the config file or the selected wiki.
func servedWiki(cfg *config.Config, wikiID string) (*config.Config, error) {
	if wikiID != cfg.WikiID {
		if cfg.Wikis == nil {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownWiki, wikiID)
		}
		if _, ok := cfg.Wikis.Wikis[wikiID]; !ok {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownWiki, wikiID)
		}
	}
	return cfg.ForWiki(wikiID)
}

// buildWiki returns a builder creating a logged-in client per wiki.
func buildWiki(cfg *config.Config, logger *slog.Logger) func(ctx context.Context, wikiID string) (*server.Wiki, error) {
	return func(ctx context.Context, wikiID string) (*server.Wiki, error) {
		wcfg, err := servedWiki(cfg, wikiID)
		if err != nil {
			return nil, err
		}

		client, err := newWikiClient(ctx, wcfg, logger, wcfg.Authenticated())
		if err != nil {
			return nil, err
		}
		user := wiki.UserInfo{Anon: true}
		if wcfg.Authenticated() {
			if user, err = client.UserInfo(ctx); err != nil {
				return nil, fmt.Errorf("failed to get user info: %w", err)
			}
		}

		return &server.Wiki{
			ID:           wikiID,
			ReportPrefix: wcfg.ReportPrefix,
			Backend:      spam.NewService(client, spam.WithLogger(logger)),
			User:         user,
		}, nil
	}
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	if !cfg.Authenticated() {
		logger.Warn("no bot credentials configured, feedback will be rejected")
	}

	pool := newWikiPool(buildWiki(cfg, logger))
	srv := server.New(pool.Resolve, server.WithLogger(logger))

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.ListenAddress)
	return srv.Run(ctx, cfg.ListenAddress)
}
