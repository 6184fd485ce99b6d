package tui

import (
	"context"
	"fmt"
)

// MessageLoader fetches interface messages on demand.
type MessageLoader interface {
	Messages
	LoadMessagesIfMissing(ctx context.Context, lang string, keys ...string) error
}

// BootstrapOptions configures Bootstrap.
type BootstrapOptions struct {
	AppConfig

	// Language of the interface messages.
	Language string

	// PageHTML is the rendered page the App attaches to. Empty skips
	// support link binding.
	PageHTML string
}

// Bootstrap loads the dialog's interface messages and returns an App
// attached to the page.
func Bootstrap(ctx context.Context, loader MessageLoader, service ReportService, opts BootstrapOptions) (App, error) {
	if err := loader.LoadMessagesIfMissing(ctx, opts.Language, MessageKeys...); err != nil {
		return App{}, fmt.Errorf("failed to load interface messages: %w", err)
	}

	app := NewApp(ctx, service, loader, opts.AppConfig)
	if opts.PageHTML != "" {
		if err := app.AttachPage(opts.PageHTML); err != nil {
			return App{}, err
		}
	}
	return app, nil
}
