package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/plantaest/citronspam/internal/server"
)

func TestWikiPool(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		builds = make(map[string]int)
		fail   = true
	)
	pool := newWikiPool(func(_ context.Context, wikiID string) (*server.Wiki, error) {
		mu.Lock()
		defer mu.Unlock()
		builds[wikiID]++
		if wikiID == "downwiki" && fail {
			return nil, errors.New("login failed")
		}
		return &server.Wiki{ID: wikiID}, nil
	})
	ctx := context.Background()

	t.Run("builds once", func(t *testing.T) {
		first, err := pool.Resolve(ctx, "viwiki")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := pool.Resolve(ctx, "viwiki")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Error("expected the cached wiki")
		}
		if builds["viwiki"] != 1 {
			t.Errorf("expected one build, got %d", builds["viwiki"])
		}
	})

	t.Run("retries failed builds", func(t *testing.T) {
		if _, err := pool.Resolve(ctx, "downwiki"); err == nil {
			t.Fatal("expected error")
		}
		mu.Lock()
		fail = false
		mu.Unlock()

		w, err := pool.Resolve(ctx, "downwiki")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.ID != "downwiki" || builds["downwiki"] != 2 {
			t.Errorf("expected a second build, got %d", builds["downwiki"])
		}
	})
}

func TestWikiPoolBlockingBuild(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		builds  = make(map[string]int)
		started = make(chan struct{}, 1)
		release = make(chan struct{})
	)
	pool := newWikiPool(func(_ context.Context, wikiID string) (*server.Wiki, error) {
		mu.Lock()
		builds[wikiID]++
		mu.Unlock()
		if wikiID == "slowwiki" {
			started <- struct{}{}
			<-release
		}
		return &server.Wiki{ID: wikiID}, nil
	})

	type result struct {
		w   *server.Wiki
		err error
	}
	resolve := func(wikiID string) <-chan result {
		ch := make(chan result, 1)
		go func() {
			w, err := pool.Resolve(context.Background(), wikiID)
			ch <- result{w, err}
		}()
		return ch
	}

	first := resolve("slowwiki")
	<-started

	select {
	case got := <-resolve("viwiki"):
		if got.err != nil || got.w.ID != "viwiki" {
			t.Errorf("unexpected result: %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("viwiki blocked by the slowwiki build")
	}

	second := resolve("slowwiki")
	close(release)

	a, b := <-first, <-second
	if a.err != nil || b.err != nil {
		t.Fatalf("unexpected errors: %v, %v", a.err, b.err)
	}
	if a.w != b.w {
		t.Error("expected both callers to get the same wiki")
	}
	mu.Lock()
	defer mu.Unlock()
	if builds["slowwiki"] != 1 {
		t.Errorf("expected one slowwiki build, got %d", builds["slowwiki"])
	}
}

func TestWikiPoolIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	pool := newWikiPool(func(ctx context.Context, wikiID string) (*server.Wiki, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &server.Wiki{ID: wikiID}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Resolve(ctx, "viwiki"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServedWiki(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	tests := []struct {
		wikiID     string
		wantServer string
		wantErr    error
	}{
		{wikiID: "viwiki", wantServer: "vi.wikipedia.org"},
		{wikiID: "enwiki", wantServer: "en.wikipedia.org"},
		{wikiID: "dewiki", wantErr: config.ErrUnknownWiki},
		{wikiID: "de.wikipedia.org", wantErr: config.ErrUnknownWiki},
	}
	for _, tt := range tests {
		got, err := servedWiki(cfg, tt.wikiID)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.wikiID, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.wikiID, err)
			continue
		}
		if got.ServerName != tt.wantServer {
			t.Errorf("%s: expected %s, got %s", tt.wikiID, tt.wantServer, got.ServerName)
		}
	}

	t.Run("selected wiki without config file", func(t *testing.T) {
		t.Parallel()
		if _, err := servedWiki(config.NewConfig(), config.DefaultWikiID); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
