package quickscroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/browser"
	"github.com/hazyhaar/quickscroll/internal/collect"
	"github.com/hazyhaar/quickscroll/internal/idgen"
	"github.com/hazyhaar/quickscroll/internal/loop"
	"github.com/hazyhaar/quickscroll/internal/probe"
	"github.com/hazyhaar/quickscroll/internal/roddom"
)

// Session is a live Chrome tab with the widget attached.
type Session struct {
	ID  string
	URL string

	nav    *Navigator
	mgr    *browser.Manager
	tab    *browser.Tab
	cancel context.CancelFunc
	logger *slog.Logger
}

// Open launches (or attaches to) Chrome with a visible window, loads
// pageURL and keeps the widget attached across reloads until Close.
func Open(ctx context.Context, pageURL string, cfg *Config, logger *slog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	a, err := AdapterFor("", pageURL, cfg)
	if err != nil {
		return nil, err
	}

	id := idgen.Session()
	logger = logger.With("session", id)
	// The session outlives ctx until Close so a final report can still be
	// collected after an interrupt.
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	mgr, tab, err := openTab(sctx, cfg, false, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	l := loop.New(loop.Real(), logger)
	go l.Run(sctx)

	doc, err := roddom.New(sctx, tab.Page, l.Post, logger)
	if err != nil {
		cancel()
		mgr.Close()
		return nil, err
	}
	nav := NewNavigator(doc, a, l, cfg, logger)

	tab.Watch(sctx, func(sig browser.Signal) {
		switch sig {
		case browser.Navigated:
			nav.Reset()
		case browser.DOMContentLoaded:
			nav.Trigger(DOMContentLoaded)
		case browser.Loaded:
			nav.Trigger(Load)
		}
	})

	if err := tab.Navigate(sctx, pageURL); err != nil {
		cancel()
		mgr.Close()
		return nil, err
	}
	if state, err := tab.ReadyState(sctx); err != nil {
		logger.Warn("session: ready state check failed", "error", err)
	} else if state == "complete" {
		nav.Trigger(AlreadyComplete)
	}

	logger.Info("session: opened", "url", pageURL)
	return &Session{ID: id, URL: pageURL, nav: nav, mgr: mgr, tab: tab, cancel: cancel, logger: logger}, nil
}

// Navigator returns the session's navigator.
func (s *Session) Navigator() *Navigator { return s.nav }

// Report collects the current messages into a report.
func (s *Session) Report(ctx context.Context) (Report, error) {
	msgs, err := s.nav.Messages(ctx)
	if err != nil {
		return Report{}, err
	}
	u, err := s.tab.URL(ctx)
	if err != nil {
		u = s.URL
	}
	return Report{
		Session:   s.ID,
		URL:       u,
		Site:      s.nav.adapter.Name(),
		Timestamp: time.Now().UnixMilli(),
		Messages:  msgs,
	}, nil
}

// Close stops the session and its browser.
func (s *Session) Close() error {
	s.cancel()
	s.tab.Close()
	err := s.mgr.Close()
	s.logger.Info("session: closed")
	return err
}

// Scan loads pageURL in a headless tab, waits for the message container
// with the usual retry schedule, and collects the messages once.
func Scan(ctx context.Context, pageURL string, cfg *Config, logger *slog.Logger) (Report, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	a, err := AdapterFor("", pageURL, cfg)
	if err != nil {
		return Report{}, err
	}

	id := idgen.Session()
	logger = logger.With("session", id, "site", a.Name())
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mgr, tab, err := openTab(sctx, cfg, true, logger)
	if err != nil {
		return Report{}, err
	}
	defer mgr.Close()
	defer tab.Close()

	l := loop.New(loop.Real(), logger)
	go l.Run(sctx)

	doc, err := roddom.New(sctx, tab.Page, l.Post, logger)
	if err != nil {
		return Report{}, err
	}
	if err := tab.Navigate(sctx, pageURL); err != nil {
		return Report{}, err
	}

	type result struct {
		records []collect.Record
		err     error
	}
	done := make(chan result, 1)
	prober := probe.New(l, probe.Config{
		BaseDelay:  cfg.Probe.BaseDelay,
		MaxRetries: cfg.Probe.MaxRetries,
		Logger:     logger,
	})
	l.Post(func() {
		prober.WaitFor(probe.Target{
			Name: a.Name() + " root",
			Find: func() dom.Element { return a.LocateRoot(doc) },
			Accept: func(root dom.Element) bool {
				done <- result{records: collect.Collect(a, root)}
				return true
			},
			Exhausted: func() { done <- result{err: ErrRootNotFound} },
		})
	})

	var res result
	select {
	case res = <-done:
	case <-sctx.Done():
		return Report{}, fmt.Errorf("quickscroll: scan %s: %w", pageURL, sctx.Err())
	}
	if res.err != nil {
		return Report{}, fmt.Errorf("quickscroll: scan %s: %w", pageURL, res.err)
	}

	logger.Info("session: scanned", "url", pageURL, "messages", len(res.records))
	return Report{
		Session:   id,
		URL:       pageURL,
		Site:      a.Name(),
		Timestamp: time.Now().UnixMilli(),
		Messages:  toMessages(res.records),
	}, nil
}

func openTab(ctx context.Context, cfg *Config, headless bool, logger *slog.Logger) (*browser.Manager, *browser.Tab, error) {
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Headless:         headless,
		Stealth:          cfg.Browser.Stealth,
		BinPath:          cfg.Browser.Bin,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		NavigateTimeout:  cfg.Browser.NavigateTimeout,
		Logger:           logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, nil, err
	}
	tab, err := browser.OpenTab(ctx, mgr)
	if err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return mgr, tab, nil
}
