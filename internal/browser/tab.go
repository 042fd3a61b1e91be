package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Signal is a page lifecycle event.
type Signal int

const (
	// DOMContentLoaded fires when the document has been parsed.
	DOMContentLoaded Signal = iota
	// Loaded fires when every subresource finished loading.
	Loaded
	// Navigated fires when the main frame committed a new document.
	Navigated
)

func (s Signal) String() string {
	switch s {
	case DOMContentLoaded:
		return "dom-content-loaded"
	case Loaded:
		return "load"
	case Navigated:
		return "navigated"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Tab is one page of a session.
type Tab struct {
	Page    *rod.Page
	manager *Manager
}

// OpenTab opens a blank tab. Navigation is left to the caller so listeners
// and scripts can be installed before the first document loads.
func OpenTab(ctx context.Context, mgr *Manager) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error
	if mgr.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	page = page.Context(ctx)

	if mgr.cfg.Headless && len(mgr.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, mgr.cfg.ResourceBlocking); err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}
	if err := (proto.PageEnable{}).Call(page); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: enable page events: %w", err)
	}

	return &Tab{Page: page, manager: mgr}, nil
}

// Watch reports lifecycle signals until ctx is done. fn runs on the event
// goroutine and must not block.
func (t *Tab) Watch(ctx context.Context, fn func(Signal)) {
	go t.Page.Context(ctx).EachEvent(
		func(e *proto.PageDomContentEventFired) { fn(DOMContentLoaded) },
		func(e *proto.PageLoadEventFired) { fn(Loaded) },
		func(e *proto.PageFrameNavigated) {
			if e.Frame != nil && e.Frame.ParentID == "" {
				fn(Navigated)
			}
		},
	)()
}

// Navigate loads pageURL and waits for the load event, bounded by the
// manager's NavigateTimeout. A load timeout is logged, not returned.
func (t *Tab) Navigate(ctx context.Context, pageURL string) error {
	log := t.manager.cfg.Logger
	navCtx, cancel := context.WithTimeout(ctx, t.manager.cfg.NavigateTimeout)
	defer cancel()

	if err := t.Page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := t.Page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return nil
}

// ReadyState returns document.readyState.
func (t *Tab) ReadyState(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.readyState`)
	if err != nil {
		return "", fmt.Errorf("browser: ready state: %w", err)
	}
	return res.Value.Str(), nil
}

// URL returns the current page URL.
func (t *Tab) URL(ctx context.Context) (string, error) {
	info, err := t.Page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
