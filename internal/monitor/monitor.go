// Package monitor keeps the displayed message list in step with the host
// page by reacting to DOM subtree mutations under the message container.
package monitor

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/site"
)

// Options wires the monitor to the widget.
type Options struct {
	// Visible reports whether the panel is open.
	Visible func() bool
	// Refresh recollects and rerenders. Called on the loop, once per batch.
	Refresh func()
	// IgnoreWithin drops mutations inside these selectors (the widget itself).
	IgnoreWithin []string
	Logger       *slog.Logger
}

// Monitor is a live subscription.
type Monitor struct {
	opts      Options
	unsub     dom.Unsubscribe
	batches   int
	refreshes int
}

// Observe watches the adapter's observe target under root. While the panel
// is hidden batches are ignored; the panel recollects when it next opens.
// There is no debouncing: every batch seen while visible refreshes.
func Observe(doc dom.Document, root dom.Element, a site.Adapter, opts Options) (*Monitor, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if root == nil {
		return nil, fmt.Errorf("monitor: nil root")
	}
	target := a.ObserveTarget(root)

	m := &Monitor{opts: opts}
	unsub, err := doc.Observe(target, dom.ObserveOptions{IgnoreWithin: opts.IgnoreWithin}, m.onBatch)
	if err != nil {
		return nil, fmt.Errorf("monitor: observe: %w", err)
	}
	m.unsub = unsub

	onRoot := target == root
	opts.Logger.Info("monitor: observing", "site", a.Name(), "target", target.TagName(), "fallback_to_root", onRoot)
	return m, nil
}

func (m *Monitor) onBatch(b dom.MutationBatch) {
	m.batches++
	if !m.opts.Visible() {
		return
	}
	m.refreshes++
	m.opts.Logger.Debug("monitor: refreshing", "records", b.Records)
	m.opts.Refresh()
}

// Stop ends the subscription.
func (m *Monitor) Stop() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Batches returns how many mutation batches arrived.
func (m *Monitor) Batches() int { return m.batches }

// Refreshes returns how many batches triggered a refresh.
func (m *Monitor) Refreshes() int { return m.refreshes }
