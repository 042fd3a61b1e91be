// Package widget owns the injected quick-scroll button and panel: its
// initialisation state machine, rendering, and user interaction.
package widget

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/collect"
	"github.com/hazyhaar/quickscroll/internal/loop"
	"github.com/hazyhaar/quickscroll/internal/monitor"
	"github.com/hazyhaar/quickscroll/internal/probe"
	"github.com/hazyhaar/quickscroll/internal/site"
)

// NoMessagesText is the placeholder entry shown for an empty list.
const NoMessagesText = "No messages found"

var (
	ErrNotReady        = errors.New("widget: not ready")
	ErrIndexOutOfRange = errors.New("widget: message index out of range")
)

// State is the initialisation state.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Config tunes the controller.
type Config struct {
	// HighlightDuration is how long a jumped-to message stays highlighted.
	// Default: 2s.
	HighlightDuration time.Duration
	WordLimit         int
	CharLimit         int
	Probe             probe.Config
	Logger            *slog.Logger
}

func (c *Config) defaults() {
	if c.HighlightDuration <= 0 {
		c.HighlightDuration = 2 * time.Second
	}
	if c.WordLimit <= 0 {
		c.WordLimit = DefaultWordLimit
	}
	if c.CharLimit <= 0 {
		c.CharLimit = DefaultCharLimit
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Probe.Logger == nil {
		c.Probe.Logger = c.Logger
	}
}

// Controller drives the widget for one page. Every method must run on the
// loop.
type Controller struct {
	cfg     Config
	doc     dom.Document
	adapter site.Adapter
	loop    *loop.Loop
	prober  *probe.Prober
	logger  *slog.Logger

	state   State
	gen     int
	seq     *probe.Sequence
	handle  *Handle
	root    dom.Element
	mon     *monitor.Monitor
	unclick dom.Unsubscribe
	entries []collect.Record

	collects int
}

// New creates a Controller in the Uninitialized state.
func New(doc dom.Document, a site.Adapter, l *loop.Loop, cfg Config) *Controller {
	cfg.defaults()
	return &Controller{
		cfg:     cfg,
		doc:     doc,
		adapter: a,
		loop:    l,
		prober:  probe.New(l, cfg.Probe),
		logger:  cfg.Logger,
	}
}

// State returns the initialisation state.
func (c *Controller) State() State { return c.state }

// Handle returns the widget handle once Ready.
func (c *Controller) Handle() *Handle { return c.handle }

// Collects returns how many times the message list was recomputed.
func (c *Controller) Collects() int { return c.collects }

// RequestInit asks for initialisation after delay. Only the first request
// starts the probing sequence; later ones are no-ops until that sequence
// gives up or the page is reset.
func (c *Controller) RequestInit(trigger string, delay time.Duration) {
	if c.state != Uninitialized {
		c.logger.Debug("widget: init already requested", "trigger", trigger, "state", c.state)
		return
	}
	c.state = Initializing
	gen := c.gen
	c.logger.Info("widget: init scheduled", "trigger", trigger, "delay", delay, "site", c.adapter.Name())
	c.loop.After(delay, func() {
		if gen != c.gen {
			return
		}
		c.seq = c.prober.WaitFor(probe.Target{
			Name:   c.adapter.Name() + " root",
			Find:   func() dom.Element { return c.adapter.LocateRoot(c.doc) },
			Accept: c.mount,
			Exhausted: func() {
				if gen == c.gen {
					c.state = Uninitialized
				}
			},
		})
	})
}

func (c *Controller) mount(root dom.Element) bool {
	h, created, err := Mount(c.doc, root, c.adapter)
	if err != nil {
		c.logger.Error("widget: mount failed", "error", err)
		return false
	}
	if !created {
		c.logger.Info("widget: button already exists")
		return false
	}

	unclick, err := c.doc.OnClick(c.handleClick)
	if err != nil {
		c.logger.Error("widget: click listener failed", "error", err)
	}

	c.handle = h
	c.root = root
	c.unclick = unclick
	c.state = Ready

	mon, err := monitor.Observe(c.doc, root, c.adapter, monitor.Options{
		Visible:      h.Visible,
		Refresh:      c.refresh,
		IgnoreWithin: []string{"#" + PanelID, "#" + ButtonID},
		Logger:       c.logger,
	})
	if err != nil {
		c.logger.Warn("widget: change monitor unavailable", "error", err)
	}
	c.mon = mon

	c.logger.Info("widget: ready", "site", c.adapter.Name())
	return true
}

// Reset tears the widget state down after the host page navigated away.
func (c *Controller) Reset() {
	c.gen++
	if c.seq != nil {
		c.seq.Stop()
		c.seq = nil
	}
	if c.mon != nil {
		c.mon.Stop()
		c.mon = nil
	}
	if c.unclick != nil {
		c.unclick()
		c.unclick = nil
	}
	c.handle = nil
	c.root = nil
	c.entries = nil
	c.state = Uninitialized
}

// Open recollects, renders and shows the panel.
func (c *Controller) Open() error {
	if c.handle == nil {
		return ErrNotReady
	}
	c.refresh()
	return c.handle.setVisible(true)
}

// Close hides the panel.
func (c *Controller) Close() error {
	if c.handle == nil {
		return ErrNotReady
	}
	return c.handle.setVisible(false)
}

// Toggle opens a hidden panel and closes an open one.
func (c *Controller) Toggle() error {
	if c.handle == nil {
		return ErrNotReady
	}
	if c.handle.visible {
		return c.Close()
	}
	return c.Open()
}

// Messages recomputes the message list without rendering it.
func (c *Controller) Messages() []collect.Record {
	c.collects++
	return collect.Collect(c.adapter, c.currentRoot())
}

// Jump selects the index-th message of a fresh list.
func (c *Controller) Jump(index int) (collect.Record, error) {
	if c.handle == nil {
		return collect.Record{}, ErrNotReady
	}
	records := c.Messages()
	if index < 0 || index >= len(records) {
		return collect.Record{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(records))
	}
	rec := records[index]
	c.Select(rec)
	return rec, nil
}

// Select scrolls the record's message into view, highlights it for
// HighlightDuration and closes the panel.
func (c *Controller) Select(rec collect.Record) {
	defer c.Close()

	node := rec.Node
	if node == nil || !node.Connected() {
		c.logger.Info("widget: message node is stale", "text", Truncate(rec.Text, c.cfg.WordLimit, c.cfg.CharLimit))
		return
	}
	target := node.Closest(c.adapter.ScrollContainer())
	if target == nil {
		target = node
	}
	if err := target.ScrollIntoView(); err != nil {
		c.logger.Warn("widget: scroll failed", "error", err)
	}
	if err := target.AddClass(HighlightClass); err != nil {
		c.logger.Warn("widget: highlight failed", "error", err)
		return
	}
	c.loop.After(c.cfg.HighlightDuration, func() {
		if err := target.RemoveClass(HighlightClass); err != nil {
			c.logger.Debug("widget: clear highlight failed", "error", err)
		}
	})
}

func (c *Controller) handleClick(target dom.Element) {
	h := c.handle
	if h == nil || target == nil {
		return
	}
	if target.Closest("#"+ButtonID) != nil {
		if err := c.Toggle(); err != nil {
			c.logger.Warn("widget: toggle failed", "error", err)
		}
		return
	}
	if !h.visible {
		return
	}
	if entry := target.Closest("#" + PanelID + " [" + IndexAttr + "]"); entry != nil {
		v, _ := entry.Attr(IndexAttr)
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 || i >= len(c.entries) {
			c.logger.Debug("widget: click on unknown entry", "index", v)
			return
		}
		c.Select(c.entries[i])
		return
	}
	if target.Closest("#"+PanelID) == nil {
		c.Close()
	}
}

// currentRoot re-locates the root so a host re-render does not leave the
// widget reading a detached subtree.
func (c *Controller) currentRoot() dom.Element {
	if root := c.adapter.LocateRoot(c.doc); root != nil {
		return root
	}
	return c.root
}

func (c *Controller) refresh() {
	records := c.Messages()
	c.entries = records
	if err := c.render(records); err != nil {
		c.logger.Warn("widget: render failed", "error", err)
	}
}

func (c *Controller) render(records []collect.Record) error {
	content := c.handle.Content
	if err := content.ReplaceChildren(); err != nil {
		return err
	}
	b := builder{doc: c.doc}
	if len(records) == 0 {
		entry := b.el("div", "", NoMessagesText)
		b.attr(entry, "class", EntryClass)
		b.append(content, entry)
		return b.err
	}
	for i, rec := range records {
		entry := b.el("div", "", Truncate(rec.Text, c.cfg.WordLimit, c.cfg.CharLimit))
		b.attr(entry, "class", EntryClass)
		b.attr(entry, "title", rec.Text)
		b.attr(entry, IndexAttr, strconv.Itoa(i))
		b.append(content, entry)
	}
	return b.err
}
