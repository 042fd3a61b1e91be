// Package quickscroll adds a quick-navigation panel to AI chat pages. It
// finds the user's own messages on a ChatGPT or Gemini conversation, lists
// them in an injected panel, and scrolls to the one the user picks.
//
// A Navigator drives one page through the dom contract. Live pages are
// reached through Chrome (Open, Scan); saved pages through ExtractHTML. The
// same operations are exposed over MCP (RegisterMCP) and HTTP (Routes).
package quickscroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/collect"
	"github.com/hazyhaar/quickscroll/internal/loop"
	"github.com/hazyhaar/quickscroll/internal/probe"
	"github.com/hazyhaar/quickscroll/internal/report"
	"github.com/hazyhaar/quickscroll/internal/site"
	"github.com/hazyhaar/quickscroll/internal/widget"
)

var (
	// ErrNoAdapter means no site adapter matches the page.
	ErrNoAdapter = errors.New("quickscroll: no adapter for this site")
	// ErrNotReady means the widget has not been injected yet.
	ErrNotReady = widget.ErrNotReady
	// ErrIndexOutOfRange means a jump asked for a message that is not listed.
	ErrIndexOutOfRange = widget.ErrIndexOutOfRange
	// ErrRootNotFound means the message container never appeared.
	ErrRootNotFound = errors.New("quickscroll: message container not found")
)

// Message is one user message of the current conversation.
type Message = report.Message

// Adapter is a site-specific extraction strategy.
type Adapter = site.Adapter

// AdapterFor returns the adapter named name, or the one matching pageURL
// when name is empty.
func AdapterFor(name, pageURL string, cfg *Config) (Adapter, error) {
	opts := site.Options{TurnMarkers: cfg.ChatGPT.TurnMarkers}
	if name != "" {
		a, err := site.ByName(name, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
		}
		return a, nil
	}
	if a, ok := site.Detect(pageURL, opts); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAdapter, pageURL)
}

// Signal is a page lifecycle event that may start initialisation.
type Signal int

const (
	// DOMContentLoaded: the document has been parsed.
	DOMContentLoaded Signal = iota
	// Load: every subresource has loaded.
	Load
	// AlreadyComplete: the page was complete when the engine attached.
	AlreadyComplete
)

func (s Signal) String() string {
	switch s {
	case DOMContentLoaded:
		return "dom-content-loaded"
	case Load:
		return "load"
	case AlreadyComplete:
		return "already-complete"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Navigator binds the widget to one page. Every method is safe for
// concurrent use; work is executed on the page's loop.
type Navigator struct {
	doc     dom.Document
	adapter Adapter
	loop    *loop.Loop
	ctrl    *widget.Controller
	cfg     *Config
	logger  *slog.Logger
}

// NewNavigator creates a Navigator. doc must deliver its notifications
// through l.Post.
func NewNavigator(doc dom.Document, a Adapter, l *loop.Loop, cfg *Config, logger *slog.Logger) *Navigator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("site", a.Name())
	ctrl := widget.New(doc, a, l, widget.Config{
		HighlightDuration: cfg.Widget.HighlightDuration,
		WordLimit:         cfg.Widget.WordLimit,
		CharLimit:         cfg.Widget.CharLimit,
		Probe: probe.Config{
			BaseDelay:  cfg.Probe.BaseDelay,
			MaxRetries: cfg.Probe.MaxRetries,
			Logger:     logger,
		},
		Logger: logger,
	})
	return &Navigator{doc: doc, adapter: a, loop: l, ctrl: ctrl, cfg: cfg, logger: logger}
}

// Adapter returns the site adapter.
func (n *Navigator) Adapter() Adapter { return n.adapter }

// Trigger requests initialisation after the delay configured for sig.
// Only the first request of a page takes effect.
func (n *Navigator) Trigger(sig Signal) {
	delay := n.delay(sig)
	n.loop.Post(func() { n.ctrl.RequestInit(sig.String(), delay) })
}

func (n *Navigator) delay(sig Signal) time.Duration {
	switch sig {
	case DOMContentLoaded:
		return n.cfg.Init.DOMContentLoaded
	case Load:
		return n.cfg.Init.Load
	default:
		return n.cfg.Init.AlreadyComplete
	}
}

// Reset forgets the widget after the page navigated to a new document.
func (n *Navigator) Reset() {
	n.loop.Post(n.ctrl.Reset)
}

// State returns the initialisation state.
func (n *Navigator) State(ctx context.Context) (string, error) {
	var s widget.State
	if err := n.loop.Call(ctx, func() { s = n.ctrl.State() }); err != nil {
		return "", err
	}
	return s.String(), nil
}

// Messages collects the current user messages.
func (n *Navigator) Messages(ctx context.Context) ([]Message, error) {
	var records []collect.Record
	if err := n.loop.Call(ctx, func() { records = n.ctrl.Messages() }); err != nil {
		return nil, err
	}
	return toMessages(records), nil
}

// Jump scrolls to and highlights the index-th message, as a click on its
// panel entry would.
func (n *Navigator) Jump(ctx context.Context, index int) (Message, error) {
	var rec collect.Record
	var err error
	if cerr := n.loop.Call(ctx, func() { rec, err = n.ctrl.Jump(index) }); cerr != nil {
		return Message{}, cerr
	}
	if err != nil {
		return Message{}, err
	}
	return Message{Index: index, Text: rec.Text}, nil
}

// Toggle opens or closes the panel.
func (n *Navigator) Toggle(ctx context.Context) error {
	var err error
	if cerr := n.loop.Call(ctx, func() { err = n.ctrl.Toggle() }); cerr != nil {
		return cerr
	}
	return err
}

func toMessages(records []collect.Record) []Message {
	out := make([]Message, len(records))
	for i, r := range records {
		out[i] = Message{Index: i, Text: r.Text}
	}
	return out
}
