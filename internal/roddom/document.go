// Package roddom implements the dom contract over a live Chrome page driven
// by Rod.
//
// Queries and edits are CDP round trips. Mutation and click notifications
// come from an injected bridge script that reports through a single
// Runtime binding; they are handed to the post function so they run on the
// caller's event loop.
package roddom

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/quickscroll/dom"
)

//go:embed bridge.js
var bridgeJS string

// BindingName is the Runtime binding the bridge reports through.
const BindingName = "__quickscroll"

// Document is the live host page.
type Document struct {
	page   *rod.Page
	post   func(func())
	logger *slog.Logger

	mu        sync.Mutex
	nextID    int
	observers map[int]dom.MutationFunc
	clicks    map[int]dom.ClickFunc
}

// New installs the bridge on page, for the current document and every later
// one, and starts dispatching its events until ctx is done.
func New(ctx context.Context, page *rod.Page, post func(func()), logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Document{
		page:      page.Context(ctx),
		post:      post,
		logger:    logger,
		observers: make(map[int]dom.MutationFunc),
		clicks:    make(map[int]dom.ClickFunc),
	}

	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(d.page); err != nil {
		d.logger.Warn("roddom: addBinding failed (may already exist)", "error", err)
	}
	if _, err := d.page.EvalOnNewDocument("(" + bridgeJS + ")()"); err != nil {
		return nil, fmt.Errorf("roddom: register bridge: %w", err)
	}
	if err := d.Install(); err != nil {
		return nil, err
	}

	go d.page.EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		d.dispatch(e.Payload)
	})()

	return d, nil
}

// Install injects the bridge into the current document. It is a no-op when
// the bridge is already present.
func (d *Document) Install() error {
	if _, err := d.page.Eval(bridgeJS); err != nil {
		return fmt.Errorf("roddom: inject bridge: %w", err)
	}
	return nil
}

// Page returns the underlying page.
func (d *Document) Page() *rod.Page { return d.page }

// HTML serialises the current document.
func (d *Document) HTML() (string, error) {
	res, err := d.page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("roddom: outer html: %w", err)
	}
	return res.Value.Str(), nil
}

func (d *Document) QuerySelector(sel string) dom.Element {
	els, err := d.page.Elements(sel)
	if err != nil {
		d.logger.Debug("roddom: query failed", "selector", sel, "error", err)
		return nil
	}
	if els.Empty() {
		return nil
	}
	return d.wrap(els.First())
}

func (d *Document) QuerySelectorAll(sel string) []dom.Element {
	els, err := d.page.Elements(sel)
	if err != nil {
		d.logger.Debug("roddom: query failed", "selector", sel, "error", err)
		return nil
	}
	return d.wrapAll(els)
}

func (d *Document) ElementByID(id string) dom.Element {
	el, err := d.object(d.page.Evaluate(rod.Eval(`(id) => document.getElementById(id)`, id).ByObject()))
	if err != nil {
		d.logger.Debug("roddom: getElementById failed", "id", id, "error", err)
		return nil
	}
	return el
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	el, err := d.object(d.page.Evaluate(rod.Eval(`(tag) => document.createElement(tag)`, tag).ByObject()))
	if err != nil {
		return nil, fmt.Errorf("roddom: create element %q: %w", tag, err)
	}
	if el == nil {
		return nil, fmt.Errorf("roddom: create element %q: null", tag)
	}
	return el, nil
}

func (d *Document) Observe(target dom.Element, opts dom.ObserveOptions, fn dom.MutationFunc) (dom.Unsubscribe, error) {
	t, ok := target.(*Element)
	if !ok || t == nil {
		return nil, fmt.Errorf("roddom: observe: foreign or nil target")
	}
	ignore := opts.IgnoreWithin
	if ignore == nil {
		ignore = []string{}
	}

	id := d.register(func(id int) { d.observers[id] = fn })
	_, err := d.page.Evaluate(rod.Eval(`(id, target, ignore) => window.__quickscrollBridge.observe(id, target, ignore)`,
		id, t.el.Object, ignore))
	if err != nil {
		d.forget(id)
		return nil, fmt.Errorf("roddom: observe: %w", err)
	}
	return func() { d.cancel(id) }, nil
}

func (d *Document) OnClick(fn dom.ClickFunc) (dom.Unsubscribe, error) {
	id := d.register(func(id int) { d.clicks[id] = fn })
	if _, err := d.page.Evaluate(rod.Eval(`(id) => window.__quickscrollBridge.listen(id)`, id)); err != nil {
		d.forget(id)
		return nil, fmt.Errorf("roddom: click listener: %w", err)
	}
	return func() { d.cancel(id) }, nil
}

func (d *Document) register(add func(id int)) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	add(d.nextID)
	return d.nextID
}

func (d *Document) forget(id int) {
	d.mu.Lock()
	delete(d.observers, id)
	delete(d.clicks, id)
	d.mu.Unlock()
}

func (d *Document) cancel(id int) {
	d.forget(id)
	if _, err := d.page.Evaluate(rod.Eval(`(id) => window.__quickscrollBridge && window.__quickscrollBridge.cancel(id)`, id)); err != nil {
		d.logger.Debug("roddom: cancel subscription", "id", id, "error", err)
	}
}

// event is one bridge report.
type event struct {
	Kind  string `json:"kind"`
	ID    int    `json:"id"`
	Count int    `json:"count"`
	Token string `json:"token"`
}

func decodeEvent(payload string) (event, error) {
	var ev event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("roddom: decode bridge event: %w", err)
	}
	switch ev.Kind {
	case "mutation", "click":
		return ev, nil
	default:
		return ev, fmt.Errorf("roddom: unknown bridge event %q", ev.Kind)
	}
}

// dispatch runs on the binding goroutine; handlers run via post.
func (d *Document) dispatch(payload string) {
	ev, err := decodeEvent(payload)
	if err != nil {
		d.logger.Warn("roddom: bad binding payload", "error", err)
		return
	}

	d.mu.Lock()
	mfn := d.observers[ev.ID]
	cfn := d.clicks[ev.ID]
	d.mu.Unlock()

	switch ev.Kind {
	case "mutation":
		if mfn == nil {
			return
		}
		batch := dom.MutationBatch{Records: ev.Count}
		d.post(func() { mfn(batch) })
	case "click":
		if cfn == nil {
			return
		}
		token := ev.Token
		d.post(func() { cfn(d.takeTarget(token)) })
	}
}

func (d *Document) takeTarget(token string) dom.Element {
	el, err := d.object(d.page.Evaluate(rod.Eval(`(t) => window.__quickscrollBridge.take(t)`, token).ByObject()))
	if err != nil {
		d.logger.Debug("roddom: click target lost", "error", err)
		return nil
	}
	return el
}

// object wraps a remote object result, mapping JS null to a nil Element.
func (d *Document) object(obj *proto.RuntimeRemoteObject, err error) (dom.Element, error) {
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.ObjectID == "" {
		return nil, nil
	}
	el, err := d.page.ElementFromObject(obj)
	if err != nil {
		return nil, err
	}
	return d.wrap(el), nil
}

func (d *Document) wrap(el *rod.Element) dom.Element {
	if el == nil {
		return nil
	}
	return &Element{doc: d, el: el}
}

func (d *Document) wrapAll(els rod.Elements) []dom.Element {
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{doc: d, el: el})
	}
	return out
}
