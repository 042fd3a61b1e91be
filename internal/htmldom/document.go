// Package htmldom implements the dom contract over golang.org/x/net/html.
//
// It backs offline extraction from saved pages and stands in for the live
// browser in tests: host mutations are simulated with AppendHTML and Remove,
// user clicks with Click. Notifications are delivered through the post
// function so they interleave with the event loop like browser tasks.
package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/quickscroll/dom"
)

// Document is an in-memory host page.
type Document struct {
	root   *html.Node
	post   func(func())
	logger *slog.Logger

	selectors map[string]selectorGroup

	observers []*observer
	clicks    []*clickListener
	nextID    int

	scrolled []*html.Node
}

type observer struct {
	id     int
	target *html.Node
	ignore []selectorGroup
	fn     dom.MutationFunc
}

type clickListener struct {
	id int
	fn dom.ClickFunc
}

// Option configures a Document.
type Option func(*Document)

// WithPost sets how notifications are scheduled. Default: run inline.
func WithPost(post func(func())) Option {
	return func(d *Document) { d.post = post }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// Parse reads an HTML page.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	d := &Document{
		root:      root,
		post:      func(fn func()) { fn() },
		logger:    slog.Default(),
		selectors: make(map[string]selectorGroup),
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(src string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Node returns the underlying html node of an element produced by d.
func Node(el dom.Element) *html.Node {
	if e, ok := el.(*Element); ok && e != nil {
		return e.node
	}
	return nil
}

// HTML serialises the document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	html.Render(&buf, d.root)
	return buf.String()
}

func (d *Document) QuerySelector(sel string) dom.Element {
	return d.wrap(d.first(d.root, sel, true))
}

func (d *Document) QuerySelectorAll(sel string) []dom.Element {
	return d.wrapAll(d.all(d.root, sel, true))
}

func (d *Document) ElementByID(id string) dom.Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	tag = strings.ToLower(tag)
	if tag == "" {
		return nil, fmt.Errorf("htmldom: create element: empty tag")
	}
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return &Element{doc: d, node: n}, nil
}

func (d *Document) Observe(target dom.Element, opts dom.ObserveOptions, fn dom.MutationFunc) (dom.Unsubscribe, error) {
	n := Node(target)
	if n == nil {
		return nil, fmt.Errorf("htmldom: observe: foreign or nil target")
	}
	obs := &observer{target: n, fn: fn}
	for _, sel := range opts.IgnoreWithin {
		g, err := d.compile(sel)
		if err != nil {
			return nil, err
		}
		obs.ignore = append(obs.ignore, g)
	}
	d.nextID++
	obs.id = d.nextID
	d.observers = append(d.observers, obs)

	return func() {
		for i, o := range d.observers {
			if o.id == obs.id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}, nil
}

func (d *Document) OnClick(fn dom.ClickFunc) (dom.Unsubscribe, error) {
	d.nextID++
	l := &clickListener{id: d.nextID, fn: fn}
	d.clicks = append(d.clicks, l)
	return func() {
		for i, c := range d.clicks {
			if c.id == l.id {
				d.clicks = append(d.clicks[:i], d.clicks[i+1:]...)
				return
			}
		}
	}, nil
}

// Click dispatches a click on target to every document listener.
func (d *Document) Click(target dom.Element) {
	listeners := append([]*clickListener(nil), d.clicks...)
	d.post(func() {
		for _, l := range listeners {
			l.fn(target)
		}
	})
}

// AppendHTML parses fragment in the context of parent and appends the
// resulting nodes, as a host page script would.
func (d *Document) AppendHTML(parent dom.Element, fragment string) error {
	p := Node(parent)
	if p == nil {
		return fmt.Errorf("htmldom: append html: nil parent")
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), p)
	if err != nil {
		return fmt.Errorf("htmldom: append html: %w", err)
	}
	for _, n := range nodes {
		p.AppendChild(n)
	}
	d.notify(p, len(nodes))
	return nil
}

// Remove detaches el from its parent.
func (d *Document) Remove(el dom.Element) {
	n := Node(el)
	if n == nil || n.Parent == nil {
		return
	}
	p := n.Parent
	p.RemoveChild(n)
	d.notify(p, 1)
}

// Scrolled returns the elements ScrollIntoView was called on, in order.
func (d *Document) Scrolled() []dom.Element {
	return d.wrapAll(d.scrolled)
}

// notify delivers a child-list mutation under parent.
func (d *Document) notify(parent *html.Node, records int) {
	if !d.connected(parent) {
		return
	}
	for _, o := range d.observers {
		if !isInclusiveAncestor(o.target, parent) || o.ignores(parent) {
			continue
		}
		fn := o.fn
		d.post(func() { fn(dom.MutationBatch{Records: records}) })
	}
}

func (o *observer) ignores(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		for _, g := range o.ignore {
			if g.matches(p) {
				return true
			}
		}
	}
	return false
}

func (d *Document) compile(sel string) (selectorGroup, error) {
	if g, ok := d.selectors[sel]; ok {
		return g, nil
	}
	g, err := compile(sel)
	if err != nil {
		return nil, err
	}
	d.selectors[sel] = g
	return g, nil
}

// first returns the first descendant of scope matching sel, in document order.
func (d *Document) first(scope *html.Node, sel string, includeScope bool) *html.Node {
	g, err := d.compile(sel)
	if err != nil {
		d.logger.Debug("htmldom: bad selector", "selector", sel, "error", err)
		return nil
	}
	var found *html.Node
	walk(scope, func(n *html.Node) bool {
		if (includeScope || n != scope) && g.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *Document) all(scope *html.Node, sel string, includeScope bool) []*html.Node {
	g, err := d.compile(sel)
	if err != nil {
		d.logger.Debug("htmldom: bad selector", "selector", sel, "error", err)
		return nil
	}
	var out []*html.Node
	walk(scope, func(n *html.Node) bool {
		if (includeScope || n != scope) && g.matches(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (d *Document) connected(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) wrapAll(nodes []*html.Node) []dom.Element {
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{doc: d, node: n})
	}
	return out
}

// walk visits n and its descendants in document order until visit
// returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func isInclusiveAncestor(anc, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}
