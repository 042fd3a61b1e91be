package roddom

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/quickscroll/dom"
)

// Element is a handle to a live DOM element.
type Element struct {
	doc *Document
	el  *rod.Element
}

// Rod returns the underlying Rod element.
func (e *Element) Rod() *rod.Element { return e.el }

func (e *Element) TagName() string {
	res, err := e.el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *Element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *Element) SetAttr(name, value string) error {
	return e.call("set attribute", `(n, v) => this.setAttribute(n, v)`, name, value)
}

func (e *Element) TextContent() string {
	res, err := e.el.Eval(`() => this.textContent || ''`)
	if err != nil {
		e.doc.logger.Debug("roddom: textContent failed", "error", err)
		return ""
	}
	return res.Value.Str()
}

func (e *Element) SetTextContent(text string) error {
	return e.call("set text", `(t) => { this.textContent = t; }`, text)
}

func (e *Element) QuerySelector(sel string) dom.Element {
	els, err := e.el.Elements(sel)
	if err != nil {
		e.doc.logger.Debug("roddom: query failed", "selector", sel, "error", err)
		return nil
	}
	if els.Empty() {
		return nil
	}
	return e.doc.wrap(els.First())
}

func (e *Element) QuerySelectorAll(sel string) []dom.Element {
	els, err := e.el.Elements(sel)
	if err != nil {
		e.doc.logger.Debug("roddom: query failed", "selector", sel, "error", err)
		return nil
	}
	return e.doc.wrapAll(els)
}

func (e *Element) Closest(sel string) dom.Element {
	el, err := e.doc.object(e.el.Evaluate(rod.Eval(`(s) => this.closest(s)`, sel).ByObject()))
	if err != nil {
		e.doc.logger.Debug("roddom: closest failed", "selector", sel, "error", err)
		return nil
	}
	return el
}

func (e *Element) AppendChild(child dom.Element) error {
	c, ok := child.(*Element)
	if !ok || c == nil {
		return fmt.Errorf("roddom: append child: foreign element")
	}
	return e.call("append child", `(c) => { this.appendChild(c); }`, c.el.Object)
}

func (e *Element) ReplaceChildren() error {
	return e.call("replace children", `() => this.replaceChildren()`)
}

func (e *Element) AddClass(name string) error {
	return e.call("add class", `(c) => this.classList.add(c)`, name)
}

func (e *Element) RemoveClass(name string) error {
	return e.call("remove class", `(c) => this.classList.remove(c)`, name)
}

func (e *Element) HasClass(name string) bool {
	res, err := e.el.Eval(`(c) => this.classList.contains(c)`, name)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *Element) ScrollIntoView() error {
	return e.call("scroll", `() => this.scrollIntoView({behavior: 'smooth', block: 'center'})`)
}

func (e *Element) Connected() bool {
	res, err := e.el.Eval(`() => this.isConnected`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *Element) call(op, js string, args ...interface{}) error {
	if _, err := e.el.Eval(js, args...); err != nil {
		return fmt.Errorf("roddom: %s: %w", op, err)
	}
	return nil
}
