package htmldom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/quickscroll/dom"
)

// Element is an html node owned by a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) TagName() string { return e.node.Data }

func (e *Element) Attr(name string) (string, bool) {
	return lookupAttr(e.node, name)
}

func (e *Element) SetAttr(name, value string) error {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return nil
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

func (e *Element) SetTextContent(text string) error {
	removeChildren(e.node)
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	e.doc.notify(e.node, 1)
	return nil
}

func (e *Element) QuerySelector(sel string) dom.Element {
	return e.doc.wrap(e.doc.first(e.node, sel, false))
}

func (e *Element) QuerySelectorAll(sel string) []dom.Element {
	return e.doc.wrapAll(e.doc.all(e.node, sel, false))
}

func (e *Element) Closest(sel string) dom.Element {
	g, err := e.doc.compile(sel)
	if err != nil {
		return nil
	}
	for p := e.node; p != nil; p = p.Parent {
		if g.matches(p) {
			return e.doc.wrap(p)
		}
	}
	return nil
}

func (e *Element) AppendChild(child dom.Element) error {
	c, ok := child.(*Element)
	if !ok || c == nil || c.doc != e.doc {
		return fmt.Errorf("htmldom: append child: foreign element")
	}
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	e.node.AppendChild(c.node)
	e.doc.notify(e.node, 1)
	return nil
}

func (e *Element) ReplaceChildren() error {
	if e.node.FirstChild == nil {
		return nil
	}
	removeChildren(e.node)
	e.doc.notify(e.node, 1)
	return nil
}

func (e *Element) AddClass(name string) error {
	classes := strings.Fields(getAttr(e.node, "class"))
	if containsString(classes, name) {
		return nil
	}
	return e.SetAttr("class", strings.Join(append(classes, name), " "))
}

func (e *Element) RemoveClass(name string) error {
	classes := strings.Fields(getAttr(e.node, "class"))
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	return e.SetAttr("class", strings.Join(kept, " "))
}

func (e *Element) HasClass(name string) bool {
	return containsString(strings.Fields(getAttr(e.node, "class")), name)
}

func (e *Element) ScrollIntoView() error {
	if !e.Connected() {
		return fmt.Errorf("htmldom: scroll: element detached")
	}
	e.doc.scrolled = append(e.doc.scrolled, e.node)
	return nil
}

func (e *Element) Connected() bool {
	return e.doc.connected(e.node)
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}
