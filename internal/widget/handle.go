package widget

import (
	"fmt"

	"github.com/hazyhaar/quickscroll/dom"
	"github.com/hazyhaar/quickscroll/internal/site"
)

// Element ids and classes injected into the host page.
const (
	ButtonID       = "quick-scroll-btn"
	PanelID        = "quick-scroll-panel"
	HeaderID       = "quick-scroll-header"
	HeaderNoteID   = "quick-scroll-header-note"
	ContentID      = "quick-scroll-content"
	StyleID        = "quick-scroll-style"
	HiddenClass    = "hidden"
	EntryClass     = "quick-scroll-message"
	HighlightClass = "quick-scroll-highlight"
	IndexAttr      = "data-qs-index"
)

const (
	buttonStyle = "position:absolute;bottom:20px;left:24px;z-index:1000;border-radius:50%;" +
		"width:40px;height:40px;cursor:pointer;box-shadow:0 2px 5px rgba(0,0,0,0.2);"
	panelStyle = "position:absolute;bottom:70px;left:24px;z-index:1001;width:413px;" +
		"height:50%;overflow-y:auto;"
	sheet = "#" + PanelID + "." + HiddenClass + "{display:none}" +
		"." + EntryClass + "{cursor:pointer;padding:6px 10px;white-space:nowrap;overflow:hidden}" +
		"." + HighlightClass + "{outline:2px solid #f5a623;transition:outline 0.3s}"
)

// Handle owns the injected button and panel. It is the only writer of the
// widget subtree.
type Handle struct {
	Button  dom.Element
	Panel   dom.Element
	Content dom.Element
	visible bool
}

// Visible reports whether the panel is open.
func (h *Handle) Visible() bool { return h.visible }

// Mount injects the widget into root unless a button with ButtonID already
// exists, in which case it returns created=false and a nil handle.
func Mount(doc dom.Document, root dom.Element, a site.Adapter) (*Handle, bool, error) {
	if doc.ElementByID(ButtonID) != nil {
		return nil, false, nil
	}

	b := builder{doc: doc}
	style := b.el("style", StyleID, sheet)
	button := b.el("button", ButtonID, "⚡")
	b.attr(button, "title", "Quick scroll to messages")
	b.attr(button, "style", buttonStyle)

	panel := b.el("div", PanelID, "")
	b.attr(panel, "class", HiddenClass)
	b.attr(panel, "style", panelStyle)

	header := b.el("div", HeaderID, "")
	b.append(header, b.el("div", "", "Your Messages"))
	if note := a.HeaderNote(); note != "" {
		b.append(header, b.el("div", HeaderNoteID, note))
	}
	b.append(panel, header)

	content := b.el("div", ContentID, "")
	b.append(panel, content)

	b.append(root, style)
	b.append(root, button)
	b.append(root, panel)
	if b.err != nil {
		return nil, false, fmt.Errorf("widget: mount: %w", b.err)
	}

	return &Handle{Button: button, Panel: panel, Content: content}, true, nil
}

func (h *Handle) setVisible(v bool) error {
	h.visible = v
	if v {
		return h.Panel.RemoveClass(HiddenClass)
	}
	return h.Panel.AddClass(HiddenClass)
}

// builder stops at the first error so Mount reads as a straight line.
type builder struct {
	doc dom.Document
	err error
}

func (b *builder) el(tag, id, text string) dom.Element {
	if b.err != nil {
		return nil
	}
	el, err := b.doc.CreateElement(tag)
	if err != nil {
		b.err = err
		return nil
	}
	if id != "" {
		b.attr(el, "id", id)
	}
	if text != "" && b.err == nil {
		b.err = el.SetTextContent(text)
	}
	return el
}

func (b *builder) attr(el dom.Element, name, value string) {
	if b.err != nil {
		return
	}
	b.err = el.SetAttr(name, value)
}

func (b *builder) append(parent, child dom.Element) {
	if b.err != nil {
		return
	}
	b.err = parent.AppendChild(child)
}
